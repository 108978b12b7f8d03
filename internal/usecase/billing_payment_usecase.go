package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"presupuesto_xpto/internal/domain/entities"
	"presupuesto_xpto/internal/infrastructure/logger"
	"presupuesto_xpto/internal/usecase/interfaces"

	"go.uber.org/zap"
)

var (
	ErrBillingPaymentNotFound         = errors.New("billing payment not found")
	ErrInvalidPaymentBudgetID         = errors.New("invalid budget_id")
	ErrInvalidMPPayload               = errors.New("invalid mercado pago payload")
	ErrBudgetNotPayable               = errors.New("budget not approved")
	ErrPaymentGatewayNotConfigured    = errors.New("payment gateway not configured")
	ErrPaymentGatewayBadRequest       = errors.New("payment gateway bad request")
	ErrPaymentGatewayUnauthorized     = errors.New("payment gateway unauthorized")
	ErrPaymentGatewayInvalidUsers     = errors.New("payment gateway invalid users involved")
	ErrPaymentGatewayCustomerNotFound = errors.New("payment gateway customer not found")
)

// IBillingPaymentUseCase charges the grand total of an approved budget.
//
// Only APPROVED and INVOICED budgets can be charged. The amount always
// comes from the stored totals, never from the caller's payload.
type IBillingPaymentUseCase interface {
	CreateAndApprove(ctx context.Context, budgetID string, mpPayload json.RawMessage) (entities.BillingPayment, error)
	GetByID(ctx context.Context, id string) (entities.BillingPayment, error)
	ListByBudgetID(ctx context.Context, budgetID string) ([]entities.BillingPayment, error)
}

type BillingPaymentUseCase struct {
	repo       interfaces.IBillingPaymentRepository
	budgetRepo interfaces.IBudgetRepository
	gateway    interfaces.IPaymentGateway
	log        *zap.Logger
	now        func() time.Time
}

var _ IBillingPaymentUseCase = (*BillingPaymentUseCase)(nil)

func NewBillingPaymentUseCase(repo interfaces.IBillingPaymentRepository, budgetRepo interfaces.IBudgetRepository, gateway interfaces.IPaymentGateway, l *zap.Logger) *BillingPaymentUseCase {
	return &BillingPaymentUseCase{
		repo:       repo,
		budgetRepo: budgetRepo,
		gateway:    gateway,
		log:        logger.OrNop(l).Named("payment.usecase"),
		now:        time.Now,
	}
}

func (u *BillingPaymentUseCase) CreateAndApprove(ctx context.Context, budgetID string, mpPayload json.RawMessage) (entities.BillingPayment, error) {
	budgetID = strings.TrimSpace(budgetID)
	log := u.log.With(zap.String("budget_id", budgetID))
	if budgetID == "" {
		return entities.BillingPayment{}, ErrInvalidPaymentBudgetID
	}
	if u.gateway == nil {
		log.Error("gateway not configured")
		return entities.BillingPayment{}, ErrPaymentGatewayNotConfigured
	}
	mockMode := u.gateway.MockMode()

	if len(mpPayload) == 0 || !json.Valid(mpPayload) {
		if !mockMode {
			log.Info("invalid payload", zap.Int("payload_len", len(mpPayload)))
			return entities.BillingPayment{}, ErrInvalidMPPayload
		}
		mpPayload = json.RawMessage("{}")
	}

	b, err := u.budgetRepo.GetByID(ctx, budgetID)
	if err != nil {
		log.Error("failed loading budget", zap.Error(err))
		return entities.BillingPayment{}, err
	}
	if b.ID == "" {
		return entities.BillingPayment{}, ErrBudgetNotFound
	}
	if b.State != entities.StateApproved && b.State != entities.StateInvoiced {
		log.Info("budget not payable", zap.String("state", string(b.State)))
		return entities.BillingPayment{}, ErrBudgetNotPayable
	}

	var reqMap map[string]any
	if err := json.Unmarshal(mpPayload, &reqMap); err != nil || reqMap == nil {
		if !mockMode {
			return entities.BillingPayment{}, ErrInvalidMPPayload
		}
		reqMap = map[string]any{}
	}
	if !mockMode && !hasNonEmptyString(reqMap, "payment_method_id") {
		log.Info("missing payment_method_id")
		return entities.BillingPayment{}, ErrInvalidMPPayload
	}
	if !mockMode && !hasPayer(reqMap) {
		log.Info("missing or invalid payer")
		return entities.BillingPayment{}, ErrInvalidMPPayload
	}

	// Mercado Pago uses external_reference to reconcile events.
	if _, ok := reqMap["external_reference"]; !ok {
		reqMap["external_reference"] = b.ID
	}
	if _, ok := reqMap["description"]; !ok {
		reqMap["description"] = fmt.Sprintf("Budget %s", b.ID)
	}
	reqMap["transaction_amount"] = b.Totals.GrandTotal.InexactFloat64()

	payload, err := json.Marshal(reqMap)
	if err != nil {
		return entities.BillingPayment{}, err
	}

	providerPaymentID, providerStatus, providerResp, err := u.gateway.CreatePayment(ctx, payload)
	if err != nil {
		log.Warn("payment gateway failed", zap.Error(err))
		return entities.BillingPayment{}, classifyGatewayError(err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(providerResp, &parsed); err != nil {
		log.Warn("provider response unmarshal failed", zap.Error(err))
	}

	p := entities.BillingPayment{
		ID:                 providerPaymentID,
		BudgetID:           b.ID,
		Amount:             b.Totals.GrandTotal,
		CurrencyID:         b.CurrencyID,
		Date:               u.now().UTC(),
		Status:             paymentStatusFromProvider(providerStatus),
		ProviderPayloadRaw: providerResp,
		ProviderPayload:    parsed,
	}

	created, err := u.repo.Create(ctx, p)
	if err != nil {
		log.Error("payment repository create failed", zap.String("payment_id", p.ID), zap.Error(err))
		return entities.BillingPayment{}, err
	}
	log.Info("payment created",
		zap.String("payment_id", created.ID),
		zap.String("status", string(created.Status)),
		zap.String("amount", created.Amount.String()),
	)
	return created, nil
}

func (u *BillingPaymentUseCase) GetByID(ctx context.Context, id string) (entities.BillingPayment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.BillingPayment{}, errors.New("invalid payment id")
	}

	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.BillingPayment{}, err
	}
	if p.ID == "" {
		return entities.BillingPayment{}, ErrBillingPaymentNotFound
	}
	return p, nil
}

func (u *BillingPaymentUseCase) ListByBudgetID(ctx context.Context, budgetID string) ([]entities.BillingPayment, error) {
	budgetID = strings.TrimSpace(budgetID)
	if budgetID == "" {
		return nil, ErrInvalidPaymentBudgetID
	}
	return u.repo.ListByBudgetID(ctx, budgetID)
}

func paymentStatusFromProvider(status string) entities.PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved", "authorized":
		return entities.PaymentStatusApproved
	case "rejected", "cancelled", "refunded", "charged_back":
		return entities.PaymentStatusDenied
	default:
		return entities.PaymentStatusPending
	}
}

func hasNonEmptyString(m map[string]any, key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	return strings.TrimSpace(s) != ""
}

func hasPayer(m map[string]any) bool {
	v, ok := m["payer"]
	if !ok {
		return false
	}
	payer, ok := v.(map[string]any)
	if !ok {
		return false
	}
	return hasNonEmptyString(payer, "email") || hasPayerID(payer)
}

func hasPayerID(payer map[string]any) bool {
	v, ok := payer["id"]
	if !ok || v == nil {
		return false
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	return s != "" && s != "<nil>"
}

// classifyGatewayError maps provider error bodies to use case sentinels.
func classifyGatewayError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "customer not found"), strings.Contains(msg, "\"code\":2002"):
		return ErrPaymentGatewayCustomerNotFound
	case strings.Contains(msg, "invalid users involved"), strings.Contains(msg, "\"code\":2034"):
		return ErrPaymentGatewayInvalidUsers
	case strings.Contains(msg, "\"error\":\"unauthorized\""), strings.Contains(msg, "\"status\":401"):
		return ErrPaymentGatewayUnauthorized
	case strings.Contains(msg, "\"error\":\"bad_request\""), strings.Contains(msg, "\"status\":400"):
		return ErrPaymentGatewayBadRequest
	default:
		return err
	}
}
