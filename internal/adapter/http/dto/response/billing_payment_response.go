package response

import (
	"time"

	"presupuesto_xpto/internal/domain/entities"
)

type BillingPaymentResponse struct {
	PaymentID   string    `json:"payment_id"`
	ID          string    `json:"id"`
	BudgetID    string    `json:"budget_id"`
	Amount      string    `json:"amount" example:"310.00"`
	CurrencyID  string    `json:"currency_id"`
	PaymentDate time.Time `json:"payment_date"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`

	ProviderPayloadRaw string         `json:"provider_payload_raw,omitempty"`
	ProviderPayload    map[string]any `json:"provider_payload,omitempty"`
}

func FromBillingPayment(p entities.BillingPayment) BillingPaymentResponse {
	return BillingPaymentResponse{
		PaymentID:          p.ID,
		ID:                 p.ID,
		BudgetID:           p.BudgetID,
		Amount:             p.Amount.StringFixed(entities.DefaultMinorUnitDigits),
		CurrencyID:         p.CurrencyID,
		PaymentDate:        p.Date,
		Date:               p.Date,
		Status:             string(p.Status),
		ProviderPayloadRaw: string(p.ProviderPayloadRaw),
		ProviderPayload:    p.ProviderPayload,
	}
}
