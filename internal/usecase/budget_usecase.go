package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"presupuesto_xpto/internal/domain/budget"
	"presupuesto_xpto/internal/domain/entities"
	"presupuesto_xpto/internal/domain/lifecycle"
	"presupuesto_xpto/internal/infrastructure/logger"
	"presupuesto_xpto/internal/usecase/interfaces"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrBudgetNotFound  = errors.New("budget not found")
	ErrInvalidBudgetID = errors.New("invalid budget id")
	ErrInvalidBudget   = errors.New("invalid budget")
	ErrMissingActor    = errors.New("missing actor")
)

// BudgetResult pairs a stored budget with the computation that produced
// its totals, so callers can surface warnings.
type BudgetResult struct {
	Budget   entities.Budget
	Computed budget.Computed
}

// IBudgetUseCase exposes budget operations.
//
// Every write is conditional on the version the caller last read; a
// mismatch fails with entities.ErrStaleSnapshot and nothing is written.
type IBudgetUseCase interface {
	Preview(ctx context.Context, actor entities.Actor, draft entities.BudgetDraft) (budget.Computed, error)
	Create(ctx context.Context, actor entities.Actor, draft entities.BudgetDraft) (BudgetResult, error)
	GetByID(ctx context.Context, id string) (entities.Budget, error)
	ListByOwner(ctx context.Context, ownerID string) ([]entities.Budget, error)
	Recalculate(ctx context.Context, id string) (budget.Computed, error)
	Update(ctx context.Context, actor entities.Actor, id string, draft entities.BudgetDraft, expectedVersion int64) (BudgetResult, error)
	Transition(ctx context.Context, actor entities.Actor, id string, to entities.BudgetState, expectedVersion int64) (entities.Budget, error)
	Delete(ctx context.Context, actor entities.Actor, id string, expectedVersion int64) error
}

type BudgetUseCase struct {
	repo    interfaces.IBudgetRepository
	catalog interfaces.ICatalogRepository
	service *budget.Service
	log     *zap.Logger
	now     func() time.Time
	newID   func() string
}

var _ IBudgetUseCase = (*BudgetUseCase)(nil)

func NewBudgetUseCase(repo interfaces.IBudgetRepository, catalog interfaces.ICatalogRepository, service *budget.Service, l *zap.Logger) *BudgetUseCase {
	return &BudgetUseCase{
		repo:    repo,
		catalog: catalog,
		service: service,
		log:     logger.OrNop(l).Named("budget.usecase"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Preview computes a draft without persisting anything. Validation
// problems are reported inside the result; the error is only set when the
// catalog cannot be read.
//
// A requested state is checked with the role the actor would hold on the
// budget once created: identified callers own it, admins stay admins.
func (u *BudgetUseCase) Preview(ctx context.Context, actor entities.Actor, draft entities.BudgetDraft) (budget.Computed, error) {
	actor.ID = strings.TrimSpace(actor.ID)
	draft.Role = actor.RoleFor(actor.ID)
	return u.compute(ctx, draft)
}

func (u *BudgetUseCase) Create(ctx context.Context, actor entities.Actor, draft entities.BudgetDraft) (BudgetResult, error) {
	actor.ID = strings.TrimSpace(actor.ID)
	if actor.ID == "" {
		return BudgetResult{}, ErrMissingActor
	}

	draft.State = entities.StateDraft
	draft.RequestedState = nil
	draft.ExpectedVersion = nil
	draft.Version = 0

	computed, err := u.compute(ctx, draft)
	if err != nil {
		return BudgetResult{}, err
	}
	if !computed.Valid() {
		u.log.Info("create rejected", zap.String("owner_id", actor.ID), zap.Int("errors", len(computed.Errors)))
		return BudgetResult{Computed: computed}, fmt.Errorf("%w: %w", ErrInvalidBudget, computed.Err())
	}

	now := u.now().UTC()
	b := entities.Budget{
		ID:           u.newID(),
		OwnerID:      actor.ID,
		ClientID:     strings.TrimSpace(draft.ClientID),
		CurrencyID:   computed.Currency.ID,
		Lines:        draft.Lines,
		TaxIDs:       entities.NormalizeTaxIDs(draft.TaxIDs),
		AgencyMargin: draft.AgencyMargin,
		Validity:     computed.Validity,
		State:        entities.StateDraft,
		Totals:       computed.Totals(),
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := u.repo.Create(ctx, b)
	if err != nil {
		u.log.Error("create failed", zap.String("budget_id", b.ID), zap.Error(err))
		return BudgetResult{}, err
	}
	u.log.Info("budget created",
		zap.String("budget_id", created.ID),
		zap.String("owner_id", created.OwnerID),
		zap.String("grand_total", created.Totals.GrandTotal.String()),
	)
	return BudgetResult{Budget: created, Computed: computed}, nil
}

func (u *BudgetUseCase) GetByID(ctx context.Context, id string) (entities.Budget, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Budget{}, ErrInvalidBudgetID
	}
	b, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Budget{}, err
	}
	if b.ID == "" {
		return entities.Budget{}, ErrBudgetNotFound
	}
	return b, nil
}

func (u *BudgetUseCase) ListByOwner(ctx context.Context, ownerID string) ([]entities.Budget, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrMissingActor
	}
	return u.repo.ListByOwner(ctx, ownerID)
}

// Recalculate regenerates a stored budget's totals from its draft fields
// against the current catalog. Nothing is written.
func (u *BudgetUseCase) Recalculate(ctx context.Context, id string) (budget.Computed, error) {
	b, err := u.GetByID(ctx, id)
	if err != nil {
		return budget.Computed{}, err
	}
	return u.compute(ctx, b.Draft())
}

func (u *BudgetUseCase) Update(ctx context.Context, actor entities.Actor, id string, draft entities.BudgetDraft, expectedVersion int64) (BudgetResult, error) {
	current, err := u.GetByID(ctx, id)
	if err != nil {
		return BudgetResult{}, err
	}

	role := actor.RoleFor(current.OwnerID)
	if !lifecycle.CanEdit(current.State, role) {
		u.log.Info("update forbidden", zap.String("budget_id", current.ID), zap.String("state", string(current.State)), zap.String("role", string(role)))
		return BudgetResult{}, fmt.Errorf("%w: role %s cannot edit a %s budget", entities.ErrForbidden, role, current.State)
	}

	draft.State = current.State
	draft.RequestedState = nil
	draft.Version = expectedVersion
	draft.ExpectedVersion = &current.Version

	computed, err := u.compute(ctx, draft)
	if err != nil {
		return BudgetResult{}, err
	}
	if !computed.Valid() {
		return BudgetResult{Computed: computed}, fmt.Errorf("%w: %w", ErrInvalidBudget, computed.Err())
	}

	next := current
	next.ClientID = strings.TrimSpace(draft.ClientID)
	next.CurrencyID = computed.Currency.ID
	next.Lines = draft.Lines
	next.TaxIDs = entities.NormalizeTaxIDs(draft.TaxIDs)
	next.AgencyMargin = draft.AgencyMargin
	next.Validity = computed.Validity
	next.Totals = computed.Totals()
	next.Version = current.Version + 1
	next.UpdatedAt = u.now().UTC()

	saved, err := u.repo.Update(ctx, next, expectedVersion)
	if err != nil {
		u.log.Warn("update failed", zap.String("budget_id", current.ID), zap.Int64("expected_version", expectedVersion), zap.Error(err))
		return BudgetResult{}, err
	}
	u.log.Info("budget updated", zap.String("budget_id", saved.ID), zap.Int64("version", saved.Version))
	return BudgetResult{Budget: saved, Computed: computed}, nil
}

// Transition moves a budget along the lifecycle. Totals are kept as they
// were computed; only the state and version change.
func (u *BudgetUseCase) Transition(ctx context.Context, actor entities.Actor, id string, to entities.BudgetState, expectedVersion int64) (entities.Budget, error) {
	current, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Budget{}, err
	}
	if current.Version != expectedVersion {
		return entities.Budget{}, staleError(current.Version, expectedVersion)
	}

	role := actor.RoleFor(current.OwnerID)
	state, err := lifecycle.Transition(current.State, to, role)
	if err != nil {
		u.log.Info("transition rejected", zap.String("budget_id", current.ID), zap.Error(err))
		return entities.Budget{}, err
	}

	next := current
	next.State = state
	next.Version = current.Version + 1
	next.UpdatedAt = u.now().UTC()

	saved, err := u.repo.Update(ctx, next, expectedVersion)
	if err != nil {
		return entities.Budget{}, err
	}
	u.log.Info("budget transitioned",
		zap.String("budget_id", saved.ID),
		zap.String("from", string(current.State)),
		zap.String("to", string(saved.State)),
		zap.String("role", string(role)),
	)
	return saved, nil
}

func (u *BudgetUseCase) Delete(ctx context.Context, actor entities.Actor, id string, expectedVersion int64) error {
	current, err := u.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Version != expectedVersion {
		return staleError(current.Version, expectedVersion)
	}

	role := actor.RoleFor(current.OwnerID)
	if !lifecycle.CanDelete(current.State, role) {
		return fmt.Errorf("%w: role %s cannot delete a %s budget", entities.ErrForbidden, role, current.State)
	}

	if err := u.repo.Delete(ctx, current.ID, expectedVersion); err != nil {
		return err
	}
	u.log.Info("budget deleted", zap.String("budget_id", current.ID))
	return nil
}

func (u *BudgetUseCase) compute(ctx context.Context, draft entities.BudgetDraft) (budget.Computed, error) {
	snap, err := u.loadCatalog(ctx, budget.References(draft))
	if err != nil {
		u.log.Error("catalog load failed", zap.Error(err))
		return budget.Computed{}, err
	}
	return u.service.Compute(draft, snap), nil
}

// loadCatalog reads every entry refs names. Missing entries are left out
// of the snapshot so Compute can report them against the right line.
func (u *BudgetUseCase) loadCatalog(ctx context.Context, refs budget.Refs) (*budget.Snapshot, error) {
	snap := budget.NewSnapshot()

	if refs.CurrencyID != "" {
		c, ok, err := u.catalog.GetCurrency(ctx, refs.CurrencyID)
		if err != nil {
			return nil, fmt.Errorf("load currency %s: %w", refs.CurrencyID, err)
		}
		if ok {
			snap.AddCurrency(c)
		}
	}
	for _, ref := range refs.Items {
		item, ok, err := u.catalog.GetItem(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", ref, err)
		}
		if ok {
			snap.AddItem(item)
		}
	}
	for _, id := range refs.TaxIDs {
		t, ok, err := u.catalog.GetTax(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load tax %s: %w", id, err)
		}
		if ok {
			snap.AddTax(t)
		}
	}
	return snap, nil
}

func staleError(current, expected int64) error {
	return fmt.Errorf("%w: expected version %d, current version is %d", entities.ErrStaleSnapshot, expected, current)
}
