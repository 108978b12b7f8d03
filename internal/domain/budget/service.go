// Package budget assembles a budget's totals out of its line items, tax
// selection, agency margin and validity window.
//
// Compute is a pure function of its input: it performs no I/O, keeps no
// state between calls and never mutates the draft. Invalid lines are
// reported with their index and left out of the totals while every other
// line is still computed.
package budget

import (
	"errors"
	"fmt"
	"strings"

	"presupuesto_xpto/internal/domain/entities"
	"presupuesto_xpto/internal/domain/lifecycle"
	"presupuesto_xpto/internal/domain/margin"
	"presupuesto_xpto/internal/domain/pricing"
	"presupuesto_xpto/internal/domain/taxes"
	"presupuesto_xpto/internal/domain/validity"

	"github.com/shopspring/decimal"
)

// ComputedLine is the priced form of one draft line.
type ComputedLine struct {
	Index       int                 `json:"index"`
	Ref         entities.ItemRef    `json:"ref"`
	Quantity    decimal.Decimal     `json:"quantity"`
	UnitPrice   decimal.Decimal     `json:"unit_price"`
	Subtotal    decimal.Decimal     `json:"subtotal"`
	PriceSource pricing.PriceSource `json:"price_source"`
	Valid       bool                `json:"valid"`
}

// Computed is the result of Compute.
type Computed struct {
	Currency     entities.Currency         `json:"currency"`
	Lines        []ComputedLine            `json:"lines"`
	Subtotal     decimal.Decimal           `json:"subtotal"`
	Taxes        []entities.TaxSnapshot    `json:"taxes"`
	TaxTotal     decimal.Decimal           `json:"tax_total"`
	AgencyProfit decimal.Decimal           `json:"agency_profit"`
	AgencySource margin.Source             `json:"agency_source"`
	GrandTotal   decimal.Decimal           `json:"grand_total"`
	Validity     entities.ValidityPeriod   `json:"validity"`
	Duration     validity.Duration         `json:"duration"`
	State        entities.BudgetState      `json:"state"`
	Errors       entities.ValidationErrors `json:"errors,omitempty"`
	Warnings     []entities.Advisory       `json:"warnings,omitempty"`
}

// Valid reports whether the computation produced no validation errors.
func (c Computed) Valid() bool { return len(c.Errors) == 0 }

// Err returns the validation errors as a single error, or nil.
func (c Computed) Err() error {
	if c.Valid() {
		return nil
	}
	return c.Errors
}

// Totals returns the cacheable totals of the computation.
func (c Computed) Totals() entities.Totals {
	snaps := make([]entities.TaxSnapshot, len(c.Taxes))
	copy(snaps, c.Taxes)
	return entities.Totals{
		Subtotal:     c.Subtotal,
		Taxes:        snaps,
		TaxTotal:     c.TaxTotal,
		AgencyProfit: c.AgencyProfit,
		GrandTotal:   c.GrandTotal,
	}
}

// HasWarning reports whether an advisory with code was raised.
func (c Computed) HasWarning(code entities.AdvisoryCode) bool {
	for _, w := range c.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// Service computes budgets.
type Service struct {
	resolver validity.Resolver
}

func NewService(resolver validity.Resolver) *Service {
	return &Service{resolver: resolver}
}

// Compute derives every total of draft using catalog for lookups.
func (s *Service) Compute(draft entities.BudgetDraft, catalog Catalog) Computed {
	out := Computed{
		Subtotal:     decimal.Zero,
		TaxTotal:     decimal.Zero,
		AgencyProfit: decimal.Zero,
		GrandTotal:   decimal.Zero,
		Taxes:        []entities.TaxSnapshot{},
		State:        draft.State,
	}
	if out.State == "" {
		out.State = entities.StateDraft
	}

	if draft.ExpectedVersion != nil && *draft.ExpectedVersion != draft.Version {
		out.Errors = append(out.Errors, entities.NewValidationError(entities.ErrStaleSnapshot, "version",
			fmt.Sprintf("draft built from version %d, current version is %d", draft.Version, *draft.ExpectedVersion)))
		return out
	}

	if strings.TrimSpace(draft.ClientID) == "" {
		out.Errors = append(out.Errors, entities.NewValidationError(entities.ErrMissingClient, "client_id", "client is required"))
	}

	out.Currency = s.currency(draft, catalog, &out)

	if len(draft.Lines) == 0 {
		out.Errors = append(out.Errors, entities.NewValidationError(entities.ErrNoLineItems, "lines", "at least one line item is required"))
	}
	out.Lines = make([]ComputedLine, 0, len(draft.Lines))
	for i, line := range draft.Lines {
		cl, lineErr := s.priceLine(i, line, out.Currency, catalog)
		if lineErr != nil {
			out.Errors = append(out.Errors, *lineErr)
		} else {
			out.Subtotal = out.Subtotal.Add(cl.Subtotal)
		}
		out.Lines = append(out.Lines, cl)
	}

	s.applyTaxes(draft, catalog, &out)

	profit, src, err := margin.Profit(out.Subtotal, draft.AgencyMargin, out.Currency)
	if err != nil {
		out.Errors = append(out.Errors, entities.NewValidationError(entities.ErrInvalidMargin, "agency_margin", err.Error()))
	} else {
		out.AgencyProfit, out.AgencySource = profit, src
	}

	period, err := s.resolver.Resolve(draft.Period)
	if err != nil {
		out.Errors = append(out.Errors, entities.NewValidationError(entities.ErrInvalidPeriod, "period", err.Error()))
	} else {
		out.Validity = period
		out.Duration = validity.Classify(period.Start, period.End)
	}

	out.GrandTotal = out.Subtotal.Add(out.TaxTotal).Add(out.AgencyProfit)

	s.applyTransition(draft, &out)

	return out
}

func (s *Service) currency(draft entities.BudgetDraft, catalog Catalog, out *Computed) entities.Currency {
	id := strings.TrimSpace(draft.CurrencyID)
	fallback := entities.Currency{ID: id, Code: id, MinorUnitDigits: entities.DefaultMinorUnitDigits}
	if id == "" {
		out.Errors = append(out.Errors, entities.NewValidationError(entities.ErrMissingCurrency, "currency_id", "currency is required"))
		return fallback
	}
	c, ok := catalog.Currency(id)
	if !ok {
		out.Errors = append(out.Errors, entities.NewValidationError(entities.ErrNotFound, "currency_id",
			fmt.Sprintf("currency %s not found", id)))
		return fallback
	}
	return c
}

func (s *Service) priceLine(i int, line entities.LineItem, currency entities.Currency, catalog Catalog) (ComputedLine, *entities.ValidationError) {
	cl := ComputedLine{
		Index:     i,
		Ref:       line.Ref,
		Quantity:  line.Quantity,
		UnitPrice: decimal.Zero,
		Subtotal:  decimal.Zero,
	}
	fail := func(kind error, field, msg string) (ComputedLine, *entities.ValidationError) {
		ve := entities.NewLineError(i, kind, field, msg)
		return cl, &ve
	}

	if !line.Ref.Valid() {
		return fail(entities.ErrInvalidItemRef, "ref", "line must reference exactly one product or service")
	}

	item, ok := catalog.Item(line.Ref)
	if !ok {
		return fail(entities.ErrNotFound, "ref", fmt.Sprintf("%s %s not found", line.Ref.Kind(), line.Ref.ID()))
	}
	if item.CurrencyID != "" && currency.ID != "" && item.CurrencyID != currency.ID {
		return fail(entities.ErrCurrencyMismatch, "ref",
			fmt.Sprintf("%s is priced in %s, budget uses %s", line.Ref, item.CurrencyID, currency.ID))
	}

	price, src, err := pricing.ResolveUnitPrice(line, &item, currency.Digits())
	cl.PriceSource = src
	if err != nil {
		field, kind := classify(err)
		return fail(kind, field, err.Error())
	}
	cl.UnitPrice = price

	sub, err := pricing.LineSubtotal(line.Quantity, price)
	if err != nil {
		field, kind := classify(err)
		return fail(kind, field, err.Error())
	}
	cl.Subtotal = sub
	cl.Valid = true
	return cl, nil
}

// classify maps a pricing error to its kind and the line field at fault.
func classify(err error) (field string, kind error) {
	switch {
	case errors.Is(err, entities.ErrInvalidQuantity):
		return "quantity", entities.ErrInvalidQuantity
	case errors.Is(err, entities.ErrInvalidMargin):
		return "margin_percent", entities.ErrInvalidMargin
	case errors.Is(err, entities.ErrInvalidCost):
		return "cost", entities.ErrInvalidCost
	default:
		return "unit_price", entities.ErrInvalidPrice
	}
}

func (s *Service) applyTaxes(draft entities.BudgetDraft, catalog Catalog, out *Computed) {
	selected := make([]entities.Tax, 0, len(draft.TaxIDs))
	for _, id := range entities.NormalizeTaxIDs(draft.TaxIDs) {
		t, ok := catalog.Tax(id)
		if !ok {
			out.Errors = append(out.Errors, entities.NewValidationError(entities.ErrNotFound, "tax_ids",
				fmt.Sprintf("tax %s not found", id)))
			continue
		}
		if err := taxes.Validate(t); err != nil {
			out.Errors = append(out.Errors, entities.NewValidationError(entities.ErrInvalidTax, "tax_ids", err.Error()))
			continue
		}
		selected = append(selected, t)
	}

	if len(selected) == 0 {
		out.Warnings = append(out.Warnings, entities.Advisory{Code: entities.AdvisoryNoTaxes, Message: "no taxes applied"})
		return
	}

	res := taxes.Aggregate(out.Subtotal, selected, out.Currency)
	out.Taxes = res.Snapshots
	out.TaxTotal = res.Total

	if err := taxes.Reconcile(out.Subtotal, res.Snapshots, out.Currency); err != nil {
		out.Warnings = append(out.Warnings, entities.Advisory{Code: entities.AdvisoryRoundingMismatch, Message: err.Error()})
	}
}

func (s *Service) applyTransition(draft entities.BudgetDraft, out *Computed) {
	if draft.RequestedState == nil {
		return
	}
	next, err := lifecycle.Transition(out.State, *draft.RequestedState, draft.Role)
	if err != nil {
		kind := entities.ErrInvalidTransition
		if errors.Is(err, entities.ErrForbidden) {
			kind = entities.ErrForbidden
		}
		ve := entities.NewValidationError(kind, "requested_state", err.Error())
		ve.Err = err
		out.Errors = append(out.Errors, ve)
		return
	}
	out.State = next
}
