package request

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"presupuesto_xpto/internal/domain/entities"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDate           = errors.New("invalid date")
	ErrInvalidRequestedState = errors.New("invalid requested_state")
	ErrMissingVersion        = errors.New("expected_version is required")
)

// BudgetLineRequest references a catalog entry through the product_id /
// service_id pair. Exactly one must be set; a line that breaks the rule is
// still forwarded so the error is reported against its index.
type BudgetLineRequest struct {
	ProductID     string           `json:"product_id,omitempty"`
	ServiceID     string           `json:"service_id,omitempty"`
	Quantity      decimal.Decimal  `json:"quantity" swaggertype:"string" example:"2"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty" swaggertype:"string" example:"100.00"`
	Cost          *decimal.Decimal `json:"cost,omitempty" swaggertype:"string"`
	MarginPercent *decimal.Decimal `json:"margin_percent,omitempty" swaggertype:"string"`
	Description   string           `json:"description,omitempty"`
}

type AgencyMarginRequest struct {
	Amount  *decimal.Decimal `json:"amount,omitempty" swaggertype:"string"`
	Percent *decimal.Decimal `json:"percent,omitempty" swaggertype:"string" example:"10"`
}

// ValidityRequest accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
type ValidityRequest struct {
	Start  string `json:"start,omitempty" example:"2026-01-31"`
	End    string `json:"end,omitempty"`
	Preset string `json:"preset,omitempty" example:"1M"`
}

// BudgetRequest is the body of the compute, create and update routes.
type BudgetRequest struct {
	ClientID       string               `json:"client_id"`
	CurrencyID     string               `json:"currency_id"`
	Lines          []BudgetLineRequest  `json:"lines"`
	TaxIDs         []string             `json:"tax_ids"`
	AgencyMargin   *AgencyMarginRequest `json:"agency_margin,omitempty"`
	Validity       *ValidityRequest     `json:"validity,omitempty"`
	RequestedState string               `json:"requested_state,omitempty"`

	// Version is the stamp the draft was built from. Only the compute route
	// reads it, together with ExpectedVersion, to preview staleness.
	Version         int64  `json:"version,omitempty"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

// TransitionRequest is the body of the transitions route.
type TransitionRequest struct {
	To              string `json:"to" binding:"required" example:"SENT"`
	ExpectedVersion *int64 `json:"expected_version" binding:"required"`
}

// ToDraft translates the payload into a domain draft. Only malformed dates
// and unknown states fail here; every other problem is left to the domain
// so it can be reported with its field and line.
func (r BudgetRequest) ToDraft() (entities.BudgetDraft, error) {
	d := entities.BudgetDraft{
		ClientID:        strings.TrimSpace(r.ClientID),
		CurrencyID:      strings.TrimSpace(r.CurrencyID),
		Lines:           make([]entities.LineItem, len(r.Lines)),
		TaxIDs:          r.TaxIDs,
		Version:         r.Version,
		ExpectedVersion: r.ExpectedVersion,
	}

	for i, l := range r.Lines {
		ref, _ := entities.RefFromPair(l.ProductID, l.ServiceID)
		d.Lines[i] = entities.LineItem{
			Ref:           ref,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			Cost:          l.Cost,
			MarginPercent: l.MarginPercent,
			Description:   strings.TrimSpace(l.Description),
		}
	}

	if r.AgencyMargin != nil {
		d.AgencyMargin = entities.AgencyMargin{Amount: r.AgencyMargin.Amount, Percent: r.AgencyMargin.Percent}
	}

	if r.Validity != nil {
		start, err := parseDate("validity.start", r.Validity.Start)
		if err != nil {
			return entities.BudgetDraft{}, err
		}
		end, err := parseDate("validity.end", r.Validity.End)
		if err != nil {
			return entities.BudgetDraft{}, err
		}
		d.Period = entities.PeriodInput{Start: start, End: end, Preset: entities.ParsePreset(r.Validity.Preset)}
	}

	if s := strings.TrimSpace(r.RequestedState); s != "" {
		st, ok := entities.ParseState(s)
		if !ok {
			return entities.BudgetDraft{}, fmt.Errorf("%w: %q", ErrInvalidRequestedState, s)
		}
		d.RequestedState = &st
	}
	return d, nil
}

// ResolveVersion returns the version an update is conditioned on.
func (r BudgetRequest) ResolveVersion() (int64, error) {
	if r.ExpectedVersion == nil {
		return 0, ErrMissingVersion
	}
	return *r.ExpectedVersion, nil
}

func (r TransitionRequest) ResolveState() (entities.BudgetState, error) {
	st, ok := entities.ParseState(r.To)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRequestedState, r.To)
	}
	return st, nil
}

func parseDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %q", ErrInvalidDate, field, s)
}
