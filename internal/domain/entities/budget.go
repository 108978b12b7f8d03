package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgencyMargin is the optional budget-level overlay profit. When both
// fields are set Amount is authoritative.
type AgencyMargin struct {
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	Percent *decimal.Decimal `json:"percent,omitempty"`
}

// IsZero reports whether no margin input was given.
func (m AgencyMargin) IsZero() bool { return m.Amount == nil && m.Percent == nil }

// BudgetDraft is the input of a computation. It is a caller-owned snapshot;
// the engine never mutates it.
//
// Version is the stamp of the snapshot the draft was built from. When
// ExpectedVersion is set and differs, the draft is stale.
type BudgetDraft struct {
	ClientID        string       `json:"client_id"`
	CurrencyID      string       `json:"currency_id"`
	Lines           []LineItem   `json:"lines"`
	TaxIDs          []string     `json:"tax_ids"`
	AgencyMargin    AgencyMargin `json:"agency_margin"`
	Period          PeriodInput  `json:"period"`
	State           BudgetState  `json:"state,omitempty"`
	RequestedState  *BudgetState `json:"requested_state,omitempty"`
	Role            Role         `json:"role,omitempty"`
	Version         int64        `json:"version,omitempty"`
	ExpectedVersion *int64       `json:"expected_version,omitempty"`
}

// Totals is the derived cache of a computation. It is never a source of
// truth: it can always be regenerated from the draft.
type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Taxes        []TaxSnapshot   `json:"taxes"`
	TaxTotal     decimal.Decimal `json:"tax_total"`
	AgencyProfit decimal.Decimal `json:"agency_profit"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
}

// Budget is the persisted quote.
//
// Storage model (DynamoDB):
//   - PK: id
//   - version: optimistic concurrency stamp, incremented on every write
type Budget struct {
	ID           string         `json:"id"`
	OwnerID      string         `json:"owner_id"`
	ClientID     string         `json:"client_id"`
	CurrencyID   string         `json:"currency_id"`
	Lines        []LineItem     `json:"lines"`
	TaxIDs       []string       `json:"tax_ids"`
	AgencyMargin AgencyMargin   `json:"agency_margin"`
	Validity     ValidityPeriod `json:"validity"`
	State        BudgetState    `json:"state"`
	Totals       Totals         `json:"totals"`
	Version      int64          `json:"version"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Draft rebuilds the computation input from the stored record.
func (b Budget) Draft() BudgetDraft {
	lines := make([]LineItem, len(b.Lines))
	copy(lines, b.Lines)
	taxIDs := make([]string, len(b.TaxIDs))
	copy(taxIDs, b.TaxIDs)
	return BudgetDraft{
		ClientID:     b.ClientID,
		CurrencyID:   b.CurrencyID,
		Lines:        lines,
		TaxIDs:       taxIDs,
		AgencyMargin: b.AgencyMargin,
		Period:       b.Validity.Input(),
		State:        b.State,
		Version:      b.Version,
	}
}
