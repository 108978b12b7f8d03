package response

import (
	"time"

	"presupuesto_xpto/internal/domain/budget"
	"presupuesto_xpto/internal/domain/entities"
	"presupuesto_xpto/internal/domain/validity"
	"presupuesto_xpto/internal/usecase"

	"github.com/shopspring/decimal"
)

// Amounts are rendered as decimal strings. When the currency is known
// they carry exactly its minor unit digits.

type LineResponse struct {
	Index         int     `json:"index"`
	Kind          string  `json:"kind"`
	RefID         string  `json:"ref_id"`
	Quantity      string  `json:"quantity"`
	UnitPrice     *string `json:"unit_price,omitempty"`
	Cost          *string `json:"cost,omitempty"`
	MarginPercent *string `json:"margin_percent,omitempty"`
	Description   string  `json:"description,omitempty"`
}

type TaxResponse struct {
	TaxID      string `json:"tax_id"`
	Name       string `json:"name"`
	Percentage string `json:"percentage"`
	Amount     string `json:"amount"`
}

type TotalsResponse struct {
	Subtotal     string        `json:"subtotal" example:"250.00"`
	Taxes        []TaxResponse `json:"taxes"`
	TaxTotal     string        `json:"tax_total" example:"60.00"`
	AgencyProfit string        `json:"agency_profit" example:"0.00"`
	GrandTotal   string        `json:"grand_total" example:"310.00"`
}

type ValidityResponse struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Preset   string    `json:"preset"`
	Duration string    `json:"duration,omitempty" example:"1 month"`
}

type AgencyMarginResponse struct {
	Amount  *string `json:"amount,omitempty"`
	Percent *string `json:"percent,omitempty"`
}

type AdvisoryResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type BudgetResponse struct {
	ID           string               `json:"id"`
	OwnerID      string               `json:"owner_id"`
	ClientID     string               `json:"client_id"`
	CurrencyID   string               `json:"currency_id"`
	Lines        []LineResponse       `json:"lines"`
	TaxIDs       []string             `json:"tax_ids"`
	AgencyMargin AgencyMarginResponse `json:"agency_margin"`
	Validity     ValidityResponse     `json:"validity"`
	State        string               `json:"state"`
	Totals       TotalsResponse       `json:"totals"`
	Version      int64                `json:"version"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	Warnings     []AdvisoryResponse   `json:"warnings,omitempty"`
}

type ComputedLineResponse struct {
	Index       int    `json:"index"`
	Kind        string `json:"kind,omitempty"`
	RefID       string `json:"ref_id,omitempty"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Subtotal    string `json:"subtotal"`
	PriceSource string `json:"price_source,omitempty"`
	Valid       bool   `json:"valid"`
}

type ValidationErrorResponse struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Line    *int   `json:"line,omitempty"`
	Message string `json:"message"`
}

// ComputedResponse is the result of a computation, valid or not.
type ComputedResponse struct {
	Valid        bool                      `json:"valid"`
	CurrencyID   string                    `json:"currency_id"`
	Lines        []ComputedLineResponse    `json:"lines"`
	Totals       TotalsResponse            `json:"totals"`
	AgencySource string                    `json:"agency_source"`
	Validity     ValidityResponse          `json:"validity"`
	State        string                    `json:"state"`
	Errors       []ValidationErrorResponse `json:"errors,omitempty"`
	Warnings     []AdvisoryResponse        `json:"warnings,omitempty"`
}

// anyDigits renders a decimal without padding.
const anyDigits int32 = -1

func FromBudget(b entities.Budget) BudgetResponse {
	return fromBudget(b, anyDigits)
}

// FromBudgetResult renders a freshly computed budget along with the
// warnings its computation raised.
func FromBudgetResult(r usecase.BudgetResult) BudgetResponse {
	res := fromBudget(r.Budget, r.Computed.Currency.Digits())
	res.Validity.Duration = durationText(r.Computed.Duration)
	res.Warnings = FromAdvisories(r.Computed.Warnings)
	return res
}

func FromBudgets(bs []entities.Budget) []BudgetResponse {
	out := make([]BudgetResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, FromBudget(b))
	}
	return out
}

func fromBudget(b entities.Budget, digits int32) BudgetResponse {
	lines := make([]LineResponse, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = LineResponse{
			Index:         i,
			Kind:          string(l.Ref.Kind()),
			RefID:         l.Ref.ID(),
			Quantity:      l.Quantity.String(),
			UnitPrice:     optDecimal(l.UnitPrice),
			Cost:          optDecimal(l.Cost),
			MarginPercent: optDecimal(l.MarginPercent),
			Description:   l.Description,
		}
	}
	taxIDs := b.TaxIDs
	if taxIDs == nil {
		taxIDs = []string{}
	}

	return BudgetResponse{
		ID:         b.ID,
		OwnerID:    b.OwnerID,
		ClientID:   b.ClientID,
		CurrencyID: b.CurrencyID,
		Lines:      lines,
		TaxIDs:     taxIDs,
		AgencyMargin: AgencyMarginResponse{
			Amount:  optDecimal(b.AgencyMargin.Amount),
			Percent: optDecimal(b.AgencyMargin.Percent),
		},
		Validity:  fromValidity(b.Validity),
		State:     string(b.State),
		Totals:    fromTotals(b.Totals, digits),
		Version:   b.Version,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func FromComputed(c budget.Computed) ComputedResponse {
	digits := c.Currency.Digits()
	lines := make([]ComputedLineResponse, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = ComputedLineResponse{
			Index:       l.Index,
			Kind:        string(l.Ref.Kind()),
			RefID:       l.Ref.ID(),
			Quantity:    l.Quantity.String(),
			UnitPrice:   money(l.UnitPrice, digits),
			Subtotal:    money(l.Subtotal, digits),
			PriceSource: string(l.PriceSource),
			Valid:       l.Valid,
		}
	}

	res := ComputedResponse{
		Valid:        c.Valid(),
		CurrencyID:   c.Currency.ID,
		Lines:        lines,
		Totals:       fromTotals(c.Totals(), digits),
		AgencySource: string(c.AgencySource),
		Validity:     fromValidity(c.Validity),
		State:        string(c.State),
		Warnings:     FromAdvisories(c.Warnings),
	}
	res.Validity.Duration = durationText(c.Duration)
	res.Errors = FromValidationErrors(c.Errors)
	return res
}

func FromValidationErrors(es entities.ValidationErrors) []ValidationErrorResponse {
	if len(es) == 0 {
		return nil
	}
	out := make([]ValidationErrorResponse, len(es))
	for i, e := range es {
		out[i] = ValidationErrorResponse{Code: string(e.Code), Field: e.Field, Line: e.Line, Message: e.Message}
	}
	return out
}

func FromAdvisories(ws []entities.Advisory) []AdvisoryResponse {
	if len(ws) == 0 {
		return nil
	}
	out := make([]AdvisoryResponse, len(ws))
	for i, w := range ws {
		out[i] = AdvisoryResponse{Code: string(w.Code), Message: w.Message}
	}
	return out
}

func fromTotals(t entities.Totals, digits int32) TotalsResponse {
	taxes := make([]TaxResponse, len(t.Taxes))
	for i, s := range t.Taxes {
		taxes[i] = TaxResponse{
			TaxID:      s.TaxID,
			Name:       s.Name,
			Percentage: s.Percentage.String(),
			Amount:     money(s.Amount, digits),
		}
	}
	return TotalsResponse{
		Subtotal:     money(t.Subtotal, digits),
		Taxes:        taxes,
		TaxTotal:     money(t.TaxTotal, digits),
		AgencyProfit: money(t.AgencyProfit, digits),
		GrandTotal:   money(t.GrandTotal, digits),
	}
}

func fromValidity(v entities.ValidityPeriod) ValidityResponse {
	return ValidityResponse{Start: v.Start, End: v.End, Preset: string(v.Preset)}
}

func durationText(d validity.Duration) string {
	if d.Unit == "" {
		return ""
	}
	return d.String()
}

func money(d decimal.Decimal, digits int32) string {
	if digits < 0 {
		return d.String()
	}
	return d.StringFixed(digits)
}

func optDecimal(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
