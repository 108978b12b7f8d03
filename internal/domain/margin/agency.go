// Package margin computes the budget-level agency profit.
//
// The agency profit is an overlay tracked as its own grand-total component;
// it is never folded into the subtotal. Per-line margins already live in
// each line's unit price.
package margin

import (
	"fmt"

	"presupuesto_xpto/internal/domain/entities"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Source tells which input produced the agency profit.
type Source string

const (
	SourceNone    Source = "none"
	SourceAmount  Source = "amount"
	SourcePercent Source = "percent"
)

// Profit returns the agency profit for subtotal. An explicit amount wins
// over a percentage; with neither the profit is zero.
func Profit(subtotal decimal.Decimal, m entities.AgencyMargin, currency entities.Currency) (decimal.Decimal, Source, error) {
	switch {
	case m.Amount != nil:
		if m.Amount.IsNegative() {
			return decimal.Zero, SourceAmount, fmt.Errorf("%w: agency amount %s", entities.ErrInvalidMargin, *m.Amount)
		}
		return currency.Round(*m.Amount), SourceAmount, nil
	case m.Percent != nil:
		if m.Percent.IsNegative() {
			return decimal.Zero, SourcePercent, fmt.Errorf("%w: agency percent %s", entities.ErrInvalidMargin, *m.Percent)
		}
		return currency.Round(subtotal.Mul(*m.Percent).Div(oneHundred)), SourcePercent, nil
	default:
		return decimal.Zero, SourceNone, nil
	}
}

// ImpliedPercent returns the percentage of subtotal an amount represents,
// rounded to two places. A zero subtotal yields zero.
func ImpliedPercent(subtotal, amount decimal.Decimal) decimal.Decimal {
	if subtotal.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(oneHundred).Div(subtotal).Round(2)
}
