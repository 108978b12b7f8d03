// Package taxes computes per-tax amounts for a budget subtotal.
//
// Every tax is applied to the same base subtotal; taxes never compound, so
// the result does not depend on selection order.
package taxes

import (
	"fmt"
	"sort"

	"presupuesto_xpto/internal/domain/entities"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Result is the outcome of Aggregate. Snapshots are sorted by tax ID.
type Result struct {
	Snapshots []entities.TaxSnapshot
	Total     decimal.Decimal
}

// Amount returns round(subtotal x percentage / 100) in the currency minor unit.
func Amount(subtotal, percentage decimal.Decimal, currency entities.Currency) decimal.Decimal {
	return currency.Round(subtotal.Mul(percentage).Div(oneHundred))
}

// Aggregate computes one snapshot per distinct tax and their sum. Taxes
// sharing an ID are counted once.
func Aggregate(subtotal decimal.Decimal, selected []entities.Tax, currency entities.Currency) Result {
	unique := make(map[string]entities.Tax, len(selected))
	for _, t := range selected {
		if _, ok := unique[t.ID]; !ok {
			unique[t.ID] = t
		}
	}

	ids := make([]string, 0, len(unique))
	for id := range unique {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	res := Result{Snapshots: make([]entities.TaxSnapshot, 0, len(ids)), Total: decimal.Zero}
	for _, id := range ids {
		t := unique[id]
		amount := Amount(subtotal, t.Percentage, currency)
		res.Snapshots = append(res.Snapshots, entities.TaxSnapshot{
			TaxID:      t.ID,
			Name:       t.Name,
			Percentage: t.Percentage,
			Amount:     amount,
		})
		res.Total = res.Total.Add(amount)
	}
	return res
}

// Validate checks a catalog tax can be applied.
func Validate(t entities.Tax) error {
	if !t.Active {
		return fmt.Errorf("%w: tax %s is inactive", entities.ErrInvalidTax, t.ID)
	}
	if t.Percentage.IsNegative() || t.Percentage.GreaterThan(entities.MaxTaxPercentage) {
		return fmt.Errorf("%w: tax %s percentage %s out of range", entities.ErrInvalidTax, t.ID, t.Percentage)
	}
	return nil
}

// Reconcile checks that the sum of rounded per-tax amounts stays close to
// the combined rate applied once. The tolerance is one minor unit for up to
// three taxes. From four taxes on, n half-unit roundings can legitimately
// drift by n/2 units, and the tolerance follows that bound.
func Reconcile(subtotal decimal.Decimal, snapshots []entities.TaxSnapshot, currency entities.Currency) error {
	totalPct := decimal.Zero
	sum := decimal.Zero
	for _, s := range snapshots {
		totalPct = totalPct.Add(s.Percentage)
		sum = sum.Add(s.Amount)
	}
	expected := Amount(subtotal, totalPct, currency)

	units := int64(len(snapshots) / 2)
	if units < 1 {
		units = 1
	}
	tolerance := currency.MinorUnit().Mul(decimal.NewFromInt(units))

	if diff := sum.Sub(expected).Abs(); diff.GreaterThan(tolerance) {
		return fmt.Errorf("%w: taxes sum %s, combined rate gives %s", entities.ErrRoundingPolicyViolation, sum, expected)
	}
	return nil
}
