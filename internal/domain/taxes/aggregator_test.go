package taxes

import (
	"testing"

	"presupuesto_xpto/internal/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ars = entities.Currency{ID: "ARS", Code: "ARS", MinorUnitDigits: 2}

func tax(id, pct string) entities.Tax {
	return entities.Tax{ID: id, Name: "IVA " + pct, Percentage: decimal.RequireFromString(pct), Active: true}
}

func TestAggregate(t *testing.T) {
	res := Aggregate(decimal.RequireFromString("250.00"), []entities.Tax{tax("iva21", "21"), tax("iibb3", "3")}, ars)

	require.Len(t, res.Snapshots, 2)
	assert.Equal(t, "iibb3", res.Snapshots[0].TaxID)
	assert.Equal(t, "7.50", res.Snapshots[0].Amount.StringFixed(2))
	assert.Equal(t, "iva21", res.Snapshots[1].TaxID)
	assert.Equal(t, "52.50", res.Snapshots[1].Amount.StringFixed(2))
	assert.Equal(t, "60.00", res.Total.StringFixed(2))
}

func TestAggregate_OrderIndependent(t *testing.T) {
	subtotal := decimal.RequireFromString("1234.57")
	a := Aggregate(subtotal, []entities.Tax{tax("a", "21"), tax("b", "10.5"), tax("c", "2.5")}, ars)
	b := Aggregate(subtotal, []entities.Tax{tax("c", "2.5"), tax("a", "21"), tax("b", "10.5")}, ars)

	assert.True(t, a.Total.Equal(b.Total))
	require.Len(t, b.Snapshots, len(a.Snapshots))
	for i := range a.Snapshots {
		assert.Equal(t, a.Snapshots[i].TaxID, b.Snapshots[i].TaxID)
		assert.True(t, a.Snapshots[i].Amount.Equal(b.Snapshots[i].Amount))
	}
}

func TestAggregate_DuplicatesCollapse(t *testing.T) {
	subtotal := decimal.RequireFromString("100")
	once := Aggregate(subtotal, []entities.Tax{tax("iva21", "21")}, ars)
	twice := Aggregate(subtotal, []entities.Tax{tax("iva21", "21"), tax("iva21", "21")}, ars)

	assert.Len(t, twice.Snapshots, 1)
	assert.True(t, once.Total.Equal(twice.Total))
}

func TestAggregate_Empty(t *testing.T) {
	res := Aggregate(decimal.RequireFromString("250"), nil, ars)
	assert.Empty(t, res.Snapshots)
	assert.True(t, res.Total.IsZero())
}

func TestAmount_RoundsHalfUp(t *testing.T) {
	// 0.50 * 21% = 0.105 -> 0.11
	got := Amount(decimal.RequireFromString("0.50"), decimal.RequireFromString("21"), ars)
	assert.Equal(t, "0.11", got.StringFixed(2))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(tax("ok", "21")))

	inactive := tax("off", "21")
	inactive.Active = false
	assert.ErrorIs(t, Validate(inactive), entities.ErrInvalidTax)

	assert.ErrorIs(t, Validate(tax("neg", "-1")), entities.ErrInvalidTax)
	assert.ErrorIs(t, Validate(tax("big", "1000.01")), entities.ErrInvalidTax)
	assert.NoError(t, Validate(tax("max", "1000")))
}

func TestReconcile(t *testing.T) {
	subtotals := []string{"250.00", "0.50", "0.05", "1234.57", "99.99", "10.03"}
	selections := [][]entities.Tax{
		{tax("a", "21")},
		{tax("a", "21"), tax("b", "3")},
		{tax("a", "10.5"), tax("b", "2.5"), tax("c", "0.5")},
	}

	for _, s := range subtotals {
		for _, sel := range selections {
			res := Aggregate(decimal.RequireFromString(s), sel, ars)
			assert.NoError(t, Reconcile(decimal.RequireFromString(s), res.Snapshots, ars), "subtotal %s", s)
		}
	}
}

func TestReconcile_DetectsTampering(t *testing.T) {
	subtotal := decimal.RequireFromString("250.00")
	res := Aggregate(subtotal, []entities.Tax{tax("a", "21")}, ars)
	res.Snapshots[0].Amount = res.Snapshots[0].Amount.Add(decimal.RequireFromString("0.05"))

	assert.ErrorIs(t, Reconcile(subtotal, res.Snapshots, ars), entities.ErrRoundingPolicyViolation)
}

func TestReconcile_Tolerance(t *testing.T) {
	twoCents := decimal.RequireFromString("0.02")

	// Three taxes: one minor unit at most.
	three := []entities.Tax{tax("a", "10"), tax("b", "10"), tax("c", "10")}
	res := Aggregate(decimal.RequireFromString("100.00"), three, ars)
	res.Snapshots[0].Amount = res.Snapshots[0].Amount.Add(twoCents)
	assert.ErrorIs(t, Reconcile(decimal.RequireFromString("100.00"), res.Snapshots, ars), entities.ErrRoundingPolicyViolation)

	// Four taxes each rounding 0.005 up to 0.01: 0.04 against 0.02 combined.
	four := []entities.Tax{tax("a", "12.5"), tax("b", "12.5"), tax("c", "12.5"), tax("d", "12.5")}
	subtotal := decimal.RequireFromString("0.04")
	res = Aggregate(subtotal, four, ars)
	require.Len(t, res.Snapshots, 4)
	assert.Equal(t, "0.04", res.Total.StringFixed(2))
	assert.NoError(t, Reconcile(subtotal, res.Snapshots, ars))
}
