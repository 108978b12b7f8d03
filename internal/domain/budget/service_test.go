package budget

import (
	"errors"
	"testing"
	"time"

	"presupuesto_xpto/internal/domain/entities"
	"presupuesto_xpto/internal/domain/margin"
	"presupuesto_xpto/internal/domain/pricing"
	"presupuesto_xpto/internal/domain/validity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.January, 31, 15, 4, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newTestService() *Service {
	return NewService(validity.NewResolver(func() time.Time { return fixedNow }))
}

func testCatalog() *Snapshot {
	return NewSnapshot().
		AddCurrency(entities.Currency{ID: "ARS", Code: "ARS", MinorUnitDigits: 2}).
		AddCurrency(entities.Currency{ID: "USD", Code: "USD", MinorUnitDigits: 2}).
		AddItem(entities.CatalogItem{Ref: entities.ProductRef("p-1"), Name: "Banner", Cost: dec("80"), DefaultMarginPercent: dec("25"), CurrencyID: "ARS"}).
		AddItem(entities.CatalogItem{Ref: entities.ServiceRef("s-1"), Name: "Design", Cost: dec("40"), DefaultMarginPercent: dec("25"), CurrencyID: "ARS"}).
		AddItem(entities.CatalogItem{Ref: entities.ProductRef("p-usd"), Name: "Import", Cost: dec("10"), CurrencyID: "USD"}).
		AddTax(entities.Tax{ID: "iva21", Name: "IVA", Percentage: dec("21"), Active: true}).
		AddTax(entities.Tax{ID: "iibb3", Name: "IIBB", Percentage: dec("3"), Active: true}).
		AddTax(entities.Tax{ID: "old", Name: "Retired", Percentage: dec("5"), Active: false})
}

func scenarioDraft() entities.BudgetDraft {
	return entities.BudgetDraft{
		ClientID:   "c-1",
		CurrencyID: "ARS",
		Lines: []entities.LineItem{
			{Ref: entities.ProductRef("p-1"), Quantity: dec("2"), UnitPrice: ptr("100.00")},
			{Ref: entities.ServiceRef("s-1"), Quantity: dec("1"), UnitPrice: ptr("50.00")},
		},
		TaxIDs: []string{"iva21", "iibb3"},
	}
}

func taxAmount(t *testing.T, c Computed, id string) string {
	t.Helper()
	for _, s := range c.Taxes {
		if s.TaxID == id {
			return s.Amount.StringFixed(2)
		}
	}
	t.Fatalf("tax %s not applied", id)
	return ""
}

func TestCompute_ScenarioA(t *testing.T) {
	got := newTestService().Compute(scenarioDraft(), testCatalog())

	require.True(t, got.Valid(), "unexpected errors: %v", got.Errors)
	assert.Equal(t, "250.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "52.50", taxAmount(t, got, "iva21"))
	assert.Equal(t, "7.50", taxAmount(t, got, "iibb3"))
	assert.Equal(t, "60.00", got.TaxTotal.StringFixed(2))
	assert.True(t, got.AgencyProfit.IsZero())
	assert.Equal(t, margin.SourceNone, got.AgencySource)
	assert.Equal(t, "310.00", got.GrandTotal.StringFixed(2))
	assert.Empty(t, got.Warnings)
	assert.Equal(t, entities.StateDraft, got.State)
}

func TestCompute_ScenarioB_NoTaxes(t *testing.T) {
	draft := scenarioDraft()
	draft.TaxIDs = nil

	got := newTestService().Compute(draft, testCatalog())

	require.True(t, got.Valid())
	assert.Equal(t, "250.00", got.Subtotal.StringFixed(2))
	assert.True(t, got.TaxTotal.IsZero())
	assert.Empty(t, got.Taxes)
	assert.Equal(t, "250.00", got.GrandTotal.StringFixed(2))
	assert.True(t, got.HasWarning(entities.AdvisoryNoTaxes))
}

func TestCompute_ScenarioC_AgencyPercent(t *testing.T) {
	draft := scenarioDraft()
	draft.AgencyMargin = entities.AgencyMargin{Percent: ptr("10")}

	got := newTestService().Compute(draft, testCatalog())

	require.True(t, got.Valid())
	assert.Equal(t, "25.00", got.AgencyProfit.StringFixed(2))
	assert.Equal(t, margin.SourcePercent, got.AgencySource)
	assert.Equal(t, "335.00", got.GrandTotal.StringFixed(2))
}

func TestCompute_AgencyAmountWins(t *testing.T) {
	draft := scenarioDraft()
	draft.AgencyMargin = entities.AgencyMargin{Percent: ptr("10"), Amount: ptr("40")}

	got := newTestService().Compute(draft, testCatalog())

	require.True(t, got.Valid())
	assert.Equal(t, "40.00", got.AgencyProfit.StringFixed(2))
	assert.Equal(t, margin.SourceAmount, got.AgencySource)
	assert.Equal(t, "350.00", got.GrandTotal.StringFixed(2))
}

func TestCompute_Idempotent(t *testing.T) {
	svc := newTestService()
	cat := testCatalog()
	draft := scenarioDraft()
	draft.AgencyMargin = entities.AgencyMargin{Percent: ptr("7.5")}

	first := svc.Compute(draft, cat)
	second := svc.Compute(draft, cat)

	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
	assert.True(t, first.TaxTotal.Equal(second.TaxTotal))
	assert.Equal(t, first.Validity, second.Validity)
	require.Len(t, second.Taxes, len(first.Taxes))
	for i := range first.Taxes {
		assert.Equal(t, first.Taxes[i].TaxID, second.Taxes[i].TaxID)
		assert.True(t, first.Taxes[i].Amount.Equal(second.Taxes[i].Amount))
	}
}

func TestCompute_DoesNotMutateDraft(t *testing.T) {
	draft := scenarioDraft()
	draft.TaxIDs = []string{"iibb3", "iva21", "iva21"}

	newTestService().Compute(draft, testCatalog())

	assert.Equal(t, []string{"iibb3", "iva21", "iva21"}, draft.TaxIDs)
	assert.Nil(t, draft.Lines[0].Cost)
}

func TestCompute_TaxOrderIrrelevant(t *testing.T) {
	svc := newTestService()
	cat := testCatalog()

	a := scenarioDraft()
	a.TaxIDs = []string{"iva21", "iibb3"}
	b := scenarioDraft()
	b.TaxIDs = []string{"iibb3", "iva21", "iibb3"}

	ra := svc.Compute(a, cat)
	rb := svc.Compute(b, cat)

	assert.True(t, ra.TaxTotal.Equal(rb.TaxTotal))
	assert.True(t, ra.GrandTotal.Equal(rb.GrandTotal))
	require.Len(t, rb.Taxes, 2)
	assert.Equal(t, "iibb3", rb.Taxes[0].TaxID)
	assert.Equal(t, "iva21", rb.Taxes[1].TaxID)
}

func TestCompute_GrandTotalIsSumOfParts(t *testing.T) {
	draft := scenarioDraft()
	draft.Lines = append(draft.Lines, entities.LineItem{Ref: entities.ProductRef("p-1"), Quantity: dec("3")})
	draft.AgencyMargin = entities.AgencyMargin{Percent: ptr("12.5")}

	got := newTestService().Compute(draft, testCatalog())

	require.True(t, got.Valid())
	assert.True(t, got.GrandTotal.Equal(got.Subtotal.Add(got.TaxTotal).Add(got.AgencyProfit)))

	sum := decimal.Zero
	for _, s := range got.Taxes {
		sum = sum.Add(s.Amount)
	}
	assert.True(t, got.TaxTotal.Equal(sum))

	lines := decimal.Zero
	for _, l := range got.Lines {
		lines = lines.Add(l.Subtotal)
	}
	assert.True(t, got.Subtotal.Equal(lines))
}

func TestCompute_CatalogPricing(t *testing.T) {
	draft := scenarioDraft()
	draft.Lines = []entities.LineItem{
		{Ref: entities.ProductRef("p-1"), Quantity: dec("2")},
		{Ref: entities.ServiceRef("s-1"), Quantity: dec("1"), Cost: ptr("20"), MarginPercent: ptr("50")},
	}
	draft.TaxIDs = nil

	got := newTestService().Compute(draft, testCatalog())

	require.True(t, got.Valid())
	require.Len(t, got.Lines, 2)
	assert.Equal(t, pricing.SourceCatalog, got.Lines[0].PriceSource)
	assert.Equal(t, "100.00", got.Lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, pricing.SourceLine, got.Lines[1].PriceSource)
	assert.Equal(t, "30.00", got.Lines[1].UnitPrice.StringFixed(2))
	assert.Equal(t, "230.00", got.Subtotal.StringFixed(2))
}

func TestCompute_LineErrorsKeepOtherLines(t *testing.T) {
	draft := scenarioDraft()
	draft.Lines = []entities.LineItem{
		{Ref: entities.ProductRef("p-1"), Quantity: dec("2"), UnitPrice: ptr("100.00")},
		{Ref: entities.ProductRef("missing"), Quantity: dec("1"), UnitPrice: ptr("10")},
		{Ref: entities.ServiceRef("s-1"), Quantity: dec("0"), UnitPrice: ptr("50")},
		{Quantity: dec("1"), UnitPrice: ptr("5")},
		{Ref: entities.ServiceRef("s-1"), Quantity: dec("1"), UnitPrice: ptr("50.00")},
	}
	draft.TaxIDs = nil

	got := newTestService().Compute(draft, testCatalog())

	require.False(t, got.Valid())
	require.Len(t, got.Errors, 3)

	tests := []struct {
		line  int
		kind  error
		field string
	}{
		{line: 1, kind: entities.ErrNotFound, field: "lines[1].ref"},
		{line: 2, kind: entities.ErrInvalidQuantity, field: "lines[2].quantity"},
		{line: 3, kind: entities.ErrInvalidItemRef, field: "lines[3].ref"},
	}
	for i, tt := range tests {
		e := got.Errors[i]
		require.NotNil(t, e.Line)
		assert.Equal(t, tt.line, *e.Line)
		assert.ErrorIs(t, e, tt.kind)
		assert.Equal(t, tt.field, e.Field)
	}

	assert.True(t, got.Lines[0].Valid)
	assert.False(t, got.Lines[1].Valid)
	assert.True(t, got.Lines[4].Valid)
	assert.Equal(t, "250.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "250.00", got.GrandTotal.StringFixed(2))
}

func TestCompute_CurrencyMismatch(t *testing.T) {
	draft := scenarioDraft()
	draft.Lines = append(draft.Lines, entities.LineItem{Ref: entities.ProductRef("p-usd"), Quantity: dec("1")})

	got := newTestService().Compute(draft, testCatalog())

	require.Len(t, got.Errors, 1)
	assert.ErrorIs(t, got.Errors[0], entities.ErrCurrencyMismatch)
	assert.Equal(t, entities.CodeCurrencyMismatch, got.Errors[0].Code)
	assert.Equal(t, "250.00", got.Subtotal.StringFixed(2))
}

func TestCompute_DraftLevelErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entities.BudgetDraft)
		want   error
	}{
		{name: "missing client", mutate: func(d *entities.BudgetDraft) { d.ClientID = " " }, want: entities.ErrMissingClient},
		{name: "missing currency", mutate: func(d *entities.BudgetDraft) { d.CurrencyID = "" }, want: entities.ErrMissingCurrency},
		{name: "unknown currency", mutate: func(d *entities.BudgetDraft) { d.CurrencyID = "EUR" }, want: entities.ErrNotFound},
		{name: "no lines", mutate: func(d *entities.BudgetDraft) { d.Lines = nil }, want: entities.ErrNoLineItems},
		{name: "unknown tax", mutate: func(d *entities.BudgetDraft) { d.TaxIDs = []string{"nope"} }, want: entities.ErrNotFound},
		{name: "inactive tax", mutate: func(d *entities.BudgetDraft) { d.TaxIDs = []string{"old"} }, want: entities.ErrInvalidTax},
		{name: "negative agency percent", mutate: func(d *entities.BudgetDraft) {
			d.AgencyMargin = entities.AgencyMargin{Percent: ptr("-1")}
		}, want: entities.ErrInvalidMargin},
		{name: "manual end before start", mutate: func(d *entities.BudgetDraft) {
			start := fixedNow
			end := fixedNow.AddDate(0, 0, -1)
			d.Period = entities.PeriodInput{Start: &start, End: &end, Preset: entities.PresetManual}
		}, want: entities.ErrInvalidPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := scenarioDraft()
			tt.mutate(&draft)

			got := newTestService().Compute(draft, testCatalog())

			require.False(t, got.Valid())
			assert.ErrorIs(t, got.Err(), tt.want)
		})
	}
}

func TestCompute_StaleSnapshot(t *testing.T) {
	draft := scenarioDraft()
	draft.Version = 3
	current := int64(4)
	draft.ExpectedVersion = &current

	got := newTestService().Compute(draft, testCatalog())

	require.Len(t, got.Errors, 1)
	assert.ErrorIs(t, got.Errors[0], entities.ErrStaleSnapshot)
	assert.True(t, got.GrandTotal.IsZero())
	assert.Empty(t, got.Lines)
}

func TestCompute_MatchingVersionIsNotStale(t *testing.T) {
	draft := scenarioDraft()
	draft.Version = 4
	current := int64(4)
	draft.ExpectedVersion = &current

	got := newTestService().Compute(draft, testCatalog())

	assert.True(t, got.Valid())
}

func TestCompute_Validity(t *testing.T) {
	t.Run("defaults to one month from today", func(t *testing.T) {
		got := newTestService().Compute(scenarioDraft(), testCatalog())

		require.True(t, got.Valid())
		assert.Equal(t, entities.PresetOneMonth, got.Validity.Preset)
		assert.Equal(t, time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC), got.Validity.Start)
		assert.Equal(t, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC), got.Validity.End)
	})

	t.Run("manual period is kept", func(t *testing.T) {
		start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
		draft := scenarioDraft()
		draft.Period = entities.PeriodInput{Start: &start, End: &end}

		got := newTestService().Compute(draft, testCatalog())

		require.True(t, got.Valid())
		assert.Equal(t, entities.PresetManual, got.Validity.Preset)
		assert.Equal(t, end, got.Validity.End)
		assert.Equal(t, validity.UnitWeeks, got.Duration.Unit)
		assert.Equal(t, 2, got.Duration.Count)
	})
}

func TestCompute_RequestedTransition(t *testing.T) {
	sent := entities.StateSent
	approved := entities.StateApproved

	t.Run("allowed", func(t *testing.T) {
		draft := scenarioDraft()
		draft.RequestedState = &sent
		draft.Role = entities.RoleEditor

		got := newTestService().Compute(draft, testCatalog())

		require.True(t, got.Valid())
		assert.Equal(t, entities.StateSent, got.State)
	})

	t.Run("skipping a state", func(t *testing.T) {
		draft := scenarioDraft()
		draft.RequestedState = &approved
		draft.Role = entities.RoleAdmin

		got := newTestService().Compute(draft, testCatalog())

		require.False(t, got.Valid())
		assert.ErrorIs(t, got.Err(), entities.ErrInvalidTransition)
		assert.Equal(t, entities.StateDraft, got.State)
		assert.Equal(t, "310.00", got.GrandTotal.StringFixed(2))
	})

	t.Run("role not allowed", func(t *testing.T) {
		draft := scenarioDraft()
		draft.RequestedState = &sent
		draft.Role = entities.RoleViewer

		got := newTestService().Compute(draft, testCatalog())

		assert.ErrorIs(t, got.Err(), entities.ErrForbidden)
		var te *entities.StateTransitionError
		assert.True(t, errors.As(got.Errors[0].Err, &te))
	})
}

func TestReferences(t *testing.T) {
	draft := scenarioDraft()
	draft.Lines = append(draft.Lines,
		entities.LineItem{Ref: entities.ProductRef("p-1"), Quantity: dec("1")},
		entities.LineItem{Quantity: dec("1")},
	)
	draft.TaxIDs = []string{"iva21", " iibb3 ", "iva21"}

	refs := References(draft)

	assert.Equal(t, []entities.ItemRef{entities.ProductRef("p-1"), entities.ServiceRef("s-1")}, refs.Items)
	assert.Equal(t, []string{"iibb3", "iva21"}, refs.TaxIDs)
	assert.Equal(t, "ARS", refs.CurrencyID)
}
