package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"presupuesto_xpto/internal/domain/budget"
	"presupuesto_xpto/internal/domain/entities"
	"presupuesto_xpto/internal/domain/validity"
	"presupuesto_xpto/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ interfaces.ICatalogRepository = (*FileCatalog)(nil)

const sample = `
[[currencies]]
id = "ARS"
code = "ARS"
minor_unit_digits = 2

[[currencies]]
id = "CLP"
minor_unit_digits = 0

[[products]]
id = "p-1"
name = "Filter"
cost = "80.00"
default_margin_percent = "25"
currency_id = "ARS"

[[services]]
id = "s-1"
name = "Labor"
cost = "50"
default_margin_percent = "0"
currency_id = "ARS"

[[taxes]]
id = "iva21"
name = "IVA"
percentage = "21"
active = true

[[taxes]]
id = "old"
name = "Retired"
percentage = "5"
`

func TestDecode(t *testing.T) {
	c, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	ctx := context.Background()

	p, ok, err := c.GetItem(ctx, entities.ProductRef("p-1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Filter", p.Name)
	assert.True(t, p.Cost.Equal(decimal.RequireFromString("80")))
	assert.True(t, p.DefaultMarginPercent.Equal(decimal.NewFromInt(25)))

	_, ok, err = c.GetItem(ctx, entities.ServiceRef("p-1"))
	require.NoError(t, err)
	assert.False(t, ok, "products and services are separate namespaces")

	_, _, err = c.GetItem(ctx, entities.ItemRef{})
	assert.ErrorIs(t, err, entities.ErrInvalidItemRef)

	tax, ok, _ := c.GetTax(ctx, "old")
	require.True(t, ok)
	assert.False(t, tax.Active)

	clp, ok, _ := c.GetCurrency(ctx, " CLP ")
	require.True(t, ok)
	assert.Equal(t, int32(0), clp.MinorUnitDigits)
	assert.Equal(t, "CLP", clp.Code)
}

func TestDecode_DefaultDigits(t *testing.T) {
	c, err := Decode(strings.NewReader("[[currencies]]\nid = \"USD\"\n"))
	require.NoError(t, err)

	usd, ok := c.Snapshot().Currency("USD")
	require.True(t, ok)
	assert.Equal(t, entities.DefaultMinorUnitDigits, usd.MinorUnitDigits)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		is   error
	}{
		{name: "unknown key", in: "[[products]]\nid = \"p\"\nprice = \"1\"\n"},
		{name: "missing id", in: "[[taxes]]\nname = \"x\"\n"},
		{name: "duplicate", in: "[[products]]\nid = \"p\"\n[[products]]\nid = \"p\"\n", is: ErrDuplicateEntry},
		{name: "bad decimal", in: "[[products]]\nid = \"p\"\ncost = \"abc\"\n"},
		{name: "bad toml", in: "[[products]\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.in))
			require.Error(t, err)
			if tc.is != nil {
				assert.True(t, errors.Is(err, tc.is))
			}
		})
	}
}

func TestDecode_SameIDAcrossSections(t *testing.T) {
	in := "[[products]]\nid = \"x\"\n[[services]]\nid = \"x\"\n"
	c, err := Decode(strings.NewReader(in))
	require.NoError(t, err)

	_, ok := c.Snapshot().Item(entities.ProductRef("x"))
	assert.True(t, ok)
	_, ok = c.Snapshot().Item(entities.ServiceRef("x"))
	assert.True(t, ok)
}

func TestLoadFile_ComputesBudget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)

	draft := entities.BudgetDraft{
		ClientID:   "c-1",
		CurrencyID: "ARS",
		Lines: []entities.LineItem{
			{Ref: entities.ProductRef("p-1"), Quantity: decimal.NewFromInt(2)},
			{Ref: entities.ServiceRef("s-1"), Quantity: decimal.NewFromInt(1)},
		},
		TaxIDs: []string{"iva21"},
	}
	out := budget.NewService(validity.NewResolver(nil)).Compute(draft, c.Snapshot())
	require.True(t, out.Valid(), "errors: %v", out.Errors)

	// 2 x 100.00 + 1 x 50.00 = 250.00; IVA 21% = 52.50
	assert.Equal(t, "250.00", out.Subtotal.StringFixed(2))
	assert.Equal(t, "302.50", out.GrandTotal.StringFixed(2))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
