package margin

import (
	"testing"

	"presupuesto_xpto/internal/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ars = entities.Currency{ID: "ARS", Code: "ARS", MinorUnitDigits: 2}

func ptr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestProfit(t *testing.T) {
	subtotal := decimal.RequireFromString("250.00")

	tests := []struct {
		name   string
		margin entities.AgencyMargin
		want   string
		source Source
	}{
		{name: "none", margin: entities.AgencyMargin{}, want: "0.00", source: SourceNone},
		{name: "percent", margin: entities.AgencyMargin{Percent: ptr("10")}, want: "25.00", source: SourcePercent},
		{name: "amount", margin: entities.AgencyMargin{Amount: ptr("40")}, want: "40.00", source: SourceAmount},
		{name: "amount wins over percent", margin: entities.AgencyMargin{Amount: ptr("12.345"), Percent: ptr("10")}, want: "12.35", source: SourceAmount},
		{name: "percent above 100", margin: entities.AgencyMargin{Percent: ptr("150")}, want: "375.00", source: SourcePercent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, src, err := Profit(subtotal, tt.margin, ars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
			assert.Equal(t, tt.source, src)
		})
	}
}

func TestProfit_Negative(t *testing.T) {
	_, _, err := Profit(decimal.RequireFromString("10"), entities.AgencyMargin{Amount: ptr("-1")}, ars)
	assert.ErrorIs(t, err, entities.ErrInvalidMargin)

	_, _, err = Profit(decimal.RequireFromString("10"), entities.AgencyMargin{Percent: ptr("-1")}, ars)
	assert.ErrorIs(t, err, entities.ErrInvalidMargin)
}

func TestImpliedPercent(t *testing.T) {
	assert.Equal(t, "10.00", ImpliedPercent(decimal.RequireFromString("250"), decimal.RequireFromString("25")).StringFixed(2))
	assert.True(t, ImpliedPercent(decimal.Zero, decimal.RequireFromString("25")).IsZero())
}
