package entities

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxTaxPercentage bounds Tax.Percentage.
var MaxTaxPercentage = decimal.NewFromInt(1000)

// Tax is a catalog tax. The engine only reads it.
type Tax struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
	Active     bool            `json:"active"`
}

// TaxSnapshot is the amount computed for one selected tax at computation
// time. It is a frozen value and does not follow later catalog changes.
type TaxSnapshot struct {
	TaxID      string          `json:"tax_id"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

// NormalizeTaxIDs returns the selection as a set: trimmed, blank ids
// dropped, duplicates collapsed, sorted.
func NormalizeTaxIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Currency is a catalog currency. Amounts of a budget are rounded to its
// minor unit.
type Currency struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	MinorUnitDigits int32  `json:"minor_unit_digits"`
}

// DefaultMinorUnitDigits is used when a currency does not declare one.
const DefaultMinorUnitDigits int32 = 2

// Digits returns the rounding precision for the currency.
func (c Currency) Digits() int32 {
	if c.MinorUnitDigits < 0 {
		return DefaultMinorUnitDigits
	}
	return c.MinorUnitDigits
}

// Round rounds d half-up to the currency minor unit.
func (c Currency) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(c.Digits())
}

// MinorUnit returns the smallest representable amount (0.01 for 2 digits).
func (c Currency) MinorUnit() decimal.Decimal {
	return decimal.New(1, -c.Digits())
}
