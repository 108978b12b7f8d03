// Package pricing derives line prices and line subtotals.
//
// All functions are pure; callers re-run them whenever a line's quantity,
// cost or margin changes.
package pricing

import (
	"fmt"

	"presupuesto_xpto/internal/domain/entities"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// LineSubtotal returns quantity x unitPrice. Quantity must be a positive
// integer and unitPrice non-negative.
func LineSubtotal(quantity, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if !quantity.IsPositive() || !quantity.IsInteger() {
		return decimal.Zero, fmt.Errorf("%w: %s", entities.ErrInvalidQuantity, quantity)
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s", entities.ErrInvalidPrice, unitPrice)
	}
	return quantity.Mul(unitPrice), nil
}

// DeriveSalePrice marks cost up by marginPercent and rounds half-up to
// digits decimal places.
func DeriveSalePrice(cost, marginPercent decimal.Decimal, digits int32) (decimal.Decimal, error) {
	if marginPercent.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s", entities.ErrInvalidMargin, marginPercent)
	}
	if cost.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s", entities.ErrInvalidCost, cost)
	}
	factor := decimal.NewFromInt(1).Add(marginPercent.Div(oneHundred))
	return cost.Mul(factor).Round(digits), nil
}

// PriceSource records where a resolved unit price came from.
type PriceSource string

const (
	SourceExplicit PriceSource = "explicit"
	SourceLine     PriceSource = "line_cost"
	SourceCatalog  PriceSource = "catalog"
)

// ResolveUnitPrice picks the unit price of a line:
//   - the explicit unit price, when given;
//   - the line's own cost, marked up by the line margin (or the catalog
//     default margin);
//   - the catalog cost, marked up the same way.
//
// item may be nil when the line carries enough data on its own.
func ResolveUnitPrice(line entities.LineItem, item *entities.CatalogItem, digits int32) (decimal.Decimal, PriceSource, error) {
	if line.UnitPrice != nil {
		if line.UnitPrice.IsNegative() {
			return decimal.Zero, SourceExplicit, fmt.Errorf("%w: %s", entities.ErrInvalidPrice, *line.UnitPrice)
		}
		return *line.UnitPrice, SourceExplicit, nil
	}

	margin := decimal.Zero
	if line.MarginPercent != nil {
		margin = *line.MarginPercent
	} else if item != nil {
		margin = item.DefaultMarginPercent
	}

	switch {
	case line.Cost != nil:
		price, err := DeriveSalePrice(*line.Cost, margin, digits)
		return price, SourceLine, err
	case item != nil:
		price, err := DeriveSalePrice(item.Cost, margin, digits)
		return price, SourceCatalog, err
	default:
		return decimal.Zero, SourceCatalog, fmt.Errorf("%w: no unit price and no catalog cost", entities.ErrInvalidPrice)
	}
}
