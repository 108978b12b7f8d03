package interfaces

import (
	"context"

	"presupuesto_xpto/internal/domain/entities"
)

// ICatalogRepository reads the product, service, tax and currency catalogs.
// The bool result is false when the entry does not exist.
type ICatalogRepository interface {
	GetItem(ctx context.Context, ref entities.ItemRef) (entities.CatalogItem, bool, error)
	GetTax(ctx context.Context, id string) (entities.Tax, bool, error)
	GetCurrency(ctx context.Context, id string) (entities.Currency, bool, error)
}
