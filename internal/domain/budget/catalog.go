package budget

import (
	"strings"

	"presupuesto_xpto/internal/domain/entities"
)

// Catalog resolves the external data a computation consumes. Lookups are
// in-memory and never block; callers that keep the catalog remotely load a
// Snapshot first.
type Catalog interface {
	Item(ref entities.ItemRef) (entities.CatalogItem, bool)
	Tax(id string) (entities.Tax, bool)
	Currency(id string) (entities.Currency, bool)
}

// Snapshot is an immutable-by-convention Catalog built for one computation.
type Snapshot struct {
	items      map[entities.ItemRef]entities.CatalogItem
	taxes      map[string]entities.Tax
	currencies map[string]entities.Currency
}

var _ Catalog = (*Snapshot)(nil)

func NewSnapshot() *Snapshot {
	return &Snapshot{
		items:      map[entities.ItemRef]entities.CatalogItem{},
		taxes:      map[string]entities.Tax{},
		currencies: map[string]entities.Currency{},
	}
}

func (s *Snapshot) AddItem(item entities.CatalogItem) *Snapshot {
	s.items[item.Ref] = item
	return s
}

func (s *Snapshot) AddTax(t entities.Tax) *Snapshot {
	s.taxes[t.ID] = t
	return s
}

func (s *Snapshot) AddCurrency(c entities.Currency) *Snapshot {
	s.currencies[c.ID] = c
	return s
}

func (s *Snapshot) Item(ref entities.ItemRef) (entities.CatalogItem, bool) {
	it, ok := s.items[ref]
	return it, ok
}

func (s *Snapshot) Tax(id string) (entities.Tax, bool) {
	t, ok := s.taxes[id]
	return t, ok
}

func (s *Snapshot) Currency(id string) (entities.Currency, bool) {
	c, ok := s.currencies[id]
	return c, ok
}

// Refs lists the catalog entries a draft depends on.
type Refs struct {
	Items      []entities.ItemRef
	TaxIDs     []string
	CurrencyID string
}

// References collects the distinct catalog references of a draft. Invalid
// item refs are skipped; Compute reports them.
func References(d entities.BudgetDraft) Refs {
	seen := make(map[entities.ItemRef]struct{}, len(d.Lines))
	refs := Refs{
		TaxIDs:     entities.NormalizeTaxIDs(d.TaxIDs),
		CurrencyID: strings.TrimSpace(d.CurrencyID),
	}
	for _, l := range d.Lines {
		if !l.Ref.Valid() {
			continue
		}
		if _, ok := seen[l.Ref]; ok {
			continue
		}
		seen[l.Ref] = struct{}{}
		refs.Items = append(refs.Items, l.Ref)
	}
	return refs
}
