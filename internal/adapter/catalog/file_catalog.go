// Package catalog reads a product/service/tax/currency catalog from a TOML
// file. It backs the CLI and local runs of the API without catalog tables.
//
//	[[currencies]]
//	id = "ARS"
//	code = "ARS"
//	minor_unit_digits = 2
//
//	[[products]]
//	id = "p-1"
//	name = "Filter"
//	cost = "80.00"
//	default_margin_percent = "25"
//	currency_id = "ARS"
//
//	[[taxes]]
//	id = "iva21"
//	name = "IVA"
//	percentage = "21"
//	active = true
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"presupuesto_xpto/internal/domain/budget"
	"presupuesto_xpto/internal/domain/entities"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

var ErrDuplicateEntry = errors.New("catalog: duplicate entry")

type itemEntry struct {
	ID                   string          `toml:"id"`
	Name                 string          `toml:"name"`
	Cost                 decimal.Decimal `toml:"cost"`
	DefaultMarginPercent decimal.Decimal `toml:"default_margin_percent"`
	CurrencyID           string          `toml:"currency_id"`
}

type taxEntry struct {
	ID         string          `toml:"id"`
	Name       string          `toml:"name"`
	Percentage decimal.Decimal `toml:"percentage"`
	Active     bool            `toml:"active"`
}

type currencyEntry struct {
	ID              string `toml:"id"`
	Code            string `toml:"code"`
	MinorUnitDigits *int32 `toml:"minor_unit_digits"`
}

type file struct {
	Currencies []currencyEntry `toml:"currencies"`
	Products   []itemEntry     `toml:"products"`
	Services   []itemEntry     `toml:"services"`
	Taxes      []taxEntry      `toml:"taxes"`
}

// FileCatalog is an in-memory catalog loaded once. It serves both the
// domain Catalog lookups and the context-aware repository lookups.
type FileCatalog struct {
	snapshot *budget.Snapshot
}

// LoadFile decodes the TOML catalog at path.
func LoadFile(path string) (*FileCatalog, error) {
	var f file
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	return build(f, md)
}

// Decode reads a TOML catalog from r.
func Decode(r io.Reader) (*FileCatalog, error) {
	var f file
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	return build(f, md)
}

func build(f file, md toml.MetaData) (*FileCatalog, error) {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("catalog: unknown keys: %v", undecoded)
	}

	s := budget.NewSnapshot()
	seen := map[string]struct{}{}
	claim := func(section, id string) error {
		id = strings.TrimSpace(id)
		if id == "" {
			return fmt.Errorf("catalog: %s entry without id", section)
		}
		key := section + "/" + id
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateEntry, key)
		}
		seen[key] = struct{}{}
		return nil
	}

	for _, c := range f.Currencies {
		if err := claim("currencies", c.ID); err != nil {
			return nil, err
		}
		digits := entities.DefaultMinorUnitDigits
		if c.MinorUnitDigits != nil {
			digits = *c.MinorUnitDigits
		}
		code := c.Code
		if code == "" {
			code = c.ID
		}
		s.AddCurrency(entities.Currency{ID: strings.TrimSpace(c.ID), Code: code, MinorUnitDigits: digits})
	}

	for _, p := range f.Products {
		if err := claim("products", p.ID); err != nil {
			return nil, err
		}
		s.AddItem(p.toCatalogItem(entities.ProductRef(p.ID)))
	}
	for _, sv := range f.Services {
		if err := claim("services", sv.ID); err != nil {
			return nil, err
		}
		s.AddItem(sv.toCatalogItem(entities.ServiceRef(sv.ID)))
	}

	for _, t := range f.Taxes {
		if err := claim("taxes", t.ID); err != nil {
			return nil, err
		}
		s.AddTax(entities.Tax{ID: strings.TrimSpace(t.ID), Name: t.Name, Percentage: t.Percentage, Active: t.Active})
	}

	return &FileCatalog{snapshot: s}, nil
}

func (e itemEntry) toCatalogItem(ref entities.ItemRef) entities.CatalogItem {
	return entities.CatalogItem{
		Ref:                  ref,
		Name:                 e.Name,
		Cost:                 e.Cost,
		DefaultMarginPercent: e.DefaultMarginPercent,
		CurrencyID:           strings.TrimSpace(e.CurrencyID),
	}
}

// Snapshot exposes the catalog for direct computations.
func (c *FileCatalog) Snapshot() *budget.Snapshot { return c.snapshot }

func (c *FileCatalog) GetItem(_ context.Context, ref entities.ItemRef) (entities.CatalogItem, bool, error) {
	if !ref.Valid() {
		return entities.CatalogItem{}, false, entities.ErrInvalidItemRef
	}
	it, ok := c.snapshot.Item(ref)
	return it, ok, nil
}

func (c *FileCatalog) GetTax(_ context.Context, id string) (entities.Tax, bool, error) {
	t, ok := c.snapshot.Tax(strings.TrimSpace(id))
	return t, ok, nil
}

func (c *FileCatalog) GetCurrency(_ context.Context, id string) (entities.Currency, bool, error) {
	cur, ok := c.snapshot.Currency(strings.TrimSpace(id))
	return cur, ok, nil
}
