package entities

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ItemKind tells which catalog a line item references.
type ItemKind string

const (
	ItemKindProduct ItemKind = "product"
	ItemKindService ItemKind = "service"
)

// ItemRef references exactly one catalog entry, either a product or a
// service. Fields are unexported so a ref can only be built through
// ProductRef or ServiceRef; the zero value references nothing.
type ItemRef struct {
	kind ItemKind
	id   string
}

func ProductRef(id string) ItemRef { return ItemRef{kind: ItemKindProduct, id: strings.TrimSpace(id)} }

func ServiceRef(id string) ItemRef { return ItemRef{kind: ItemKindService, id: strings.TrimSpace(id)} }

// RefFromPair builds a ref from the legacy productId/serviceId field pair.
// Exactly one of them must be set.
func RefFromPair(productID, serviceID string) (ItemRef, error) {
	productID = strings.TrimSpace(productID)
	serviceID = strings.TrimSpace(serviceID)
	switch {
	case productID != "" && serviceID != "":
		return ItemRef{}, ErrInvalidItemRef
	case productID != "":
		return ProductRef(productID), nil
	case serviceID != "":
		return ServiceRef(serviceID), nil
	default:
		return ItemRef{}, ErrInvalidItemRef
	}
}

// NewItemRef builds a ref from an explicit kind.
func NewItemRef(kind ItemKind, id string) (ItemRef, error) {
	switch kind {
	case ItemKindProduct:
		return ProductRef(id), validRef(id)
	case ItemKindService:
		return ServiceRef(id), validRef(id)
	default:
		return ItemRef{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidItemRef, kind)
	}
}

func validRef(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidItemRef
	}
	return nil
}

func (r ItemRef) Kind() ItemKind { return r.kind }
func (r ItemRef) ID() string     { return r.id }

func (r ItemRef) IsProduct() bool { return r.kind == ItemKindProduct && r.id != "" }
func (r ItemRef) IsService() bool { return r.kind == ItemKindService && r.id != "" }

// Valid reports whether the ref points at exactly one catalog entry.
func (r ItemRef) Valid() bool { return r.IsProduct() || r.IsService() }

func (r ItemRef) String() string {
	if !r.Valid() {
		return "<none>"
	}
	return string(r.kind) + ":" + r.id
}

type itemRefJSON struct {
	Kind ItemKind `json:"kind"`
	ID   string   `json:"id"`
}

func (r ItemRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemRefJSON{Kind: r.kind, ID: r.id})
}

func (r *ItemRef) UnmarshalJSON(b []byte) error {
	var raw itemRefJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	ref, err := NewItemRef(raw.Kind, raw.ID)
	if err != nil {
		return err
	}
	*r = ref
	return nil
}

// LineItem is one quantity x unit price entry of a budget.
//
// Price resolution:
//   - UnitPrice set: used as-is (externally supplied price).
//   - otherwise Cost (line value or catalog cost) marked up by MarginPercent
//     (line value or catalog default margin).
type LineItem struct {
	Ref           ItemRef          `json:"ref"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	Cost          *decimal.Decimal `json:"cost,omitempty"`
	MarginPercent *decimal.Decimal `json:"margin_percent,omitempty"`
	Description   string           `json:"description,omitempty"`
}

// CatalogItem is what a product/service catalog lookup yields.
type CatalogItem struct {
	Ref                  ItemRef
	Name                 string
	Cost                 decimal.Decimal
	DefaultMarginPercent decimal.Decimal
	CurrencyID           string
}
