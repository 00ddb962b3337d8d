// Package model defines the core domain entities for the quote configurator.
package model

import (
	"fmt"
	"strconv"
)

// Field paths that map onto named Line fields rather than Attributes.
const (
	FieldQuantity  = "Quantity"
	FieldUnitPrice = "UnitPrice"
	FieldListPrice = "ListPrice"
	FieldDiscount  = "Discount"
)

// ProductType classifies catalog products.
type ProductType string

const (
	// ProductTypeAsset products may appear at most once in a configuration.
	ProductTypeAsset ProductType = "Asset"
	// ProductTypeApartment products carry a remote floor plan document.
	ProductTypeApartment ProductType = "Apartment"
)

// Product is a catalog product. Bundles carry their option definitions.
//
// @Description Catalog product, optionally a bundle with option definitions
type Product struct {
	ID           string          `bson:"_id" json:"id" example:"01t000000000001"`
	Name         string          `bson:"name" json:"name" example:"Apartment A2"`
	Code         string          `bson:"code,omitempty" json:"code,omitempty"`
	Type         ProductType     `bson:"type,omitempty" json:"type,omitempty" example:"Asset"`
	AnnexName    string          `bson:"annex_name,omitempty" json:"annex_name,omitempty"`
	FloorPlanURL string          `bson:"floor_plan_url,omitempty" json:"floor_plan_url,omitempty"`
	RoomCount    int             `bson:"room_count,omitempty" json:"room_count,omitempty"`
	Active       bool            `bson:"active" json:"active"`
	Options      []ProductOption `bson:"options,omitempty" json:"options,omitempty"`
}

// IsAsset reports whether the product is asset-typed.
func (p Product) IsAsset() bool {
	return p.Type == ProductTypeAsset
}

// ProductOption declares an optional or mandatory sub-product of a bundle.
type ProductOption struct {
	ID                string  `bson:"id" json:"id"`
	OptionProductID   string  `bson:"option_product_id" json:"option_product_id"`
	Option            Product `bson:"option" json:"option"`
	ConfiguredProduct string  `bson:"configured_product,omitempty" json:"configured_product,omitempty"`
	Mandatory         bool    `bson:"mandatory" json:"mandatory"`
}

// Line is a purchasable quote line. Parent lines may own Children; the
// SelectedOption and Mandatory flags are only meaningful on children.
//
// @Description Quote line with optional child option lines
type Line struct {
	ID                string         `bson:"_id,omitempty" json:"id,omitempty"`
	QuoteID           string         `bson:"quote_id,omitempty" json:"quote_id,omitempty"`
	Product           Product        `bson:"product" json:"product"`
	PriceEntryID      string         `bson:"price_entry_id,omitempty" json:"price_entry_id,omitempty"`
	UnitPrice         float64        `bson:"unit_price" json:"unit_price" example:"100"`
	ListPrice         float64        `bson:"list_price" json:"list_price" example:"100"`
	Discount          float64        `bson:"discount,omitempty" json:"discount,omitempty" example:"10"`
	Quantity          float64        `bson:"quantity" json:"quantity" example:"2"`
	Total             float64        `bson:"-" json:"total" example:"180"`
	ConfiguredProduct string         `bson:"configured_product,omitempty" json:"configured_product,omitempty"`
	Attributes        map[string]any `bson:"attributes,omitempty" json:"attributes,omitempty"`
	Children          []Line         `bson:"-" json:"children,omitempty"`
	SelectedOption    bool           `bson:"-" json:"selected_option,omitempty"`
	Mandatory         bool           `bson:"mandatory,omitempty" json:"mandatory,omitempty"`
}

// ProductID returns the identity of the line's product.
func (l Line) ProductID() string {
	return l.Product.ID
}

// Clone returns a structural copy that shares no mutable state with l.
func (l Line) Clone() Line {
	c := l
	c.Product = l.Product.clone()
	if l.Attributes != nil {
		c.Attributes = make(map[string]any, len(l.Attributes))
		for k, v := range l.Attributes {
			c.Attributes[k] = v
		}
	}
	if l.Children != nil {
		c.Children = CloneLines(l.Children)
	}
	return c
}

func (p Product) clone() Product {
	c := p
	if p.Options != nil {
		c.Options = make([]ProductOption, len(p.Options))
		for i, o := range p.Options {
			c.Options[i] = o
			c.Options[i].Option = o.Option.clone()
		}
	}
	return c
}

// CloneLines deep-copies a slice of lines.
func CloneLines(lines []Line) []Line {
	if lines == nil {
		return nil
	}
	out := make([]Line, len(lines))
	for i := range lines {
		out[i] = lines[i].Clone()
	}
	return out
}

// Field returns the value stored under a field-set path.
func (l Line) Field(path string) (any, bool) {
	switch path {
	case FieldQuantity:
		return l.Quantity, true
	case FieldUnitPrice:
		return l.UnitPrice, true
	case FieldListPrice:
		return l.ListPrice, true
	case FieldDiscount:
		return l.Discount, true
	}
	v, ok := l.Attributes[path]
	return v, ok
}

// SetField stores value under a field-set path. Named numeric fields accept
// numbers and numeric strings; anything else lands in Attributes.
func (l *Line) SetField(path string, value any) error {
	var target *float64
	switch path {
	case FieldQuantity:
		target = &l.Quantity
	case FieldUnitPrice:
		target = &l.UnitPrice
	case FieldListPrice:
		target = &l.ListPrice
	case FieldDiscount:
		target = &l.Discount
	}
	if target == nil {
		if l.Attributes == nil {
			l.Attributes = make(map[string]any)
		}
		l.Attributes[path] = value
		return nil
	}

	f, err := ToFloat(value)
	if err != nil {
		return fmt.Errorf("field %s: %w", path, err)
	}
	*target = f
	return nil
}

// FieldValues flattens named fields and attributes into one map.
func (l Line) FieldValues() map[string]any {
	values := make(map[string]any, len(l.Attributes)+4)
	for k, v := range l.Attributes {
		values[k] = v
	}
	values[FieldQuantity] = l.Quantity
	values[FieldUnitPrice] = l.UnitPrice
	values[FieldListPrice] = l.ListPrice
	values[FieldDiscount] = l.Discount
	return values
}

// ToFloat converts JSON-ish numeric values to float64.
func ToFloat(value any) (float64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		if v == "" {
			return 0, nil
		}
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("unsupported numeric value %T", value)
	}
}
