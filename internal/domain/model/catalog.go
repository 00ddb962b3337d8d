package model

import "time"

// PriceEntry is a product price inside a pricebook.
type PriceEntry struct {
	ID          string  `bson:"_id" json:"id"`
	PricebookID string  `bson:"pricebook_id" json:"pricebook_id"`
	ProductID   string  `bson:"product_id" json:"product_id"`
	UnitPrice   float64 `bson:"unit_price" json:"unit_price"`
	Active      bool    `bson:"active" json:"active"`
}

// CatalogRecord is either an already-quoted line or a bare catalog bundle.
// Exactly one of the pointers is set.
type CatalogRecord struct {
	QuoteLine *Line    `json:"quote_line,omitempty"`
	Bundle    *Product `json:"bundle,omitempty"`
}

// CatalogResult is the response of the catalog/pricing query.
// ExistingLines holds every persisted line of the quote, parents and options,
// and is used to restore previously chosen options.
type CatalogResult struct {
	Records       []CatalogRecord `json:"records"`
	Prices        []PriceEntry    `json:"prices"`
	ExistingLines []Line          `json:"existing_lines,omitempty"`
}

// Pricebook is a price list valid over a date range.
//
// @Description Pricebook available for a quote
type Pricebook struct {
	ID        string     `bson:"_id" json:"id" example:"01s000000000001"`
	Name      string     `bson:"name" json:"name" example:"Standard 2026"`
	Active    bool       `bson:"active" json:"active"`
	ValidFrom *time.Time `bson:"valid_from,omitempty" json:"valid_from,omitempty"`
	ValidTo   *time.Time `bson:"valid_to,omitempty" json:"valid_to,omitempty"`
}

// ValidOn reports whether the pricebook can be used on the given date.
func (p Pricebook) ValidOn(date time.Time) bool {
	if !p.Active {
		return false
	}
	if p.ValidFrom != nil && date.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidTo != nil && date.After(*p.ValidTo) {
		return false
	}
	return true
}

// Agent is the sales agent responsible for a quote.
type Agent struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// Quote carries the header data of a sales quote.
type Quote struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	PricebookID string    `bson:"pricebook_id,omitempty" json:"pricebook_id,omitempty"`
	QuoteDate   time.Time `bson:"quote_date" json:"quote_date"`
	AccountName string    `bson:"account_name,omitempty" json:"account_name,omitempty"`
	Currency    string    `bson:"currency,omitempty" json:"currency,omitempty"`
	Agent       *Agent    `bson:"agent,omitempty" json:"agent,omitempty"`
}

// CatalogEntry is an active price entry joined to its product, as listed by
// the product search.
//
// @Description Product found in a pricebook
type CatalogEntry struct {
	PriceEntryID string      `bson:"_id" json:"price_entry_id" example:"01u000000000001"`
	ProductID    string      `bson:"product_id" json:"product_id" example:"01t000000000001"`
	Name         string      `bson:"name" json:"name" example:"Apartment A2"`
	Code         string      `bson:"code,omitempty" json:"code,omitempty" example:"AP-A2"`
	Type         ProductType `bson:"type,omitempty" json:"type,omitempty" example:"Apartment"`
	UnitPrice    float64     `bson:"unit_price" json:"unit_price" example:"120000"`
	Bundle       bool        `bson:"bundle" json:"bundle"`
}
