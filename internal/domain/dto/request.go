// Package dto defines Data Transfer Objects for HTTP request and response handling.
//
// DTOs are used to decouple the HTTP layer from the domain model,
// providing validation and serialization for API communication.
package dto

import (
	"strings"

	"github.com/guttosm/quote-configurator/internal/domain/model"
)

// StartConfigurationRequest opens a configuration session for a quote.
//
// PricebookID is optional; when empty the quote's own pricebook is used.
// ProductIDs are the catalog products picked in the product search; the
// quote's existing lines are always included.
//
// @Description Request to start a product configuration session
// @Example {"pricebook_id": "01s000000000001", "product_ids": ["01t000000000001"]}
type StartConfigurationRequest struct {
	PricebookID string   `json:"pricebook_id" example:"01s000000000001"`
	ProductIDs  []string `json:"product_ids" example:"01t000000000001"`
} // @name StartConfigurationRequest

// LoadProductsRequest hands a session that went back a new product pick.
//
// @Description Products picked after leaving the table
type LoadProductsRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required,min=1" example:"01t000000000001"`
} // @name LoadProductsRequest

// ProductSearchQuery searches a pricebook's products. Exclude lists the
// product ids already picked; it may be repeated or comma-separated.
type ProductSearchQuery struct {
	Term    string   `form:"q" binding:"max=200"`
	Exclude []string `form:"exclude"`
}

// ExcludedIDs returns the non-empty ids of Exclude with commas split.
func (q ProductSearchQuery) ExcludedIDs() []string {
	var ids []string
	for _, v := range q.Exclude {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// SelectionRequest toggles one optional child line of a bundle.
//
// @Description Selection-change event for a bundle option
type SelectionRequest struct {
	ParentProductID string `json:"parent_product_id" binding:"required" example:"01t000000000001"`
	ChildProductID  string `json:"child_product_id" binding:"required" example:"01t000000000002"`
	Selected        *bool  `json:"selected" binding:"required" example:"true"`
} // @name SelectionRequest

// CellEdit addresses one cell of the working copy. ChildIndex is nil for parent rows.
type CellEdit struct {
	ParentIndex int    `json:"parent_index" example:"0" minimum:"0"`
	ChildIndex  *int   `json:"child_index,omitempty" example:"1"`
	Field       string `json:"field" example:"Quantity"`
	Value       any    `json:"value" swaggertype:"string" example:"2"`
} // @name CellEdit

// CellEditRequest carries a batch of draft cell values.
//
// @Description Cell-edit event with one or more draft values
type CellEditRequest struct {
	Edits []CellEdit `json:"edits" binding:"required,min=1"`
} // @name CellEditRequest

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

var (
	// ErrInvalidParentIndex is returned when a cell edit points before the first row.
	ErrInvalidParentIndex = &ValidationError{
		Field:   "parent_index",
		Message: "must be zero or greater",
	}
	// ErrInvalidChildIndex is returned when a child index is negative.
	ErrInvalidChildIndex = &ValidationError{
		Field:   "child_index",
		Message: "must be zero or greater",
	}
	// ErrMissingField is returned when a cell edit names no field.
	ErrMissingField = &ValidationError{
		Field:   "field",
		Message: "is required",
	}
)

// Validate performs custom validation on the request.
// Returns an error if validation fails, nil otherwise.
func (r *CellEditRequest) Validate() error {
	for _, e := range r.Edits {
		if e.ParentIndex < 0 {
			return ErrInvalidParentIndex
		}
		if e.ChildIndex != nil && *e.ChildIndex < 0 {
			return ErrInvalidChildIndex
		}
		if e.Field == "" {
			return ErrMissingField
		}
	}
	return nil
}

// Error returns the error message for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ConfigurationView is the externally visible state of a configuration session.
//
// @Description Snapshot of a configuration session
type ConfigurationView struct {
	SessionID   string                  `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	QuoteID     string                  `json:"quote_id" example:"0Q0000000000001"`
	PricebookID string                  `json:"pricebook_id" example:"01s000000000001"`
	State       string                  `json:"state" example:"ready"`
	Lines       []model.Line            `json:"lines"`
	GrandTotal  float64                 `json:"grand_total" example:"200"`
	Selection   map[string][]string     `json:"selection"`
	Fields      []model.FieldDescriptor `json:"fields"`
	Errors      []string                `json:"errors,omitempty"`
	Fatal       bool                    `json:"fatal"`
} // @name ConfigurationView

// SaveResult summarises a completed two-phase save.
//
// @Description Result of a configuration save
type SaveResult struct {
	SessionID     string   `json:"session_id"`
	State         string   `json:"state" example:"quit"`
	ParentsSaved  int      `json:"parents_saved" example:"2"`
	ChildrenSaved int      `json:"children_saved" example:"3"`
	Dropped       []string `json:"dropped_children,omitempty"`
} // @name SaveResult

// PricebookOption is one entry of the pricebook picker.
//
// @Description Pricebook valid on the quote date
type PricebookOption struct {
	ID      string `json:"id" example:"01s000000000001"`
	Name    string `json:"name" example:"Standard 2026"`
	Current bool   `json:"current"`
} // @name PricebookOption

// ProductSearchResult lists the products of a pricebook matching a term.
//
// @Description Product search result
type ProductSearchResult struct {
	PricebookID string               `json:"pricebook_id" example:"01s000000000001"`
	Term        string               `json:"term" example:"apartment"`
	Entries     []model.CatalogEntry `json:"entries"`
} // @name ProductSearchResult

// HistoryQuery pages through a quote's audit trail.
type HistoryQuery struct {
	Action string `form:"action"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Skip   int    `form:"skip" binding:"omitempty,min=0"`
}

// QuoteHistory is the audit trail of configuration actions on a quote,
// newest first.
//
// @Description Configuration and annex actions recorded for a quote
type QuoteHistory struct {
	QuoteID string           `json:"quote_id" example:"0Q0000000000001"`
	Total   int64            `json:"total" example:"3"`
	Entries []model.LogEntry `json:"entries"`
} // @name QuoteHistory
