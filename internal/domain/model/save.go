package model

// SaveRecord is one flattened row of a save payload. Parent rows carry a
// transient Sequence; child rows carry BelongsTo until the parent identity is
// known and then ConfiguredProduct.
type SaveRecord struct {
	Sequence          string         `json:"sequence,omitempty"`
	BelongsTo         string         `json:"belongs_to,omitempty"`
	PriceEntryID      string         `json:"price_entry_id"`
	QuoteID           string         `json:"quote_id"`
	ProductID         string         `json:"product_id"`
	Quantity          float64        `json:"quantity"`
	UnitPrice         float64        `json:"unit_price"`
	ListPrice         float64        `json:"list_price"`
	ConfiguredProduct string         `json:"configured_product,omitempty"`
	Fields            map[string]any `json:"fields,omitempty"`
}

// SaveRequest is submitted to the record store once per save phase.
type SaveRequest struct {
	QuoteID      string       `json:"quote_id"`
	PricebookID  string       `json:"pricebook_id"`
	Records      []SaveRecord `json:"records"`
	SkipDeletion bool         `json:"skip_deletion"`
}

// SavedRecord pairs a generated identity with the transient sequence it answers.
type SavedRecord struct {
	ID       string `json:"id"`
	Sequence string `json:"sequence,omitempty"`
}

// SaveResponse is the record store's answer. Row-level problems are reported
// in Errors rather than as a call failure.
type SaveResponse struct {
	Errors  []string      `json:"errors"`
	Records []SavedRecord `json:"records"`
}
