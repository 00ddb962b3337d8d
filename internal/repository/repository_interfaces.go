package repository

import (
	"context"

	"github.com/guttosm/quote-configurator/internal/domain/model"
)

// QuoteLinesRepositoryInterface defines the record store used by the save protocol.
type QuoteLinesRepositoryInterface interface {
	SaveLines(ctx context.Context, req model.SaveRequest) (model.SaveResponse, error)
	FindByQuote(ctx context.Context, quoteID string) ([]model.Line, error)
}

// CatalogRepositoryInterface defines the catalog and pricing query and the
// product search.
type CatalogRepositoryInterface interface {
	Query(ctx context.Context, quoteID, pricebookID string, productIDs []string) (model.CatalogResult, error)
	SearchEntries(ctx context.Context, pricebookID, term string) ([]model.CatalogEntry, error)
}

// QuotesRepositoryInterface defines quote header lookups.
type QuotesRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*model.Quote, error)
}

// PricebooksRepositoryInterface defines pricebook lookups.
type PricebooksRepositoryInterface interface {
	ListActive(ctx context.Context) ([]model.Pricebook, error)
}

// TemplatesRepositoryInterface defines named document section lookups.
type TemplatesRepositoryInterface interface {
	FindByName(ctx context.Context, name string) (*model.DocumentTemplate, error)
}

// LogsRepositoryInterface defines log and audit record storage.
type LogsRepositoryInterface interface {
	Insert(ctx context.Context, entries ...*model.LogEntry) error
	Find(ctx context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error)
	Count(ctx context.Context, opts model.LogQueryOptions) (int64, error)
}
