package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/guttosm/quote-configurator/internal/circuitbreaker"
	"github.com/guttosm/quote-configurator/internal/domain/model"
)

// IsStoreFailure reports whether a MongoDB error should count against a
// breaker. Missing documents and caller cancellation are answers, not outages.
func IsStoreFailure(err error) bool {
	if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, ErrRecordNotFound) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

// QuoteLinesRepositoryWithCircuitBreaker wraps QuoteLinesRepository with circuit breaker protection.
type QuoteLinesRepositoryWithCircuitBreaker struct {
	repo           QuoteLinesRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewQuoteLinesRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewQuoteLinesRepositoryWithCircuitBreaker(repo QuoteLinesRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *QuoteLinesRepositoryWithCircuitBreaker {
	return &QuoteLinesRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
	}
}

// SaveLines persists a batch with circuit breaker protection.
func (r *QuoteLinesRepositoryWithCircuitBreaker) SaveLines(ctx context.Context, req model.SaveRequest) (model.SaveResponse, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func(ctx context.Context) (model.SaveResponse, error) {
		return r.repo.SaveLines(ctx, req)
	})
}

// FindByQuote loads quote lines with circuit breaker protection.
func (r *QuoteLinesRepositoryWithCircuitBreaker) FindByQuote(ctx context.Context, quoteID string) ([]model.Line, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func(ctx context.Context) ([]model.Line, error) {
		return r.repo.FindByQuote(ctx, quoteID)
	})
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *QuoteLinesRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}

// CatalogRepositoryWithCircuitBreaker wraps CatalogRepository with circuit breaker protection.
type CatalogRepositoryWithCircuitBreaker struct {
	repo           CatalogRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewCatalogRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewCatalogRepositoryWithCircuitBreaker(repo CatalogRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *CatalogRepositoryWithCircuitBreaker {
	return &CatalogRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
	}
}

// Query runs the catalog query with circuit breaker protection.
func (r *CatalogRepositoryWithCircuitBreaker) Query(ctx context.Context, quoteID, pricebookID string, productIDs []string) (model.CatalogResult, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func(ctx context.Context) (model.CatalogResult, error) {
		return r.repo.Query(ctx, quoteID, pricebookID, productIDs)
	})
}

// SearchEntries runs the product search with circuit breaker protection.
func (r *CatalogRepositoryWithCircuitBreaker) SearchEntries(ctx context.Context, pricebookID, term string) ([]model.CatalogEntry, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func(ctx context.Context) ([]model.CatalogEntry, error) {
		return r.repo.SearchEntries(ctx, pricebookID, term)
	})
}

// QuotesRepositoryWithCircuitBreaker wraps QuotesRepository with circuit breaker protection.
type QuotesRepositoryWithCircuitBreaker struct {
	repo           QuotesRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewQuotesRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewQuotesRepositoryWithCircuitBreaker(repo QuotesRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *QuotesRepositoryWithCircuitBreaker {
	return &QuotesRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
	}
}

// FindByID loads a quote with circuit breaker protection.
func (r *QuotesRepositoryWithCircuitBreaker) FindByID(ctx context.Context, id string) (*model.Quote, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func(ctx context.Context) (*model.Quote, error) {
		return r.repo.FindByID(ctx, id)
	})
}

// PricebooksRepositoryWithCircuitBreaker wraps PricebooksRepository with circuit breaker protection.
type PricebooksRepositoryWithCircuitBreaker struct {
	repo           PricebooksRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewPricebooksRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewPricebooksRepositoryWithCircuitBreaker(repo PricebooksRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *PricebooksRepositoryWithCircuitBreaker {
	return &PricebooksRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
	}
}

// ListActive lists pricebooks with circuit breaker protection.
func (r *PricebooksRepositoryWithCircuitBreaker) ListActive(ctx context.Context) ([]model.Pricebook, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func(ctx context.Context) ([]model.Pricebook, error) {
		return r.repo.ListActive(ctx)
	})
}

// TemplatesRepositoryWithCircuitBreaker wraps TemplatesRepository with circuit breaker protection.
type TemplatesRepositoryWithCircuitBreaker struct {
	repo           TemplatesRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewTemplatesRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewTemplatesRepositoryWithCircuitBreaker(repo TemplatesRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *TemplatesRepositoryWithCircuitBreaker {
	return &TemplatesRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
	}
}

// FindByName loads a template with circuit breaker protection.
func (r *TemplatesRepositoryWithCircuitBreaker) FindByName(ctx context.Context, name string) (*model.DocumentTemplate, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func(ctx context.Context) (*model.DocumentTemplate, error) {
		return r.repo.FindByName(ctx, name)
	})
}

// LogsRepositoryWithCircuitBreaker wraps LogsRepository with circuit breaker protection.
type LogsRepositoryWithCircuitBreaker struct {
	repo           LogsRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewLogsRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewLogsRepositoryWithCircuitBreaker(repo LogsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *LogsRepositoryWithCircuitBreaker {
	return &LogsRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
	}
}

// Insert stores entries with circuit breaker protection. Entries are dropped
// while the circuit is open.
func (r *LogsRepositoryWithCircuitBreaker) Insert(ctx context.Context, entries ...*model.LogEntry) error {
	err := r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Insert(ctx, entries...)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil
	}
	return err
}

// Find queries entries with circuit breaker protection.
func (r *LogsRepositoryWithCircuitBreaker) Find(ctx context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func(ctx context.Context) ([]model.LogEntry, error) {
		return r.repo.Find(ctx, opts)
	})
}

// Count counts entries with circuit breaker protection.
func (r *LogsRepositoryWithCircuitBreaker) Count(ctx context.Context, opts model.LogQueryOptions) (int64, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func(ctx context.Context) (int64, error) {
		return r.repo.Count(ctx, opts)
	})
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *LogsRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}
