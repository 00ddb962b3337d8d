// Package app provides database initialization and setup.
package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/quote-configurator/config"
	"github.com/guttosm/quote-configurator/internal/circuitbreaker"
	"github.com/guttosm/quote-configurator/internal/repository"
	"github.com/guttosm/quote-configurator/internal/service"
)

// ErrDatabaseDisabled is returned when the record store is switched off.
// Configuration sessions cannot run without it.
var ErrDatabaseDisabled = errors.New("record store is disabled (set MONGODB_ENABLED=true)")

// DatabaseComponents holds database-related components.
type DatabaseComponents struct {
	DB                  *repository.MongoDB
	Quotes              repository.QuotesRepositoryInterface
	Pricebooks          repository.PricebooksRepositoryInterface
	Catalog             repository.CatalogRepositoryInterface
	Templates           repository.TemplatesRepositoryInterface
	QuoteLines          repository.QuoteLinesRepositoryInterface
	LoggingService      service.LoggingService
	StoreCircuitBreaker *circuitbreaker.CircuitBreaker
	LogsCircuitBreaker  *circuitbreaker.CircuitBreaker
}

// InitializeDatabase connects to MongoDB and creates the repositories.
func InitializeDatabase(cfg config.DatabaseConfig) (*DatabaseComponents, error) {
	if !cfg.Enabled {
		return nil, ErrDatabaseDisabled
	}

	db, err := repository.NewMongoDB(cfg.URI, cfg.DatabaseName)
	if err != nil {
		return nil, err
	}

	log.Info().Str("database", cfg.DatabaseName).Msg("Connected to MongoDB")

	if err := db.SetLogsTTL(context.Background(), cfg.LogsTTL); err != nil {
		log.Warn().Err(err).Dur("ttl", cfg.LogsTTL).Msg("Failed to set audit log expiry")
	}

	return newDatabaseComponents(db, cfg), nil
}

// newDatabaseComponents wraps every repository of db in circuit breakers.
// Record repositories share one breaker; audit logs have their own.
func newDatabaseComponents(db *repository.MongoDB, cfg config.DatabaseConfig) *DatabaseComponents {
	storeCB := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.CircuitBreakerTimeout,
		Name:             "mongodb-store",
		IsFailure:        repository.IsStoreFailure,
	})
	logsCB := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.CircuitBreakerTimeout,
		Name:             "mongodb-logs",
	})

	logsRepo := repository.NewLogsRepositoryWithCircuitBreaker(repository.NewLogsRepository(db), logsCB)

	return &DatabaseComponents{
		DB:                  db,
		Quotes:              repository.NewQuotesRepositoryWithCircuitBreaker(repository.NewQuotesRepository(db), storeCB),
		Pricebooks:          repository.NewPricebooksRepositoryWithCircuitBreaker(repository.NewPricebooksRepository(db), storeCB),
		Catalog:             repository.NewCatalogRepositoryWithCircuitBreaker(repository.NewCatalogRepository(db), storeCB),
		Templates:           repository.NewTemplatesRepositoryWithCircuitBreaker(repository.NewTemplatesRepository(db), storeCB),
		QuoteLines:          repository.NewQuoteLinesRepositoryWithCircuitBreaker(repository.NewQuoteLinesRepository(db), storeCB),
		LoggingService:      service.NewLoggingService(logsRepo),
		StoreCircuitBreaker: storeCB,
		LogsCircuitBreaker:  logsCB,
	}
}

// Close disconnects from MongoDB.
func (d *DatabaseComponents) Close(ctx context.Context) error {
	if d == nil || d.DB == nil || d.DB.Client == nil {
		return nil
	}
	return d.DB.Close(ctx)
}
