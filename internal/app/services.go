// Package app provides service initialization.
package app

import (
	"github.com/guttosm/quote-configurator/config"
	"github.com/guttosm/quote-configurator/internal/circuitbreaker"
	"github.com/guttosm/quote-configurator/internal/i18n"
	"github.com/guttosm/quote-configurator/internal/middleware"
	"github.com/guttosm/quote-configurator/internal/service"
)

const (
	idempotencyCapacity = 10000
	rateLimitClients    = 10000
)

// ServiceComponents holds service-related components.
type ServiceComponents struct {
	Configurator           service.ConfiguratorService
	Sessions               *service.SessionStore
	Annex                  service.AnnexBuilder
	Proforma               service.ProformaBuilder
	AnnexSource            *service.RecordAnnexSource
	IdempotencyStore       *service.TTLCache[string, *middleware.CachedResponse]
	DocumentCircuitBreaker *circuitbreaker.CircuitBreaker
	// RateLimiter is nil when RATE_LIMIT_REQUESTS is zero.
	RateLimiter *middleware.RateLimiter
}

// InitializeServices builds the configurator and the annex pipeline over db.
func InitializeServices(cfg config.Config, db *DatabaseComponents) (*ServiceComponents, error) {
	fields, err := service.NewFieldSetLoader(cfg.FieldSet.Path)
	if err != nil {
		return nil, err
	}
	translator := i18n.GetTranslator()

	sessions := service.NewSessionStore(
		service.NewSaveProtocol(db.QuoteLines),
		translator,
		cfg.Session.Capacity,
		cfg.Session.IdleTTL,
	)
	configurator := service.NewConfigurator(sessions, db.Quotes, db.Pricebooks, db.Catalog, fields,
		service.WithFieldSet(cfg.FieldSet.Object, cfg.FieldSet.Name),
	)

	documentsCB := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.Database.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.Database.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.Database.CircuitBreakerTimeout,
		Name:             "remote-documents",
	})
	generator := service.NewAnnexGenerator(cfg.Annex.Title)
	source := service.NewRecordAnnexSource(
		db.Templates,
		db.Quotes,
		db.QuoteLines,
		service.NewRemoteDocumentFetcher(cfg.Annex.DownloadTimeout, documentsCB),
		generator,
		service.RecordAnnexSourceConfig{
			LobbySection: cfg.Annex.LobbySection,
			FinishPrefix: cfg.Annex.FinishPrefix,
			CacheTTL:     cfg.Annex.TemplateCacheTTL,
		},
	)
	collector := service.NewAnnexCollector(source, cfg.Annex.OpeningSections, cfg.Annex.ClosingSection, translator)
	annex := service.NewAnnexService(db.Quotes, collector, service.NewPDFMerger(), cfg.Annex.Title)

	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimitRequests > 0 {
		limiter = middleware.NewRateLimiter(cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow, rateLimitClients)
	}

	return &ServiceComponents{
		Configurator:           configurator,
		Sessions:               sessions,
		Annex:                  annex,
		Proforma:               service.NewProformaService(db.Quotes, db.QuoteLines, generator),
		AnnexSource:            source,
		IdempotencyStore:       service.NewTTLCache[string, *middleware.CachedResponse]("idempotency", idempotencyCapacity, cfg.Server.IdempotencyTTL),
		DocumentCircuitBreaker: documentsCB,
		RateLimiter:            limiter,
	}, nil
}

// Stop releases the background cleanup of every cache.
func (s *ServiceComponents) Stop() {
	if s == nil {
		return
	}
	s.Sessions.Stop()
	s.AnnexSource.Stop()
	s.IdempotencyStore.Stop()
	if s.RateLimiter != nil {
		s.RateLimiter.Stop()
	}
}
