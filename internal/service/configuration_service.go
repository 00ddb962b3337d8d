package service

import (
	"context"
	"errors"
	"time"

	"github.com/guttosm/quote-configurator/internal/domain/dto"
	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/guttosm/quote-configurator/internal/i18n"
	"github.com/guttosm/quote-configurator/internal/logger"
	"github.com/guttosm/quote-configurator/internal/repository"
)

// ErrNoPricebooks is returned when no active pricebook is valid on the quote date.
var ErrNoPricebooks = errors.New("no pricebooks available")

// ConfiguratorService opens configuration sessions and answers the
// pricebook picker and the product search.
type ConfiguratorService interface {
	Start(ctx context.Context, quoteID string, req dto.StartConfigurationRequest) (*Session, error)
	LoadProducts(ctx context.Context, sessionID string, productIDs []string) (*Session, error)
	Session(id string) (*Session, error)
	Close(id string)
	Pricebooks(ctx context.Context, quoteID string) ([]dto.PricebookOption, error)
	SearchProducts(ctx context.Context, pricebookID, term string, exclude []string) ([]model.CatalogEntry, error)
}

// Configurator loads everything a session needs before it can reach Ready.
type Configurator struct {
	sessions       *SessionStore
	quotes         repository.QuotesRepositoryInterface
	pricebooks     repository.PricebooksRepositoryInterface
	catalog        repository.CatalogRepositoryInterface
	fields         FieldSetProvider
	fieldSetObject string
	fieldSetName   string
	now            func() time.Time
}

// ConfiguratorOption configures a Configurator.
type ConfiguratorOption func(*Configurator)

// WithFieldSet selects the object and field set that describe the line columns.
func WithFieldSet(object, name string) ConfiguratorOption {
	return func(c *Configurator) {
		c.fieldSetObject = object
		c.fieldSetName = name
	}
}

// WithClock overrides the clock used when a quote carries no date.
func WithClock(now func() time.Time) ConfiguratorOption {
	return func(c *Configurator) {
		c.now = now
	}
}

// NewConfigurator creates a configurator over the given collaborators.
func NewConfigurator(
	sessions *SessionStore,
	quotes repository.QuotesRepositoryInterface,
	pricebooks repository.PricebooksRepositoryInterface,
	catalog repository.CatalogRepositoryInterface,
	fields FieldSetProvider,
	opts ...ConfiguratorOption,
) *Configurator {
	c := &Configurator{
		sessions:       sessions,
		quotes:         quotes,
		pricebooks:     pricebooks,
		catalog:        catalog,
		fields:         fields,
		fieldSetObject: "QuoteLineItem",
		fieldSetName:   "ProductWizard",
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start creates a session for the quote and feeds it the field set, the
// field metadata and the mapped catalog lines. Failures to load any of them
// leave the session fatal rather than returning an error, so the caller can
// still show its messages.
func (c *Configurator) Start(ctx context.Context, quoteID string, req dto.StartConfigurationRequest) (*Session, error) {
	if quoteID == "" {
		return c.sessions.Create("", req.PricebookID), nil
	}

	quote, err := c.quotes.FindByID(ctx, quoteID)
	if err != nil {
		s := c.sessions.Create(quoteID, req.PricebookID)
		if errors.Is(err, repository.ErrRecordNotFound) {
			s.MarkFatal(i18n.ErrKeyQuoteNotFound)
		} else {
			logger.Ctx(ctx).Error().Err(err).Str("quote_id", quoteID).Msg("Failed to load quote")
			s.MarkFatal(i18n.ErrKeyCatalogUnavailable)
		}
		return s, nil
	}

	pricebookID := req.PricebookID
	if pricebookID == "" {
		pricebookID = quote.PricebookID
	}
	s := c.sessions.Create(quoteID, pricebookID)
	if pricebookID == "" {
		s.MarkFatal(i18n.ErrKeyNoPricebooks)
		return s, nil
	}

	fieldSet, err := c.fields.FieldSet(c.fieldSetObject, c.fieldSetName)
	if err != nil {
		return c.failed(ctx, s, err, "Failed to load field set"), nil
	}
	fieldsInfo, err := c.fields.FieldsInfo(c.fieldSetObject)
	if err != nil {
		return c.failed(ctx, s, err, "Failed to load field metadata"), nil
	}

	result, err := c.catalog.Query(ctx, quoteID, pricebookID, req.ProductIDs)
	if err != nil {
		return c.failed(ctx, s, err, "Catalog query failed"), nil
	}
	lines := MapProducts(result, fieldSet)

	if err := s.SetFieldSet(fieldSet); err != nil {
		return s, err
	}
	if err := s.SetFieldsInfo(fieldsInfo); err != nil {
		return s, err
	}
	if err := s.SetRecords(lines); err != nil {
		return s, err
	}

	logger.Ctx(ctx).Info().
		Str("session_id", s.ID()).
		Str("quote_id", quoteID).
		Str("pricebook_id", pricebookID).
		Int("lines", len(lines)).
		Msg("Configuration session started")
	return s, nil
}

// LoadProducts feeds a session that went Back a new product pick. The
// catalog query runs again with the session's pricebook and columns; a
// failed query leaves the session Uninitialized so the pick can be retried.
func (c *Configurator) LoadProducts(ctx context.Context, sessionID string, productIDs []string) (*Session, error) {
	s, err := c.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if s.Fatal() {
		return s, ErrSessionFatal
	}
	if s.State() != StateUninitialized {
		return s, ErrInvalidTransition
	}

	result, err := c.catalog.Query(ctx, s.QuoteID(), s.PricebookID(), productIDs)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("session_id", s.ID()).Str("quote_id", s.QuoteID()).Msg("Catalog query failed")
		return s, err
	}
	if err := s.SetRecords(MapProducts(result, s.Columns())); err != nil {
		return s, err
	}

	logger.Ctx(ctx).Info().
		Str("session_id", s.ID()).
		Str("quote_id", s.QuoteID()).
		Int("products", len(productIDs)).
		Msg("Configuration products reloaded")
	return s, nil
}

func (c *Configurator) failed(ctx context.Context, s *Session, err error, msg string) *Session {
	logger.Ctx(ctx).Error().Err(err).Str("session_id", s.ID()).Str("quote_id", s.QuoteID()).Msg(msg)
	s.MarkFatal(i18n.ErrKeyCatalogUnavailable)
	return s
}

// Session returns a live session.
func (c *Configurator) Session(id string) (*Session, error) {
	return c.sessions.Get(id)
}

// Close drops a session from the store.
func (c *Configurator) Close(id string) {
	c.sessions.Delete(id)
}

// Pricebooks lists the active pricebooks valid on the quote date. The
// quote's current pricebook is flagged.
func (c *Configurator) Pricebooks(ctx context.Context, quoteID string) ([]dto.PricebookOption, error) {
	quote, err := c.quotes.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	all, err := c.pricebooks.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	date := quote.QuoteDate
	if date.IsZero() {
		date = c.now()
	}

	options := make([]dto.PricebookOption, 0, len(all))
	for _, pb := range all {
		if !pb.ValidOn(date) {
			continue
		}
		options = append(options, dto.PricebookOption{
			ID:      pb.ID,
			Name:    pb.Name,
			Current: pb.ID == quote.PricebookID,
		})
	}
	if len(options) == 0 {
		return nil, ErrNoPricebooks
	}
	return options, nil
}

// SearchProducts lists the pricebook's products matching term. Products in
// exclude, typically the ones already picked, are left out.
func (c *Configurator) SearchProducts(ctx context.Context, pricebookID, term string, exclude []string) ([]model.CatalogEntry, error) {
	entries, err := c.catalog.SearchEntries(ctx, pricebookID, term)
	if err != nil {
		return nil, err
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	out := make([]model.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := skip[e.ProductID]; ok {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
