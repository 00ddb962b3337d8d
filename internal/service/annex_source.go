package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/guttosm/quote-configurator/internal/repository"
)

// ErrAnnexEmpty is returned when no document of the annex could be merged.
var ErrAnnexEmpty = errors.New("annex is empty")

// DocumentFetcher downloads a remote document.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// RecordAnnexSource reads annex documents from the record store, the remote
// document server and the generator.
type RecordAnnexSource struct {
	templates    repository.TemplatesRepositoryInterface
	cache        *TTLCache[string, []byte]
	quotes       repository.QuotesRepositoryInterface
	lines        repository.QuoteLinesRepositoryInterface
	fetcher      DocumentFetcher
	generator    *AnnexGenerator
	lobby        string
	finishPrefix string
}

// RecordAnnexSourceConfig names the room-type sheets and sizes the template cache.
type RecordAnnexSourceConfig struct {
	LobbySection  string
	FinishPrefix  string
	CacheTTL      time.Duration
	CacheCapacity int
}

// NewRecordAnnexSource creates an annex source over the given collaborators.
func NewRecordAnnexSource(
	templates repository.TemplatesRepositoryInterface,
	quotes repository.QuotesRepositoryInterface,
	lines repository.QuoteLinesRepositoryInterface,
	fetcher DocumentFetcher,
	generator *AnnexGenerator,
	cfg RecordAnnexSourceConfig,
) *RecordAnnexSource {
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = 64
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &RecordAnnexSource{
		templates:    templates,
		cache:        NewTTLCache[string, []byte]("templates", cfg.CacheCapacity, cfg.CacheTTL),
		quotes:       quotes,
		lines:        lines,
		fetcher:      fetcher,
		generator:    generator,
		lobby:        cfg.LobbySection,
		finishPrefix: cfg.FinishPrefix,
	}
}

// Stop releases the template cache.
func (s *RecordAnnexSource) Stop() {
	s.cache.Stop()
}

// Template returns a stored section. Found sections are cached.
func (s *RecordAnnexSource) Template(ctx context.Context, name string) ([]byte, error) {
	if data, ok := s.cache.Get(name); ok {
		return data, nil
	}
	tmpl, err := s.templates.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	if tmpl == nil || len(tmpl.Data) == 0 {
		return nil, nil
	}
	s.cache.Set(name, tmpl.Data)
	return tmpl.Data, nil
}

// ProductAnnexNames returns the annex section of every product on the quote,
// once each, in line order.
func (s *RecordAnnexSource) ProductAnnexNames(ctx context.Context, quoteID string) ([]string, error) {
	lines, err := s.lines.FindByQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return distinct(lines, func(l model.Line) string { return l.Product.AnnexName }), nil
}

// ApartmentURLs returns the floor plan location of every apartment on the quote.
func (s *RecordAnnexSource) ApartmentURLs(ctx context.Context, quoteID string) ([]string, error) {
	lines, err := s.lines.FindByQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return distinct(lines, func(l model.Line) string {
		if l.Product.Type != model.ProductTypeApartment {
			return ""
		}
		return l.Product.FloorPlanURL
	}), nil
}

// Download fetches one remote document.
func (s *RecordAnnexSource) Download(ctx context.Context, url string) ([]byte, error) {
	return s.fetcher.Fetch(ctx, url)
}

// RoomTypeSheets returns the lobby sheet followed by one finish sheet per
// distinct apartment room count. A quote without apartments has none.
func (s *RecordAnnexSource) RoomTypeSheets(ctx context.Context, quoteID string) ([][]byte, error) {
	lines, err := s.lines.FindByQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	counts := make(map[int]struct{})
	for _, l := range lines {
		if l.Product.Type == model.ProductTypeApartment && l.Product.RoomCount > 0 {
			counts[l.Product.RoomCount] = struct{}{}
		}
	}
	if len(counts) == 0 {
		return nil, nil
	}
	rooms := make([]int, 0, len(counts))
	for n := range counts {
		rooms = append(rooms, n)
	}
	sort.Ints(rooms)

	names := []string{s.lobby}
	for _, n := range rooms {
		names = append(names, s.finishPrefix+strconv.Itoa(n))
	}

	var sheets [][]byte
	for _, name := range names {
		if name == "" {
			continue
		}
		data, err := s.Template(ctx, name)
		if err != nil {
			return nil, err
		}
		if data == nil {
			log.Debug().Str("quote_id", quoteID).Str("section", name).Msg("Room type sheet not found")
			continue
		}
		sheets = append(sheets, data)
	}
	return sheets, nil
}

func (s *RecordAnnexSource) quoteWithLines(ctx context.Context, quoteID string) (*model.Quote, []model.Line, error) {
	quote, err := s.quotes.FindByID(ctx, quoteID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.lines.FindByQuote(ctx, quoteID)
	if err != nil {
		return nil, nil, err
	}
	return quote, lines, nil
}

// PriceList generates the price list of the quote lines.
func (s *RecordAnnexSource) PriceList(ctx context.Context, quoteID string) ([]byte, error) {
	quote, lines, err := s.quoteWithLines(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return s.generator.PriceList(*quote, lines)
}

// QuoteSummary generates the quote summary page.
func (s *RecordAnnexSource) QuoteSummary(ctx context.Context, quoteID string) ([]byte, error) {
	quote, lines, err := s.quoteWithLines(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return s.generator.QuoteSummary(*quote, lines)
}

// AgentPage generates the sales agent page.
func (s *RecordAnnexSource) AgentPage(ctx context.Context, quoteID string) ([]byte, error) {
	quote, err := s.quotes.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return s.generator.AgentPage(*quote)
}

func distinct(lines []model.Line, key func(model.Line) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, l := range lines {
		k := key(l)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// AnnexDocument is a merged annex ready for download.
type AnnexDocument struct {
	FileName  string
	Data      []byte
	PageCount int
	Warnings  []string
}

// AnnexBuilder produces the annex document of a quote.
type AnnexBuilder interface {
	Build(ctx context.Context, quoteID, locale string, progress ProgressFunc) (AnnexDocument, error)
}

// AnnexService collects and merges the annex of a quote.
type AnnexService struct {
	quotes    repository.QuotesRepositoryInterface
	collector *AnnexCollector
	merger    *PDFMerger
	title     string
}

// NewAnnexService creates an annex service. title prefixes the file name.
func NewAnnexService(quotes repository.QuotesRepositoryInterface, collector *AnnexCollector, merger *PDFMerger, title string) *AnnexService {
	return &AnnexService{
		quotes:    quotes,
		collector: collector,
		merger:    merger,
		title:     title,
	}
}

// Build runs the collection and the merge. When no page could be merged
// the returned document still carries the warnings and the error is
// ErrAnnexEmpty.
func (s *AnnexService) Build(ctx context.Context, quoteID, locale string, progress ProgressFunc) (AnnexDocument, error) {
	quote, err := s.quotes.FindByID(ctx, quoteID)
	if err != nil {
		return AnnexDocument{}, err
	}

	collection := s.collector.Collect(ctx, quoteID, locale, progress)
	doc := AnnexDocument{
		FileName: fmt.Sprintf("%s - %s.pdf", s.title, quote.Name),
		Warnings: collection.Warnings(),
	}

	merged, err := s.merger.Merge(ctx, collection.Buffers)
	if err != nil {
		return doc, err
	}
	if merged.Empty() {
		return doc, ErrAnnexEmpty
	}
	doc.Data = merged.Data
	doc.PageCount = merged.PageCount
	return doc, nil
}
