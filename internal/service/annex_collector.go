package service

import (
	"context"
	"path"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/guttosm/quote-configurator/internal/i18n"
	"github.com/guttosm/quote-configurator/internal/logger"
	"github.com/guttosm/quote-configurator/internal/metrics"
)

// AnnexSource supplies the documents of a quote annex. Every method may
// return a nil payload, which means the document does not exist.
type AnnexSource interface {
	Template(ctx context.Context, name string) ([]byte, error)
	ProductAnnexNames(ctx context.Context, quoteID string) ([]string, error)
	ApartmentURLs(ctx context.Context, quoteID string) ([]string, error)
	Download(ctx context.Context, url string) ([]byte, error)
	RoomTypeSheets(ctx context.Context, quoteID string) ([][]byte, error)
	PriceList(ctx context.Context, quoteID string) ([]byte, error)
	QuoteSummary(ctx context.Context, quoteID string) ([]byte, error)
	AgentPage(ctx context.Context, quoteID string) ([]byte, error)
}

// SourceFailure records one document that could not be collected. Warn
// failures are reported to the user; the others are only logged.
type SourceFailure struct {
	Source  string
	Cause   error
	Warn    bool
	Message string
}

// AnnexCollection is the ordered result of a collection run.
type AnnexCollection struct {
	Buffers  []model.DocumentBuffer
	Failures []SourceFailure
}

// Warnings returns the user-facing messages of warn failures.
func (c AnnexCollection) Warnings() []string {
	var out []string
	for _, f := range c.Failures {
		if f.Warn {
			out = append(out, f.Message)
		}
	}
	return out
}

// ProgressFunc receives localised status text and the number of documents
// collected so far.
type ProgressFunc func(status string, collected int)

// AnnexCollector gathers the annex documents of a quote one step at a time.
type AnnexCollector struct {
	source     AnnexSource
	opening    []string
	closing    string
	translator *i18n.Translator
}

// NewAnnexCollector creates a collector. opening are the template sections
// printed first, closing the section printed before the agent page.
func NewAnnexCollector(source AnnexSource, opening []string, closing string, translator *i18n.Translator) *AnnexCollector {
	if translator == nil {
		translator = i18n.GetTranslator()
	}
	return &AnnexCollector{
		source:     source,
		opening:    opening,
		closing:    closing,
		translator: translator,
	}
}

type annexStep struct {
	name string
	run  func(ctx context.Context, r *annexRun)
}

type annexRun struct {
	quoteID    string
	locale     string
	translator *i18n.Translator
	progress   ProgressFunc
	log        *zerolog.Logger
	result     AnnexCollection
}

func (r *annexRun) add(source string, data []byte) {
	if len(data) == 0 {
		return
	}
	r.result.Buffers = append(r.result.Buffers, model.DocumentBuffer{
		Source:   source,
		Position: len(r.result.Buffers),
		Data:     data,
	})
}

// fail records a failure. A non-empty warnKey makes it a user warning.
func (r *annexRun) fail(source string, err error, warnKey string, args ...string) {
	f := SourceFailure{Source: source, Cause: err}
	if warnKey != "" {
		f.Warn = true
		f.Message = r.translator.Format(warnKey, r.locale, args...)
	}
	r.result.Failures = append(r.result.Failures, f)
	r.log.Warn().Err(err).Str("quote_id", r.quoteID).Str("source", source).Msg("Annex document skipped")
}

func (r *annexRun) report(key string, args ...string) {
	if r.progress == nil {
		return
	}
	r.progress(r.translator.Format(key, r.locale, args...), len(r.result.Buffers))
}

func (c *AnnexCollector) steps() []annexStep {
	return []annexStep{
		{"opening", c.openingSections},
		{"products", c.productAnnexes},
		{"apartments", c.apartments},
		{"room_types", c.roomTypes},
		{"price_list", c.single("price_list", c.source.PriceList)},
		{"quote_summary", c.single("quote_summary", c.source.QuoteSummary)},
		{"closing", c.closingSection},
		{"agent", c.agent},
	}
}

// Collect runs every step in order. A failing step never stops the run.
func (c *AnnexCollector) Collect(ctx context.Context, quoteID, locale string, progress ProgressFunc) AnnexCollection {
	r := &annexRun{
		quoteID:    quoteID,
		locale:     locale,
		translator: c.translator,
		progress:   progress,
		log:        logger.Ctx(ctx),
	}
	r.report(i18n.AnnexKeyPreparing)

	for _, step := range c.steps() {
		before := len(r.result.Buffers)
		failures := len(r.result.Failures)
		step.run(ctx, r)

		result := "ok"
		switch {
		case len(r.result.Failures) > failures:
			result = "failed"
		case len(r.result.Buffers) == before:
			result = "empty"
		}
		metrics.RecordAnnexSource(step.name, result)
	}

	r.report(i18n.AnnexKeyMerging, strconv.Itoa(len(r.result.Buffers)))
	return r.result
}

func (c *AnnexCollector) template(ctx context.Context, r *annexRun, name string) {
	source := "section:" + name
	data, err := c.source.Template(ctx, name)
	if err != nil {
		r.fail(source, err, "")
		return
	}
	r.add(source, data)
}

func (c *AnnexCollector) openingSections(ctx context.Context, r *annexRun) {
	for _, name := range c.opening {
		r.report(i18n.AnnexKeyStep, name, strconv.Itoa(len(r.result.Buffers)))
		c.template(ctx, r, name)
	}
}

func (c *AnnexCollector) productAnnexes(ctx context.Context, r *annexRun) {
	names, err := c.source.ProductAnnexNames(ctx, r.quoteID)
	if err != nil {
		r.fail("products", err, "")
		return
	}
	for _, name := range names {
		r.report(i18n.AnnexKeyStep, name, strconv.Itoa(len(r.result.Buffers)))
		c.template(ctx, r, name)
	}
}

func (c *AnnexCollector) apartments(ctx context.Context, r *annexRun) {
	urls, err := c.source.ApartmentURLs(ctx, r.quoteID)
	if err != nil {
		r.fail("apartments", err, i18n.AnnexWarnApartmentURL)
		return
	}
	for _, url := range urls {
		r.report(i18n.AnnexKeyApartment, path.Base(url))
		data, err := c.source.Download(ctx, url)
		if err != nil {
			r.fail("apartment:"+url, err, i18n.AnnexWarnApartment, url)
			continue
		}
		r.add("apartment:"+url, data)
	}
}

func (c *AnnexCollector) roomTypes(ctx context.Context, r *annexRun) {
	r.report(i18n.AnnexKeyLobby)
	sheets, err := c.source.RoomTypeSheets(ctx, r.quoteID)
	if err != nil {
		r.fail("room_types", err, i18n.AnnexWarnRoomTypes)
		return
	}
	for i, sheet := range sheets {
		r.add("room_types:"+strconv.Itoa(i), sheet)
	}
}

func (c *AnnexCollector) single(source string, fetch func(context.Context, string) ([]byte, error)) func(context.Context, *annexRun) {
	return func(ctx context.Context, r *annexRun) {
		r.report(i18n.AnnexKeyStep, source, strconv.Itoa(len(r.result.Buffers)))
		data, err := fetch(ctx, r.quoteID)
		if err != nil {
			r.fail(source, err, "")
			return
		}
		r.add(source, data)
	}
}

func (c *AnnexCollector) closingSection(ctx context.Context, r *annexRun) {
	if c.closing == "" {
		return
	}
	r.report(i18n.AnnexKeyStep, c.closing, strconv.Itoa(len(r.result.Buffers)))
	c.template(ctx, r, c.closing)
}

func (c *AnnexCollector) agent(ctx context.Context, r *annexRun) {
	data, err := c.source.AgentPage(ctx, r.quoteID)
	if err != nil {
		r.fail("agent", err, i18n.AnnexWarnAgent)
		return
	}
	r.add("agent", data)
}
