package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/guttosm/quote-configurator/internal/logger"
	"github.com/guttosm/quote-configurator/internal/metrics"
)

func init() {
	api.DisableConfigDir()
}

// PDFMerger concatenates collected buffers into one document.
type PDFMerger struct{}

// NewPDFMerger creates a merger.
func NewPDFMerger() *PDFMerger {
	return &PDFMerger{}
}

func pdfConfig() *pdfmodel.Configuration {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return conf
}

// Merge appends every page of every readable buffer in order. Empty and
// malformed buffers are skipped and reported in SkippedSources. When nothing
// is readable the result is the empty document and the error is nil.
func (m *PDFMerger) Merge(ctx context.Context, buffers []model.DocumentBuffer) (model.MergedDocument, error) {
	start := time.Now()
	log := logger.Component(ctx, "pdf_merger")
	var doc model.MergedDocument

	readers := make([]io.ReadSeeker, 0, len(buffers))
	var usable [][]byte
	pages := 0
	for _, b := range buffers {
		if err := ctx.Err(); err != nil {
			return model.MergedDocument{}, err
		}
		if b.Empty() {
			continue
		}
		n, err := api.PageCount(bytes.NewReader(b.Data), pdfConfig())
		if err != nil || n == 0 {
			log.Warn().Err(err).Str("source", b.Source).Int("position", b.Position).Msg("Skipping unreadable document")
			doc.SkippedSources = append(doc.SkippedSources, b.Source)
			continue
		}
		pages += n
		usable = append(usable, b.Data)
		readers = append(readers, bytes.NewReader(b.Data))
	}

	switch len(usable) {
	case 0:
		return doc, nil
	case 1:
		doc.Data = usable[0]
	default:
		var out bytes.Buffer
		if err := api.MergeRaw(readers, &out, false, pdfConfig()); err != nil {
			return model.MergedDocument{}, fmt.Errorf("merge documents: %w", err)
		}
		doc.Data = out.Bytes()
	}
	doc.PageCount = pages
	doc.MergedSources = len(usable)

	metrics.RecordAnnexMerge(time.Since(start), pages)
	log.Info().
		Int("sources", doc.MergedSources).
		Int("skipped", len(doc.SkippedSources)).
		Int("pages", pages).
		Msg("Annex documents merged")
	return doc, nil
}
