package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/guttosm/quote-configurator/internal/logger"
	"github.com/guttosm/quote-configurator/internal/repository"
)

// ErrProformaEmpty is returned when the quote has no saved lines to invoice.
var ErrProformaEmpty = errors.New("quote has no lines to invoice")

// ProformaBuilder produces the proforma invoice of a quote.
type ProformaBuilder interface {
	Proforma(ctx context.Context, quoteID string) (AnnexDocument, error)
}

// ProformaService renders proforma invoices from the saved quote lines.
type ProformaService struct {
	quotes    repository.QuotesRepositoryInterface
	lines     repository.QuoteLinesRepositoryInterface
	generator *AnnexGenerator
	now       func() time.Time
}

// NewProformaService creates a proforma service.
func NewProformaService(quotes repository.QuotesRepositoryInterface, lines repository.QuoteLinesRepositoryInterface, generator *AnnexGenerator) *ProformaService {
	return &ProformaService{
		quotes:    quotes,
		lines:     lines,
		generator: generator,
		now:       time.Now,
	}
}

// Proforma renders the invoice dated today.
func (s *ProformaService) Proforma(ctx context.Context, quoteID string) (AnnexDocument, error) {
	quote, err := s.quotes.FindByID(ctx, quoteID)
	if err != nil {
		return AnnexDocument{}, err
	}
	lines, err := s.lines.FindByQuote(ctx, quoteID)
	if err != nil {
		return AnnexDocument{}, err
	}

	issued := s.now()
	data, err := s.generator.Proforma(*quote, lines, issued)
	if err != nil {
		return AnnexDocument{}, err
	}
	if len(data) == 0 {
		return AnnexDocument{}, ErrProformaEmpty
	}

	pages, err := api.PageCount(bytes.NewReader(data), pdfConfig())
	if err != nil {
		return AnnexDocument{}, fmt.Errorf("count proforma pages: %w", err)
	}

	number := ProformaNumber(*quote, issued)
	logger.Ctx(ctx).Debug().
		Str("quote_id", quoteID).
		Str("proforma", number).
		Int("lines", len(lines)).
		Msg("Proforma rendered")
	return AnnexDocument{
		FileName:  fmt.Sprintf("Proforma %s - %s.pdf", number, quote.Name),
		Data:      data,
		PageCount: pages,
	}, nil
}
