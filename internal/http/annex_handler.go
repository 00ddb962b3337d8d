package http

import (
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/guttosm/quote-configurator/internal/circuitbreaker"
	"github.com/guttosm/quote-configurator/internal/i18n"
	"github.com/guttosm/quote-configurator/internal/middleware"
	"github.com/guttosm/quote-configurator/internal/repository"
	"github.com/guttosm/quote-configurator/internal/service"
)

const (
	// AnnexWarningsHeader carries one percent-encoded warning per value.
	AnnexWarningsHeader = "X-Annex-Warnings"
	// AnnexPagesHeader carries the page count of the merged annex.
	AnnexPagesHeader = "X-Annex-Pages"
)

// AnnexHandler serves the merged annex of a quote and, when configured, its
// proforma invoice.
type AnnexHandler struct {
	builder  service.AnnexBuilder
	proforma service.ProformaBuilder
}

// AnnexHandlerOption configures an AnnexHandler.
type AnnexHandlerOption func(*AnnexHandler)

// WithProforma enables the proforma invoice download.
func WithProforma(p service.ProformaBuilder) AnnexHandlerOption {
	return func(h *AnnexHandler) {
		h.proforma = p
	}
}

// NewAnnexHandler creates a new AnnexHandler.
func NewAnnexHandler(builder service.AnnexBuilder, opts ...AnnexHandlerOption) *AnnexHandler {
	h := &AnnexHandler{builder: builder}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// DownloadAnnex handles GET /api/quotes/:quoteId/annex.
//
// @Summary      Download the quote annex
// @Description  Collects the template sections, product annexes, apartment plans, room type sheets, generated price list, quote summary and agent page, merges them in that order and returns one PDF. Documents that cannot be loaded are skipped; user-facing warnings are returned in the X-Annex-Warnings header.
// @Tags         Annex
// @Produce      application/pdf
// @Param        quoteId path string true "Quote id"
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Success      200 {file} binary "Merged annex"
// @Failure      404 {object} dto.ErrorResponse "Quote not found"
// @Failure      422 {object} dto.ErrorResponse "No document could be merged"
// @Failure      503 {object} dto.ErrorResponse "Record store unavailable"
// @Router       /api/quotes/{quoteId}/annex [get]
func (h *AnnexHandler) DownloadAnnex(c *gin.Context) {
	builder := NewResponseBuilder(c)
	quoteID := c.Param("quoteId")
	locale := i18n.GetLocale(c)
	requestID := middleware.GetRequestID(c)

	progress := func(status string, collected int) {
		log.Debug().
			Str("request_id", requestID).
			Str("quote_id", quoteID).
			Int("collected", collected).
			Msg(status)
	}

	doc, err := h.builder.Build(c.Request.Context(), quoteID, locale, progress)
	setWarnings(c, doc.Warnings)
	if err != nil {
		middleware.AuditLogError(auditService(c), c, middleware.ActionAnnexDownload, "Annex download failed", err, map[string]interface{}{
			"warnings": len(doc.Warnings),
		})
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			builder.Error(http.StatusNotFound, i18n.ErrKeyQuoteNotFound, err)
		case errors.Is(err, service.ErrAnnexEmpty):
			builder.Error(http.StatusUnprocessableEntity, i18n.ErrKeyAnnexEmpty, err)
		case errors.Is(err, circuitbreaker.ErrCircuitOpen):
			builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable, err)
		default:
			builder.Error(http.StatusInternalServerError, i18n.ErrKeyInternalError, err)
		}
		return
	}

	middleware.AuditLog(auditService(c), c, middleware.ActionAnnexDownload, "Annex downloaded", map[string]interface{}{
		"pages":    doc.PageCount,
		"warnings": len(doc.Warnings),
	})

	sendPDF(c, doc)
}

// DownloadProforma handles GET /api/quotes/:quoteId/proforma.
//
// @Summary      Download the proforma invoice
// @Description  Renders a proforma invoice of the quote's saved lines, options listed under their parent, with the amount due.
// @Tags         Annex
// @Produce      application/pdf
// @Param        quoteId path string true "Quote id"
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Success      200 {file} binary "Proforma invoice"
// @Failure      404 {object} dto.ErrorResponse "Quote not found"
// @Failure      422 {object} dto.ErrorResponse "Quote has no saved lines"
// @Failure      503 {object} dto.ErrorResponse "Record store unavailable"
// @Router       /api/quotes/{quoteId}/proforma [get]
func (h *AnnexHandler) DownloadProforma(c *gin.Context) {
	builder := NewResponseBuilder(c)

	doc, err := h.proforma.Proforma(c.Request.Context(), c.Param("quoteId"))
	if err != nil {
		middleware.AuditLogError(auditService(c), c, middleware.ActionProformaDownload, "Proforma download failed", err, nil)
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			builder.Error(http.StatusNotFound, i18n.ErrKeyQuoteNotFound, err)
		case errors.Is(err, service.ErrProformaEmpty):
			builder.Error(http.StatusUnprocessableEntity, i18n.ErrKeyProformaEmpty, err)
		case errors.Is(err, circuitbreaker.ErrCircuitOpen):
			builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable, err)
		default:
			builder.Error(http.StatusInternalServerError, i18n.ErrKeyInternalError, err)
		}
		return
	}

	middleware.AuditLog(auditService(c), c, middleware.ActionProformaDownload, "Proforma downloaded", map[string]interface{}{
		"pages": doc.PageCount,
	})
	sendPDF(c, doc)
}

func sendPDF(c *gin.Context, doc service.AnnexDocument) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	c.Header(AnnexPagesHeader, strconv.Itoa(doc.PageCount))
	c.Data(http.StatusOK, "application/pdf", doc.Data)
}

func setWarnings(c *gin.Context, warnings []string) {
	for _, w := range warnings {
		c.Writer.Header().Add(AnnexWarningsHeader, url.PathEscape(w))
	}
}
