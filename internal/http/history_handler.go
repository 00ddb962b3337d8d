package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-configurator/internal/circuitbreaker"
	"github.com/guttosm/quote-configurator/internal/domain/dto"
	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/guttosm/quote-configurator/internal/i18n"
	"github.com/guttosm/quote-configurator/internal/service"
)

var errAuditDisabled = errors.New("audit log storage is not configured")

// QuoteHistory handles GET /api/quotes/:quoteId/history.
//
// @Summary      Quote audit trail
// @Description  Lists the configuration starts, saves and annex downloads recorded for a quote, newest first.
// @Tags         Configuration
// @Produce      json
// @Param        quoteId path string true "Quote id"
// @Param        action query string false "Only this action, e.g. configuration.save"
// @Param        limit query int false "Page size (1-500, default 50)"
// @Param        skip query int false "Entries to skip"
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Success      200 {object} dto.SuccessResponse{data=dto.QuoteHistory} "Audit trail"
// @Failure      400 {object} dto.ErrorResponse "Invalid query"
// @Failure      503 {object} dto.ErrorResponse "Audit storage unavailable"
// @Router       /api/quotes/{quoteId}/history [get]
func (h *Handler) QuoteHistory(c *gin.Context) {
	builder := NewResponseBuilder(c)

	var query dto.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return
	}

	logs := auditService(c)
	if logs == nil {
		builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable, errAuditDisabled)
		return
	}

	quoteID := c.Param("quoteId")
	opts := model.LogQueryOptions{
		QuoteID:   quoteID,
		Action:    query.Action,
		AuditOnly: true,
		Limit:     query.Limit,
		Skip:      query.Skip,
	}
	ctx := c.Request.Context()

	entries, err := logs.QueryLogs(ctx, opts)
	var total int64
	if err == nil {
		total, err = logs.CountLogs(ctx, opts)
	}

	switch {
	case err == nil:
		builder.SuccessOK(dto.QuoteHistory{QuoteID: quoteID, Total: total, Entries: entries})
	case errors.Is(err, service.ErrInvalidLogWindow):
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable, err)
	default:
		builder.Error(http.StatusInternalServerError, i18n.ErrKeyInternalError, err)
	}
}
