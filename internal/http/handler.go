package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-configurator/internal/circuitbreaker"
	"github.com/guttosm/quote-configurator/internal/domain/dto"
	"github.com/guttosm/quote-configurator/internal/i18n"
	"github.com/guttosm/quote-configurator/internal/middleware"
	"github.com/guttosm/quote-configurator/internal/repository"
	"github.com/guttosm/quote-configurator/internal/service"
)

// Handler provides HTTP handlers for configuration sessions and pricebooks.
type Handler struct {
	configurator service.ConfiguratorService
}

// NewHandler creates a new Handler instance.
func NewHandler(configurator service.ConfiguratorService) *Handler {
	return &Handler{configurator: configurator}
}

const auditServiceKey = "audit_service"

// withAuditService makes ls available to handlers through auditService.
func withAuditService(ls service.LoggingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ls != nil {
			c.Set(auditServiceKey, ls)
		}
		c.Next()
	}
}

// auditService returns the logging service the router put on the context.
func auditService(c *gin.Context) service.LoggingService {
	if v, exists := c.Get(auditServiceKey); exists {
		if ls, ok := v.(service.LoggingService); ok {
			return ls
		}
	}
	return nil
}

// ListPricebooks handles GET /api/quotes/:quoteId/pricebooks.
//
// @Summary      List pricebooks for a quote
// @Description  Returns the active pricebooks valid on the quote date. The quote's current pricebook is flagged.
// @Tags         Configuration
// @Produce      json
// @Param        quoteId path string true "Quote id"
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Success      200 {object} dto.SuccessResponse "Pricebook options"
// @Failure      404 {object} dto.ErrorResponse "Quote not found or no pricebooks"
// @Failure      503 {object} dto.ErrorResponse "Record store unavailable"
// @Router       /api/quotes/{quoteId}/pricebooks [get]
func (h *Handler) ListPricebooks(c *gin.Context) {
	builder := NewResponseBuilder(c)
	quoteID := c.Param("quoteId")

	options, err := h.configurator.Pricebooks(c.Request.Context(), quoteID)
	switch {
	case err == nil:
		builder.SuccessOK(options)
	case errors.Is(err, repository.ErrRecordNotFound):
		builder.Error(http.StatusNotFound, i18n.ErrKeyQuoteNotFound, err)
	case errors.Is(err, service.ErrNoPricebooks):
		builder.Error(http.StatusNotFound, i18n.ErrKeyNoPricebooks, err)
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable, err)
	default:
		builder.Error(http.StatusInternalServerError, i18n.ErrKeyInternalError, err)
	}
}

// StartConfiguration handles POST /api/quotes/:quoteId/configurations.
//
// @Summary      Start a configuration session
// @Description  Loads the field set, the catalog and the quote's existing lines and opens a session. A session that cannot be used is still returned with fatal=true and its messages.
// @Tags         Configuration
// @Accept       json
// @Produce      json
// @Param        quoteId path string true "Quote id"
// @Param        request body dto.StartConfigurationRequest false "Pricebook and products to configure"
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Success      201 {object} dto.SuccessResponse "Session view"
// @Failure      400 {object} dto.ErrorResponse "Invalid request body"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Router       /api/quotes/{quoteId}/configurations [post]
func (h *Handler) StartConfiguration(c *gin.Context) {
	builder := NewResponseBuilder(c)
	quoteID := c.Param("quoteId")

	req, err := BuildRequest[dto.StartConfigurationRequest](c, AllowEmptyBody())
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}

	session, err := h.configurator.Start(c.Request.Context(), quoteID, *req)
	if err != nil {
		builder.Error(http.StatusInternalServerError, i18n.ErrKeyInternalError, err)
		return
	}
	c.Set(middleware.SessionIDKey, session.ID())

	middleware.AuditLog(auditService(c), c, middleware.ActionConfigurationStart, "Configuration session started", map[string]interface{}{
		"pricebook_id": req.PricebookID,
		"products":     len(req.ProductIDs),
		"fatal":        session.Fatal(),
	})

	builder.SuccessCreated(session.View(i18n.GetLocale(c)))
}

// GetConfiguration handles GET /api/configurations/:sessionId.
//
// @Summary      Get a configuration session
// @Tags         Configuration
// @Produce      json
// @Param        sessionId path string true "Session id"
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Success      200 {object} dto.SuccessResponse "Session view"
// @Failure      404 {object} dto.ErrorResponse "Session not found or expired"
// @Router       /api/configurations/{sessionId} [get]
func (h *Handler) GetConfiguration(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	NewResponseBuilder(c).SuccessOK(session.View(i18n.GetLocale(c)))
}

// ChangeSelection handles POST /api/configurations/:sessionId/selection.
//
// @Summary      Toggle a bundle option
// @Description  Selects or deselects an optional child of a bundle and returns the recalculated view. Deselecting a mandatory child has no effect.
// @Tags         Configuration
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Session id"
// @Param        request body dto.SelectionRequest true "Selection change"
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Success      200 {object} dto.SuccessResponse "Session view"
// @Failure      400 {object} dto.ErrorResponse "Invalid request body"
// @Failure      404 {object} dto.ErrorResponse "Session or line not found"
// @Failure      409 {object} dto.ErrorResponse "Session is not ready"
// @Router       /api/configurations/{sessionId}/selection [post]
func (h *Handler) ChangeSelection(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequest[dto.SelectionRequest](c)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.Toggle(req.ParentProductID, req.ChildProductID, *req.Selected); err != nil {
		h.sessionError(c, err)
		return
	}
	builder.SuccessOK(session.View(i18n.GetLocale(c)))
}

// EditCells handles PATCH /api/configurations/:sessionId/cells.
//
// @Summary      Edit table cells
// @Description  Applies a batch of draft values to the working copy and returns the recalculated view. The batch is applied entirely or not at all.
// @Tags         Configuration
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Session id"
// @Param        request body dto.CellEditRequest true "Cell edits"
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Success      200 {object} dto.SuccessResponse "Session view"
// @Failure      400 {object} dto.ErrorResponse "Invalid edit or read-only column"
// @Failure      404 {object} dto.ErrorResponse "Session or row not found"
// @Failure      409 {object} dto.ErrorResponse "Session is not ready"
// @Router       /api/configurations/{sessionId}/cells [patch]
func (h *Handler) EditCells(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequest[dto.CellEditRequest](c)
	if err != nil {
		var vErr *dto.ValidationError
		if errors.As(err, &vErr) {
			builder.ErrorWithMessage(http.StatusBadRequest, vErr.Error(), err)
			return
		}
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.EditCell(req.Edits); err != nil {
		h.sessionError(c, err)
		return
	}
	builder.SuccessOK(session.View(i18n.GetLocale(c)))
}

// SaveConfiguration handles POST /api/configurations/:sessionId/save.
//
// @Summary      Save the configuration
// @Description  Validates the working copy and saves it in two phases: parent lines first, then their options. A failed validation returns 422 with one detail per issue and leaves the session ready. Supports idempotency via Idempotency-Key header.
// @Tags         Configuration
// @Produce      json
// @Param        sessionId path string true "Session id"
// @Param        Idempotency-Key header string false "Idempotency key for request deduplication"
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Success      200 {object} dto.SuccessResponse "Save result"
// @Failure      404 {object} dto.ErrorResponse "Session not found"
// @Failure      409 {object} dto.ErrorResponse "Session is not ready"
// @Failure      422 {object} dto.ErrorResponse "Validation failed or rows rejected"
// @Failure      500 {object} dto.ErrorResponse "Save failed"
// @Failure      503 {object} dto.ErrorResponse "Record store unavailable"
// @Router       /api/configurations/{sessionId}/save [post]
func (h *Handler) SaveConfiguration(c *gin.Context) {
	builder := NewResponseBuilder(c)
	session, ok := h.session(c)
	if !ok {
		return
	}
	locale := i18n.GetLocale(c)
	ls := auditService(c)

	summary, err := session.Save(c.Request.Context(), locale)
	if err != nil {
		if errors.Is(err, service.ErrSessionFatal) || errors.Is(err, service.ErrInvalidTransition) {
			h.sessionError(c, err)
			return
		}
		middleware.AuditLogError(ls, c, middleware.ActionConfigurationSave, "Configuration save failed", err, map[string]interface{}{
			"parents_saved": len(summary.Outcome.Parents),
		})
		h.saveError(c, session, locale, err)
		return
	}

	if !summary.Validation.Valid {
		details := make(map[string]string, len(summary.Validation.Issues))
		for _, issue := range summary.Validation.Issues {
			details[issue.Row+"."+issue.Field] = issue.Message
		}
		builder.ErrorWithDetails(http.StatusUnprocessableEntity, summary.Validation.Message, details, nil)
		return
	}

	result := dto.SaveResult{
		SessionID:     session.ID(),
		State:         string(summary.State),
		ParentsSaved:  len(summary.Outcome.Parents),
		ChildrenSaved: summary.Outcome.ChildrenSaved,
		Dropped:       summary.Outcome.Dropped,
	}
	middleware.AuditLog(ls, c, middleware.ActionConfigurationSave, i18n.GetTranslator().Translate(i18n.SuccessKeyConfigurationSaved, locale), map[string]interface{}{
		"parents_saved":  result.ParentsSaved,
		"children_saved": result.ChildrenSaved,
		"dropped":        len(result.Dropped),
	})
	if summary.State == service.StateQuit {
		h.configurator.Close(session.ID())
	}
	builder.SuccessOK(result)
}

// Back handles POST /api/configurations/:sessionId/back.
//
// @Summary      Leave the table
// @Description  Discards the working copy and the selection. The session returns to uninitialized until a new pick is posted to /api/configurations/{sessionId}/products.
// @Tags         Configuration
// @Produce      json
// @Param        sessionId path string true "Session id"
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Success      200 {object} dto.SuccessResponse "Session view"
// @Failure      404 {object} dto.ErrorResponse "Session not found"
// @Failure      409 {object} dto.ErrorResponse "Session is saving or unusable"
// @Router       /api/configurations/{sessionId}/back [post]
func (h *Handler) Back(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.Back(); err != nil {
		h.sessionError(c, err)
		return
	}
	NewResponseBuilder(c).SuccessOK(session.View(i18n.GetLocale(c)))
}

// session resolves the path's session and tags the request with its ids.
func (h *Handler) session(c *gin.Context) (*service.Session, bool) {
	id := c.Param("sessionId")
	s, err := h.configurator.Session(id)
	if err != nil {
		h.sessionError(c, err)
		return nil, false
	}
	c.Set(middleware.SessionIDKey, s.ID())
	c.Set(middleware.QuoteIDKey, s.QuoteID())
	return s, true
}

// sessionError maps session event errors to responses.
func (h *Handler) sessionError(c *gin.Context, err error) {
	builder := NewResponseBuilder(c)
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		builder.Error(http.StatusNotFound, i18n.ErrKeySessionNotFound, err)
	case errors.Is(err, service.ErrSessionFatal):
		builder.Error(http.StatusConflict, i18n.ErrKeySessionFatal, err)
	case errors.Is(err, service.ErrInvalidTransition):
		builder.Error(http.StatusConflict, i18n.ErrKeyInvalidTransition, err)
	case errors.Is(err, service.ErrLineNotFound):
		builder.Error(http.StatusNotFound, i18n.ErrKeyNotFound, err)
	default:
		// read-only columns and values that do not convert
		builder.ErrorWithMessage(http.StatusBadRequest, err.Error(), err)
	}
}

// saveError reports a store failure with the messages the session recorded.
func (h *Handler) saveError(c *gin.Context, session *service.Session, locale string, err error) {
	builder := NewResponseBuilder(c)
	message := strings.Join(session.View(locale).Errors, "\n")

	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable, err)
	case errors.Is(err, service.ErrSaveRejected):
		builder.ErrorWithMessage(http.StatusUnprocessableEntity, message, err)
	default:
		builder.ErrorWithMessage(http.StatusInternalServerError, message, err)
	}
}
