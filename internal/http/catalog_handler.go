package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-configurator/internal/circuitbreaker"
	"github.com/guttosm/quote-configurator/internal/domain/dto"
	"github.com/guttosm/quote-configurator/internal/i18n"
	"github.com/guttosm/quote-configurator/internal/middleware"
	"github.com/guttosm/quote-configurator/internal/service"
)

// SearchProducts handles GET /api/pricebooks/:pricebookId/entries.
//
// @Summary      Search pricebook products
// @Description  Lists the active price entries of the pricebook whose product name or code contains q, case-insensitively. Products passed in exclude are left out. A blank q returns no entries.
// @Tags         Configuration
// @Produce      json
// @Param        pricebookId path string true "Pricebook id"
// @Param        q query string false "Search term"
// @Param        exclude query []string false "Product ids already picked" collectionFormat(multi)
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Success      200 {object} dto.SuccessResponse{data=dto.ProductSearchResult} "Matching products"
// @Failure      400 {object} dto.ErrorResponse "Invalid query"
// @Failure      503 {object} dto.ErrorResponse "Record store unavailable"
// @Router       /api/pricebooks/{pricebookId}/entries [get]
func (h *Handler) SearchProducts(c *gin.Context) {
	builder := NewResponseBuilder(c)

	var query dto.ProductSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return
	}

	pricebookID := c.Param("pricebookId")
	entries, err := h.configurator.SearchProducts(c.Request.Context(), pricebookID, query.Term, query.ExcludedIDs())
	switch {
	case err == nil:
		builder.SuccessOK(dto.ProductSearchResult{
			PricebookID: pricebookID,
			Term:        query.Term,
			Entries:     entries,
		})
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable, err)
	default:
		builder.Error(http.StatusInternalServerError, i18n.ErrKeyCatalogUnavailable, err)
	}
}

// LoadProducts handles POST /api/configurations/:sessionId/products.
//
// @Summary      Pick products again
// @Description  After Back, loads the catalog for a new product pick and returns the session to ready. Only an uninitialized session accepts it.
// @Tags         Configuration
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Session id"
// @Param        request body dto.LoadProductsRequest true "Picked products"
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Success      200 {object} dto.SuccessResponse{data=dto.ConfigurationView} "Session view"
// @Failure      400 {object} dto.ErrorResponse "Invalid request body"
// @Failure      404 {object} dto.ErrorResponse "Session not found"
// @Failure      409 {object} dto.ErrorResponse "Session has not gone back or is unusable"
// @Failure      500 {object} dto.ErrorResponse "Catalog could not be loaded"
// @Failure      503 {object} dto.ErrorResponse "Record store unavailable"
// @Router       /api/configurations/{sessionId}/products [post]
func (h *Handler) LoadProducts(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequest[dto.LoadProductsRequest](c)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}

	sessionID := c.Param("sessionId")
	session, err := h.configurator.LoadProducts(c.Request.Context(), sessionID, req.ProductIDs)
	if session != nil {
		c.Set(middleware.SessionIDKey, session.ID())
		c.Set(middleware.QuoteIDKey, session.QuoteID())
	}
	switch {
	case err == nil:
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSessionFatal),
		errors.Is(err, service.ErrInvalidTransition):
		h.sessionError(c, err)
		return
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable, err)
		return
	default:
		builder.Error(http.StatusInternalServerError, i18n.ErrKeyCatalogUnavailable, err)
		return
	}

	middleware.AuditLog(auditService(c), c, middleware.ActionConfigurationProducts, "Configuration products loaded", map[string]interface{}{
		"products": len(req.ProductIDs),
	})
	builder.SuccessOK(session.View(i18n.GetLocale(c)))
}
