package http

import (
	"github.com/gin-gonic/gin"
)

// RouteGroup defines a group of routes that can be registered.
type RouteGroup interface {
	// RegisterRoutes registers routes to the given router group.
	RegisterRoutes(rg *gin.RouterGroup)
}

// ConfigurationRoutes registers the configuration, pricebook, product search,
// annex and proforma endpoints.
type ConfigurationRoutes struct {
	handler *Handler
	annex   *AnnexHandler
}

// NewConfigurationRoutes creates the route group. A nil annex handler leaves
// the download endpoint out.
func NewConfigurationRoutes(handler *Handler, annex *AnnexHandler) *ConfigurationRoutes {
	return &ConfigurationRoutes{handler: handler, annex: annex}
}

// RegisterRoutes registers the routes under rg.
func (r *ConfigurationRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes/:quoteId")
	if r.handler != nil {
		quotes.GET("/pricebooks", r.handler.ListPricebooks)
		quotes.POST("/configurations", r.handler.StartConfiguration)
		quotes.GET("/history", r.handler.QuoteHistory)

		sessions := rg.Group("/configurations/:sessionId")
		sessions.GET("", r.handler.GetConfiguration)
		sessions.POST("/selection", r.handler.ChangeSelection)
		sessions.PATCH("/cells", r.handler.EditCells)
		sessions.POST("/save", r.handler.SaveConfiguration)
		sessions.POST("/back", r.handler.Back)
		sessions.POST("/products", r.handler.LoadProducts)

		rg.GET("/pricebooks/:pricebookId/entries", r.handler.SearchProducts)
	}
	if r.annex != nil {
		quotes.GET("/annex", r.annex.DownloadAnnex)
		if r.annex.proforma != nil {
			quotes.GET("/proforma", r.annex.DownloadProforma)
		}
	}
}
