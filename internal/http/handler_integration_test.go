//go:build integration

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/quote-configurator/internal/circuitbreaker"
	"github.com/guttosm/quote-configurator/internal/domain/dto"
	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/guttosm/quote-configurator/internal/i18n"
	"github.com/guttosm/quote-configurator/internal/middleware"
	"github.com/guttosm/quote-configurator/internal/repository"
	"github.com/guttosm/quote-configurator/internal/service"
)

func setupMongoRouter(t *testing.T, cfg RouterConfig) (*gin.Engine, *repository.MongoDB) {
	t.Helper()
	ctx := context.Background()

	db, err := repository.NewMongoDB(getSharedContainerURI(), sanitizeDBNameForHTTP(t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Database.Drop(ctx)
		_ = db.Close(ctx)
	})

	storeCB := circuitbreaker.New(circuitbreaker.DefaultConfig())
	quotes := repository.NewQuotesRepositoryWithCircuitBreaker(repository.NewQuotesRepository(db), storeCB)
	pricebooks := repository.NewPricebooksRepositoryWithCircuitBreaker(repository.NewPricebooksRepository(db), storeCB)
	catalog := repository.NewCatalogRepositoryWithCircuitBreaker(repository.NewCatalogRepository(db), storeCB)
	lines := repository.NewQuoteLinesRepositoryWithCircuitBreaker(repository.NewQuoteLinesRepository(db), storeCB)

	logsCB := circuitbreaker.New(circuitbreaker.DefaultConfig())
	cfg.LoggingService = service.NewLoggingService(repository.NewLogsRepositoryWithCircuitBreaker(repository.NewLogsRepository(db), logsCB))

	fields, err := service.NewFieldSetLoader("")
	require.NoError(t, err)
	sessions := service.NewSessionStore(service.NewSaveProtocol(lines), i18n.NewTranslator(), 100, time.Minute)
	t.Cleanup(sessions.Stop)

	configurator := service.NewConfigurator(sessions, quotes, pricebooks, catalog, fields)
	return NewRouter(NewHandler(configurator), NewHealthHandler(), cfg), db
}

func seedApartment(t *testing.T, db *repository.MongoDB) {
	t.Helper()
	ctx := context.Background()
	catalog := repository.NewCatalogRepository(db)

	parking := model.Product{ID: "P1", Name: "Parking", Active: true}
	storage := model.Product{ID: "P2", Name: "Storage", Active: true}
	bundle := model.Product{
		ID:     "B1",
		Name:   "Apartment A2",
		Type:   model.ProductTypeApartment,
		Active: true,
		Options: []model.ProductOption{
			{ID: "O1", OptionProductID: "P1", Option: parking, Mandatory: true},
			{ID: "O2", OptionProductID: "P2", Option: storage},
		},
	}
	for _, p := range []model.Product{bundle, parking, storage} {
		require.NoError(t, catalog.UpsertProduct(ctx, p))
	}
	for _, pe := range []model.PriceEntry{
		{ID: "PE-B1", PricebookID: "PB1", ProductID: "B1", UnitPrice: 100, Active: true},
		{ID: "PE-P1", PricebookID: "PB1", ProductID: "P1", UnitPrice: 20, Active: true},
		{ID: "PE-P2", PricebookID: "PB1", ProductID: "P2", UnitPrice: 5, Active: true},
	} {
		require.NoError(t, catalog.UpsertPrice(ctx, pe))
	}

	require.NoError(t, repository.NewPricebooksRepository(db).Upsert(ctx, model.Pricebook{ID: "PB1", Name: "Standard", Active: true}))
	require.NoError(t, repository.NewQuotesRepository(db).Upsert(ctx, model.Quote{
		ID:          "Q1",
		Name:        "Oferta 42",
		PricebookID: "PB1",
		QuoteDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}))
}

func send(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIntegration_ConfigureAndSave(t *testing.T) {
	ctx := context.Background()
	router, db := setupMongoRouter(t, DefaultRouterConfig())
	seedApartment(t, db)

	w := send(router, http.MethodGet, "/api/quotes/Q1/pricebooks", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = send(router, http.MethodPost, "/api/quotes/Q1/configurations", `{"product_ids": ["B1"]}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var started struct {
		Data dto.ConfigurationView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	require.Equal(t, "ready", started.Data.State)
	assert.Equal(t, 120.0, started.Data.GrandTotal)
	id := started.Data.SessionID

	w = send(router, http.MethodPost, "/api/configurations/"+id+"/selection", `{"parent_product_id": "B1", "child_product_id": "P2", "selected": true}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = send(router, http.MethodPatch, "/api/configurations/"+id+"/cells", `{"edits": [{"parent_index": 0, "field": "Discount", "value": 10}]}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = send(router, http.MethodPost, "/api/configurations/"+id+"/save", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var saved struct {
		Data dto.SaveResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, 1, saved.Data.ParentsSaved)
	assert.Equal(t, 2, saved.Data.ChildrenSaved)

	stored, err := repository.NewQuoteLinesRepository(db).FindByQuote(ctx, "Q1")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	parent := stored[0]
	assert.Equal(t, "B1", parent.ProductID())
	assert.Empty(t, parent.ConfiguredProduct)
	assert.Equal(t, 10.0, parent.Discount)
	for _, child := range stored[1:] {
		assert.Equal(t, parent.ID, child.ConfiguredProduct)
	}

	t.Run("saving again replaces the quote lines", func(t *testing.T) {
		w := send(router, http.MethodPost, "/api/quotes/Q1/configurations", "", nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var view struct {
			Data dto.ConfigurationView `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		require.Len(t, view.Data.Lines, 1)

		w = send(router, http.MethodPost, "/api/configurations/"+view.Data.SessionID+"/save", "", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		stored, err := repository.NewQuoteLinesRepository(db).FindByQuote(ctx, "Q1")
		require.NoError(t, err)
		var parents int
		for _, l := range stored {
			if l.ConfiguredProduct == "" {
				parents++
			}
		}
		assert.Equal(t, 1, parents)
	})
}

func TestIntegration_SaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := service.NewTTLCache[string, *middleware.CachedResponse]("idempotency", 100, time.Minute)
	t.Cleanup(store.Stop)
	router, db := setupMongoRouter(t, RouterConfig{IdempotencyStore: store})
	seedApartment(t, db)

	w := send(router, http.MethodPost, "/api/quotes/Q1/configurations", `{"product_ids": ["B1"]}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var started struct {
		Data dto.ConfigurationView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	path := "/api/configurations/" + started.Data.SessionID + "/save"

	first := send(router, http.MethodPost, path, "", map[string]string{"Idempotency-Key": "save-1"})
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	second := send(router, http.MethodPost, path, "", map[string]string{"Idempotency-Key": "save-1"})
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))

	stored, err := repository.NewQuoteLinesRepository(db).FindByQuote(ctx, "Q1")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestIntegration_APIKeyAuth(t *testing.T) {
	router, db := setupMongoRouter(t, RouterConfig{
		EnableAuth: true,
		APIKeys:    map[string]bool{"crm-key": true},
	})
	seedApartment(t, db)

	tests := []struct {
		name           string
		headers        map[string]string
		expectedStatus int
	}{
		{name: "missing key", expectedStatus: http.StatusUnauthorized},
		{name: "wrong key", headers: map[string]string{"X-API-Key": "nope"}, expectedStatus: http.StatusUnauthorized},
		{name: "valid key", headers: map[string]string{"X-API-Key": "crm-key"}, expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := send(router, http.MethodGet, "/api/quotes/Q1/pricebooks", "", tt.headers)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestIntegration_AuditTrail(t *testing.T) {
	router, db := setupMongoRouter(t, DefaultRouterConfig())
	seedApartment(t, db)

	w := send(router, http.MethodPost, "/api/quotes/Q1/configurations", `{"product_ids": ["B1"]}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var history struct {
		Data dto.QuoteHistory `json:"data"`
	}
	require.Eventually(t, func() bool {
		w := send(router, http.MethodGet, "/api/quotes/Q1/history", "", nil)
		if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &history) != nil {
			return false
		}
		return history.Data.Total >= 1
	}, 2*time.Second, 50*time.Millisecond)

	assert.Equal(t, middleware.ActionConfigurationStart, history.Data.Entries[0].ActionType)
	assert.Equal(t, "Q1", history.Data.Entries[0].QuoteID)
}
