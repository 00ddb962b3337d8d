package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/quote-configurator/internal/domain/dto"
	"github.com/guttosm/quote-configurator/internal/i18n"
)

func TestAPIKeyAuth(t *testing.T) {
	keys := map[string]bool{"crm-prod": true, "crm-retired": false}

	tests := []struct {
		name       string
		keys       map[string]bool
		target     string
		header     map[string]string
		wantStatus int
		wantMsgKey string
		wantLocale string
	}{
		{
			name:       "header key",
			keys:       keys,
			target:     "/api/quotes/Q1/annex",
			header:     map[string]string{APIKeyHeader: "crm-prod"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "query key for annex link",
			keys:       keys,
			target:     "/api/quotes/Q1/annex?api_key=crm-prod",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing key",
			keys:       keys,
			target:     "/api/quotes/Q1/annex",
			wantStatus: http.StatusUnauthorized,
			wantMsgKey: i18n.ErrKeyAPIKeyRequired,
			wantLocale: "en",
		},
		{
			name:       "unknown key in romanian",
			keys:       keys,
			target:     "/api/quotes/Q1/annex",
			header:     map[string]string{APIKeyHeader: "guess", i18n.AcceptLanguageHeader: "ro-RO"},
			wantStatus: http.StatusUnauthorized,
			wantMsgKey: i18n.ErrKeyInvalidAPIKey,
			wantLocale: "ro",
		},
		{
			name:       "disabled key",
			keys:       keys,
			target:     "/api/quotes/Q1/annex",
			header:     map[string]string{APIKeyHeader: "crm-retired"},
			wantStatus: http.StatusUnauthorized,
			wantMsgKey: i18n.ErrKeyInvalidAPIKey,
			wantLocale: "en",
		},
		{
			name:       "no keys configured",
			target:     "/api/quotes/Q1/annex",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.Use(RequestID(), APIKeyAuth(tt.keys))
			router.GET("/api/quotes/:quoteId/annex", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantMsgKey == "" {
				return
			}
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error)
			assert.Equal(t, i18n.GetTranslator().Translate(tt.wantMsgKey, tt.wantLocale), resp.Message)
			assert.Equal(t, w.Header().Get(RequestIDHeader), resp.RequestID)
		})
	}
}

func TestKnownKey(t *testing.T) {
	keys := [][]byte{[]byte("alpha"), []byte("beta")}

	assert.True(t, knownKey(keys, []byte("beta")))
	assert.False(t, knownKey(keys, []byte("bet")))
	assert.False(t, knownKey(nil, []byte("alpha")))
}
