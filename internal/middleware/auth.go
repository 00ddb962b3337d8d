package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-configurator/internal/i18n"
)

const (
	// APIKeyHeader carries the caller's API key.
	APIKeyHeader = "X-API-Key"
	// APIKeyQuery lets a browser link to the annex download carry the key.
	APIKeyQuery = "api_key"
)

// APIKeyAuth rejects requests without one of validKeys. An empty set turns
// authentication off.
func APIKeyAuth(validKeys map[string]bool) gin.HandlerFunc {
	keys := make([][]byte, 0, len(validKeys))
	for k, enabled := range validKeys {
		if enabled && k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.Next()
			return
		}

		presented := c.GetHeader(APIKeyHeader)
		if presented == "" {
			presented = c.Query(APIKeyQuery)
		}
		if presented == "" {
			abortWithKey(c, http.StatusUnauthorized, i18n.ErrKeyAPIKeyRequired)
			return
		}
		if !knownKey(keys, []byte(presented)) {
			abortWithKey(c, http.StatusUnauthorized, i18n.ErrKeyInvalidAPIKey)
			return
		}
		c.Next()
	}
}

func knownKey(keys [][]byte, presented []byte) bool {
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, presented)
	}
	return found == 1
}
