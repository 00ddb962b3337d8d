package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-configurator/internal/i18n"
)

// Deadline bounds the request context of every route except the exempt
// route patterns (as registered, e.g. "/api/quotes/:quoteId/annex").
// Collaborators receive the bounded context, so a slow record store ends
// the request with 504 instead of holding the connection. A non-positive
// timeout disables the middleware.
func Deadline(timeout time.Duration, exempt ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(exempt))
	for _, route := range exempt {
		skip[route] = struct{}{}
	}

	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		if _, ok := skip[c.FullPath()]; ok {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !c.Writer.Written() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			abortWithKey(c, http.StatusGatewayTimeout, i18n.ErrKeyTimeout)
		}
	}
}
