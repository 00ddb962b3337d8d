package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/guttosm/quote-configurator/internal/logger"
	"github.com/guttosm/quote-configurator/internal/service"
)

// Context keys handlers set so request and audit logs can be tied to a quote.
const (
	QuoteIDKey   = "quote_id"
	SessionIDKey = "session_id"
)

// RequestLogger logs every request and, when store is set, persists it.
// Requests to quietPaths (health checks, scrapes) are logged at debug and never
// persisted.
func RequestLogger(store service.LoggingService, quietPaths ...string) gin.HandlerFunc {
	quiet := make(map[string]struct{}, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		status := c.Writer.Status()
		latency := time.Since(start)
		quoteID, sessionID := configurationContext(c)

		level := statusLevel(status)
		_, isQuiet := quiet[path]
		if isQuiet {
			level = zerolog.DebugLevel
		}

		event := logger.Ctx(c.Request.Context()).WithLevel(level).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status_code", status).
			Dur("latency", latency).
			Str("ip", c.ClientIP())
		if quoteID != "" {
			event = event.Str("quote_id", quoteID)
		}
		if sessionID != "" {
			event = event.Str("session_id", sessionID)
		}
		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.Last().Error())
		}
		event.Msg("HTTP request")

		if store == nil || isQuiet {
			return
		}
		entry := &model.LogEntry{
			Timestamp:  start,
			Level:      level.String(),
			Message:    "HTTP request",
			RequestID:  GetRequestID(c),
			Method:     c.Request.Method,
			Path:       path,
			StatusCode: status,
			Duration:   latency.Milliseconds(),
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			QuoteID:    quoteID,
			SessionID:  sessionID,
		}
		if len(c.Errors) > 0 {
			entry.Error = c.Errors.Last().Error()
		}
		persist(store, entry)
	}
}

func configurationContext(c *gin.Context) (quoteID, sessionID string) {
	quoteID = c.GetString(QuoteIDKey)
	if quoteID == "" {
		quoteID = c.Param("quoteId")
	}
	sessionID = c.GetString(SessionIDKey)
	if sessionID == "" {
		sessionID = c.Param("sessionId")
	}
	return quoteID, sessionID
}

func statusLevel(status int) zerolog.Level {
	switch {
	case status >= 500:
		return zerolog.ErrorLevel
	case status >= 400:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
