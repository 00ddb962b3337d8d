package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-configurator/internal/i18n"
	"github.com/guttosm/quote-configurator/internal/metrics"
)

const (
	// IdempotencyKeyHeader is the HTTP header name for idempotency key (RFC standard).
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the store.
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
	// IdempotencyKeyTTL is how long a response stays replayable.
	IdempotencyKeyTTL = 5 * time.Minute
)

// CachedResponse is a stored 2xx response replayed for a repeated key.
type CachedResponse struct {
	StatusCode  int
	Header      http.Header
	Body        []byte
	Fingerprint string
	StoredAt    time.Time
}

// IdempotencyStore keeps responses by key scope. Entries are expected to
// expire on their own.
type IdempotencyStore interface {
	Get(key string) (*CachedResponse, bool)
	Set(key string, resp *CachedResponse)
}

// IdempotencyConfig holds configuration for idempotency middleware.
type IdempotencyConfig struct {
	Store   IdempotencyStore
	Enabled bool
}

// Idempotency makes POST, PUT and PATCH requests carrying an Idempotency-Key
// safe to retry. A key is scoped to method and path. A repeat with the same
// body replays the stored 2xx response, a repeat with a different body is
// rejected with 422, and a repeat that arrives while the first request is
// still running is rejected with 409. Non-2xx responses are not stored, so a
// failed save can be retried with the same key.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.Store == nil {
		return func(c *gin.Context) { c.Next() }
	}

	var running sync.Map

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || !mutating(c.Request.Method) {
			c.Next()
			return
		}

		scope := idempotencyScope(key, c.Request)
		fingerprint, err := bodyFingerprint(c.Request)
		if err != nil {
			abortWithKey(c, http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody)
			return
		}

		if cached, ok := cfg.Store.Get(scope); ok {
			if cached.Fingerprint != fingerprint {
				metrics.RecordIdempotency("mismatch")
				abortWithKey(c, http.StatusUnprocessableEntity, i18n.ErrKeyIdempotencyMismatch)
				return
			}
			metrics.RecordIdempotency("replayed")
			replay(c, cached)
			return
		}

		if _, busy := running.LoadOrStore(scope, struct{}{}); busy {
			metrics.RecordIdempotency("in_flight")
			abortWithKey(c, http.StatusConflict, i18n.ErrKeyIdempotencyInFlight)
			return
		}
		defer running.Delete(scope)

		rec := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			metrics.RecordIdempotency("not_stored")
			return
		}
		header := rec.Header().Clone()
		header.Del(RequestIDHeader)
		cfg.Store.Set(scope, &CachedResponse{
			StatusCode:  status,
			Header:      header,
			Body:        bytes.Clone(rec.body.Bytes()),
			Fingerprint: fingerprint,
			StoredAt:    time.Now(),
		})
		metrics.RecordIdempotency("stored")
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

func replay(c *gin.Context, cached *CachedResponse) {
	h := c.Writer.Header()
	for k, values := range cached.Header {
		h.Del(k)
		for _, v := range values {
			h.Add(k, v)
		}
	}
	h.Set(IdempotencyReplayedHeader, "true")
	c.Writer.WriteHeader(cached.StatusCode)
	_, _ = c.Writer.Write(cached.Body)
	c.Abort()
}

// idempotencyScope hashes the client key with method and path so one key
// cannot replay a response across endpoints or sessions.
func idempotencyScope(key string, req *http.Request) string {
	h := sha256.New()
	for _, part := range []string{key, req.Method, req.URL.Path} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// bodyFingerprint hashes the request body and leaves it readable.
func bodyFingerprint(req *http.Request) (string, error) {
	sum := sha256.New()
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return "", err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		sum.Write(body)
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}

// recordingWriter tees the response body so it can be stored.
type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
