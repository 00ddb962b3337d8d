package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-configurator/internal/i18n"
	"github.com/guttosm/quote-configurator/internal/metrics"
	"github.com/guttosm/quote-configurator/internal/service"
)

// Rate limit response headers.
const (
	RateLimitLimitHeader     = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
)

type rateWindow struct {
	start time.Time
	used  int
}

// RateLimiter grants each client a fixed number of requests per window.
// Clients are identified by API key when one is sent, otherwise by IP.
// Idle clients are forgotten once their window has passed; at most
// capacity clients are tracked.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients *service.TTLCache[string, *rateWindow]
}

// NewRateLimiter creates a limiter. Stop releases its sweeper.
func NewRateLimiter(limit int, window time.Duration, capacity int) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: service.NewTTLCache[string, *rateWindow]("rate_limit", capacity, window),
	}
}

// Stop ends the background sweep of idle clients.
func (rl *RateLimiter) Stop() {
	rl.clients.Stop()
}

// take spends one request of client's budget. It returns what is left and,
// when the budget is exhausted, how long until the window resets.
func (rl *RateLimiter) take(client string) (remaining int, retryAfter time.Duration, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, found := rl.clients.Get(client)
	if !found || now.Sub(w.start) >= rl.window {
		w = &rateWindow{start: now}
		rl.clients.Set(client, w)
	}
	if w.used >= rl.limit {
		return 0, w.start.Add(rl.window).Sub(now), false
	}
	w.used++
	return rl.limit - w.used, 0, true
}

// Middleware refuses requests over budget with 429 and a Retry-After in
// whole seconds.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		remaining, retryAfter, ok := rl.take(clientIdentity(c))

		c.Header(RateLimitLimitHeader, strconv.Itoa(rl.limit))
		c.Header(RateLimitRemainingHeader, strconv.Itoa(remaining))
		if !ok {
			metrics.RecordRateLimited()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			abortWithKey(c, http.StatusTooManyRequests, i18n.ErrKeyRateLimited)
			return
		}
		c.Next()
	}
}

// clientIdentity keys API-key callers by a digest of the key so that keys
// are not held in memory in the clear.
func clientIdentity(c *gin.Context) string {
	if key := c.GetHeader(APIKeyHeader); key != "" {
		sum := sha256.Sum256([]byte(key))
		return "key:" + hex.EncodeToString(sum[:8])
	}
	return "ip:" + c.ClientIP()
}
