// Package metrics provides Prometheus metrics collection for the quote configurator.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks HTTP request duration by method, path, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestTotal tracks total HTTP requests by method, path, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// ConfigurationSessions tracks configuration sessions currently held in memory.
	ConfigurationSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "configuration_sessions",
			Help: "Number of live configuration sessions",
		},
	)

	// ConfigurationSavesTotal tracks save attempts by outcome.
	ConfigurationSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "configuration_saves_total",
			Help: "Total number of configuration saves",
		},
		[]string{"outcome"},
	)

	// SavePhaseDuration tracks record store round trips per save phase.
	SavePhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "configuration_save_phase_duration_seconds",
			Help:    "Duration of each save phase in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"phase"},
	)

	// AnnexSourceTotal tracks annex sources by result (collected, skipped, failed).
	AnnexSourceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "annex_sources_total",
			Help: "Total number of annex document sources processed",
		},
		[]string{"source", "result"},
	)

	// AnnexMergeDuration tracks PDF merge duration.
	AnnexMergeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "annex_merge_duration_seconds",
			Help:    "Annex PDF merge duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
	)

	// AnnexMergedPages tracks the page count of merged annexes.
	AnnexMergedPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "annex_merged_pages",
			Help:    "Number of pages in merged annex documents",
			Buckets: []float64{1, 5, 10, 20, 50, 100, 200},
		},
	)

	// LogEntriesTotal tracks request and audit log entries by result
	// (enqueued, dropped, written, failed).
	LogEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "log_entries_total",
			Help: "Total number of persisted log entries by result",
		},
		[]string{"result"},
	)

	// CircuitBreakerState tracks each breaker's state (0 closed, 1 open, 2 half-open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerRejectionsTotal tracks calls rejected without running.
	CircuitBreakerRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_rejections_total",
			Help: "Total number of calls rejected by an open circuit breaker",
		},
		[]string{"name"},
	)

	// PanicsTotal counts handler panics turned into 500s.
	PanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_panics_recovered_total",
			Help: "Total number of recovered handler panics",
		},
	)

	// IdempotencyOutcomesTotal counts requests carrying an Idempotency-Key by outcome.
	IdempotencyOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idempotency_requests_total",
			Help: "Requests carrying an Idempotency-Key by outcome (stored, replayed, in_flight, mismatch, not_stored)",
		},
		[]string{"outcome"},
	)

	// RateLimitedTotal counts requests refused by the per-client limiter.
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of requests refused with 429",
		},
	)

	// CacheOperationsTotal tracks cache operations.
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"cache", "operation", "result"},
	)

	// CacheSize tracks current cache size.
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Current cache size",
		},
		[]string{"cache"},
	)

	// CacheCapacity tracks cache capacity.
	CacheCapacity = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_capacity",
			Help: "Cache capacity",
		},
		[]string{"cache"},
	)
)

// PrometheusMiddleware returns a Gin middleware that collects HTTP metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration)
		HTTPRequestTotal.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordSave records the outcome of a configuration save.
func RecordSave(outcome string) {
	ConfigurationSavesTotal.WithLabelValues(outcome).Inc()
}

// RecordSavePhase records the duration of one save phase.
func RecordSavePhase(phase string, duration time.Duration) {
	SavePhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordAnnexSource records the result of one annex source.
func RecordAnnexSource(source, result string) {
	AnnexSourceTotal.WithLabelValues(source, result).Inc()
}

// RecordAnnexMerge records a completed merge.
func RecordAnnexMerge(duration time.Duration, pages int) {
	AnnexMergeDuration.Observe(duration.Seconds())
	AnnexMergedPages.Observe(float64(pages))
}

// RecordLogEntries adds n log entries with the given result.
func RecordLogEntries(result string, n int) {
	LogEntriesTotal.WithLabelValues(result).Add(float64(n))
}

// SetCircuitBreakerState records the current state of a breaker.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerRejection records a call rejected by an open breaker.
func RecordCircuitBreakerRejection(name string) {
	CircuitBreakerRejectionsTotal.WithLabelValues(name).Inc()
}

// RecordPanic records a recovered handler panic.
func RecordPanic() {
	PanicsTotal.Inc()
}

// RecordIdempotency records how a keyed request was handled.
func RecordIdempotency(outcome string) {
	IdempotencyOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordRateLimited counts one refused request.
func RecordRateLimited() {
	RateLimitedTotal.Inc()
}

// RecordCacheOperation records metrics for a cache operation.
func RecordCacheOperation(cache, operation, result string) {
	CacheOperationsTotal.WithLabelValues(cache, operation, result).Inc()
}

// UpdateCacheMetrics updates cache size and capacity metrics.
func UpdateCacheMetrics(cache string, size, capacity int) {
	CacheSize.WithLabelValues(cache).Set(float64(size))
	CacheCapacity.WithLabelValues(cache).Set(float64(capacity))
}
