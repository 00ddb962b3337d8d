package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-configurator/internal/circuitbreaker"
	"github.com/guttosm/quote-configurator/internal/domain/dto"
)

const defaultCheckTimeout = 2 * time.Second

// DependencyCheck reports whether a dependency can serve requests.
type DependencyCheck func(ctx context.Context) error

// HealthHandler serves the liveness and readiness checks.
type HealthHandler struct {
	checkTimeout time.Duration
	dependencies map[string]DependencyCheck
	breakers     []*circuitbreaker.CircuitBreaker
}

// NewHealthHandler creates a HealthHandler with no dependencies.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		checkTimeout: defaultCheckTimeout,
		dependencies: make(map[string]DependencyCheck),
	}
}

// WithCheckTimeout bounds each dependency check.
func (h *HealthHandler) WithCheckTimeout(d time.Duration) *HealthHandler {
	if d > 0 {
		h.checkTimeout = d
	}
	return h
}

// AddDependency registers a dependency checked by the readiness endpoint.
func (h *HealthHandler) AddDependency(name string, check DependencyCheck) {
	if check != nil {
		h.dependencies[name] = check
	}
}

// AddCircuitBreaker reports cb under its own name. An open or probing
// breaker marks the service degraded.
func (h *HealthHandler) AddCircuitBreaker(cb *circuitbreaker.CircuitBreaker) {
	if cb != nil {
		h.breakers = append(h.breakers, cb)
	}
}

// Register registers health endpoints on the router.
func (h *HealthHandler) Register(router *gin.Engine) {
	router.GET("/healthz", h.Liveness)
	router.GET("/readyz", h.Readiness)
}

// Liveness handles the liveness endpoint.
// @Summary     Liveness check
// @Description Returns OK while the process is serving requests.
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]string "Service is alive"
// @Router      /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": dto.ReadinessReady})
}

// Readiness handles the readiness endpoint.
// @Summary     Readiness check
// @Description Pings MongoDB and reports the record store, audit log and document host circuit breakers.
// @Tags        Health
// @Produce     json
// @Success     200 {object} dto.Readiness "Service is ready"
// @Failure     503 {object} dto.Readiness "Service is degraded"
// @Router      /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	report := h.check(c.Request.Context())

	status := http.StatusOK
	if report.Status != dto.ReadinessReady {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

func (h *HealthHandler) check(ctx context.Context) dto.Readiness {
	report := dto.Readiness{Status: dto.ReadinessReady}

	if len(h.dependencies) > 0 {
		report.Dependencies = make(map[string]string, len(h.dependencies))
	}
	for name, check := range h.dependencies {
		checkCtx, cancel := context.WithTimeout(ctx, h.checkTimeout)
		err := check(checkCtx)
		cancel()

		if err != nil {
			report.Dependencies[name] = err.Error()
			report.Status = dto.ReadinessDegraded
			continue
		}
		report.Dependencies[name] = dto.ReadinessReady
	}

	if len(h.breakers) > 0 {
		report.Breakers = make(map[string]dto.BreakerStatus, len(h.breakers))
	}
	for _, cb := range h.breakers {
		stats := cb.GetStats()
		report.Breakers[stats.Name] = dto.BreakerStatus{
			State:    stats.State,
			Failures: stats.FailureCount,
			LastFail: stats.LastFailure,
		}
		if !stats.IsHealthy {
			report.Status = dto.ReadinessDegraded
		}
	}

	return report
}
