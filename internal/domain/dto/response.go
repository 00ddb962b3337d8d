package dto

import (
	"net/http"
	"time"
)

const (
	// ErrCodeInvalidRequest indicates an invalid request.
	ErrCodeInvalidRequest = "invalid_request"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal = "internal_error"
	// ErrCodeUnauthorized indicates missing or invalid authentication.
	ErrCodeUnauthorized = "unauthorized"
	// ErrCodeForbidden indicates insufficient permissions.
	ErrCodeForbidden = "forbidden"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound = "not_found"
	// ErrCodeValidation indicates the configuration failed validation.
	ErrCodeValidation = "validation_failed"
	// ErrCodeUnavailable indicates a dependency is temporarily unavailable.
	ErrCodeUnavailable = "service_unavailable"
	// ErrCodeConflict indicates a conflict with current state.
	ErrCodeConflict = "conflict"
	// ErrCodeTimeout indicates a request timeout.
	ErrCodeTimeout = "timeout"
	// ErrCodeRateLimited indicates the client exceeded its request budget.
	ErrCodeRateLimited = "rate_limited"
)

// SuccessResponse is the envelope of every 2xx JSON body.
// @Description Successful API response wrapper
type SuccessResponse struct {
	// Data is a ConfigurationView for session endpoints and a QuoteHistory for the audit trail.
	Data      interface{} `json:"data" swaggertype:"object"`
	RequestID string      `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time   `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name SuccessResponse

// ErrorResponse is the envelope of every 4xx and 5xx JSON body. Message is
// already translated to the caller's locale.
// @Description Standardized error response
type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_request"`
	Message string `json:"message,omitempty" example:"Please correct the issues in the table before saving."`
	// Details maps a grid cell or field to its problem, e.g. {"0.1.Quantity": "required"}.
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time         `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name ErrorResponse

// NewError creates an ErrorResponse stamped with the current time.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithRequestID returns a copy of e carrying requestID.
func (e ErrorResponse) WithRequestID(requestID string) ErrorResponse {
	e.RequestID = requestID
	return e
}

var statusErrCodes = map[int]string{
	http.StatusBadRequest:          ErrCodeInvalidRequest,
	http.StatusUnauthorized:        ErrCodeUnauthorized,
	http.StatusForbidden:           ErrCodeForbidden,
	http.StatusNotFound:            ErrCodeNotFound,
	http.StatusConflict:            ErrCodeConflict,
	http.StatusUnprocessableEntity: ErrCodeValidation,
	http.StatusServiceUnavailable:  ErrCodeUnavailable,
	http.StatusRequestTimeout:      ErrCodeTimeout,
	http.StatusGatewayTimeout:      ErrCodeTimeout,
	http.StatusTooManyRequests:     ErrCodeRateLimited,
}

// ErrCodeFromStatus maps an HTTP status to its error code. Unlisted
// statuses map to ErrCodeInternal.
func ErrCodeFromStatus(status int) string {
	if code, ok := statusErrCodes[status]; ok {
		return code
	}
	return ErrCodeInternal
}

// Readiness statuses.
const (
	ReadinessReady    = "ok"
	ReadinessDegraded = "degraded"
)

// BreakerStatus reports one circuit breaker in the readiness check.
type BreakerStatus struct {
	State    string    `json:"state" example:"closed"`
	Failures int       `json:"failures"`
	LastFail time.Time `json:"last_failure,omitempty"`
} // @name BreakerStatus

// Readiness is the body of the readiness check.
// @Description Dependency and circuit breaker status
type Readiness struct {
	Status       string                   `json:"status" example:"ok"`
	Dependencies map[string]string        `json:"dependencies,omitempty"`
	Breakers     map[string]BreakerStatus `json:"breakers,omitempty"`
} // @name Readiness
