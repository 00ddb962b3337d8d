package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-configurator/internal/domain/dto"
	"github.com/guttosm/quote-configurator/internal/i18n"
	"github.com/guttosm/quote-configurator/internal/middleware"
)

// Validatable is implemented by request bodies that check themselves after
// binding.
type Validatable interface {
	Validate() error
}

type bindOptions struct {
	allowEmpty bool
}

// BindOption adjusts BuildRequest.
type BindOption func(*bindOptions)

// AllowEmptyBody makes a request without a body bind to the zero T.
func AllowEmptyBody() BindOption {
	return func(o *bindOptions) { o.allowEmpty = true }
}

// BuildRequest binds the JSON body of c into a new T and runs Validate when
// T implements Validatable.
func BuildRequest[T any](c *gin.Context, opts ...BindOption) (*T, error) {
	var o bindOptions
	for _, opt := range opts {
		opt(&o)
	}

	req := new(T)
	if o.allowEmpty && c.Request.ContentLength == 0 {
		return req, nil
	}
	if err := c.ShouldBindJSON(req); err != nil {
		return nil, err
	}
	if v, ok := any(req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// ResponseBuilder writes the standard success and error envelopes.
type ResponseBuilder struct {
	c *gin.Context
}

// NewResponseBuilder creates a new response builder for the given context.
func NewResponseBuilder(c *gin.Context) *ResponseBuilder {
	return &ResponseBuilder{c: c}
}

// Success sends data in a success envelope.
func (b *ResponseBuilder) Success(statusCode int, data interface{}) {
	b.c.JSON(statusCode, dto.SuccessResponse{
		Data:      data,
		RequestID: middleware.GetRequestID(b.c),
		Timestamp: time.Now(),
	})
}

// SuccessOK sends data with 200.
func (b *ResponseBuilder) SuccessOK(data interface{}) {
	b.Success(http.StatusOK, data)
}

// SuccessCreated sends data with 201.
func (b *ResponseBuilder) SuccessCreated(data interface{}) {
	b.Success(http.StatusCreated, data)
}

// Error aborts with the message registered under messageKey, translated to
// the request locale. err is attached to the context for the error handler.
func (b *ResponseBuilder) Error(statusCode int, messageKey string, err error) {
	message := i18n.GetTranslator().Translate(messageKey, i18n.GetLocale(b.c))
	b.fail(statusCode, message, nil, err)
}

// ErrorWithMessage aborts with an already rendered message.
func (b *ResponseBuilder) ErrorWithMessage(statusCode int, message string, err error) {
	b.fail(statusCode, message, nil, err)
}

// ErrorWithDetails aborts with a message and per-field details, such as the
// issues of a failed validation.
func (b *ResponseBuilder) ErrorWithDetails(statusCode int, message string, details map[string]string, err error) {
	b.fail(statusCode, message, details, err)
}

// fail reports server-side failures caused by the request deadline as 504.
func (b *ResponseBuilder) fail(statusCode int, message string, details map[string]string, err error) {
	if err != nil {
		_ = b.c.Error(err)
	}
	if statusCode >= http.StatusInternalServerError && errors.Is(err, context.DeadlineExceeded) {
		statusCode = http.StatusGatewayTimeout
		message = i18n.GetTranslator().Translate(i18n.ErrKeyTimeout, i18n.GetLocale(b.c))
	}
	b.c.AbortWithStatusJSON(statusCode, dto.ErrorResponse{
		Error:     dto.ErrCodeFromStatus(statusCode),
		Message:   message,
		Details:   details,
		RequestID: middleware.GetRequestID(b.c),
		Timestamp: time.Now(),
	})
}
