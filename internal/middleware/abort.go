package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-configurator/internal/domain/dto"
	"github.com/guttosm/quote-configurator/internal/i18n"
)

// abortWithKey stops the chain with the standard error body, translating
// messageKey to the caller's locale.
func abortWithKey(c *gin.Context, status int, messageKey string) {
	message := i18n.GetTranslator().Translate(messageKey, i18n.GetLocale(c))
	c.AbortWithStatusJSON(status, dto.NewError(dto.ErrCodeFromStatus(status), message).
		WithRequestID(GetRequestID(c)))
}
