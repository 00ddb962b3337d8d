package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/guttosm/quote-configurator/internal/service"
)

// Audit actions.
const (
	ActionConfigurationStart    = "configuration.start"
	ActionConfigurationProducts = "configuration.products"
	ActionConfigurationSave     = "configuration.save"
	ActionAnnexDownload         = "annex.download"
	ActionProformaDownload      = "proforma.download"
)

// AuditLog records a configuration action such as a save or an annex download.
func AuditLog(loggingService service.LoggingService, c *gin.Context, actionType string, message string, fields map[string]interface{}) {
	if loggingService == nil {
		return
	}
	persist(loggingService, auditEntry(c, "info", actionType, message, fields))
}

// AuditLogError records a failed configuration action.
func AuditLogError(loggingService service.LoggingService, c *gin.Context, actionType string, message string, err error, fields map[string]interface{}) {
	if loggingService == nil {
		return
	}
	entry := auditEntry(c, "error", actionType, message, fields)
	if err != nil {
		entry.Error = err.Error()
	}
	persist(loggingService, entry)
}

func auditEntry(c *gin.Context, level, actionType, message string, fields map[string]interface{}) *model.LogEntry {
	quoteID, sessionID := configurationContext(c)
	return &model.LogEntry{
		Timestamp:  time.Now(),
		Level:      level,
		Message:    message,
		RequestID:  GetRequestID(c),
		Method:     c.Request.Method,
		Path:       c.Request.URL.Path,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		QuoteID:    quoteID,
		SessionID:  sessionID,
		ActionType: actionType,
		Fields:     fields,
	}
}
