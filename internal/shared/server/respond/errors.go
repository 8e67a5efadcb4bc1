package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/shared/apperr"
	"recruit-backend/internal/shared/telemetry"
)

// Error sends an error envelope and aborts the chain.
func Error(c *gin.Context, status int, message string, fields []apperr.FieldError) {
	logFields := map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		logFields["user_id"] = userID
	}
	telemetry.Error("http.error", logFields)

	body := Envelope{Success: false, Message: message}
	if len(fields) > 0 {
		body.Errors = fields
	}
	c.AbortWithStatusJSON(status, body)
}

// Fail maps an error returned by a service to its HTTP response.
func Fail(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		logUnexpected(c, err)
		Error(c, http.StatusInternalServerError, "Server error", nil)
		return
	}
	switch appErr.Kind {
	case apperr.KindValidation, apperr.KindConflict:
		Error(c, http.StatusBadRequest, appErr.Message, appErr.Fields)
	case apperr.KindUnauthenticated:
		Error(c, http.StatusUnauthorized, appErr.Message, nil)
	case apperr.KindForbidden:
		Error(c, http.StatusForbidden, appErr.Message, nil)
	case apperr.KindNotFound:
		Error(c, http.StatusNotFound, appErr.Message, nil)
	default:
		logUnexpected(c, err)
		msg := appErr.Message
		if msg == "" {
			msg = "Server error"
		}
		Error(c, http.StatusInternalServerError, msg, nil)
	}
}

func logUnexpected(c *gin.Context, err error) {
	telemetry.Error("http.unexpected", map[string]any{
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
		"error":      err.Error(),
	})
}
