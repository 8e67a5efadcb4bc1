package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/telemetry"
)

// StatusTransitionKey is set by handlers that change an entity status so the
// request log records "from->to".
const StatusTransitionKey = "statusTransition"

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		durationMs := float64(latency.Microseconds()) / 1000.0
		metrics.ObserveRequestDurationMs(durationMs)

		actor := ActorFromContext(c)
		statusTransition := c.GetString(StatusTransitionKey)

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		telemetry.Info("request.complete", map[string]any{
			"request_id":        RequestIDFromContext(c),
			"method":            c.Request.Method,
			"path":              c.Request.URL.Path,
			"route":             route,
			"status":            c.Writer.Status(),
			"status_transition": statusTransition,
			"duration_ms":       durationMs,
			"user_id":           actor.ID,
			"role":              actor.Role,
			"client_ip":         c.ClientIP(),
			"user_agent":        c.Request.UserAgent(),
		})
	}
}
