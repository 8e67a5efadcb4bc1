package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/shared/server/respond"
	"recruit-backend/internal/shared/storage/db"
)

// HealthCheck reports database reachability. db.ErrNoDatabase means the
// process runs on in-memory repositories.
type HealthCheck func(ctx context.Context) error

func healthHandler(check HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		storage := "memory"
		if check != nil {
			err := check(c.Request.Context())
			switch {
			case err == nil:
				storage = "postgres"
			case errors.Is(err, db.ErrNoDatabase):
			default:
				respond.Error(c, http.StatusServiceUnavailable, "Database unreachable", nil)
				return
			}
		}
		respond.JSON(c, http.StatusOK, gin.H{"ok": true, "storage": storage})
	}
}
