package dashboard

import (
	"github.com/gin-gonic/gin"

	"recruit-backend/internal/shared/server/middleware"
	"recruit-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes mounts the dashboard. rg must require auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/stats", h.stats)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context(), middleware.ActorFromContext(c))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, stats)
}
