package jobs

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/shared/pagination"
	"recruit-backend/internal/shared/server/bind"
	"recruit-backend/internal/shared/server/middleware"
	"recruit-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterPublicRoutes mounts job browsing. rg should carry optional auth so
// owners are recognized.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs", h.list)
	rg.GET("/jobs/:id", h.get)
}

// RegisterRoutes mounts job management. rg must require auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs/mine", h.mine)
	rg.POST("/jobs", h.create)
	rg.PUT("/jobs/:id", h.update)
	rg.DELETE("/jobs/:id", h.delete)
	rg.PATCH("/jobs/:id/status", h.setStatus)
	rg.POST("/jobs/:id/duplicate", h.duplicate)
	rg.GET("/jobs/:id/stats", h.stats)
}

func (h *Handler) list(c *gin.Context) {
	var q ListQuery
	if err := bind.Query(c, &q); err != nil {
		respond.Fail(c, err)
		return
	}
	page, err := pagination.Parse(c.Query("page"), c.Query("limit"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	items, total, err := h.Svc.List(c.Request.Context(), middleware.ActorFromContext(c), q, page)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.List(c, items, len(items), total, page)
}

func (h *Handler) mine(c *gin.Context) {
	var q ListQuery
	if err := bind.Query(c, &q); err != nil {
		respond.Fail(c, err)
		return
	}
	page, err := pagination.Parse(c.Query("page"), c.Query("limit"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	items, total, err := h.Svc.Mine(c.Request.Context(), middleware.ActorFromContext(c), q, page)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.List(c, items, len(items), total, page)
}

func (h *Handler) get(c *gin.Context) {
	job, err := h.Svc.Get(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, job)
}

func (h *Handler) create(c *gin.Context) {
	var cmd CreateCommand
	if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	job, err := h.Svc.Create(c.Request.Context(), middleware.ActorFromContext(c), cmd)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, job)
}

func (h *Handler) update(c *gin.Context) {
	var cmd UpdateCommand
	if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	job, err := h.Svc.Update(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), cmd)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, job)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id")); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Job deleted successfully")
}

func (h *Handler) setStatus(c *gin.Context) {
	var cmd StatusCommand
	if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	job, from, err := h.Svc.SetStatus(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), cmd.Status)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	c.Set(middleware.StatusTransitionKey, from+"->"+job.Status)
	respond.OK(c, job)
}

func (h *Handler) duplicate(c *gin.Context) {
	job, err := h.Svc.Duplicate(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, job)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, stats)
}
