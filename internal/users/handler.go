package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/shared/apperr"
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

// RegisterRoutes mounts the admin user routes. rg must already require auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users", h.list)
	rg.GET("/users/:id", h.get)
	rg.PATCH("/users/:id/status", h.setStatus)
}

func (h *Handler) list(c *gin.Context) {
	if h.Svc == nil {
		respond.Fail(c, apperr.Internal("service unavailable", nil))
		return
	}
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

func (h *Handler) get(c *gin.Context) {
	user, err := h.Svc.Get(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, user)
}

func (h *Handler) setStatus(c *gin.Context) {
	var cmd SetStatusCommand
	if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	user, err := h.Svc.SetActive(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), *cmd.IsActive)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, respond.Envelope{Success: true, Data: user, Message: "User status updated"})
}
