package interviews

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

// RegisterRoutes mounts interview routes. rg must require auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/interviews", h.create)
	rg.GET("/interviews", h.list)
	rg.GET("/interviews/:id", h.get)
	rg.PUT("/interviews/:id", h.update)
	rg.DELETE("/interviews/:id", h.delete)
	rg.PATCH("/interviews/:id/status", h.setStatus)
	rg.PATCH("/interviews/:id/reschedule", h.reschedule)
	rg.POST("/interviews/:id/feedback", h.feedback)
	rg.POST("/interviews/:id/notes", h.addNote)
}

func (h *Handler) create(c *gin.Context) {
	var cmd CreateCommand
	if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	iv, err := h.Svc.Create(c.Request.Context(), middleware.ActorFromContext(c), cmd)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, iv)
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

func (h *Handler) get(c *gin.Context) {
	iv, err := h.Svc.Get(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, iv)
}

func (h *Handler) update(c *gin.Context) {
	var cmd UpdateCommand
	if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	iv, err := h.Svc.Update(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), cmd)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, iv)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id")); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Interview deleted successfully")
}

func (h *Handler) setStatus(c *gin.Context) {
	var cmd StatusCommand
	if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	iv, from, err := h.Svc.SetStatus(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), cmd.Status)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	c.Set(middleware.StatusTransitionKey, from+"->"+iv.Status)
	respond.OK(c, iv)
}

func (h *Handler) reschedule(c *gin.Context) {
	var cmd RescheduleCommand
	if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	iv, err := h.Svc.Reschedule(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), cmd)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, iv)
}

func (h *Handler) feedback(c *gin.Context) {
	var cmd FeedbackCommand
	if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	iv, err := h.Svc.SubmitFeedback(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), cmd)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, iv)
}

func (h *Handler) addNote(c *gin.Context) {
	var cmd NoteCommand
	if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	iv, err := h.Svc.AddNote(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), cmd)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, iv)
}
