package applications

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/shared/apperr"
	"recruit-backend/internal/shared/pagination"
	"recruit-backend/internal/shared/server/bind"
	"recruit-backend/internal/shared/server/middleware"
	"recruit-backend/internal/shared/server/respond"
)

// multipart overhead allowed on top of the resume itself
const maxRequestBytes = MaxResumeBytes + 1<<20

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes mounts application routes. rg must require auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/applications", h.create)
	rg.GET("/applications", h.list)
	rg.GET("/applications/:id", h.get)
	rg.PUT("/applications/:id", h.update)
	rg.DELETE("/applications/:id", h.delete)
	rg.PATCH("/applications/:id/status", h.setStatus)
	rg.POST("/applications/:id/withdraw", h.withdraw)
	rg.POST("/applications/:id/resume", h.uploadResume)
	rg.GET("/applications/:id/resume", h.downloadResume)
	rg.POST("/applications/:id/screen", h.screen)
	rg.GET("/jobs/:id/applications", h.listForJob)
	rg.GET("/jobs/:id/applications/export", h.export)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formUpload reads the optional resume part. A missing part yields nil.
func formUpload(c *gin.Context) (*Upload, func(), error) {
	fh, err := c.FormFile("resume")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, func() {}, apperr.Validation("Invalid upload", apperr.Field("resume", err.Error(), nil))
	}
	if fh.Size > MaxResumeBytes {
		return nil, func() {}, apperr.Validation("File too large", apperr.Field("resume", "must be 5MB or smaller", fh.Size))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, apperr.Validation("Invalid upload", apperr.Field("resume", "unable to read file", fh.Filename))
	}
	return &Upload{FileName: fh.Filename, Size: fh.Size, Body: f}, func() { _ = f.Close() }, nil
}

func (h *Handler) create(c *gin.Context) {
	var (
		cmd    CreateCommand
		upload *Upload
	)
	if isMultipart(c) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes)
		if err := bind.Body(c, &cmd); err != nil {
			respond.Fail(c, err)
			return
		}
		u, closeFn, err := formUpload(c)
		defer closeFn()
		if err != nil {
			respond.Fail(c, err)
			return
		}
		upload = u
	} else if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}

	app, err := h.Svc.Create(c.Request.Context(), middleware.ActorFromContext(c), cmd, upload)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, app)
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

func (h *Handler) listForJob(c *gin.Context) {
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
	items, total, err := h.Svc.ListForJob(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), q, page)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.List(c, items, len(items), total, page)
}

func (h *Handler) get(c *gin.Context) {
	app, err := h.Svc.Get(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, app)
}

func (h *Handler) update(c *gin.Context) {
	var cmd UpdateCommand
	if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	app, err := h.Svc.Update(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), cmd)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, app)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id")); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Application deleted successfully")
}

func (h *Handler) setStatus(c *gin.Context) {
	var cmd StatusCommand
	if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	app, from, err := h.Svc.SetStatus(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), cmd.Status, cmd.Note)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	c.Set(middleware.StatusTransitionKey, from+"->"+app.Status)
	respond.OK(c, app)
}

func (h *Handler) withdraw(c *gin.Context) {
	app, err := h.Svc.Withdraw(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, app)
}

func (h *Handler) uploadResume(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes)
	upload, closeFn, err := formUpload(c)
	defer closeFn()
	if err != nil {
		respond.Fail(c, err)
		return
	}
	if upload == nil {
		respond.Fail(c, apperr.Validation("Please upload a resume file", apperr.Field("resume", "file is required", nil)))
		return
	}
	app, err := h.Svc.UploadResume(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), *upload)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, app)
}

func (h *Handler) downloadResume(c *gin.Context) {
	rc, resume, err := h.Svc.OpenResume(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, resume.Size, resume.MimeType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", resume.FileName),
	})
}

func (h *Handler) screen(c *gin.Context) {
	app, err := h.Svc.RequestScreening(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.JSON(c, http.StatusAccepted, app)
}

func (h *Handler) export(c *gin.Context) {
	name, data, err := h.Svc.Export(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}
