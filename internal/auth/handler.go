package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/policy"
	"recruit-backend/internal/shared/apperr"
	sharedauth "recruit-backend/internal/shared/auth"
	"recruit-backend/internal/shared/server/bind"
	"recruit-backend/internal/shared/server/middleware"
	"recruit-backend/internal/shared/server/respond"
	"recruit-backend/internal/users"
)

// Accounts is the subset of the users service used by the auth routes.
type Accounts interface {
	Register(ctx context.Context, cmd users.RegisterCommand) (users.User, error)
	Login(ctx context.Context, cmd users.LoginCommand) (users.User, error)
	GetByID(ctx context.Context, userID string) (users.User, error)
	UpdateProfile(ctx context.Context, actor policy.Actor, cmd users.UpdateProfileCommand) (users.User, error)
	ChangePassword(ctx context.Context, actor policy.Actor, cmd users.ChangePasswordCommand) error
}

// Handler serves email/password authentication and the current profile.
type Handler struct {
	Accounts Accounts
	TokenTTL time.Duration
}

func NewHandler(accounts Accounts, ttl time.Duration) *Handler {
	return &Handler{Accounts: accounts, TokenTTL: ttl}
}

// Session is returned by register and login.
type Session struct {
	Token string     `json:"token"`
	User  users.User `json:"user"`
}

// RegisterPublicRoutes mounts routes that do not need a token.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
}

// RegisterRoutes mounts routes for the signed-in user. rg must require auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/me", h.me)
	rg.PUT("/auth/profile", h.updateProfile)
	rg.PUT("/auth/password", h.changePassword)
}

func (h *Handler) register(c *gin.Context) {
	var cmd users.RegisterCommand
	if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	user, err := h.Accounts.Register(c.Request.Context(), cmd)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	h.session(c, http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var cmd users.LoginCommand
	if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	user, err := h.Accounts.Login(c.Request.Context(), cmd)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	h.session(c, http.StatusOK, user)
}

func (h *Handler) session(c *gin.Context, status int, user users.User) {
	token, err := sharedauth.IssueToken(user.ID, user.Role, user.Email, user.Name, h.TokenTTL)
	if err != nil {
		respond.Fail(c, apperr.Internal("Server error", err))
		return
	}
	respond.JSON(c, status, Session{Token: token, User: user})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.Accounts.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, user)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var cmd users.UpdateProfileCommand
	if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	user, err := h.Accounts.UpdateProfile(c.Request.Context(), middleware.ActorFromContext(c), cmd)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, user)
}

func (h *Handler) changePassword(c *gin.Context) {
	var cmd users.ChangePasswordCommand
	if err := bind.JSON(c, &cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	if err := h.Accounts.ChangePassword(c.Request.Context(), middleware.ActorFromContext(c), cmd); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Password updated successfully")
}
