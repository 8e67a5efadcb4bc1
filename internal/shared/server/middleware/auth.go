package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/policy"
	"recruit-backend/internal/shared/apperr"
	"recruit-backend/internal/shared/auth"
	"recruit-backend/internal/shared/server/respond"
)

const (
	userIDKey   = "userId"
	userRoleKey = "userRole"
)

// IdentityLookup resolves the current role and active flag of a user id.
// Implementations return an error for unknown users.
type IdentityLookup interface {
	Identity(ctx context.Context, userID string) (role string, active bool, err error)
}

var errInactive = errors.New("account is deactivated")

// Auth requires a valid bearer token for an active user.
func Auth(lookup IdentityLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		actor, err := authenticate(c, lookup)
		if err != nil {
			msg := "Not authorized, token failed"
			if errors.Is(err, errInactive) {
				msg = "Account is deactivated"
			}
			respond.Fail(c, apperr.Unauthenticated(msg))
			return
		}
		if actor.Anonymous() {
			respond.Fail(c, apperr.Unauthenticated("Not authorized, no token"))
			return
		}
		setActor(c, actor)
		c.Next()
	}
}

// OptionalAuth attaches an identity when a valid token is present and
// continues anonymously otherwise.
func OptionalAuth(lookup IdentityLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := authenticate(c, lookup)
		if err == nil && !actor.Anonymous() {
			setActor(c, actor)
		}
		c.Next()
	}
}

// RequireRoles rejects authenticated actors whose role is not listed.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromContext(c)
		if actor.Anonymous() {
			respond.Fail(c, apperr.Unauthenticated("Not authorized, no token"))
			return
		}
		if !actor.HasRole(roles...) {
			respond.Fail(c, apperr.Forbidden("User role "+actor.Role+" is not authorized to access this route"))
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, lookup IdentityLookup) (policy.Actor, error) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return policy.Actor{}, nil
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return policy.Actor{}, auth.ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
	if token == "" {
		return policy.Actor{}, auth.ErrInvalidToken
	}
	claims, err := auth.VerifyJWT(token)
	if err != nil {
		return policy.Actor{}, err
	}
	actor := policy.Actor{ID: claims.Sub, Role: claims.Role}
	if lookup != nil {
		role, active, err := lookup.Identity(c.Request.Context(), claims.Sub)
		if err != nil {
			return policy.Actor{}, err
		}
		if !active {
			return policy.Actor{}, errInactive
		}
		actor.Role = role
	}
	return actor, nil
}

func setActor(c *gin.Context, actor policy.Actor) {
	c.Set(userIDKey, actor.ID)
	c.Set(userRoleKey, actor.Role)
}

// ActorFromContext returns the identity stored by Auth or OptionalAuth.
func ActorFromContext(c *gin.Context) policy.Actor {
	if c == nil {
		return policy.Actor{}
	}
	return policy.Actor{ID: c.GetString(userIDKey), Role: c.GetString(userRoleKey)}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return ActorFromContext(c).ID
}
