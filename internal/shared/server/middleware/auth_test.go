package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/policy"
	"recruit-backend/internal/shared/auth"
	"recruit-backend/internal/shared/telemetry"
)

type fakeLookup map[string]struct {
	role   string
	active bool
}

func (f fakeLookup) Identity(ctx context.Context, userID string) (string, bool, error) {
	u, ok := f[userID]
	if !ok {
		return "", false, errors.New("not found")
	}
	return u.role, u.active, nil
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := auth.IssueToken(userID, role, "", "", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return "Bearer " + token
}

func newAuthRouter(lookup IdentityLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	whoami := func(c *gin.Context) {
		a := ActorFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": a.ID, "role": a.Role})
	}
	r.GET("/private", Auth(lookup), whoami)
	r.GET("/public", OptionalAuth(lookup), whoami)
	r.GET("/recruiters", Auth(lookup), RequireRoles(policy.RoleRecruiter, policy.RoleAdmin), whoami)
	return r
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(nil))
	router.OPTIONS("/api/v1/jobs", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/jobs", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthUsesStoredRoleAndRejectsInactive(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	defer telemetry.SetOutput(io.Discard)()

	lookup := fakeLookup{
		"u1": {role: policy.RoleRecruiter, active: true},
		"u2": {role: policy.RoleApplicant, active: false},
	}
	router := newAuthRouter(lookup)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", bearer(t, "u1", policy.RoleApplicant))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &body)
	if body["role"] != policy.RoleRecruiter {
		t.Fatalf("expected role from store, got %q", body["role"])
	}

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", bearer(t, "u2", policy.RoleApplicant))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for inactive user, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
}

func TestOptionalAuthContinuesAnonymously(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := newAuthRouter(fakeLookup{})

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &body)
	if body["id"] != "" {
		t.Fatalf("expected anonymous actor, got %q", body["id"])
	}
}

func TestRequireRoles(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	defer telemetry.SetOutput(io.Discard)()

	router := newAuthRouter(fakeLookup{"a1": {role: policy.RoleApplicant, active: true}})
	req := httptest.NewRequest(http.MethodGet, "/recruiters", nil)
	req.Header.Set("Authorization", bearer(t, "a1", policy.RoleApplicant))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}
