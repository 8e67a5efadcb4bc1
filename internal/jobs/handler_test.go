package jobs

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/shared/auth"
	"recruit-backend/internal/shared/server/middleware"
	"recruit-backend/internal/shared/telemetry"
)

func newJobsRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)
	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterPublicRoutes(api.Group("", middleware.OptionalAuth(nil)))
	h.RegisterRoutes(api.Group("", middleware.Auth(nil)))
	return r
}

func tokenFor(t *testing.T, id, role string) string {
	t.Helper()
	tok, err := auth.IssueToken(id, role, "", "", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return tok
}

func call(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

type jobEnvelope struct {
	Success bool   `json:"success"`
	Data    Job    `json:"data"`
	Message string `json:"message"`
}

func TestJobRoutesLifecycle(t *testing.T) {
	defer telemetry.SetOutput(io.Discard)()
	svc := NewService(NewMemoryRepo())
	r := newJobsRouter(t, svc)
	owner := tokenFor(t, "rec-1", "recruiter")
	other := tokenFor(t, "rec-2", "recruiter")

	body := map[string]any{
		"title":               "Data Engineer",
		"company":             "Acme",
		"description":         "Pipelines",
		"location":            "Remote",
		"type":                "remote",
		"category":            "technology",
		"applicationDeadline": time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
	}
	resp := call(r, http.MethodPost, "/api/v1/jobs", owner, body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d body=%s", resp.Code, resp.Body.String())
	}
	var created jobEnvelope
	_ = json.Unmarshal(resp.Body.Bytes(), &created)
	id := created.Data.ID

	resp = call(r, http.MethodGet, "/api/v1/jobs/"+id, "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.Code)
	}
	var got jobEnvelope
	_ = json.Unmarshal(resp.Body.Bytes(), &got)
	if got.Data.ViewsCount != 1 {
		t.Fatalf("expected anonymous view counted, got %d", got.Data.ViewsCount)
	}

	resp = call(r, http.MethodPatch, "/api/v1/jobs/"+id+"/status", other, map[string]string{"status": "closed"})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("non-owner status: expected 403, got %d", resp.Code)
	}
	var denied jobEnvelope
	_ = json.Unmarshal(resp.Body.Bytes(), &denied)
	if denied.Message != "Not authorized to update this job" {
		t.Fatalf("unexpected message %q", denied.Message)
	}

	resp = call(r, http.MethodPatch, "/api/v1/jobs/"+id+"/status", owner, map[string]string{"status": "paused"})
	if resp.Code != http.StatusOK {
		t.Fatalf("owner status: expected 200, got %d", resp.Code)
	}

	resp = call(r, http.MethodGet, "/api/v1/jobs/mine", owner, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("mine: expected 200, got %d", resp.Code)
	}
	var list struct {
		Total       int   `json:"total"`
		TotalPages  int   `json:"totalPages"`
		CurrentPage int   `json:"currentPage"`
		Data        []Job `json:"data"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &list)
	if list.Total != 1 || list.CurrentPage != 1 || list.TotalPages != 1 {
		t.Fatalf("unexpected list envelope: %s", resp.Body.String())
	}

	resp = call(r, http.MethodDelete, "/api/v1/jobs/"+id, owner, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.Code)
	}
	resp = call(r, http.MethodGet, "/api/v1/jobs/"+id, "", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", resp.Code)
	}
}

func TestJobListValidatesPagination(t *testing.T) {
	defer telemetry.SetOutput(io.Discard)()
	r := newJobsRouter(t, NewService(NewMemoryRepo()))

	for _, q := range []string{"page=0", "limit=101", "limit=abc", "sort=random"} {
		t.Run(q, func(t *testing.T) {
			resp := call(r, http.MethodGet, "/api/v1/jobs?"+q, "", nil)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 for %s, got %d", q, resp.Code)
			}
		})
	}
}

func TestCreateJobRequiresRecruiter(t *testing.T) {
	defer telemetry.SetOutput(io.Discard)()
	r := newJobsRouter(t, NewService(NewMemoryRepo()))
	resp := call(r, http.MethodPost, "/api/v1/jobs", "", map[string]any{})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
	resp = call(r, http.MethodPost, "/api/v1/jobs", tokenFor(t, "a1", "applicant"), map[string]any{
		"title": "x", "company": "y", "description": "z", "location": "l", "type": "remote", "category": "other",
		"applicationDeadline": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for applicant, got %d", resp.Code)
	}
}
