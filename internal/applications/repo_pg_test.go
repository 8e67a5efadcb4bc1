package applications

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"recruit-backend/internal/shared/pagination"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`INSERT INTO applications`).
		WithArgs("app-1", "job-1", "user-1", "submitted", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "applications_applicant_id_job_id_key"})

	err := repo.Create(context.Background(), Application{
		ID: "app-1", JobID: "job-1", ApplicantID: "user-1", Status: "submitted",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDDecodesDocument(t *testing.T) {
	repo, mock := newMockRepo(t)
	doc := `{"id":"app-1","jobId":"job-1","applicantId":"user-1","status":"shortlisted","willingToRelocate":true}`
	mock.ExpectQuery(`SELECT doc FROM applications WHERE id = \$1 LIMIT 1`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow([]byte(doc)))
	mock.ExpectQuery(`SELECT doc FROM applications WHERE id = \$1 LIMIT 1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	app, err := repo.GetByID(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if app.Status != "shortlisted" || !app.WillingToRelocate {
		t.Fatalf("unexpected application: %+v", app)
	}
	if app.Timeline == nil {
		t.Fatal("timeline should decode as an empty slice")
	}
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListBuildsFilter(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM applications WHERE applicant_id = \$1 AND status = \$2`).
		WithArgs("user-1", "submitted").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT doc FROM applications WHERE applicant_id = \$1 AND status = \$2 ORDER BY created_at DESC, id LIMIT \$3 OFFSET \$4`).
		WithArgs("user-1", "submitted", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow([]byte(`{"id":"app-1","status":"submitted"}`)))

	items, total, err := repo.List(context.Background(), Filter{ApplicantID: "user-1", Status: "submitted"}, pagination.Default())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != "app-1" {
		t.Fatalf("unexpected list result: total=%d items=%+v", total, items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoEmptyJobSetMatchesNothing(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT status, count\(\*\) FROM applications WHERE false GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}))

	counts, err := repo.StatusCounts(context.Background(), Filter{JobIDs: []string{}})
	if err != nil {
		t.Fatalf("StatusCounts: %v", err)
	}
	if len(counts) != 0 {
		t.Fatalf("expected no counts, got %v", counts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`UPDATE applications SET\s+status = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Update(context.Background(), Application{ID: "gone"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// patchKeys matches a JSONB patch argument carrying exactly the given keys.
type patchKeys []string

func (k patchKeys) Match(v driver.Value) bool {
	raw, ok := v.([]byte)
	if !ok {
		return false
	}
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(raw, &patch); err != nil || len(patch) != len(k) {
		return false
	}
	for _, key := range k {
		if _, ok := patch[key]; !ok {
			return false
		}
	}
	return true
}

func TestPGRepoSetScreeningPatchesOnlyScreeningKeys(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE applications SET\s+updated_at = \$2,\s+doc = doc \|\| \$3::jsonb\s+WHERE id = \$1 AND doc->'resume'->>'storagePath' = \$4`).
		WithArgs("app-1", at, patchKeys{"screeningStatus", "updatedAt", "parsedResumeData", "aiScreeningScore"}, "resumes/ns/cv.pdf").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE applications SET`).
		WithArgs("app-1", at, patchKeys{"screeningStatus", "updatedAt"}, "resumes/ns/cv.pdf").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	done := ScreeningUpdate{Status: ScreeningCompleted, Parsed: &ParsedResume{Name: "Ada"}, Score: &ScreeningScore{Overall: 80}, UpdatedAt: at}
	if err := repo.SetScreening(ctx, "app-1", "resumes/ns/cv.pdf", done); err != nil {
		t.Fatalf("SetScreening completed: %v", err)
	}
	failed := ScreeningUpdate{Status: ScreeningFailed, UpdatedAt: at}
	if err := repo.SetScreening(ctx, "app-1", "resumes/ns/cv.pdf", failed); err != nil {
		t.Fatalf("SetScreening failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSetScreeningReportsStaleAndMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE applications SET`).
		WithArgs("app-1", at, sqlmock.AnyArg(), "resumes/ns/old.pdf").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM applications WHERE id = \$1\)`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`UPDATE applications SET`).
		WithArgs("missing", at, sqlmock.AnyArg(), "resumes/ns/old.pdf").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ctx := context.Background()
	upd := ScreeningUpdate{Status: ScreeningCompleted, UpdatedAt: at}
	if err := repo.SetScreening(ctx, "app-1", "resumes/ns/old.pdf", upd); !errors.Is(err, ErrStaleScreening) {
		t.Fatalf("expected ErrStaleScreening, got %v", err)
	}
	if err := repo.SetScreening(ctx, "missing", "resumes/ns/old.pdf", upd); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
