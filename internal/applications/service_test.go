package applications

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"recruit-backend/internal/events"
	"recruit-backend/internal/jobs"
	"recruit-backend/internal/lifecycle"
	"recruit-backend/internal/policy"
	"recruit-backend/internal/shared/apperr"
	"recruit-backend/internal/shared/pagination"
	"recruit-backend/internal/shared/storage/object/local"
	"recruit-backend/internal/shared/telemetry"
)

var (
	testNow   = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	recruiter = policy.Actor{ID: "rec-1", Role: policy.RoleRecruiter}
	otherRec  = policy.Actor{ID: "rec-2", Role: policy.RoleRecruiter}
	admin     = policy.Actor{ID: "admin-1", Role: policy.RoleAdmin}
	applicant = policy.Actor{ID: "app-1", Role: policy.RoleApplicant}
	stranger  = policy.Actor{ID: "app-2", Role: policy.RoleApplicant}
)

const pdfBody = "%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\ntrailer\n%%EOF\n"

type fakeScreening struct{ requested []string }

func (f *fakeScreening) Request(ctx context.Context, appID string) error {
	f.requested = append(f.requested, appID)
	return nil
}

type fakeDependent struct{ deleted []string }

func (f *fakeDependent) DeleteByApplication(ctx context.Context, appID string) error {
	f.deleted = append(f.deleted, appID)
	return nil
}

type fixture struct {
	svc       *Service
	jobs      *jobs.Service
	repo      *MemoryRepo
	recorder  *events.Recorder
	screening *fakeScreening
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	restore := telemetry.SetOutput(io.Discard)
	t.Cleanup(restore)

	repo := NewMemoryRepo()
	jobSvc := jobs.NewService(jobs.NewMemoryRepo())
	jobSvc.Applications = repo
	jobSvc.Now = func() time.Time { return testNow }

	rec := &events.Recorder{}
	scr := &fakeScreening{}
	svc := NewService(repo, jobSvc, local.New(t.TempDir()))
	svc.Now = func() time.Time { return testNow }
	svc.Events = rec
	svc.Screening = scr
	return fixture{svc: svc, jobs: jobSvc, repo: repo, recorder: rec, screening: scr}
}

func (f fixture) postJob(t *testing.T, owner policy.Actor, status string) jobs.Job {
	t.Helper()
	job, err := f.jobs.Create(context.Background(), owner, jobs.CreateCommand{
		Title:               "Backend Engineer",
		Company:             "Acme",
		Description:         "Build Go services",
		Location:            "Berlin",
		Type:                jobs.TypeFullTime,
		Category:            "technology",
		Skills:              []string{"go", "postgres"},
		ApplicationDeadline: testNow.Add(7 * 24 * time.Hour),
		Status:              status,
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func (f fixture) apply(t *testing.T, actor policy.Actor, jobID string, upload *Upload) Application {
	t.Helper()
	app, err := f.svc.Create(context.Background(), actor, CreateCommand{JobID: jobID, CoverLetter: "Hello"}, upload)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	return app
}

func pdfUpload(name string) *Upload {
	return &Upload{FileName: name, Size: int64(len(pdfBody)), Body: strings.NewReader(pdfBody)}
}

func asAppErr(t *testing.T, err error) *apperr.Error {
	t.Helper()
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T (%v)", err, err)
	}
	return appErr
}

func TestCreateApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, recruiter, "")

	app := f.apply(t, applicant, job.ID, nil)
	if app.Status != lifecycle.AppSubmitted {
		t.Fatalf("expected submitted, got %q", app.Status)
	}
	if len(app.Timeline) != 0 {
		t.Fatalf("new application should have an empty timeline, got %d entries", len(app.Timeline))
	}
	if app.ApplicantID != applicant.ID || app.JobID != job.ID {
		t.Fatalf("unexpected ownership: %+v", app)
	}

	stored, _ := f.jobs.Load(ctx, job.ID)
	if stored.ApplicationsCount != 1 {
		t.Fatalf("expected applicationsCount 1, got %d", stored.ApplicationsCount)
	}
	if got := f.recorder.Types(); len(got) != 1 || got[0] != events.ApplicationCreated {
		t.Fatalf("unexpected events: %v", got)
	}
	if len(f.screening.requested) != 0 {
		t.Fatalf("screening should not run without a resume")
	}
}

func TestCreateApplicationRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	active := f.postJob(t, recruiter, "")
	draft := f.postJob(t, recruiter, lifecycle.JobDraft)
	f.apply(t, applicant, active.ID, nil)

	tests := []struct {
		name    string
		actor   policy.Actor
		jobID   string
		now     time.Time
		kind    apperr.Kind
		message string
	}{
		{"duplicate", applicant, active.ID, testNow, apperr.KindConflict, "You have already applied for this job"},
		{"recruiter", recruiter, active.ID, testNow, apperr.KindForbidden, ""},
		{"inactive job", stranger, draft.ID, testNow, apperr.KindConflict, "This job is no longer accepting applications"},
		{"deadline passed", stranger, active.ID, testNow.Add(8 * 24 * time.Hour), apperr.KindConflict, "Application deadline has passed"},
		{"missing job", stranger, "nope", testNow, apperr.KindNotFound, "Job not found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			now := tc.now
			f.svc.Now = func() time.Time { return now }
			_, err := f.svc.Create(ctx, tc.actor, CreateCommand{JobID: tc.jobID}, nil)
			appErr := asAppErr(t, err)
			if appErr.Kind != tc.kind {
				t.Fatalf("expected %s, got %s", tc.kind, appErr.Kind)
			}
			if tc.message != "" && appErr.Message != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, appErr.Message)
			}
		})
	}

	stored, _ := f.jobs.Load(ctx, active.ID)
	if stored.ApplicationsCount != 1 {
		t.Fatalf("rejected applications must not change the count, got %d", stored.ApplicationsCount)
	}
}

func TestCreateWithResumeStoresAndSchedulesScreening(t *testing.T) {
	f := newFixture(t)
	job := f.postJob(t, recruiter, "")

	app := f.apply(t, applicant, job.ID, pdfUpload("cv.pdf"))
	if app.Resume == nil {
		t.Fatal("expected resume record")
	}
	if app.Resume.MimeType != "application/pdf" || app.Resume.Size != int64(len(pdfBody)) {
		t.Fatalf("unexpected resume record: %+v", app.Resume)
	}
	if app.ScreeningStatus != ScreeningPending {
		t.Fatalf("expected pending screening, got %q", app.ScreeningStatus)
	}
	if len(f.screening.requested) != 1 || f.screening.requested[0] != app.ID {
		t.Fatalf("expected screening request, got %v", f.screening.requested)
	}

	rc, resume, err := f.svc.OpenResume(context.Background(), recruiter, app.ID)
	if err != nil {
		t.Fatalf("OpenResume: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != pdfBody {
		t.Fatalf("resume content mismatch: %q", data)
	}
	if resume.FileName != "cv.pdf" {
		t.Fatalf("unexpected file name %q", resume.FileName)
	}
}

func TestResumeValidation(t *testing.T) {
	tests := []struct {
		name   string
		upload *Upload
	}{
		{"extension", &Upload{FileName: "cv.txt", Size: 5, Body: strings.NewReader("hello")}},
		{"content mismatch", &Upload{FileName: "cv.pdf", Size: 5, Body: strings.NewReader("hello")}},
		{"too large", &Upload{FileName: "cv.pdf", Size: MaxResumeBytes + 1, Body: strings.NewReader(pdfBody)}},
		{"empty", &Upload{FileName: "cv.pdf", Size: 0, Body: strings.NewReader("")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			job := f.postJob(t, recruiter, "")
			_, err := f.svc.Create(context.Background(), applicant, CreateCommand{JobID: job.ID}, tc.upload)
			if appErr := asAppErr(t, err); appErr.Kind != apperr.KindValidation {
				t.Fatalf("expected validation error, got %s", appErr.Kind)
			}
			if n, _ := f.repo.CountByJob(context.Background(), job.ID); n != 0 {
				t.Fatalf("no application should be stored, got %d", n)
			}
		})
	}
}

func TestCheckResumeAcceptsDocx(t *testing.T) {
	zipHeader := append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0}, 64)...)
	mimeType, body, err := checkResume(&Upload{FileName: "CV.DOCX", Size: int64(len(zipHeader)), Body: bytes.NewReader(zipHeader)})
	if err != nil {
		t.Fatalf("checkResume: %v", err)
	}
	if !strings.Contains(mimeType, "wordprocessingml") {
		t.Fatalf("unexpected mime %q", mimeType)
	}
	replayed, _ := io.ReadAll(body)
	if !bytes.Equal(replayed, zipHeader) {
		t.Fatal("sniffed bytes must be replayed")
	}
}

func TestGetReportsNotFoundBeforeForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, recruiter, "")
	app := f.apply(t, applicant, job.ID, nil)

	if _, err := f.svc.Get(ctx, stranger, "missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.svc.Get(ctx, stranger, app.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
	if _, err := f.svc.Get(ctx, otherRec, app.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for other recruiter, got %v", err)
	}
	for _, actor := range []policy.Actor{applicant, recruiter, admin} {
		if _, err := f.svc.Get(ctx, actor, app.ID); err != nil {
			t.Fatalf("%s should read application: %v", actor.ID, err)
		}
	}
}

func TestUpdateScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, recruiter, "")
	app := f.apply(t, applicant, job.ID, nil)

	letter := "Updated letter"
	rating := 5
	hired := lifecycle.AppHired
	updated, err := f.svc.Update(ctx, applicant, app.ID, UpdateCommand{
		CoverLetter: &letter,
		Rating:      &rating,
		Status:      &hired,
	})
	if err != nil {
		t.Fatalf("applicant update: %v", err)
	}
	if updated.CoverLetter != letter {
		t.Fatalf("cover letter not applied: %q", updated.CoverLetter)
	}
	if updated.Rating != 0 || updated.Status != lifecycle.AppSubmitted || len(updated.Timeline) != 0 {
		t.Fatalf("restricted fields must be dropped: %+v", updated)
	}

	if _, err := f.svc.Update(ctx, otherRec, app.ID, UpdateCommand{Rating: &rating}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	review := lifecycle.AppUnderReview
	updated, err = f.svc.Update(ctx, recruiter, app.ID, UpdateCommand{Rating: &rating, Status: &review, Note: "looks good"})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Rating != 5 || updated.Status != review {
		t.Fatalf("owner fields not applied: %+v", updated)
	}
	if len(updated.Timeline) != 1 || updated.Timeline[0].ChangedBy != recruiter.ID || updated.Timeline[0].Note != "looks good" {
		t.Fatalf("unexpected timeline: %+v", updated.Timeline)
	}
}

func TestSetStatusAppendsTimelineEveryTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, recruiter, "")
	app := f.apply(t, applicant, job.ID, nil)

	for i := 0; i < 2; i++ {
		got, from, err := f.svc.SetStatus(ctx, recruiter, app.ID, lifecycle.AppShortlisted, "")
		if err != nil {
			t.Fatalf("SetStatus: %v", err)
		}
		if i == 0 && from != lifecycle.AppSubmitted {
			t.Fatalf("expected from submitted, got %q", from)
		}
		if len(got.Timeline) != i+1 {
			t.Fatalf("expected %d entries, got %d", i+1, len(got.Timeline))
		}
	}

	if _, _, err := f.svc.SetStatus(ctx, recruiter, app.ID, "bogus", ""); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, _, err := f.svc.SetStatus(ctx, applicant, app.ID, lifecycle.AppHired, ""); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("applicant must not set status, got %v", err)
	}
}

func TestStrictMachineRejectsSkippingStages(t *testing.T) {
	f := newFixture(t)
	f.svc.Machine = lifecycle.Machine{Strict: true}
	job := f.postJob(t, recruiter, "")
	app := f.apply(t, applicant, job.ID, nil)

	_, _, err := f.svc.SetStatus(context.Background(), recruiter, app.ID, lifecycle.AppHired, "")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, recruiter, "")
	app := f.apply(t, applicant, job.ID, nil)

	if _, err := f.svc.Withdraw(ctx, recruiter, app.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	got, err := f.svc.Withdraw(ctx, applicant, app.ID)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if got.Status != lifecycle.AppWithdrawn || len(got.Timeline) != 1 {
		t.Fatalf("unexpected application: %+v", got)
	}
	if _, err := f.svc.Withdraw(ctx, applicant, app.ID); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("second withdraw should fail, got %v", err)
	}
}

func TestDeleteRecountsAndCleansUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dep := &fakeDependent{}
	f.svc.Dependents = []Dependent{dep}
	job := f.postJob(t, recruiter, "")
	app := f.apply(t, applicant, job.ID, pdfUpload("cv.pdf"))

	if err := f.svc.Delete(ctx, recruiter, app.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("job owner may not delete, got %v", err)
	}
	if err := f.svc.Delete(ctx, applicant, app.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(dep.deleted) != 1 || dep.deleted[0] != app.ID {
		t.Fatalf("dependents not cleaned: %v", dep.deleted)
	}
	stored, _ := f.jobs.Load(ctx, job.ID)
	if stored.ApplicationsCount != 0 {
		t.Fatalf("expected applicationsCount 0, got %d", stored.ApplicationsCount)
	}
	if _, err := f.svc.Store.Open(ctx, app.Resume.StoragePath); err == nil {
		t.Fatal("resume object should be removed")
	}
	if _, err := f.svc.Get(ctx, admin, app.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestListScopesByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.postJob(t, recruiter, "")
	theirs := f.postJob(t, otherRec, "")
	f.apply(t, applicant, mine.ID, nil)
	f.apply(t, applicant, theirs.ID, nil)
	f.apply(t, stranger, theirs.ID, nil)

	tests := []struct {
		actor policy.Actor
		want  int
	}{
		{applicant, 2},
		{stranger, 1},
		{recruiter, 1},
		{otherRec, 2},
		{admin, 3},
		{policy.Actor{ID: "rec-3", Role: policy.RoleRecruiter}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.actor.ID, func(t *testing.T) {
			_, total, err := f.svc.List(ctx, tc.actor, ListQuery{}, pagination.Default())
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if total != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, total)
			}
		})
	}

	if _, _, err := f.svc.ListForJob(ctx, recruiter, theirs.ID, ListQuery{}, pagination.Default()); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	items, total, err := f.svc.ListForJob(ctx, otherRec, theirs.ID, ListQuery{}, pagination.Default())
	if err != nil || total != 2 || len(items) != 2 {
		t.Fatalf("ListForJob: total=%d err=%v", total, err)
	}
}

func TestScreeningFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, recruiter, "")
	bare := f.apply(t, applicant, job.ID, nil)

	if _, err := f.svc.RequestScreening(ctx, recruiter, bare.ID); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("screening without resume should fail, got %v", err)
	}
	if _, err := f.svc.UploadResume(ctx, stranger, bare.ID, *pdfUpload("cv.pdf")); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden upload, got %v", err)
	}
	withResume, err := f.svc.UploadResume(ctx, applicant, bare.ID, *pdfUpload("cv.pdf"))
	if err != nil {
		t.Fatalf("UploadResume: %v", err)
	}
	if withResume.Resume == nil || withResume.ScreeningStatus != ScreeningPending {
		t.Fatalf("unexpected application: %+v", withResume)
	}
	if _, err := f.svc.RequestScreening(ctx, otherRec, bare.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.svc.RequestScreening(ctx, recruiter, bare.ID); err != nil {
		t.Fatalf("RequestScreening: %v", err)
	}
	if len(f.screening.requested) != 2 {
		t.Fatalf("expected 2 screening requests, got %v", f.screening.requested)
	}

	score := &ScreeningScore{Overall: 72, Scorer: "keyword", ScoredAt: testNow}
	path := withResume.Resume.StoragePath
	done, err := f.svc.RecordScreening(ctx, bare.ID, ScreeningResult{ResumePath: path, Parsed: &ParsedResume{Name: "Ada"}, Score: score})
	if err != nil {
		t.Fatalf("RecordScreening: %v", err)
	}
	if done.ScreeningStatus != ScreeningCompleted || done.AIScreeningScore.Overall != 72 {
		t.Fatalf("unexpected screening result: %+v", done)
	}
	failed, err := f.svc.RecordScreening(ctx, bare.ID, ScreeningResult{ResumePath: path, Err: errors.New("parser down")})
	if err != nil {
		t.Fatalf("RecordScreening failure: %v", err)
	}
	if failed.ScreeningStatus != ScreeningFailed || failed.AIScreeningScore == nil {
		t.Fatalf("failed run should keep earlier results: %+v", failed)
	}
}

// racingRepo lets a write from another request land just before the
// screening write reaches the store.
type racingRepo struct {
	*MemoryRepo
	before func()
	t      *testing.T
}

func (r *racingRepo) Update(ctx context.Context, app Application) error {
	if r.before != nil {
		r.t.Errorf("screening rewrote the whole application")
	}
	return r.MemoryRepo.Update(ctx, app)
}

func (r *racingRepo) SetScreening(ctx context.Context, appID, resumePath string, upd ScreeningUpdate) error {
	if hook := r.before; hook != nil {
		r.before = nil
		hook()
	}
	return r.MemoryRepo.SetScreening(ctx, appID, resumePath, upd)
}

func TestRecordScreeningKeepsConcurrentStatusChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, recruiter, "")
	app := f.apply(t, applicant, job.ID, pdfUpload("cv.pdf"))

	racing := &racingRepo{MemoryRepo: f.repo, t: t}
	f.svc.Repo = racing
	racing.before = func() {
		if _, _, err := f.svc.SetStatus(ctx, recruiter, app.ID, lifecycle.AppShortlisted, "strong profile"); err != nil {
			t.Errorf("SetStatus: %v", err)
		}
	}
	score := &ScreeningScore{Overall: 64, Scorer: "keyword", ScoredAt: testNow}
	got, err := f.svc.RecordScreening(ctx, app.ID, ScreeningResult{ResumePath: app.Resume.StoragePath, Parsed: &ParsedResume{Name: "Ada"}, Score: score})
	if err != nil {
		t.Fatalf("RecordScreening: %v", err)
	}
	if got.Status != lifecycle.AppShortlisted {
		t.Fatalf("status overwritten by screening: %q", got.Status)
	}
	if len(got.Timeline) != 1 || got.Timeline[0].Status != lifecycle.AppShortlisted {
		t.Fatalf("timeline lost: %+v", got.Timeline)
	}
	if got.ScreeningStatus != ScreeningCompleted || got.AIScreeningScore == nil || got.AIScreeningScore.Overall != 64 {
		t.Fatalf("screening not recorded: %+v", got)
	}
}

func TestRecordScreeningDropsResultForReplacedResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, recruiter, "")
	app := f.apply(t, applicant, job.ID, pdfUpload("old.pdf"))
	oldPath := app.Resume.StoragePath

	replaced, err := f.svc.UploadResume(ctx, applicant, app.ID, *pdfUpload("new.pdf"))
	if err != nil {
		t.Fatalf("UploadResume: %v", err)
	}
	if replaced.Resume.StoragePath == oldPath {
		t.Fatalf("expected a new storage path, got %q", oldPath)
	}
	before := len(f.recorder.Events)

	score := &ScreeningScore{Overall: 90, Scorer: "keyword", ScoredAt: testNow}
	_, err = f.svc.RecordScreening(ctx, app.ID, ScreeningResult{ResumePath: oldPath, Parsed: &ParsedResume{Name: "Old"}, Score: score})
	if !errors.Is(err, ErrStaleScreening) {
		t.Fatalf("expected ErrStaleScreening, got %v", err)
	}
	stored, err := f.repo.GetByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.ScreeningStatus != ScreeningPending || stored.ParsedResumeData != nil || stored.AIScreeningScore != nil {
		t.Fatalf("stale result was written: %+v", stored)
	}
	if len(f.recorder.Events) != before {
		t.Fatal("stale result should not emit an event")
	}

	if _, err := f.svc.RecordScreening(ctx, "missing", ScreeningResult{ResumePath: oldPath}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExportBuildsWorkbook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, recruiter, "")
	f.apply(t, applicant, job.ID, nil)

	if _, _, err := f.svc.Export(ctx, otherRec, job.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	name, data, err := f.svc.Export(ctx, recruiter, job.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if name != "backend-engineer-applications.xlsx" {
		t.Fatalf("unexpected file name %q", name)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatal("expected a zip-based xlsx payload")
	}
}

func TestCascadeStatusIgnoresStrictTable(t *testing.T) {
	f := newFixture(t)
	f.svc.Machine = lifecycle.Machine{Strict: true}
	job := f.postJob(t, recruiter, "")
	app := f.apply(t, applicant, job.ID, nil)

	got, err := f.svc.CascadeStatus(context.Background(), app.ID, lifecycle.AppInterviewScheduled, recruiter.ID, "Interview scheduled")
	if err != nil {
		t.Fatalf("CascadeStatus: %v", err)
	}
	if got.Status != lifecycle.AppInterviewScheduled || len(got.Timeline) != 1 {
		t.Fatalf("unexpected application: %+v", got)
	}
	if _, err := f.svc.CascadeStatus(context.Background(), app.ID, "bogus", "", ""); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
