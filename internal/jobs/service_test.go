package jobs

import (
	"context"
	"testing"
	"time"

	"recruit-backend/internal/events"
	"recruit-backend/internal/lifecycle"
	"recruit-backend/internal/policy"
	"recruit-backend/internal/shared/apperr"
	"recruit-backend/internal/shared/pagination"
)

var (
	testNow   = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	recruiter = policy.Actor{ID: "rec-1", Role: policy.RoleRecruiter}
	otherRec  = policy.Actor{ID: "rec-2", Role: policy.RoleRecruiter}
	admin     = policy.Actor{ID: "admin-1", Role: policy.RoleAdmin}
	applicant = policy.Actor{ID: "app-1", Role: policy.RoleApplicant}
)

type fakeCounter struct {
	byJob map[string]map[string]int
}

func (f fakeCounter) CountByJob(ctx context.Context, jobID string) (int, error) {
	n := 0
	for _, v := range f.byJob[jobID] {
		n += v
	}
	return n, nil
}

func (f fakeCounter) StatusCountsByJob(ctx context.Context, jobID string) (map[string]int, error) {
	out := map[string]int{}
	for k, v := range f.byJob[jobID] {
		out[k] = v
	}
	return out, nil
}

type fakeDependent struct{ deleted []string }

func (f *fakeDependent) DeleteByJob(ctx context.Context, jobID string) error {
	f.deleted = append(f.deleted, jobID)
	return nil
}

func newTestService() *Service {
	svc := NewService(NewMemoryRepo())
	svc.Now = func() time.Time { return testNow }
	return svc
}

func validCreate() CreateCommand {
	return CreateCommand{
		Title:               "Backend Engineer",
		Company:             "Acme",
		Description:         "Build Go services",
		Requirements:        []string{" Go ", ""},
		Location:            "Berlin",
		Type:                TypeFullTime,
		Category:            "technology",
		Experience:          ExperienceRange{Min: 2, Max: 5},
		Salary:              SalaryRange{Min: 60000, Max: 90000, Currency: "eur"},
		ApplicationDeadline: testNow.Add(14 * 24 * time.Hour),
	}
}

func mustCreate(t *testing.T, svc *Service, actor policy.Actor, cmd CreateCommand) Job {
	t.Helper()
	job, err := svc.Create(context.Background(), actor, cmd)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return job
}

func TestCreateValidatesAndDefaults(t *testing.T) {
	svc := newTestService()
	job := mustCreate(t, svc, recruiter, validCreate())
	if job.Status != lifecycle.JobActive || job.PostedBy != recruiter.ID {
		t.Fatalf("unexpected defaults: %+v", job)
	}
	if job.Salary.Currency != "EUR" || job.Salary.Period != "yearly" {
		t.Fatalf("unexpected salary normalization: %+v", job.Salary)
	}
	if len(job.Requirements) != 1 || job.Requirements[0] != "Go" {
		t.Fatalf("unexpected requirements: %v", job.Requirements)
	}

	cases := []struct {
		name  string
		actor policy.Actor
		edit  func(*CreateCommand)
		kind  apperr.Kind
	}{
		{"applicant cannot post", applicant, func(*CreateCommand) {}, apperr.KindForbidden},
		{"past deadline", recruiter, func(c *CreateCommand) { c.ApplicationDeadline = testNow.Add(-time.Hour) }, apperr.KindValidation},
		{"inverted experience", recruiter, func(c *CreateCommand) { c.Experience = ExperienceRange{Min: 6, Max: 2} }, apperr.KindValidation},
		{"inverted salary", recruiter, func(c *CreateCommand) { c.Salary = SalaryRange{Min: 10, Max: 5} }, apperr.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := validCreate()
			tc.edit(&cmd)
			if _, err := svc.Create(context.Background(), tc.actor, cmd); !apperr.Is(err, tc.kind) {
				t.Fatalf("expected %s, got %v", tc.kind, err)
			}
		})
	}
}

func TestGetCountsViewsForNonOwners(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	job := mustCreate(t, svc, recruiter, validCreate())

	if _, err := svc.Get(ctx, recruiter, job.ID); err != nil {
		t.Fatalf("owner Get: %v", err)
	}
	got, err := svc.Get(ctx, policy.Actor{}, job.ID)
	if err != nil {
		t.Fatalf("anonymous Get: %v", err)
	}
	if got.ViewsCount != 1 {
		t.Fatalf("expected 1 view after anonymous read, got %d", got.ViewsCount)
	}
	if _, err := svc.Get(ctx, applicant, job.ID); err != nil {
		t.Fatalf("applicant Get: %v", err)
	}
	stored, _ := svc.Repo.GetByID(ctx, job.ID)
	if stored.ViewsCount != 2 {
		t.Fatalf("expected 2 views, got %d", stored.ViewsCount)
	}
	if _, err := svc.Get(ctx, applicant, "missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetStatusAuthorizationAndEvents(t *testing.T) {
	svc := newTestService()
	rec := &events.Recorder{}
	svc.Events = rec
	ctx := context.Background()
	job := mustCreate(t, svc, recruiter, validCreate())

	_, _, err := svc.SetStatus(ctx, otherRec, job.ID, lifecycle.JobClosed)
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if e, ok := err.(*apperr.Error); !ok || e.Message != "Not authorized to update this job" {
		t.Fatalf("unexpected message: %v", err)
	}

	updated, from, err := svc.SetStatus(ctx, recruiter, job.ID, lifecycle.JobPaused)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if from != lifecycle.JobActive || updated.Status != lifecycle.JobPaused {
		t.Fatalf("unexpected transition %s -> %s", from, updated.Status)
	}
	if _, _, err := svc.SetStatus(ctx, admin, job.ID, "archived"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
	// permissive: any valid target from any status
	if _, _, err := svc.SetStatus(ctx, admin, job.ID, lifecycle.JobDraft); err != nil {
		t.Fatalf("permissive transition: %v", err)
	}
	types := rec.Types()
	if len(types) != 2 || types[0] != events.JobStatusChanged {
		t.Fatalf("unexpected events: %v", types)
	}

	svc.Machine = lifecycle.Machine{Strict: true}
	if _, _, err := svc.SetStatus(ctx, admin, job.ID, lifecycle.JobFilled); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected strict machine to reject draft -> filled, got %v", err)
	}
}

func TestDuplicateResetsCountersAndDeadline(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	job := mustCreate(t, svc, recruiter, validCreate())
	_ = svc.Repo.IncrementViews(ctx, job.ID)
	_ = svc.Repo.SetApplicationsCount(ctx, job.ID, 4)

	svc.Now = func() time.Time { return testNow.Add(30 * 24 * time.Hour) }
	dup, err := svc.Duplicate(ctx, recruiter, job.ID)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup.ID == job.ID || dup.Status != lifecycle.JobDraft || dup.Title != "Backend Engineer (Copy)" {
		t.Fatalf("unexpected duplicate: %+v", dup)
	}
	if dup.ApplicationsCount != 0 || dup.ViewsCount != 0 {
		t.Fatalf("expected counters reset, got %+v", dup)
	}
	if !dup.ApplicationDeadline.After(svc.now()) {
		t.Fatalf("expected deadline moved into the future, got %s", dup.ApplicationDeadline)
	}
	if _, err := svc.Duplicate(ctx, otherRec, job.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestDeleteCascadesToDependents(t *testing.T) {
	svc := newTestService()
	dep := &fakeDependent{}
	svc.Dependents = []Dependent{dep}
	ctx := context.Background()
	job := mustCreate(t, svc, recruiter, validCreate())

	if err := svc.Delete(ctx, otherRec, job.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, admin, job.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(dep.deleted) != 1 || dep.deleted[0] != job.ID {
		t.Fatalf("expected dependents cleaned, got %v", dep.deleted)
	}
	if _, err := svc.Load(ctx, job.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected job gone, got %v", err)
	}
}

func TestListHidesInactiveJobsFromPublic(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	mustCreate(t, svc, recruiter, validCreate())
	draft := validCreate()
	draft.Status = lifecycle.JobDraft
	draft.Title = "Draft role"
	mustCreate(t, svc, recruiter, draft)

	_, total, err := svc.List(ctx, policy.Actor{}, ListQuery{Status: lifecycle.JobDraft}, pagination.Default())
	if err != nil || total != 1 {
		t.Fatalf("public list: total=%d err=%v", total, err)
	}
	items, total, err := svc.List(ctx, recruiter, ListQuery{Status: lifecycle.JobDraft, PostedBy: recruiter.ID}, pagination.Default())
	if err != nil || total != 1 || items[0].Title != "Draft role" {
		t.Fatalf("owner list: total=%d err=%v", total, err)
	}
	_, total, _ = svc.Mine(ctx, recruiter, ListQuery{}, pagination.Default())
	if total != 2 {
		t.Fatalf("expected 2 own postings, got %d", total)
	}
	_, total, _ = svc.List(ctx, policy.Actor{}, ListQuery{Search: "backend go"}, pagination.Default())
	if total != 1 {
		t.Fatalf("expected search to match, got %d", total)
	}
}

func TestStatsAndRecount(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	job := mustCreate(t, svc, recruiter, validCreate())
	svc.Applications = fakeCounter{byJob: map[string]map[string]int{
		job.ID: {lifecycle.AppSubmitted: 2, lifecycle.AppHired: 1, lifecycle.AppRejected: 1},
	}}

	if err := svc.RecountApplications(ctx, job.ID); err != nil {
		t.Fatalf("RecountApplications: %v", err)
	}
	stored, _ := svc.Repo.GetByID(ctx, job.ID)
	if stored.ApplicationsCount != 4 {
		t.Fatalf("expected recount to 4, got %d", stored.ApplicationsCount)
	}

	stats, err := svc.Stats(ctx, recruiter, job.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.ApplicationsCount != 4 || stats.ConversionRate != 25 || stats.DaysUntilDeadline != 14 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if _, err := svc.Stats(ctx, otherRec, job.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateKeepsCounters(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	job := mustCreate(t, svc, recruiter, validCreate())
	_ = svc.Repo.IncrementViews(ctx, job.ID)

	title := "Senior Backend Engineer"
	updated, err := svc.Update(ctx, recruiter, job.ID, UpdateCommand{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("unexpected title %q", updated.Title)
	}
	stored, _ := svc.Repo.GetByID(ctx, job.ID)
	if stored.ViewsCount != 1 {
		t.Fatalf("expected views preserved, got %d", stored.ViewsCount)
	}
	if _, err := svc.Update(ctx, otherRec, job.ID, UpdateCommand{Title: &title}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
