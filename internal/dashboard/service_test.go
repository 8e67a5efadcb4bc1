package dashboard

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"recruit-backend/internal/applications"
	"recruit-backend/internal/interviews"
	"recruit-backend/internal/jobs"
	"recruit-backend/internal/lifecycle"
	"recruit-backend/internal/policy"
	"recruit-backend/internal/shared/apperr"
	"recruit-backend/internal/shared/pagination"
	"recruit-backend/internal/shared/telemetry"
)

var (
	recruiter = policy.Actor{ID: "rec-1", Role: policy.RoleRecruiter}
	admin     = policy.Actor{ID: "admin-1", Role: policy.RoleAdmin}
	applicant = policy.Actor{ID: "app-1", Role: policy.RoleApplicant}
)

type fakeUsers map[string]int

func (f fakeUsers) CountByRole(ctx context.Context) (map[string]int, error) { return f, nil }

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		total, rejected, want int
	}{
		{0, 0, 0},
		{4, 1, 75},
		{3, 1, 67},
		{3, 3, 0},
		{1, 0, 100},
	}
	for _, tc := range tests {
		if got := SuccessRate(tc.total, tc.rejected); got != tc.want {
			t.Fatalf("SuccessRate(%d, %d) = %d, want %d", tc.total, tc.rejected, got, tc.want)
		}
	}
}

func seed(t *testing.T) (*Service, jobs.Job) {
	t.Helper()
	t.Cleanup(telemetry.SetOutput(io.Discard))
	ctx := context.Background()
	now := time.Now().UTC()

	jobRepo := jobs.NewMemoryRepo()
	appRepo := applications.NewMemoryRepo()
	ivRepo := interviews.NewMemoryRepo()

	job := jobs.Job{ID: "job-1", Title: "Go dev", PostedBy: recruiter.ID, Status: lifecycle.JobActive, ViewsCount: 0, ApplicationDeadline: now.Add(time.Hour)}
	other := jobs.Job{ID: "job-2", Title: "Designer", PostedBy: "rec-2", Status: lifecycle.JobDraft}
	for _, j := range []jobs.Job{job, other} {
		if err := jobRepo.Create(ctx, j); err != nil {
			t.Fatalf("create job: %v", err)
		}
	}
	apps := []applications.Application{
		{ID: "a1", JobID: "job-1", ApplicantID: applicant.ID, Status: lifecycle.AppSubmitted, CreatedAt: now},
		{ID: "a2", JobID: "job-1", ApplicantID: "app-2", Status: lifecycle.AppRejected, CreatedAt: now.Add(time.Second)},
		{ID: "a3", JobID: "job-2", ApplicantID: applicant.ID, Status: lifecycle.AppRejected, CreatedAt: now.Add(2 * time.Second)},
	}
	for _, a := range apps {
		if err := appRepo.Create(ctx, a); err != nil {
			t.Fatalf("create application: %v", err)
		}
	}
	ivs := []interviews.Interview{
		{ID: "i1", ApplicationID: "a1", JobID: "job-1", ApplicantID: applicant.ID, Status: lifecycle.InterviewScheduled, ScheduledDate: now.Add(24 * time.Hour)},
		{ID: "i2", ApplicationID: "a3", JobID: "job-2", ApplicantID: applicant.ID, Status: lifecycle.InterviewCompleted, ScheduledDate: now.Add(-24 * time.Hour)},
	}
	for _, iv := range ivs {
		if err := ivRepo.Create(ctx, iv); err != nil {
			t.Fatalf("create interview: %v", err)
		}
	}

	jobSvc := jobs.NewService(jobRepo)
	return &Service{
		Applications: appRepo,
		Jobs:         jobSvc,
		Interviews:   interviews.NewService(ivRepo, nil),
		Users:        fakeUsers{"applicant": 2, "recruiter": 2, "admin": 1},
	}, job
}

func TestStatsPerRole(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()

	t.Run("applicant", func(t *testing.T) {
		stats, err := svc.Stats(ctx, applicant)
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if stats.TotalApplications != 2 || stats.SuccessRate != 50 {
			t.Fatalf("unexpected totals: %+v", stats)
		}
		if stats.UpcomingInterviews != 1 || len(stats.NextInterviews) != 1 {
			t.Fatalf("expected one upcoming interview, got %d", stats.UpcomingInterviews)
		}
		if stats.Jobs != nil || stats.UsersByRole != nil {
			t.Fatalf("applicant must not see recruiter or admin sections: %+v", stats)
		}
	})

	t.Run("recruiter", func(t *testing.T) {
		stats, err := svc.Stats(ctx, recruiter)
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if stats.TotalApplications != 2 || stats.ApplicationsByStatus[lifecycle.AppRejected] != 1 {
			t.Fatalf("unexpected application stats: %+v", stats.ApplicationsByStatus)
		}
		if stats.Jobs == nil || stats.Jobs.Total != 1 || stats.Jobs.Active != 1 {
			t.Fatalf("unexpected job totals: %+v", stats.Jobs)
		}
		if len(stats.RecentApplications) != 2 {
			t.Fatalf("expected 2 recent applications, got %d", len(stats.RecentApplications))
		}
	})

	t.Run("admin", func(t *testing.T) {
		stats, err := svc.Stats(ctx, admin)
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if stats.TotalApplications != 3 || stats.SuccessRate != 33 {
			t.Fatalf("unexpected totals: %+v", stats)
		}
		if stats.Jobs.Total != 2 || stats.UsersByRole["recruiter"] != 2 {
			t.Fatalf("unexpected admin sections: %+v %+v", stats.Jobs, stats.UsersByRole)
		}
		if stats.TotalInterviews == nil || *stats.TotalInterviews != 2 {
			t.Fatalf("unexpected interview total: %v", stats.TotalInterviews)
		}
	})
}

func TestStatsEmptyApplicantHasZeroSuccessRate(t *testing.T) {
	svc, _ := seed(t)
	stats, err := svc.Stats(context.Background(), policy.Actor{ID: "nobody", Role: policy.RoleApplicant})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalApplications != 0 || stats.SuccessRate != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.RecentApplications == nil || stats.NextInterviews == nil || stats.ApplicationsByStatus == nil {
		t.Fatal("empty collections should not be nil")
	}
}

func TestStatsRejectsUnknownRole(t *testing.T) {
	svc, _ := seed(t)
	if _, err := svc.Stats(context.Background(), policy.Actor{}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

type failingApps struct{}

func (failingApps) StatusCounts(ctx context.Context, filter applications.Filter) (map[string]int, error) {
	return nil, errors.New("store down")
}

func (failingApps) List(ctx context.Context, filter applications.Filter, page pagination.Params) ([]applications.Application, int, error) {
	<-ctx.Done()
	return nil, 0, ctx.Err()
}

func TestStatsPropagatesFirstError(t *testing.T) {
	svc, _ := seed(t)
	svc.Applications = failingApps{}
	_, err := svc.Stats(context.Background(), admin)
	if err == nil || err.Error() != "store down" {
		t.Fatalf("expected store error, got %v", err)
	}
}
