package jobs

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"recruit-backend/internal/events"
	"recruit-backend/internal/lifecycle"
	"recruit-backend/internal/policy"
	"recruit-backend/internal/shared/apperr"
	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/pagination"
	"recruit-backend/internal/shared/telemetry"
)

// ApplicationCounter reads application totals for a job.
type ApplicationCounter interface {
	CountByJob(ctx context.Context, jobID string) (int, error)
	StatusCountsByJob(ctx context.Context, jobID string) (map[string]int, error)
}

// Dependent removes records that reference a job before it is deleted.
type Dependent interface {
	DeleteByJob(ctx context.Context, jobID string) error
}

type Service struct {
	Repo         Repo
	Applications ApplicationCounter
	Dependents   []Dependent
	Machine      lifecycle.Machine
	Events       events.Publisher
	Now          func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

// Load returns a job by id or a NotFound error.
func (s *Service) Load(ctx context.Context, jobID string) (Job, error) {
	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Job{}, apperr.NotFound("Job not found")
		}
		return Job{}, err
	}
	return job, nil
}

func (s *Service) Create(ctx context.Context, actor policy.Actor, cmd CreateCommand) (Job, error) {
	if !policy.CanCreateJob(actor).Allowed {
		return Job{}, apperr.Forbidden("User role " + actor.Role + " is not authorized to access this route")
	}
	now := s.now()
	status := cmd.Status
	if status == "" {
		status = lifecycle.JobActive
	}
	job := Job{
		ID:                  uuid.NewString(),
		Title:               strings.TrimSpace(cmd.Title),
		Company:             strings.TrimSpace(cmd.Company),
		Description:         strings.TrimSpace(cmd.Description),
		Requirements:        trimAll(cmd.Requirements),
		Responsibilities:    trimAll(cmd.Responsibilities),
		Skills:              trimAll(cmd.Skills),
		Benefits:            trimAll(cmd.Benefits),
		Location:            strings.TrimSpace(cmd.Location),
		Type:                cmd.Type,
		Category:            cmd.Category,
		Experience:          cmd.Experience,
		Salary:              normalizeSalary(cmd.Salary),
		ApplicationDeadline: cmd.ApplicationDeadline.UTC(),
		Status:              status,
		PostedBy:            actor.ID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	var fields []apperr.FieldError
	if !job.ApplicationDeadline.After(now) {
		fields = append(fields, apperr.Field("applicationDeadline", "Application deadline must be in the future", cmd.ApplicationDeadline))
	}
	fields = append(fields, validateRanges(job)...)
	if len(fields) > 0 {
		return Job{}, apperr.Validation("Validation failed", fields...)
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}
	return job, nil
}

func (s *Service) Update(ctx context.Context, actor policy.Actor, jobID string, cmd UpdateCommand) (Job, error) {
	job, err := s.Load(ctx, jobID)
	if err != nil {
		return Job{}, err
	}
	if !policy.CanMutateJob(actor, job.PostedBy).Allowed {
		return Job{}, apperr.Forbidden("Not authorized to update this job")
	}
	if cmd.Title != nil {
		job.Title = strings.TrimSpace(*cmd.Title)
	}
	if cmd.Company != nil {
		job.Company = strings.TrimSpace(*cmd.Company)
	}
	if cmd.Description != nil {
		job.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.Requirements != nil {
		job.Requirements = trimAll(*cmd.Requirements)
	}
	if cmd.Responsibilities != nil {
		job.Responsibilities = trimAll(*cmd.Responsibilities)
	}
	if cmd.Skills != nil {
		job.Skills = trimAll(*cmd.Skills)
	}
	if cmd.Benefits != nil {
		job.Benefits = trimAll(*cmd.Benefits)
	}
	if cmd.Location != nil {
		job.Location = strings.TrimSpace(*cmd.Location)
	}
	if cmd.Type != nil {
		job.Type = *cmd.Type
	}
	if cmd.Category != nil {
		job.Category = *cmd.Category
	}
	if cmd.Experience != nil {
		job.Experience = *cmd.Experience
	}
	if cmd.Salary != nil {
		job.Salary = normalizeSalary(*cmd.Salary)
	}
	now := s.now()
	var fields []apperr.FieldError
	if cmd.ApplicationDeadline != nil {
		if !cmd.ApplicationDeadline.After(now) {
			fields = append(fields, apperr.Field("applicationDeadline", "Application deadline must be in the future", *cmd.ApplicationDeadline))
		}
		job.ApplicationDeadline = cmd.ApplicationDeadline.UTC()
	}
	fields = append(fields, validateRanges(job)...)
	if len(fields) > 0 {
		return Job{}, apperr.Validation("Validation failed", fields...)
	}
	job.UpdatedAt = now
	if err := s.Repo.Update(ctx, job); err != nil {
		return Job{}, s.mapErr(err)
	}
	return job, nil
}

// Delete removes the job together with its applications and interviews.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, jobID string) error {
	job, err := s.Load(ctx, jobID)
	if err != nil {
		return err
	}
	if !policy.CanMutateJob(actor, job.PostedBy).Allowed {
		return apperr.Forbidden("Not authorized to delete this job")
	}
	for _, dep := range s.Dependents {
		if err := dep.DeleteByJob(ctx, job.ID); err != nil {
			return err
		}
	}
	return s.mapErr(s.Repo.Delete(ctx, job.ID))
}

// SetStatus changes the job status and returns the job and its previous status.
// Applications are never touched.
func (s *Service) SetStatus(ctx context.Context, actor policy.Actor, jobID, status string) (Job, string, error) {
	job, err := s.Load(ctx, jobID)
	if err != nil {
		return Job{}, "", err
	}
	if !policy.CanMutateJob(actor, job.PostedBy).Allowed {
		return Job{}, "", apperr.Forbidden("Not authorized to update this job")
	}
	from := job.Status
	next, err := s.Machine.Transition(lifecycle.EntityJob, from, status)
	if err != nil {
		return Job{}, "", statusError(err, status)
	}
	job.Status = next
	job.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, job); err != nil {
		return Job{}, "", s.mapErr(err)
	}
	metrics.IncStatusTransition(string(lifecycle.EntityJob), next)
	events.Emit(ctx, s.Events, events.New(events.JobStatusChanged, job.ID, actor.ID, map[string]any{
		"from": from,
		"to":   next,
	}))
	return job, from, nil
}

// Duplicate copies a job as a new draft owned by the actor. Counters reset
// and a past deadline moves 30 days ahead.
func (s *Service) Duplicate(ctx context.Context, actor policy.Actor, jobID string) (Job, error) {
	src, err := s.Load(ctx, jobID)
	if err != nil {
		return Job{}, err
	}
	if !policy.CanMutateJob(actor, src.PostedBy).Allowed {
		return Job{}, apperr.Forbidden("Not authorized to duplicate this job")
	}
	now := s.now()
	dup := cloneJob(src)
	dup.ID = uuid.NewString()
	dup.Title = src.Title + " (Copy)"
	dup.Status = lifecycle.JobDraft
	dup.PostedBy = actor.ID
	dup.ApplicationsCount = 0
	dup.ViewsCount = 0
	dup.CreatedAt = now
	dup.UpdatedAt = now
	if !dup.ApplicationDeadline.After(now) {
		dup.ApplicationDeadline = now.Add(30 * 24 * time.Hour)
	}
	if err := s.Repo.Create(ctx, dup); err != nil {
		return Job{}, err
	}
	return dup, nil
}

// Get returns a job and counts a view when the reader is not its owner.
func (s *Service) Get(ctx context.Context, actor policy.Actor, jobID string) (Job, error) {
	job, err := s.Load(ctx, jobID)
	if err != nil {
		return Job{}, err
	}
	if policy.IsJobOwner(actor, job.PostedBy) {
		return job, nil
	}
	if err := s.Repo.IncrementViews(ctx, job.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Job{}, apperr.NotFound("Job not found")
		}
		return Job{}, err
	}
	job.ViewsCount++
	metrics.IncJobView()
	return job, nil
}

// List searches jobs. Only admins and a recruiter browsing their own
// postings may filter by a status other than active.
func (s *Service) List(ctx context.Context, actor policy.Actor, q ListQuery, page pagination.Params) ([]Job, int, error) {
	filter := q.filter()
	ownPostings := q.PostedBy != "" && policy.IsJobOwner(actor, q.PostedBy)
	if !actor.IsAdmin() && !ownPostings {
		filter.Status = lifecycle.JobActive
	}
	return s.Repo.List(ctx, filter, page)
}

// Mine lists the actor's own postings in any status.
func (s *Service) Mine(ctx context.Context, actor policy.Actor, q ListQuery, page pagination.Params) ([]Job, int, error) {
	if !policy.CanCreateJob(actor).Allowed {
		return nil, 0, apperr.Forbidden("User role " + actor.Role + " is not authorized to access this route")
	}
	filter := q.filter()
	filter.PostedBy = actor.ID
	return s.Repo.List(ctx, filter, page)
}

// Stats reports application counts by status for the job owner.
func (s *Service) Stats(ctx context.Context, actor policy.Actor, jobID string) (Stats, error) {
	job, err := s.Load(ctx, jobID)
	if err != nil {
		return Stats{}, err
	}
	if !policy.CanMutateJob(actor, job.PostedBy).Allowed {
		return Stats{}, apperr.Forbidden("Not authorized to view stats for this job")
	}
	byStatus := map[string]int{}
	if s.Applications != nil {
		byStatus, err = s.Applications.StatusCountsByJob(ctx, job.ID)
		if err != nil {
			return Stats{}, err
		}
	}
	total := 0
	for _, n := range byStatus {
		total += n
	}
	stats := Stats{
		JobID:                job.ID,
		Title:                job.Title,
		Status:               job.Status,
		ApplicationsCount:    total,
		ViewsCount:           job.ViewsCount,
		ApplicationsByStatus: byStatus,
	}
	if total > 0 {
		stats.ConversionRate = int(math.Round(float64(byStatus[lifecycle.AppHired]) / float64(total) * 100))
	}
	if left := job.ApplicationDeadline.Sub(s.now()); left > 0 {
		stats.DaysUntilDeadline = int(math.Ceil(left.Hours() / 24))
	}
	return stats, nil
}

// RecountApplications recomputes applicationsCount from the live applications.
func (s *Service) RecountApplications(ctx context.Context, jobID string) error {
	if s.Applications == nil {
		return nil
	}
	n, err := s.Applications.CountByJob(ctx, jobID)
	if err != nil {
		return err
	}
	if err := s.Repo.SetApplicationsCount(ctx, jobID, n); err != nil {
		if errors.Is(err, ErrNotFound) {
			telemetry.Warn("jobs.recount_missing_job", map[string]any{"job_id": jobID})
			return nil
		}
		return err
	}
	return nil
}

// Summary aggregates jobs posted by postedBy, or all jobs when empty.
func (s *Service) Summary(ctx context.Context, postedBy string) (Summary, error) {
	return s.Repo.Summary(ctx, postedBy)
}

// IDsByOwner lists the ids of jobs posted by postedBy.
func (s *Service) IDsByOwner(ctx context.Context, postedBy string) ([]string, error) {
	return s.Repo.IDsByOwner(ctx, postedBy)
}

func (s *Service) mapErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Job not found")
	}
	return err
}

func statusError(err error, status string) error {
	if errors.Is(err, lifecycle.ErrInvalidTransition) {
		return apperr.Validation("Invalid status transition", apperr.Field("status", err.Error(), status))
	}
	return apperr.Validation("Validation failed", apperr.Field("status", "Invalid status", status))
}

func validateRanges(job Job) []apperr.FieldError {
	var fields []apperr.FieldError
	if job.Experience.Max > 0 && job.Experience.Min > job.Experience.Max {
		fields = append(fields, apperr.Field("experience.min", "Minimum experience cannot exceed maximum experience", job.Experience.Min))
	}
	if job.Salary.Max > 0 && job.Salary.Min > job.Salary.Max {
		fields = append(fields, apperr.Field("salary.min", "Minimum salary cannot exceed maximum salary", job.Salary.Min))
	}
	return fields
}

func normalizeSalary(s SalaryRange) SalaryRange {
	s.Currency = strings.ToUpper(strings.TrimSpace(s.Currency))
	if s.Currency == "" {
		s.Currency = "USD"
	}
	if s.Period == "" {
		s.Period = "yearly"
	}
	return s
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
