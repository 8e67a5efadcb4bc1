package applications

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"recruit-backend/internal/events"
	"recruit-backend/internal/jobs"
	"recruit-backend/internal/lifecycle"
	"recruit-backend/internal/policy"
	"recruit-backend/internal/shared/apperr"
	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/pagination"
	"recruit-backend/internal/shared/storage/object"
	"recruit-backend/internal/shared/telemetry"
)

// JobStore is the part of the jobs service applications depend on.
type JobStore interface {
	Load(ctx context.Context, jobID string) (jobs.Job, error)
	RecountApplications(ctx context.Context, jobID string) error
	IDsByOwner(ctx context.Context, postedBy string) ([]string, error)
}

// ScreeningRequester schedules background screening of an application's resume.
type ScreeningRequester interface {
	Request(ctx context.Context, applicationID string) error
}

// Dependent removes records that reference an application before it is deleted.
type Dependent interface {
	DeleteByApplication(ctx context.Context, applicationID string) error
}

// ApplicantDirectory resolves applicant contact details for exports.
type ApplicantDirectory interface {
	Contact(ctx context.Context, userID string) (name, email string, err error)
}

type Service struct {
	Repo       Repo
	Jobs       JobStore
	Store      object.Store
	Machine    lifecycle.Machine
	Events     events.Publisher
	Screening  ScreeningRequester
	Dependents []Dependent
	Applicants ApplicantDirectory
	Now        func() time.Time
}

func NewService(repo Repo, jobStore JobStore, store object.Store) *Service {
	return &Service{
		Repo:  repo,
		Jobs:  jobStore,
		Store: store,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

// Load returns an application without authorization checks.
func (s *Service) Load(ctx context.Context, appID string) (Application, error) {
	app, err := s.Repo.GetByID(ctx, appID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Application{}, apperr.NotFound("Application not found")
		}
		return Application{}, err
	}
	return app, nil
}

// jobOwner returns the poster of the application's job, or "" when the job
// no longer exists.
func (s *Service) jobOwner(ctx context.Context, jobID string) (string, error) {
	job, err := s.Jobs.Load(ctx, jobID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return "", nil
		}
		return "", err
	}
	return job.PostedBy, nil
}

// Create submits an application for an active job before its deadline. An
// optional resume is stored first and removed again if the insert fails.
func (s *Service) Create(ctx context.Context, actor policy.Actor, cmd CreateCommand, upload *Upload) (Application, error) {
	if !policy.CanApply(actor).Allowed {
		return Application{}, apperr.Forbidden("Only applicants can apply for jobs")
	}
	job, err := s.Jobs.Load(ctx, strings.TrimSpace(cmd.JobID))
	if err != nil {
		return Application{}, err
	}
	if job.Status != lifecycle.JobActive {
		return Application{}, apperr.Conflict("This job is no longer accepting applications")
	}
	now := s.now()
	if !job.ApplicationDeadline.After(now) {
		return Application{}, apperr.Conflict("Application deadline has passed")
	}

	app := Application{
		ID:                uuid.NewString(),
		JobID:             job.ID,
		ApplicantID:       actor.ID,
		CoverLetter:       strings.TrimSpace(cmd.CoverLetter),
		ExpectedSalary:    cmd.ExpectedSalary,
		NoticePeriod:      strings.TrimSpace(cmd.NoticePeriod),
		WillingToRelocate: cmd.WillingToRelocate,
		PortfolioURL:      strings.TrimSpace(cmd.PortfolioURL),
		LinkedInURL:       strings.TrimSpace(cmd.LinkedInURL),
		Status:            lifecycle.AppSubmitted,
		Timeline:          []TimelineEntry{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if cmd.AvailabilityDate != nil {
		v := cmd.AvailabilityDate.UTC()
		app.AvailabilityDate = &v
	}

	if upload != nil {
		resume, err := s.storeResume(ctx, actor.ID, upload)
		if err != nil {
			return Application{}, err
		}
		app.Resume = &resume
		app.ScreeningStatus = ScreeningPending
	}

	if err := s.Repo.Create(ctx, app); err != nil {
		if app.Resume != nil {
			s.removeObject(ctx, app.Resume.StoragePath)
		}
		if errors.Is(err, ErrDuplicate) {
			return Application{}, apperr.Conflict("You have already applied for this job")
		}
		return Application{}, err
	}
	if err := s.Jobs.RecountApplications(ctx, job.ID); err != nil {
		return Application{}, err
	}
	metrics.IncApplicationCreated()
	events.Emit(ctx, s.Events, events.New(events.ApplicationCreated, app.ID, actor.ID, map[string]any{
		"jobId":       job.ID,
		"applicantId": actor.ID,
	}))
	if app.Resume != nil {
		s.requestScreening(ctx, app.ID)
	}
	return app, nil
}

// List returns applications visible to actor: their own for applicants,
// those on their jobs for recruiters and all for admins.
func (s *Service) List(ctx context.Context, actor policy.Actor, q ListQuery, page pagination.Params) ([]Application, int, error) {
	filter := Filter{Status: q.Status, JobID: q.JobID}
	switch actor.Role {
	case policy.RoleAdmin:
	case policy.RoleApplicant:
		filter.ApplicantID = actor.ID
	case policy.RoleRecruiter:
		ids, err := s.Jobs.IDsByOwner(ctx, actor.ID)
		if err != nil {
			return nil, 0, err
		}
		if ids == nil {
			ids = []string{}
		}
		filter.JobIDs = ids
	default:
		return nil, 0, apperr.Forbidden("Not authorized to list applications")
	}
	return s.Repo.List(ctx, filter, page)
}

// ListForJob returns the applications of one job to its owner or an admin.
func (s *Service) ListForJob(ctx context.Context, actor policy.Actor, jobID string, q ListQuery, page pagination.Params) ([]Application, int, error) {
	job, err := s.Jobs.Load(ctx, jobID)
	if err != nil {
		return nil, 0, err
	}
	if !policy.CanMutateJob(actor, job.PostedBy).Allowed {
		return nil, 0, apperr.Forbidden("Not authorized to view applications for this job")
	}
	return s.Repo.List(ctx, Filter{JobID: job.ID, Status: q.Status}, page)
}

// Get loads an application for a party to it. Missing applications are
// reported before authorization.
func (s *Service) Get(ctx context.Context, actor policy.Actor, appID string) (Application, error) {
	app, err := s.Load(ctx, appID)
	if err != nil {
		return Application{}, err
	}
	owner, err := s.jobOwner(ctx, app.JobID)
	if err != nil {
		return Application{}, err
	}
	if !policy.CanAccessApplication(actor, app.ApplicantID, owner).Allowed {
		return Application{}, apperr.Forbidden("Not authorized to view this application")
	}
	return app, nil
}

// Update applies cmd within the actor's scope. Applicants may only change
// the fields in policy.ApplicantEditableFields; anything else is dropped.
func (s *Service) Update(ctx context.Context, actor policy.Actor, appID string, cmd UpdateCommand) (Application, error) {
	app, err := s.Load(ctx, appID)
	if err != nil {
		return Application{}, err
	}
	owner, err := s.jobOwner(ctx, app.JobID)
	if err != nil {
		return Application{}, err
	}
	scope := policy.ApplicationUpdateScope(actor, app.ApplicantID, owner)
	switch scope {
	case policy.ScopeNone:
		return Application{}, apperr.Forbidden("Not authorized to update this application")
	case policy.ScopeApplicant:
		allowed := make(map[string]bool, len(policy.ApplicantEditableFields))
		for _, f := range policy.ApplicantEditableFields {
			allowed[f] = true
		}
		for _, set := range cmd.setters() {
			if allowed[set.name] {
				set.apply(&app)
			}
		}
	case policy.ScopeFull:
		for _, set := range cmd.setters() {
			set.apply(&app)
		}
	}

	now := s.now()
	from := app.Status
	statusChanged := false
	if scope == policy.ScopeFull && cmd.Status != nil {
		next, err := s.Machine.Transition(lifecycle.EntityApplication, app.Status, *cmd.Status)
		if err != nil {
			return Application{}, statusError(err, *cmd.Status)
		}
		app.ChangeStatus(next, actor.ID, cmd.Note, now)
		statusChanged = true
	}
	app.UpdatedAt = now
	if err := s.Repo.Update(ctx, app); err != nil {
		return Application{}, s.mapErr(err)
	}
	if statusChanged {
		s.statusChanged(ctx, actor, app, from)
	}
	return app, nil
}

// SetStatus moves the application to status on behalf of the job owner or an
// admin and returns the application and its previous status.
func (s *Service) SetStatus(ctx context.Context, actor policy.Actor, appID, status, note string) (Application, string, error) {
	app, err := s.Load(ctx, appID)
	if err != nil {
		return Application{}, "", err
	}
	owner, err := s.jobOwner(ctx, app.JobID)
	if err != nil {
		return Application{}, "", err
	}
	if !policy.CanReviewApplication(actor, owner).Allowed {
		return Application{}, "", apperr.Forbidden("Not authorized to update this application status")
	}
	from := app.Status
	if err := s.transition(ctx, &app, status, actor.ID, note); err != nil {
		return Application{}, "", err
	}
	s.statusChanged(ctx, actor, app, from)
	return app, from, nil
}

// Withdraw lets the applicant pull an application that is not yet decided.
func (s *Service) Withdraw(ctx context.Context, actor policy.Actor, appID string) (Application, error) {
	app, err := s.Load(ctx, appID)
	if err != nil {
		return Application{}, err
	}
	if actor.ID == "" || actor.ID != app.ApplicantID {
		return Application{}, apperr.Forbidden("Not authorized to withdraw this application")
	}
	switch app.Status {
	case lifecycle.AppHired, lifecycle.AppRejected, lifecycle.AppWithdrawn:
		return Application{}, apperr.Validation("Cannot withdraw an application that is " + app.Status)
	}
	from := app.Status
	if err := s.transition(ctx, &app, lifecycle.AppWithdrawn, actor.ID, "Withdrawn by applicant"); err != nil {
		return Application{}, err
	}
	s.statusChanged(ctx, actor, app, from)
	return app, nil
}

// CascadeStatus sets the application status as a side effect of another
// entity changing. No authorization is applied and the strict transition
// table is not consulted.
func (s *Service) CascadeStatus(ctx context.Context, appID, status, changedBy, note string) (Application, error) {
	app, err := s.Load(ctx, appID)
	if err != nil {
		return Application{}, err
	}
	from := app.Status
	next, err := lifecycle.Permissive().Transition(lifecycle.EntityApplication, app.Status, status)
	if err != nil {
		return Application{}, statusError(err, status)
	}
	app.ChangeStatus(next, changedBy, note, s.now())
	if err := s.Repo.Update(ctx, app); err != nil {
		return Application{}, s.mapErr(err)
	}
	metrics.IncCascade(from, app.Status)
	s.statusChanged(ctx, policy.Actor{ID: changedBy}, app, from)
	return app, nil
}

func (s *Service) transition(ctx context.Context, app *Application, status, changedBy, note string) error {
	next, err := s.Machine.Transition(lifecycle.EntityApplication, app.Status, status)
	if err != nil {
		return statusError(err, status)
	}
	app.ChangeStatus(next, changedBy, note, s.now())
	return s.mapErr(s.Repo.Update(ctx, *app))
}

func (s *Service) statusChanged(ctx context.Context, actor policy.Actor, app Application, from string) {
	metrics.IncStatusTransition(string(lifecycle.EntityApplication), app.Status)
	events.Emit(ctx, s.Events, events.New(events.ApplicationStatusChanged, app.ID, actor.ID, map[string]any{
		"jobId": app.JobID,
		"from":  from,
		"to":    app.Status,
	}))
}

// Delete removes an application, its interviews and resume, then recounts
// the job's applications.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, appID string) error {
	app, err := s.Load(ctx, appID)
	if err != nil {
		return err
	}
	if !policy.CanDeleteApplication(actor, app.ApplicantID).Allowed {
		return apperr.Forbidden("Not authorized to delete this application")
	}
	for _, dep := range s.Dependents {
		if err := dep.DeleteByApplication(ctx, app.ID); err != nil {
			return err
		}
	}
	if err := s.Repo.Delete(ctx, app.ID); err != nil {
		return s.mapErr(err)
	}
	if app.Resume != nil {
		s.removeObject(ctx, app.Resume.StoragePath)
	}
	if err := s.Jobs.RecountApplications(ctx, app.JobID); err != nil {
		return err
	}
	metrics.IncApplicationDeleted()
	events.Emit(ctx, s.Events, events.New(events.ApplicationDeleted, app.ID, actor.ID, map[string]any{
		"jobId": app.JobID,
	}))
	return nil
}

// UploadResume attaches or replaces the applicant's resume and schedules screening.
func (s *Service) UploadResume(ctx context.Context, actor policy.Actor, appID string, upload Upload) (Application, error) {
	app, err := s.Load(ctx, appID)
	if err != nil {
		return Application{}, err
	}
	if !actor.IsAdmin() && (actor.ID == "" || actor.ID != app.ApplicantID) {
		return Application{}, apperr.Forbidden("Not authorized to update this application")
	}
	resume, err := s.storeResume(ctx, app.ApplicantID, &upload)
	if err != nil {
		return Application{}, err
	}
	previous := app.Resume
	app.Resume = &resume
	app.ParsedResumeData = nil
	app.AIScreeningScore = nil
	app.ScreeningStatus = ScreeningPending
	app.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, app); err != nil {
		s.removeObject(ctx, resume.StoragePath)
		return Application{}, s.mapErr(err)
	}
	if previous != nil {
		s.removeObject(ctx, previous.StoragePath)
	}
	s.requestScreening(ctx, app.ID)
	return app, nil
}

// OpenResume returns a reader over the stored resume. The caller must close it.
func (s *Service) OpenResume(ctx context.Context, actor policy.Actor, appID string) (io.ReadCloser, Resume, error) {
	app, err := s.Get(ctx, actor, appID)
	if err != nil {
		return nil, Resume{}, err
	}
	if app.Resume == nil {
		return nil, Resume{}, apperr.NotFound("Resume not found")
	}
	rc, err := s.Store.Open(ctx, app.Resume.StoragePath)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, Resume{}, apperr.NotFound("Resume file not found")
		}
		return nil, Resume{}, err
	}
	return rc, *app.Resume, nil
}

// RequestScreening queues a new screening run for the job owner or an admin.
func (s *Service) RequestScreening(ctx context.Context, actor policy.Actor, appID string) (Application, error) {
	app, err := s.Load(ctx, appID)
	if err != nil {
		return Application{}, err
	}
	owner, err := s.jobOwner(ctx, app.JobID)
	if err != nil {
		return Application{}, err
	}
	if !policy.CanReviewApplication(actor, owner).Allowed {
		return Application{}, apperr.Forbidden("Not authorized to screen this application")
	}
	if app.Resume == nil {
		return Application{}, apperr.Validation("Application has no resume to screen")
	}
	if s.Screening == nil {
		return Application{}, apperr.Internal("Screening is not configured", nil)
	}
	app.ScreeningStatus = ScreeningPending
	app.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, app); err != nil {
		return Application{}, s.mapErr(err)
	}
	if err := s.Screening.Request(ctx, app.ID); err != nil {
		return Application{}, err
	}
	return app, nil
}

// RecordScreening stores the outcome of a screening run without touching
// status or timeline. A result for a resume that was replaced meanwhile is
// dropped with ErrStaleScreening.
func (s *Service) RecordScreening(ctx context.Context, appID string, res ScreeningResult) (Application, error) {
	upd := ScreeningUpdate{Status: ScreeningCompleted, Parsed: res.Parsed, Score: res.Score, UpdatedAt: s.now()}
	if res.Err != nil {
		upd = ScreeningUpdate{Status: ScreeningFailed, UpdatedAt: upd.UpdatedAt}
	}
	if err := s.Repo.SetScreening(ctx, appID, res.ResumePath, upd); err != nil {
		if errors.Is(err, ErrStaleScreening) {
			metrics.IncScreeningStale()
			return Application{}, err
		}
		return Application{}, s.mapErr(err)
	}
	app, err := s.Load(ctx, appID)
	if err != nil {
		return Application{}, err
	}
	data := map[string]any{"jobId": app.JobID, "screeningStatus": upd.Status}
	if res.Score != nil && res.Err == nil {
		data["overall"] = res.Score.Overall
	}
	events.Emit(ctx, s.Events, events.New(events.ApplicationScreened, app.ID, "", data))
	return app, nil
}

func (s *Service) requestScreening(ctx context.Context, appID string) {
	if s.Screening == nil {
		return
	}
	if err := s.Screening.Request(ctx, appID); err != nil {
		telemetry.Warn("applications.screening_request_failed", map[string]any{
			"application_id": appID,
			"error":          err.Error(),
		})
	}
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if s.Store == nil || key == "" {
		return
	}
	if err := s.Store.Delete(ctx, key); err != nil && !errors.Is(err, object.ErrNotFound) {
		telemetry.Warn("applications.resume_delete_failed", map[string]any{
			"storage_key": key,
			"error":       err.Error(),
		})
	}
}

func (s *Service) mapErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Application not found")
	}
	return err
}

func statusError(err error, status string) error {
	if errors.Is(err, lifecycle.ErrInvalidTransition) {
		return apperr.Validation("Invalid status transition", apperr.Field("status", err.Error(), status))
	}
	return apperr.Validation("Validation failed", apperr.Field("status", "Invalid status", status))
}
