package interviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"recruit-backend/internal/applications"
	"recruit-backend/internal/events"
	"recruit-backend/internal/lifecycle"
	"recruit-backend/internal/policy"
	"recruit-backend/internal/shared/apperr"
	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/pagination"
	"recruit-backend/internal/shared/telemetry"
)

const defaultDuration = 60

// ApplicationStore is the part of the applications service interviews drive.
type ApplicationStore interface {
	Load(ctx context.Context, appID string) (applications.Application, error)
	CascadeStatus(ctx context.Context, appID, status, changedBy, note string) (applications.Application, error)
}

type Service struct {
	Repo         Repo
	Applications ApplicationStore
	Machine      lifecycle.Machine
	Events       events.Publisher
	Now          func() time.Time
}

func NewService(repo Repo, apps ApplicationStore) *Service {
	return &Service{
		Repo:         repo,
		Applications: apps,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

func (s *Service) load(ctx context.Context, interviewID string) (Interview, error) {
	iv, err := s.Repo.GetByID(ctx, interviewID)
	if err != nil {
		return Interview{}, s.mapErr(err)
	}
	return iv, nil
}

// manageable loads an interview for a recruiter or admin. Any recruiter may
// manage any interview.
func (s *Service) manageable(ctx context.Context, actor policy.Actor, interviewID string) (Interview, error) {
	if !policy.CanManageInterviews(actor).Allowed {
		return Interview{}, apperr.Forbidden("Not authorized to manage interviews")
	}
	return s.load(ctx, interviewID)
}

// Create schedules the single interview of an application and moves the
// application to interview_scheduled.
func (s *Service) Create(ctx context.Context, actor policy.Actor, cmd CreateCommand) (Interview, error) {
	if !policy.CanManageInterviews(actor).Allowed {
		return Interview{}, apperr.Forbidden("Not authorized to schedule interviews")
	}
	app, err := s.Applications.Load(ctx, strings.TrimSpace(cmd.ApplicationID))
	if err != nil {
		return Interview{}, err
	}
	if app.Status == lifecycle.AppInterviewed {
		return Interview{}, apperr.Validation("Candidate has already been interviewed")
	}
	if _, err := s.Repo.GetByApplication(ctx, app.ID); err == nil {
		return Interview{}, apperr.Validation("Interview already scheduled for this application")
	} else if !errors.Is(err, ErrNotFound) {
		return Interview{}, err
	}

	now := s.now()
	if !cmd.ScheduledDate.After(now) {
		return Interview{}, apperr.Validation("Validation failed",
			apperr.Field("scheduledDate", "Interview must be scheduled in the future", cmd.ScheduledDate))
	}
	iv := Interview{
		ID:            uuid.NewString(),
		ApplicationID: app.ID,
		JobID:         app.JobID,
		ApplicantID:   app.ApplicantID,
		InterviewerID: strings.TrimSpace(cmd.InterviewerID),
		Type:          cmd.Type,
		ScheduledDate: cmd.ScheduledDate.UTC(),
		Duration:      cmd.Duration,
		Location:      strings.TrimSpace(cmd.Location),
		MeetingLink:   strings.TrimSpace(cmd.MeetingLink),
		Status:        lifecycle.InterviewScheduled,
		NoteHistory:   []Note{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if iv.InterviewerID == "" {
		iv.InterviewerID = actor.ID
	}
	if iv.Duration == 0 {
		iv.Duration = defaultDuration
	}
	if note := strings.TrimSpace(cmd.Notes); note != "" {
		iv.NoteHistory = append(iv.NoteHistory, Note{Content: note, AddedBy: actor.ID, AddedAt: now})
	}

	if err := s.Repo.Create(ctx, iv); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return Interview{}, apperr.Validation("Interview already scheduled for this application")
		}
		return Interview{}, err
	}
	if _, err := s.Applications.CascadeStatus(ctx, app.ID, lifecycle.AppInterviewScheduled, actor.ID, "Interview scheduled"); err != nil {
		if delErr := s.Repo.Delete(ctx, iv.ID); delErr != nil {
			telemetry.Error("interviews.rollback_failed", map[string]any{
				"interview_id": iv.ID,
				"error":        delErr.Error(),
			})
		}
		return Interview{}, err
	}
	events.Emit(ctx, s.Events, events.New(events.InterviewScheduled, iv.ID, actor.ID, map[string]any{
		"applicationId": iv.ApplicationID,
		"jobId":         iv.JobID,
		"scheduledDate": iv.ScheduledDate,
	}))
	return iv, nil
}

// List returns interviews visible to actor. Applicants only see their own.
func (s *Service) List(ctx context.Context, actor policy.Actor, q ListQuery, page pagination.Params) ([]Interview, int, error) {
	filter := Filter{
		Status:        q.Status,
		JobID:         q.JobID,
		ApplicationID: q.ApplicationID,
		InterviewerID: q.InterviewerID,
	}
	if q.Upcoming {
		filter.After = s.now()
		if filter.Status == "" {
			filter.Statuses = lifecycle.UpcomingInterviewStatuses
		}
	}
	switch {
	case actor.HasRole(policy.RoleRecruiter, policy.RoleAdmin):
	case actor.Role == policy.RoleApplicant:
		filter.ApplicantID = actor.ID
	default:
		return nil, 0, apperr.Forbidden("Not authorized to list interviews")
	}
	return s.Repo.List(ctx, filter, page)
}

// Get returns 404 before 403.
func (s *Service) Get(ctx context.Context, actor policy.Actor, interviewID string) (Interview, error) {
	iv, err := s.load(ctx, interviewID)
	if err != nil {
		return Interview{}, err
	}
	if !policy.CanViewInterview(actor, iv.ApplicantID).Allowed {
		return Interview{}, apperr.Forbidden("Not authorized to view this interview")
	}
	return iv, nil
}

func (s *Service) Update(ctx context.Context, actor policy.Actor, interviewID string, cmd UpdateCommand) (Interview, error) {
	iv, err := s.manageable(ctx, actor, interviewID)
	if err != nil {
		return Interview{}, err
	}
	if cmd.InterviewerID != nil {
		iv.InterviewerID = strings.TrimSpace(*cmd.InterviewerID)
	}
	if cmd.Type != nil {
		iv.Type = *cmd.Type
	}
	if cmd.Duration != nil {
		iv.Duration = *cmd.Duration
	}
	if cmd.Location != nil {
		iv.Location = strings.TrimSpace(*cmd.Location)
	}
	if cmd.MeetingLink != nil {
		iv.MeetingLink = strings.TrimSpace(*cmd.MeetingLink)
	}
	iv.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, iv); err != nil {
		return Interview{}, s.mapErr(err)
	}
	return iv, nil
}

// SetStatus changes the interview status and cascades completed and
// cancelled to the parent application. It returns the previous status.
func (s *Service) SetStatus(ctx context.Context, actor policy.Actor, interviewID, status string) (Interview, string, error) {
	iv, err := s.manageable(ctx, actor, interviewID)
	if err != nil {
		return Interview{}, "", err
	}
	next, err := s.Machine.Transition(lifecycle.EntityInterview, iv.Status, status)
	if err != nil {
		return Interview{}, "", statusError(err, status)
	}
	from := iv.Status
	iv.Status = next
	iv.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, iv); err != nil {
		return Interview{}, "", s.mapErr(err)
	}
	metrics.IncStatusTransition(string(lifecycle.EntityInterview), next)

	if appStatus, ok := lifecycle.InterviewCascade(next); ok {
		if err := s.cascade(ctx, iv.ApplicationID, appStatus, actor.ID, "Interview "+next); err != nil {
			return Interview{}, "", err
		}
	}
	events.Emit(ctx, s.Events, events.New(events.InterviewStatusChanged, iv.ID, actor.ID, map[string]any{
		"applicationId": iv.ApplicationID,
		"from":          from,
		"to":            next,
	}))
	return iv, from, nil
}

// Reschedule moves the interview to a new future date in a single update.
func (s *Service) Reschedule(ctx context.Context, actor policy.Actor, interviewID string, cmd RescheduleCommand) (Interview, error) {
	iv, err := s.manageable(ctx, actor, interviewID)
	if err != nil {
		return Interview{}, err
	}
	now := s.now()
	if !cmd.ScheduledDate.After(now) {
		return Interview{}, apperr.Validation("Validation failed",
			apperr.Field("scheduledDate", "Interview must be scheduled in the future", cmd.ScheduledDate))
	}
	iv.Reschedule(cmd.ScheduledDate.UTC(), strings.TrimSpace(cmd.Reason), now)
	if err := s.Repo.Update(ctx, iv); err != nil {
		return Interview{}, s.mapErr(err)
	}
	metrics.IncStatusTransition(string(lifecycle.EntityInterview), iv.Status)
	events.Emit(ctx, s.Events, events.New(events.InterviewRescheduled, iv.ID, actor.ID, map[string]any{
		"applicationId":   iv.ApplicationID,
		"rescheduledFrom": iv.RescheduledFrom,
		"scheduledDate":   iv.ScheduledDate,
	}))
	return iv, nil
}

// SubmitFeedback replaces the interview's feedback.
func (s *Service) SubmitFeedback(ctx context.Context, actor policy.Actor, interviewID string, cmd FeedbackCommand) (Interview, error) {
	iv, err := s.manageable(ctx, actor, interviewID)
	if err != nil {
		return Interview{}, err
	}
	now := s.now()
	iv.Feedback = &Feedback{
		Technical:      cmd.Technical,
		Communication:  cmd.Communication,
		ProblemSolving: cmd.ProblemSolving,
		Cultural:       cmd.Cultural,
		Overall:        cmd.Overall,
		Strengths:      cmd.Strengths,
		Weaknesses:     cmd.Weaknesses,
		Recommendation: cmd.Recommendation,
		SubmittedBy:    actor.ID,
		SubmittedAt:    now,
	}
	if fields := validateFeedback(*iv.Feedback); len(fields) > 0 {
		return Interview{}, apperr.Validation("Validation failed", fields...)
	}
	iv.UpdatedAt = now
	if err := s.Repo.Update(ctx, iv); err != nil {
		return Interview{}, s.mapErr(err)
	}
	return iv, nil
}

// AddNote appends to the note history.
func (s *Service) AddNote(ctx context.Context, actor policy.Actor, interviewID string, cmd NoteCommand) (Interview, error) {
	iv, err := s.manageable(ctx, actor, interviewID)
	if err != nil {
		return Interview{}, err
	}
	now := s.now()
	iv.NoteHistory = append(iv.NoteHistory, Note{
		Content: strings.TrimSpace(cmd.Content),
		AddedBy: actor.ID,
		AddedAt: now,
	})
	iv.UpdatedAt = now
	if err := s.Repo.Update(ctx, iv); err != nil {
		return Interview{}, s.mapErr(err)
	}
	return iv, nil
}

// Delete removes the interview and reverts the application to shortlisted.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, interviewID string) error {
	iv, err := s.manageable(ctx, actor, interviewID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, iv.ID); err != nil {
		return s.mapErr(err)
	}
	if err := s.cascade(ctx, iv.ApplicationID, lifecycle.AppShortlisted, actor.ID, "Interview removed"); err != nil {
		return err
	}
	events.Emit(ctx, s.Events, events.New(events.InterviewDeleted, iv.ID, actor.ID, map[string]any{
		"applicationId": iv.ApplicationID,
	}))
	return nil
}

// cascade tolerates a parent application that no longer exists.
func (s *Service) cascade(ctx context.Context, appID, status, actorID, note string) error {
	_, err := s.Applications.CascadeStatus(ctx, appID, status, actorID, note)
	if err != nil && apperr.Is(err, apperr.KindNotFound) {
		telemetry.Warn("interviews.cascade_missing_application", map[string]any{
			"application_id": appID,
			"status":         status,
		})
		return nil
	}
	return err
}

// Count reports how many interviews match filter.
func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	return s.Repo.Count(ctx, filter)
}

// Upcoming lists the next interviews matching filter after now.
func (s *Service) Upcoming(ctx context.Context, filter Filter, limit int) ([]Interview, int, error) {
	filter.After = s.now()
	filter.Statuses = lifecycle.UpcomingInterviewStatuses
	return s.Repo.List(ctx, filter, pagination.Params{Page: 1, Limit: limit})
}

func (s *Service) mapErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Interview not found")
	}
	return err
}

func validateFeedback(fb Feedback) []apperr.FieldError {
	var out []apperr.FieldError
	check := func(name string, r *Rating) {
		if r != nil && (r.Score < 1 || r.Score > 5) {
			out = append(out, apperr.Field(name+".score", "must be between 1 and 5", r.Score))
		}
	}
	check("technical", fb.Technical)
	check("communication", fb.Communication)
	check("problemSolving", fb.ProblemSolving)
	check("cultural", fb.Cultural)
	check("overall", fb.Overall)
	if fb.Overall == nil {
		out = append(out, apperr.Field("overall", "is required", nil))
	}
	return out
}

func statusError(err error, status string) error {
	if errors.Is(err, lifecycle.ErrInvalidTransition) {
		return apperr.Validation("Invalid status transition", apperr.Field("status", err.Error(), status))
	}
	return apperr.Validation("Validation failed", apperr.Field("status", "Invalid status", status))
}
