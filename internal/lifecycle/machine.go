package lifecycle

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Entity names a status vocabulary.
type Entity string

const (
	EntityJob         Entity = "job"
	EntityApplication Entity = "application"
	EntityInterview   Entity = "interview"
)

// Machine validates status changes. A permissive machine accepts any valid
// target from any current status; a strict one consults the transition tables.
type Machine struct {
	Strict bool
}

// Permissive returns a machine that only validates target membership.
func Permissive() Machine { return Machine{} }

// Transition checks that to is a valid status for entity and, in strict
// mode, reachable from from. Setting the current status again is always allowed.
func (m Machine) Transition(entity Entity, from, to string) (string, error) {
	if !valid(entity, to) {
		return from, fmt.Errorf("%w: %s status %q", ErrInvalidStatus, entity, to)
	}
	if !m.Strict || from == "" || from == to {
		return to, nil
	}
	if !CanTransition(entity, from, to) {
		return from, fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, entity, from, to)
	}
	return to, nil
}

// CanTransition reports whether from -> to appears in the strict table.
func CanTransition(entity Entity, from, to string) bool {
	var table map[string][]string
	switch entity {
	case EntityJob:
		table = jobTransitions
	case EntityApplication:
		table = applicationTransitions
	case EntityInterview:
		table = interviewTransitions
	default:
		return false
	}
	return contains(table[from], to)
}

// Statuses returns the vocabulary of entity.
func Statuses(entity Entity) []string {
	switch entity {
	case EntityJob:
		return JobStatuses
	case EntityApplication:
		return ApplicationStatuses
	case EntityInterview:
		return InterviewStatuses
	}
	return nil
}

func valid(entity Entity, status string) bool {
	return contains(Statuses(entity), status)
}

var jobTransitions = map[string][]string{
	JobDraft:  {JobActive, JobClosed},
	JobActive: {JobPaused, JobClosed, JobFilled},
	JobPaused: {JobActive, JobClosed, JobFilled},
	JobClosed: {JobActive},
	JobFilled: {JobClosed},
}

var applicationTransitions = func() map[string][]string {
	exits := []string{AppRejected, AppWithdrawn}
	t := map[string][]string{
		AppSubmitted:          {AppUnderReview, AppShortlisted},
		AppUnderReview:        {AppShortlisted},
		AppShortlisted:        {AppInterviewScheduled, AppAssessment},
		AppInterviewScheduled: {AppInterviewed, AppShortlisted},
		AppInterviewed:        {AppSecondInterview, AppAssessment, AppReferenceCheck, AppOfferExtended},
		AppSecondInterview:    {AppInterviewScheduled, AppInterviewed, AppAssessment, AppReferenceCheck, AppOfferExtended},
		AppAssessment:         {AppInterviewScheduled, AppReferenceCheck, AppOfferExtended},
		AppReferenceCheck:     {AppOfferExtended},
		AppOfferExtended:      {AppOfferAccepted},
		AppOfferAccepted:      {AppHired},
	}
	for from, to := range t {
		t[from] = append(to, exits...)
	}
	return t
}()

var interviewTransitions = map[string][]string{
	InterviewScheduled:   {InterviewConfirmed, InterviewInProgress, InterviewCompleted, InterviewCancelled, InterviewRescheduled, InterviewNoShow},
	InterviewConfirmed:   {InterviewInProgress, InterviewCompleted, InterviewCancelled, InterviewRescheduled, InterviewNoShow},
	InterviewRescheduled: {InterviewConfirmed, InterviewInProgress, InterviewCompleted, InterviewCancelled, InterviewRescheduled, InterviewNoShow},
	InterviewInProgress:  {InterviewCompleted, InterviewCancelled},
	InterviewNoShow:      {InterviewRescheduled},
}
