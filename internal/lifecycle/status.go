// Package lifecycle defines the status vocabularies of jobs, applications
// and interviews and the rules for moving between them.
package lifecycle

// Job statuses.
const (
	JobDraft  = "draft"
	JobActive = "active"
	JobPaused = "paused"
	JobClosed = "closed"
	JobFilled = "filled"
)

// Application statuses, in funnel order.
const (
	AppSubmitted          = "submitted"
	AppUnderReview        = "under_review"
	AppShortlisted        = "shortlisted"
	AppInterviewScheduled = "interview_scheduled"
	AppInterviewed        = "interviewed"
	AppSecondInterview    = "second_interview"
	AppAssessment         = "assessment"
	AppReferenceCheck     = "reference_check"
	AppOfferExtended      = "offer_extended"
	AppOfferAccepted      = "offer_accepted"
	AppHired              = "hired"
	AppRejected           = "rejected"
	AppWithdrawn          = "withdrawn"
)

// Interview statuses.
const (
	InterviewScheduled   = "scheduled"
	InterviewConfirmed   = "confirmed"
	InterviewInProgress  = "in_progress"
	InterviewCompleted   = "completed"
	InterviewCancelled   = "cancelled"
	InterviewRescheduled = "rescheduled"
	InterviewNoShow      = "no_show"
)

var (
	JobStatuses = []string{JobDraft, JobActive, JobPaused, JobClosed, JobFilled}

	ApplicationStatuses = []string{
		AppSubmitted, AppUnderReview, AppShortlisted, AppInterviewScheduled,
		AppInterviewed, AppSecondInterview, AppAssessment, AppReferenceCheck,
		AppOfferExtended, AppOfferAccepted, AppHired, AppRejected, AppWithdrawn,
	}

	InterviewStatuses = []string{
		InterviewScheduled, InterviewConfirmed, InterviewInProgress,
		InterviewCompleted, InterviewCancelled, InterviewRescheduled, InterviewNoShow,
	}

	// UpcomingInterviewStatuses are the statuses counted as "upcoming" when
	// the scheduled date is in the future.
	UpcomingInterviewStatuses = []string{InterviewScheduled, InterviewConfirmed, InterviewRescheduled}
)

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func ValidJobStatus(s string) bool         { return contains(JobStatuses, s) }
func ValidApplicationStatus(s string) bool { return contains(ApplicationStatuses, s) }
func ValidInterviewStatus(s string) bool   { return contains(InterviewStatuses, s) }

// InterviewCascade returns the application status an interview status forces
// on its parent application, if any.
func InterviewCascade(interviewStatus string) (string, bool) {
	switch interviewStatus {
	case InterviewCompleted:
		return AppInterviewed, true
	case InterviewCancelled:
		return AppShortlisted, true
	default:
		return "", false
	}
}
