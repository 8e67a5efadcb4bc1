package interviews

import (
	"time"

	"recruit-backend/internal/lifecycle"
)

// Interview types.
const (
	TypePhone     = "phone"
	TypeVideo     = "video"
	TypeInPerson  = "in-person"
	TypeTechnical = "technical"
	TypePanel     = "panel"
)

// Rating scores one feedback category on a 1 to 5 scale.
type Rating struct {
	Score   int    `json:"score" binding:"required,gte=1,lte=5"`
	Comment string `json:"comment,omitempty" binding:"omitempty,max=1000"`
}

// Feedback is the interviewer's structured assessment.
type Feedback struct {
	Technical      *Rating   `json:"technical,omitempty"`
	Communication  *Rating   `json:"communication,omitempty"`
	ProblemSolving *Rating   `json:"problemSolving,omitempty"`
	Cultural       *Rating   `json:"cultural,omitempty"`
	Overall        *Rating   `json:"overall,omitempty"`
	Strengths      []string  `json:"strengths,omitempty"`
	Weaknesses     []string  `json:"weaknesses,omitempty"`
	Recommendation string    `json:"recommendation,omitempty"`
	SubmittedBy    string    `json:"submittedBy"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// Note is one entry of an interview's note history.
type Note struct {
	Content string    `json:"content"`
	AddedBy string    `json:"addedBy"`
	AddedAt time.Time `json:"addedAt"`
}

type Interview struct {
	ID               string     `json:"id"`
	ApplicationID    string     `json:"applicationId"`
	JobID            string     `json:"jobId"`
	ApplicantID      string     `json:"applicantId"`
	InterviewerID    string     `json:"interviewerId"`
	Type             string     `json:"type"`
	ScheduledDate    time.Time  `json:"scheduledDate"`
	Duration         int        `json:"duration"`
	Location         string     `json:"location,omitempty"`
	MeetingLink      string     `json:"meetingLink,omitempty"`
	Status           string     `json:"status"`
	RescheduledFrom  *time.Time `json:"rescheduledFrom,omitempty"`
	RescheduleReason string     `json:"rescheduleReason,omitempty"`
	NoteHistory      []Note     `json:"noteHistory"`
	Feedback         *Feedback  `json:"feedback,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Reschedule moves the interview to at. The previous date is kept in
// RescheduledFrom and the status becomes rescheduled. The caller persists
// the result in a single update.
func (iv *Interview) Reschedule(at time.Time, reason string, now time.Time) {
	prev := iv.ScheduledDate
	iv.RescheduledFrom = &prev
	iv.ScheduledDate = at
	iv.RescheduleReason = reason
	iv.Status = lifecycle.InterviewRescheduled
	iv.UpdatedAt = now
}

// Filter narrows interview listings. Zero values are ignored. When After is
// set only interviews scheduled after it match.
type Filter struct {
	ApplicationID string
	ApplicantID   string
	InterviewerID string
	JobID         string
	JobIDs        []string
	Status        string
	Statuses      []string
	After         time.Time
}
