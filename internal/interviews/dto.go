package interviews

import "time"

type CreateCommand struct {
	ApplicationID string    `json:"applicationId" binding:"notblank"`
	InterviewerID string    `json:"interviewerId" binding:"omitempty,max=64"`
	Type          string    `json:"type" binding:"required,oneof=phone video in-person technical panel"`
	ScheduledDate time.Time `json:"scheduledDate" binding:"required"`
	Duration      int       `json:"duration" binding:"omitempty,gte=15,lte=480"`
	Location      string    `json:"location" binding:"omitempty,max=200"`
	MeetingLink   string    `json:"meetingLink" binding:"omitempty,url"`
	Notes         string    `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateCommand edits logistics. Status and date have dedicated routes.
type UpdateCommand struct {
	InterviewerID *string `json:"interviewerId" binding:"omitempty,max=64"`
	Type          *string `json:"type" binding:"omitempty,oneof=phone video in-person technical panel"`
	Duration      *int    `json:"duration" binding:"omitempty,gte=15,lte=480"`
	Location      *string `json:"location" binding:"omitempty,max=200"`
	MeetingLink   *string `json:"meetingLink" binding:"omitempty,url"`
}

type StatusCommand struct {
	Status string `json:"status" binding:"required"`
}

type RescheduleCommand struct {
	ScheduledDate time.Time `json:"scheduledDate" binding:"required"`
	Reason        string    `json:"reason" binding:"omitempty,max=500"`
}

type FeedbackCommand struct {
	Technical      *Rating  `json:"technical"`
	Communication  *Rating  `json:"communication"`
	ProblemSolving *Rating  `json:"problemSolving"`
	Cultural       *Rating  `json:"cultural"`
	Overall        *Rating  `json:"overall" binding:"required"`
	Strengths      []string `json:"strengths" binding:"omitempty,max=20,dive,notblank,max=200"`
	Weaknesses     []string `json:"weaknesses" binding:"omitempty,max=20,dive,notblank,max=200"`
	Recommendation string   `json:"recommendation" binding:"omitempty,oneof=strong_hire hire no_hire strong_no_hire"`
}

type NoteCommand struct {
	Content string `json:"content" binding:"notblank,max=2000"`
}

type ListQuery struct {
	Status        string `form:"status" binding:"omitempty,oneof=scheduled confirmed in_progress completed cancelled rescheduled no_show"`
	JobID         string `form:"jobId" binding:"omitempty,max=64"`
	ApplicationID string `form:"applicationId" binding:"omitempty,max=64"`
	InterviewerID string `form:"interviewerId" binding:"omitempty,max=64"`
	Upcoming      bool   `form:"upcoming"`
}
