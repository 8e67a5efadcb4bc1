package applications

import "time"

// TimelineEntry records one status set on an existing application.
type TimelineEntry struct {
	Status    string    `json:"status"`
	ChangedBy string    `json:"changedBy,omitempty"`
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Resume is the attachment record of an uploaded resume file.
type Resume struct {
	FileName    string    `json:"fileName"`
	StoragePath string    `json:"storagePath"`
	Size        int64     `json:"size"`
	MimeType    string    `json:"mimeType"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// ParsedResume is the structured data produced by a resume parser. Its
// content is opaque to the application lifecycle.
type ParsedResume struct {
	Name            string    `json:"name,omitempty"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Skills          []string  `json:"skills,omitempty"`
	Education       []string  `json:"education,omitempty"`
	Links           []string  `json:"links,omitempty"`
	ExperienceYears int       `json:"experienceYears,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	ParsedAt        time.Time `json:"parsedAt"`
}

// ScreeningScore is the output of a screening scorer, stored as-is.
type ScreeningScore struct {
	Overall         int       `json:"overall"`
	SkillsMatch     int       `json:"skillsMatch"`
	ExperienceMatch int       `json:"experienceMatch"`
	MatchedSkills   []string  `json:"matchedSkills,omitempty"`
	MissingSkills   []string  `json:"missingSkills,omitempty"`
	Recommendation  string    `json:"recommendation,omitempty"`
	Scorer          string    `json:"scorer"`
	ScoredAt        time.Time `json:"scoredAt"`
}

// Screening states.
const (
	ScreeningPending   = "pending"
	ScreeningCompleted = "completed"
	ScreeningFailed    = "failed"
)

type Application struct {
	ID                string          `json:"id"`
	JobID             string          `json:"jobId"`
	ApplicantID       string          `json:"applicantId"`
	CoverLetter       string          `json:"coverLetter,omitempty"`
	ExpectedSalary    *float64        `json:"expectedSalary,omitempty"`
	AvailabilityDate  *time.Time      `json:"availabilityDate,omitempty"`
	NoticePeriod      string          `json:"noticePeriod,omitempty"`
	WillingToRelocate bool            `json:"willingToRelocate"`
	PortfolioURL      string          `json:"portfolioUrl,omitempty"`
	LinkedInURL       string          `json:"linkedinUrl,omitempty"`
	Status            string          `json:"status"`
	Timeline          []TimelineEntry `json:"timeline"`
	Rating            int             `json:"rating,omitempty"`
	RecruiterNotes    string          `json:"recruiterNotes,omitempty"`
	Tags              []string        `json:"tags,omitempty"`
	Resume            *Resume         `json:"resume,omitempty"`
	ParsedResumeData  *ParsedResume   `json:"parsedResumeData,omitempty"`
	AIScreeningScore  *ScreeningScore `json:"aiScreeningScore,omitempty"`
	ScreeningStatus   string          `json:"screeningStatus,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ChangeStatus sets the status and appends a timeline entry. It is only
// called on persisted applications; a new application starts with an empty
// timeline. Setting the current status again still records an entry.
func (a *Application) ChangeStatus(status, changedBy, note string, at time.Time) {
	a.Status = status
	a.Timeline = append(a.Timeline, TimelineEntry{
		Status:    status,
		ChangedBy: changedBy,
		Note:      note,
		Timestamp: at,
	})
	a.UpdatedAt = at
}

// Filter narrows application listings. JobIDs, when non-nil, restricts to
// those jobs; an empty non-nil slice matches nothing.
type Filter struct {
	ApplicantID string
	JobID       string
	JobIDs      []string
	Status      string
}

// ScreeningResult is the outcome of one screening run over the resume stored
// at ResumePath. A non-nil Err marks the run failed.
type ScreeningResult struct {
	ResumePath string
	Parsed     *ParsedResume
	Score      *ScreeningScore
	Err        error
}

// ScreeningUpdate is the partial write applied by Repo.SetScreening. Parsed
// and Score are only written for a completed run; a failed run keeps the
// earlier results.
type ScreeningUpdate struct {
	Status    string
	Parsed    *ParsedResume
	Score     *ScreeningScore
	UpdatedAt time.Time
}

func (u ScreeningUpdate) apply(app *Application) {
	app.ScreeningStatus = u.Status
	app.UpdatedAt = u.UpdatedAt
	if u.Status == ScreeningCompleted {
		app.ParsedResumeData = u.Parsed
		app.AIScreeningScore = u.Score
	}
}

// patch returns the document keys written by the update.
func (u ScreeningUpdate) patch() map[string]any {
	p := map[string]any{
		"screeningStatus": u.Status,
		"updatedAt":       u.UpdatedAt,
	}
	if u.Status == ScreeningCompleted {
		p["parsedResumeData"] = u.Parsed
		p["aiScreeningScore"] = u.Score
	}
	return p
}
