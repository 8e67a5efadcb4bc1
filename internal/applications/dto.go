package applications

import (
	"io"
	"time"
)

type CreateCommand struct {
	JobID             string     `json:"jobId" form:"jobId" binding:"notblank"`
	CoverLetter       string     `json:"coverLetter" form:"coverLetter" binding:"omitempty,max=5000"`
	ExpectedSalary    *float64   `json:"expectedSalary" form:"expectedSalary" binding:"omitempty,gte=0"`
	AvailabilityDate  *time.Time `json:"availabilityDate" form:"availabilityDate"`
	NoticePeriod      string     `json:"noticePeriod" form:"noticePeriod" binding:"omitempty,max=50"`
	WillingToRelocate bool       `json:"willingToRelocate" form:"willingToRelocate"`
	PortfolioURL      string     `json:"portfolioUrl" form:"portfolioUrl" binding:"omitempty,url"`
	LinkedInURL       string     `json:"linkedinUrl" form:"linkedinUrl" binding:"omitempty,url"`
}

// UpdateCommand carries optional fields; nil means unchanged. Which fields
// apply depends on the caller's update scope.
type UpdateCommand struct {
	CoverLetter       *string    `json:"coverLetter" binding:"omitempty,max=5000"`
	ExpectedSalary    *float64   `json:"expectedSalary" binding:"omitempty,gte=0"`
	AvailabilityDate  *time.Time `json:"availabilityDate"`
	NoticePeriod      *string    `json:"noticePeriod" binding:"omitempty,max=50"`
	WillingToRelocate *bool      `json:"willingToRelocate"`
	PortfolioURL      *string    `json:"portfolioUrl" binding:"omitempty,url"`
	LinkedInURL       *string    `json:"linkedinUrl" binding:"omitempty,url"`
	Rating            *int       `json:"rating" binding:"omitempty,gte=1,lte=5"`
	RecruiterNotes    *string    `json:"recruiterNotes" binding:"omitempty,max=5000"`
	Tags              *[]string  `json:"tags" binding:"omitempty,max=20,dive,notblank,max=30"`
	Status            *string    `json:"status"`
	Note              string     `json:"note" binding:"omitempty,max=1000"`
}

type StatusCommand struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"omitempty,max=1000"`
}

type ListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=submitted under_review shortlisted interview_scheduled interviewed second_interview assessment reference_check offer_extended offer_accepted hired rejected withdrawn"`
	JobID  string `form:"jobId" binding:"omitempty,max=64"`
}

// Upload is a resume file received with a request.
type Upload struct {
	FileName string
	Size     int64
	Body     io.Reader
}

// fieldSetter applies one UpdateCommand field by its public name.
type fieldSetter struct {
	name  string
	apply func(*Application)
}

func (cmd UpdateCommand) setters() []fieldSetter {
	return []fieldSetter{
		{"coverLetter", func(a *Application) {
			if cmd.CoverLetter != nil {
				a.CoverLetter = *cmd.CoverLetter
			}
		}},
		{"expectedSalary", func(a *Application) {
			if cmd.ExpectedSalary != nil {
				v := *cmd.ExpectedSalary
				a.ExpectedSalary = &v
			}
		}},
		{"availabilityDate", func(a *Application) {
			if cmd.AvailabilityDate != nil {
				v := cmd.AvailabilityDate.UTC()
				a.AvailabilityDate = &v
			}
		}},
		{"noticePeriod", func(a *Application) {
			if cmd.NoticePeriod != nil {
				a.NoticePeriod = *cmd.NoticePeriod
			}
		}},
		{"willingToRelocate", func(a *Application) {
			if cmd.WillingToRelocate != nil {
				a.WillingToRelocate = *cmd.WillingToRelocate
			}
		}},
		{"portfolioUrl", func(a *Application) {
			if cmd.PortfolioURL != nil {
				a.PortfolioURL = *cmd.PortfolioURL
			}
		}},
		{"linkedinUrl", func(a *Application) {
			if cmd.LinkedInURL != nil {
				a.LinkedInURL = *cmd.LinkedInURL
			}
		}},
		{"rating", func(a *Application) {
			if cmd.Rating != nil {
				a.Rating = *cmd.Rating
			}
		}},
		{"recruiterNotes", func(a *Application) {
			if cmd.RecruiterNotes != nil {
				a.RecruiterNotes = *cmd.RecruiterNotes
			}
		}},
		{"tags", func(a *Application) {
			if cmd.Tags != nil {
				a.Tags = append([]string(nil), *cmd.Tags...)
			}
		}},
	}
}
