package jobs

import "time"

// Job types.
const (
	TypeFullTime   = "full-time"
	TypePartTime   = "part-time"
	TypeContract   = "contract"
	TypeInternship = "internship"
	TypeRemote     = "remote"
)

// Categories is the closed set of job categories.
var Categories = []string{
	"technology", "engineering", "design", "marketing", "sales", "finance",
	"hr", "operations", "customer-service", "healthcare", "education", "other",
}

type ExperienceRange struct {
	Min int `json:"min" binding:"gte=0,lte=50"`
	Max int `json:"max" binding:"gte=0,lte=50"`
}

type SalaryRange struct {
	Min      float64 `json:"min" binding:"gte=0"`
	Max      float64 `json:"max" binding:"gte=0"`
	Currency string  `json:"currency,omitempty" binding:"omitempty,len=3"`
	Period   string  `json:"period,omitempty" binding:"omitempty,oneof=hourly monthly yearly"`
}

// Job is a posting owned by the recruiter in PostedBy. ApplicationsCount and
// ViewsCount are derived and never written through Update.
type Job struct {
	ID                  string          `json:"id"`
	Title               string          `json:"title"`
	Company             string          `json:"company"`
	Description         string          `json:"description"`
	Requirements        []string        `json:"requirements"`
	Responsibilities    []string        `json:"responsibilities"`
	Skills              []string        `json:"skills"`
	Benefits            []string        `json:"benefits,omitempty"`
	Location            string          `json:"location"`
	Type                string          `json:"type"`
	Category            string          `json:"category"`
	Experience          ExperienceRange `json:"experience"`
	Salary              SalaryRange     `json:"salary"`
	ApplicationDeadline time.Time       `json:"applicationDeadline"`
	Status              string          `json:"status"`
	PostedBy            string          `json:"postedBy"`
	ApplicationsCount   int             `json:"applicationsCount"`
	ViewsCount          int             `json:"viewsCount"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// Sort keys accepted by List.
const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortSalaryHigh = "salary_high"
	SortSalaryLow  = "salary_low"
	SortDeadline   = "deadline"
	SortPopular    = "popular"
)

// Filter narrows job listings. Empty fields do not filter.
type Filter struct {
	Search        string
	Type          string
	Category      string
	Location      string
	Status        string
	PostedBy      string
	MinSalary     *float64
	MaxExperience *int
	Sort          string
}

// Summary aggregates jobs of one recruiter, or of everyone when PostedBy is empty.
type Summary struct {
	Total  int `json:"total"`
	Active int `json:"active"`
	Views  int `json:"views"`
}

// Stats is the per-job report returned to the owner.
type Stats struct {
	JobID                string         `json:"jobId"`
	Title                string         `json:"title"`
	Status               string         `json:"status"`
	ApplicationsCount    int            `json:"applicationsCount"`
	ViewsCount           int            `json:"viewsCount"`
	ApplicationsByStatus map[string]int `json:"applicationsByStatus"`
	ConversionRate       int            `json:"conversionRate"`
	DaysUntilDeadline    int            `json:"daysUntilDeadline"`
}
