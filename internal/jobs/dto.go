package jobs

import "time"

type CreateCommand struct {
	Title               string          `json:"title" binding:"notblank,max=100"`
	Company             string          `json:"company" binding:"notblank,max=100"`
	Description         string          `json:"description" binding:"notblank,max=5000"`
	Requirements        []string        `json:"requirements" binding:"omitempty,max=50,dive,notblank,max=500"`
	Responsibilities    []string        `json:"responsibilities" binding:"omitempty,max=50,dive,notblank,max=500"`
	Skills              []string        `json:"skills" binding:"omitempty,max=50,dive,notblank,max=50"`
	Benefits            []string        `json:"benefits" binding:"omitempty,max=50,dive,notblank,max=200"`
	Location            string          `json:"location" binding:"notblank,max=100"`
	Type                string          `json:"type" binding:"required,oneof=full-time part-time contract internship remote"`
	Category            string          `json:"category" binding:"required,oneof=technology engineering design marketing sales finance hr operations customer-service healthcare education other"`
	Experience          ExperienceRange `json:"experience"`
	Salary              SalaryRange     `json:"salary"`
	ApplicationDeadline time.Time       `json:"applicationDeadline" binding:"required"`
	Status              string          `json:"status" binding:"omitempty,oneof=draft active"`
}

// UpdateCommand carries optional job fields; nil means unchanged. Status and
// counters are not updatable here.
type UpdateCommand struct {
	Title               *string          `json:"title" binding:"omitempty,notblank,max=100"`
	Company             *string          `json:"company" binding:"omitempty,notblank,max=100"`
	Description         *string          `json:"description" binding:"omitempty,notblank,max=5000"`
	Requirements        *[]string        `json:"requirements" binding:"omitempty,max=50,dive,notblank,max=500"`
	Responsibilities    *[]string        `json:"responsibilities" binding:"omitempty,max=50,dive,notblank,max=500"`
	Skills              *[]string        `json:"skills" binding:"omitempty,max=50,dive,notblank,max=50"`
	Benefits            *[]string        `json:"benefits" binding:"omitempty,max=50,dive,notblank,max=200"`
	Location            *string          `json:"location" binding:"omitempty,notblank,max=100"`
	Type                *string          `json:"type" binding:"omitempty,oneof=full-time part-time contract internship remote"`
	Category            *string          `json:"category" binding:"omitempty,oneof=technology engineering design marketing sales finance hr operations customer-service healthcare education other"`
	Experience          *ExperienceRange `json:"experience"`
	Salary              *SalaryRange     `json:"salary"`
	ApplicationDeadline *time.Time       `json:"applicationDeadline"`
}

type StatusCommand struct {
	Status string `json:"status" binding:"required"`
}

// ListQuery is the public job search query string.
type ListQuery struct {
	Search        string   `form:"search" binding:"omitempty,max=200"`
	Type          string   `form:"type" binding:"omitempty,oneof=full-time part-time contract internship remote"`
	Category      string   `form:"category" binding:"omitempty,max=50"`
	Location      string   `form:"location" binding:"omitempty,max=100"`
	Status        string   `form:"status" binding:"omitempty,oneof=draft active paused closed filled"`
	PostedBy      string   `form:"postedBy" binding:"omitempty,max=64"`
	MinSalary     *float64 `form:"minSalary" binding:"omitempty,gte=0"`
	MaxExperience *int     `form:"maxExperience" binding:"omitempty,gte=0"`
	Sort          string   `form:"sort" binding:"omitempty,oneof=newest oldest salary_high salary_low deadline popular"`
}

func (q ListQuery) filter() Filter {
	return Filter{
		Search:        q.Search,
		Type:          q.Type,
		Category:      q.Category,
		Location:      q.Location,
		Status:        q.Status,
		PostedBy:      q.PostedBy,
		MinSalary:     q.MinSalary,
		MaxExperience: q.MaxExperience,
		Sort:          q.Sort,
	}
}
