package users

import "time"

// User is an account holder: applicant, recruiter or admin.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"isActive"`
	Phone        string     `json:"phone,omitempty"`
	Location     string     `json:"location,omitempty"`
	Bio          string     `json:"bio,omitempty"`
	Skills       []string   `json:"skills,omitempty"`
	Company      string     `json:"company,omitempty"`
	Position     string     `json:"position,omitempty"`
	AvatarURL    string     `json:"avatarUrl,omitempty"`
	GoogleSub    string     `json:"-"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Filter narrows user listings.
type Filter struct {
	Role     string
	IsActive *bool
	Search   string
}
