package users

// RegisterCommand creates an account with email and password.
type RegisterCommand struct {
	Name     string `json:"name" binding:"notblank,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Role     string `json:"role" binding:"omitempty,oneof=applicant recruiter"`
	Phone    string `json:"phone" binding:"omitempty,max=30"`
	Company  string `json:"company" binding:"omitempty,max=100"`
	Position string `json:"position" binding:"omitempty,max=100"`
}

type LoginCommand struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileCommand carries optional profile fields; nil means unchanged.
type UpdateProfileCommand struct {
	Name      *string   `json:"name" binding:"omitempty,notblank,max=100"`
	Phone     *string   `json:"phone" binding:"omitempty,max=30"`
	Location  *string   `json:"location" binding:"omitempty,max=100"`
	Bio       *string   `json:"bio" binding:"omitempty,max=1000"`
	Skills    *[]string `json:"skills" binding:"omitempty,max=50,dive,max=50"`
	Company   *string   `json:"company" binding:"omitempty,max=100"`
	Position  *string   `json:"position" binding:"omitempty,max=100"`
	AvatarURL *string   `json:"avatarUrl" binding:"omitempty,url"`
}

type ChangePasswordCommand struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=72"`
}

type SetStatusCommand struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// ListQuery is the admin user listing query string.
type ListQuery struct {
	Role     string `form:"role" binding:"omitempty,oneof=applicant recruiter admin"`
	IsActive *bool  `form:"isActive"`
	Search   string `form:"search" binding:"omitempty,max=100"`
}

// GoogleProfile is the identity returned by Google sign-in. Role is the
// role requested when the flow started; it only applies to new accounts.
type GoogleProfile struct {
	Sub     string
	Email   string
	Name    string
	Picture string
	Role    string
}
