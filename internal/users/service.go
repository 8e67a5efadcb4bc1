package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"recruit-backend/internal/policy"
	"recruit-backend/internal/shared/apperr"
	"recruit-backend/internal/shared/auth"
	"recruit-backend/internal/shared/pagination"
)

type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

// Register creates an applicant or recruiter account.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (User, error) {
	role := cmd.Role
	if role == "" {
		role = policy.RoleApplicant
	}
	hash, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return User{}, apperr.Internal("Server error", err)
	}
	now := s.now()
	user := User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(cmd.Name),
		Email:        normalizeEmail(cmd.Email),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		Phone:        strings.TrimSpace(cmd.Phone),
		Company:      strings.TrimSpace(cmd.Company),
		Position:     strings.TrimSpace(cmd.Position),
		LastLoginAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return User{}, apperr.Conflict("User already exists with this email")
		}
		return User{}, err
	}
	return user, nil
}

// Login verifies credentials and stamps the last login time.
func (s *Service) Login(ctx context.Context, cmd LoginCommand) (User, error) {
	user, err := s.Repo.GetByEmail(ctx, normalizeEmail(cmd.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, apperr.Unauthenticated("Invalid credentials")
		}
		return User{}, err
	}
	if err := auth.CheckPassword(user.PasswordHash, cmd.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return User{}, apperr.Unauthenticated("Invalid credentials")
		}
		return User{}, err
	}
	if !user.IsActive {
		return User{}, apperr.Unauthenticated("Account is deactivated")
	}
	now := s.now()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.Repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// SignInWithGoogle finds the user linked to a Google identity, links an
// existing account by email, or creates a new applicant.
func (s *Service) SignInWithGoogle(ctx context.Context, profile GoogleProfile) (User, error) {
	if strings.TrimSpace(profile.Sub) == "" || strings.TrimSpace(profile.Email) == "" {
		return User{}, apperr.Validation("Google profile is missing id or email")
	}
	now := s.now()

	user, err := s.Repo.GetByGoogleSub(ctx, profile.Sub)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	if errors.Is(err, ErrNotFound) {
		user, err = s.Repo.GetByEmail(ctx, normalizeEmail(profile.Email))
		if err != nil && !errors.Is(err, ErrNotFound) {
			return User{}, err
		}
		if errors.Is(err, ErrNotFound) {
			user = User{
				ID:        uuid.NewString(),
				Name:      strings.TrimSpace(profile.Name),
				Email:     normalizeEmail(profile.Email),
				Role:      googleRole(profile.Role),
				IsActive:  true,
				AvatarURL: profile.Picture,
				GoogleSub: profile.Sub,
				CreatedAt: now,
			}
			if user.Name == "" {
				user.Name = user.Email
			}
			user.LastLoginAt = &now
			user.UpdatedAt = now
			if err := s.Repo.Create(ctx, user); err != nil {
				if errors.Is(err, ErrDuplicate) {
					return User{}, apperr.Conflict("User already exists with this email")
				}
				return User{}, err
			}
			return user, nil
		}
		user.GoogleSub = profile.Sub
	}
	if !user.IsActive {
		return User{}, apperr.Unauthenticated("Account is deactivated")
	}
	if user.AvatarURL == "" {
		user.AvatarURL = profile.Picture
	}
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.Repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// GetByID loads a user without authorization checks.
func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, apperr.NotFound("User not found")
	}
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, apperr.NotFound("User not found")
		}
		return User{}, err
	}
	return user, nil
}

// Get returns a user visible to actor.
func (s *Service) Get(ctx context.Context, actor policy.Actor, userID string) (User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if !policy.CanViewUser(actor, user.ID).Allowed {
		return User{}, apperr.Forbidden("Not authorized to view this user")
	}
	return user, nil
}

// UpdateProfile applies profile changes to the actor's own account.
func (s *Service) UpdateProfile(ctx context.Context, actor policy.Actor, cmd UpdateProfileCommand) (User, error) {
	user, err := s.GetByID(ctx, actor.ID)
	if err != nil {
		return User{}, err
	}
	if cmd.Name != nil {
		user.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Phone != nil {
		user.Phone = strings.TrimSpace(*cmd.Phone)
	}
	if cmd.Location != nil {
		user.Location = strings.TrimSpace(*cmd.Location)
	}
	if cmd.Bio != nil {
		user.Bio = strings.TrimSpace(*cmd.Bio)
	}
	if cmd.Skills != nil {
		user.Skills = normalizeList(*cmd.Skills)
	}
	if cmd.Company != nil {
		user.Company = strings.TrimSpace(*cmd.Company)
	}
	if cmd.Position != nil {
		user.Position = strings.TrimSpace(*cmd.Position)
	}
	if cmd.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*cmd.AvatarURL)
	}
	user.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// ChangePassword replaces the actor's password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, actor policy.Actor, cmd ChangePasswordCommand) error {
	user, err := s.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if err := auth.CheckPassword(user.PasswordHash, cmd.CurrentPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return apperr.Validation("Validation failed", apperr.Field("currentPassword", "Current password is incorrect", nil))
		}
		return err
	}
	hash, err := auth.HashPassword(cmd.NewPassword)
	if err != nil {
		return apperr.Internal("Server error", err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = s.now()
	return s.Repo.Update(ctx, user)
}

// List returns users matching q for an admin.
func (s *Service) List(ctx context.Context, actor policy.Actor, q ListQuery, page pagination.Params) ([]User, int, error) {
	if !policy.CanManageUsers(actor).Allowed {
		return nil, 0, apperr.Forbidden("Not authorized to list users")
	}
	return s.Repo.List(ctx, Filter{Role: q.Role, IsActive: q.IsActive, Search: q.Search}, page)
}

// SetActive enables or disables an account. Admins cannot disable themselves.
func (s *Service) SetActive(ctx context.Context, actor policy.Actor, userID string, active bool) (User, error) {
	if !policy.CanManageUsers(actor).Allowed {
		return User{}, apperr.Forbidden("Not authorized to manage users")
	}
	if actor.ID == userID && !active {
		return User{}, apperr.Conflict("You cannot deactivate your own account")
	}
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	user.IsActive = active
	user.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// CountByRole returns user counts keyed by role.
func (s *Service) CountByRole(ctx context.Context) (map[string]int, error) {
	return s.Repo.CountByRole(ctx)
}

// Identity resolves the current role and active flag for the auth middleware.
func (s *Service) Identity(ctx context.Context, userID string) (string, bool, error) {
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return "", false, err
	}
	return user.Role, user.IsActive, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Contact returns the display name and email of a user.
func (s *Service) Contact(ctx context.Context, userID string) (string, string, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return user.Name, user.Email, nil
}

func googleRole(requested string) string {
	if requested == policy.RoleRecruiter {
		return policy.RoleRecruiter
	}
	return policy.RoleApplicant
}
