package users

import (
	"context"
	"errors"

	"recruit-backend/internal/shared/pagination"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

type Repo interface {
	Create(ctx context.Context, user User) error
	Update(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByGoogleSub(ctx context.Context, sub string) (User, error)
	List(ctx context.Context, filter Filter, page pagination.Params) ([]User, int, error)
	CountByRole(ctx context.Context) (map[string]int, error)
}
