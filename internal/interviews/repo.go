package interviews

import (
	"context"
	"errors"

	"recruit-backend/internal/shared/pagination"
)

var (
	ErrNotFound  = errors.New("interview not found")
	ErrDuplicate = errors.New("interview already exists for application")
)

type Repo interface {
	// Create fails with ErrDuplicate when the application already has an interview.
	Create(ctx context.Context, iv Interview) error
	Update(ctx context.Context, iv Interview) error
	Delete(ctx context.Context, interviewID string) error
	GetByID(ctx context.Context, interviewID string) (Interview, error)
	// GetByApplication returns ErrNotFound when the application has no interview.
	GetByApplication(ctx context.Context, applicationID string) (Interview, error)
	// List orders by scheduled date, earliest first.
	List(ctx context.Context, filter Filter, page pagination.Params) ([]Interview, int, error)
	Count(ctx context.Context, filter Filter) (int, error)
	DeleteByJob(ctx context.Context, jobID string) error
	DeleteByApplication(ctx context.Context, applicationID string) error
}
