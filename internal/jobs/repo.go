package jobs

import (
	"context"
	"errors"

	"recruit-backend/internal/shared/pagination"
)

var (
	ErrNotFound = errors.New("job not found")
)

type Repo interface {
	Create(ctx context.Context, job Job) error
	// Update replaces the job document. Counters are left untouched.
	Update(ctx context.Context, job Job) error
	Delete(ctx context.Context, jobID string) error
	GetByID(ctx context.Context, jobID string) (Job, error)
	List(ctx context.Context, filter Filter, page pagination.Params) ([]Job, int, error)
	IDsByOwner(ctx context.Context, postedBy string) ([]string, error)
	Summary(ctx context.Context, postedBy string) (Summary, error)
	IncrementViews(ctx context.Context, jobID string) error
	SetApplicationsCount(ctx context.Context, jobID string, n int) error
}
