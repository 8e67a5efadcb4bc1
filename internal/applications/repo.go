package applications

import (
	"context"
	"errors"

	"recruit-backend/internal/shared/pagination"
)

var (
	ErrNotFound  = errors.New("application not found")
	ErrDuplicate = errors.New("application already exists")
	// ErrStaleScreening reports a screening result for a resume that has
	// since been replaced or removed.
	ErrStaleScreening = errors.New("screening result is for a replaced resume")
)

type Repo interface {
	// Create fails with ErrDuplicate when the applicant already applied to the job.
	Create(ctx context.Context, app Application) error
	Update(ctx context.Context, app Application) error
	// SetScreening writes only the screening fields, and only while the
	// stored resume is still at resumePath. Status and timeline are untouched.
	SetScreening(ctx context.Context, appID, resumePath string, upd ScreeningUpdate) error
	Delete(ctx context.Context, appID string) error
	GetByID(ctx context.Context, appID string) (Application, error)
	List(ctx context.Context, filter Filter, page pagination.Params) ([]Application, int, error)
	ListByJob(ctx context.Context, jobID string) ([]Application, error)
	StatusCounts(ctx context.Context, filter Filter) (map[string]int, error)
	CountByJob(ctx context.Context, jobID string) (int, error)
	StatusCountsByJob(ctx context.Context, jobID string) (map[string]int, error)
	DeleteByJob(ctx context.Context, jobID string) error
}
