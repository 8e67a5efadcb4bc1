// Package dashboard computes per-role statistics on demand from live data.
package dashboard

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"recruit-backend/internal/applications"
	"recruit-backend/internal/interviews"
	"recruit-backend/internal/jobs"
	"recruit-backend/internal/lifecycle"
	"recruit-backend/internal/policy"
	"recruit-backend/internal/shared/apperr"
	"recruit-backend/internal/shared/pagination"
)

const (
	recentLimit   = 5
	upcomingLimit = 5
)

type ApplicationSource interface {
	StatusCounts(ctx context.Context, filter applications.Filter) (map[string]int, error)
	List(ctx context.Context, filter applications.Filter, page pagination.Params) ([]applications.Application, int, error)
}

type JobSource interface {
	Summary(ctx context.Context, postedBy string) (jobs.Summary, error)
	IDsByOwner(ctx context.Context, postedBy string) ([]string, error)
}

type InterviewSource interface {
	Count(ctx context.Context, filter interviews.Filter) (int, error)
	Upcoming(ctx context.Context, filter interviews.Filter, limit int) ([]interviews.Interview, int, error)
}

type UserSource interface {
	CountByRole(ctx context.Context) (map[string]int, error)
}

type Service struct {
	Applications ApplicationSource
	Jobs         JobSource
	Interviews   InterviewSource
	Users        UserSource
}

// Stats is the dashboard payload. Role-specific sections are omitted for
// roles they do not apply to.
type Stats struct {
	Role                 string                     `json:"role"`
	TotalApplications    int                        `json:"totalApplications"`
	ApplicationsByStatus map[string]int             `json:"applicationsByStatus"`
	SuccessRate          int                        `json:"successRate"`
	UpcomingInterviews   int                        `json:"upcomingInterviews"`
	NextInterviews       []interviews.Interview     `json:"nextInterviews"`
	RecentApplications   []applications.Application `json:"recentApplications"`
	Jobs                 *jobs.Summary              `json:"jobs,omitempty"`
	UsersByRole          map[string]int             `json:"usersByRole,omitempty"`
	TotalInterviews      *int                       `json:"totalInterviews,omitempty"`
}

// SuccessRate is the share of non-rejected applications as a rounded
// percentage, 0 when there are none.
func SuccessRate(total, rejected int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(total-rejected) / float64(total) * 100))
}

// Stats fans out the independent reads for actor's role and joins them.
func (s *Service) Stats(ctx context.Context, actor policy.Actor) (Stats, error) {
	appFilter := applications.Filter{}
	ivFilter := interviews.Filter{}

	switch actor.Role {
	case policy.RoleApplicant:
		appFilter.ApplicantID = actor.ID
		ivFilter.ApplicantID = actor.ID
	case policy.RoleRecruiter:
		ids, err := s.Jobs.IDsByOwner(ctx, actor.ID)
		if err != nil {
			return Stats{}, err
		}
		if ids == nil {
			ids = []string{}
		}
		appFilter.JobIDs = ids
		ivFilter.JobIDs = ids
	case policy.RoleAdmin:
	default:
		return Stats{}, apperr.Forbidden("Not authorized to view dashboard")
	}

	out := Stats{Role: actor.Role}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.Applications.StatusCounts(gctx, appFilter)
		if err != nil {
			return err
		}
		out.ApplicationsByStatus = counts
		return nil
	})
	g.Go(func() error {
		recent, _, err := s.Applications.List(gctx, appFilter, pagination.Params{Page: 1, Limit: recentLimit})
		if err != nil {
			return err
		}
		out.RecentApplications = recent
		return nil
	})
	g.Go(func() error {
		next, total, err := s.Interviews.Upcoming(gctx, ivFilter, upcomingLimit)
		if err != nil {
			return err
		}
		out.NextInterviews = next
		out.UpcomingInterviews = total
		return nil
	})

	if actor.Role != policy.RoleApplicant {
		postedBy := actor.ID
		if actor.Role == policy.RoleAdmin {
			postedBy = ""
		}
		g.Go(func() error {
			summary, err := s.Jobs.Summary(gctx, postedBy)
			if err != nil {
				return err
			}
			out.Jobs = &summary
			return nil
		})
	}
	if actor.Role == policy.RoleAdmin {
		g.Go(func() error {
			byRole, err := s.Users.CountByRole(gctx)
			if err != nil {
				return err
			}
			out.UsersByRole = byRole
			return nil
		})
		g.Go(func() error {
			n, err := s.Interviews.Count(gctx, interviews.Filter{})
			if err != nil {
				return err
			}
			out.TotalInterviews = &n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	if out.ApplicationsByStatus == nil {
		out.ApplicationsByStatus = map[string]int{}
	}
	for _, n := range out.ApplicationsByStatus {
		out.TotalApplications += n
	}
	out.SuccessRate = SuccessRate(out.TotalApplications, out.ApplicationsByStatus[lifecycle.AppRejected])
	if out.RecentApplications == nil {
		out.RecentApplications = []applications.Application{}
	}
	if out.NextInterviews == nil {
		out.NextInterviews = []interviews.Interview{}
	}
	return out, nil
}
