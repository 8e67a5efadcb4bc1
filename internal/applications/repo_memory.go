package applications

import (
	"context"
	"sort"
	"sync"

	"recruit-backend/internal/shared/pagination"
)

type MemoryRepo struct {
	mu   sync.RWMutex
	apps map[string]Application
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{apps: make(map[string]Application)}
}

func (r *MemoryRepo) Create(ctx context.Context, app Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[app.ID]; ok {
		return ErrDuplicate
	}
	for _, existing := range r.apps {
		if existing.ApplicantID == app.ApplicantID && existing.JobID == app.JobID {
			return ErrDuplicate
		}
	}
	r.apps[app.ID] = cloneApp(app)
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, app Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[app.ID]; !ok {
		return ErrNotFound
	}
	r.apps[app.ID] = cloneApp(app)
	return nil
}

func (r *MemoryRepo) SetScreening(ctx context.Context, appID, resumePath string, upd ScreeningUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[appID]
	if !ok {
		return ErrNotFound
	}
	if app.Resume == nil || app.Resume.StoragePath != resumePath {
		return ErrStaleScreening
	}
	upd.apply(&app)
	r.apps[appID] = cloneApp(app)
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, appID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[appID]; !ok {
		return ErrNotFound
	}
	delete(r.apps, appID)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, appID string) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.apps[appID]
	if !ok {
		return Application{}, ErrNotFound
	}
	return cloneApp(app), nil
}

func (r *MemoryRepo) List(ctx context.Context, filter Filter, page pagination.Params) ([]Application, int, error) {
	matched, err := r.collect(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	start, end := page.Window(len(matched))
	return matched[start:end], len(matched), nil
}

func (r *MemoryRepo) ListByJob(ctx context.Context, jobID string) ([]Application, error) {
	return r.collect(ctx, Filter{JobID: jobID})
}

func (r *MemoryRepo) StatusCounts(ctx context.Context, filter Filter) (map[string]int, error) {
	matched, err := r.collect(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int)
	for _, app := range matched {
		out[app.Status]++
	}
	return out, nil
}

func (r *MemoryRepo) CountByJob(ctx context.Context, jobID string) (int, error) {
	matched, err := r.collect(ctx, Filter{JobID: jobID})
	return len(matched), err
}

func (r *MemoryRepo) StatusCountsByJob(ctx context.Context, jobID string) (map[string]int, error) {
	return r.StatusCounts(ctx, Filter{JobID: jobID})
}

func (r *MemoryRepo) DeleteByJob(ctx context.Context, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, app := range r.apps {
		if app.JobID == jobID {
			delete(r.apps, id)
		}
	}
	return nil
}

// collect returns matching applications, newest first.
func (r *MemoryRepo) collect(ctx context.Context, filter Filter) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	matched := make([]Application, 0, len(r.apps))
	for _, app := range r.apps {
		if filter.matches(app) {
			matched = append(matched, cloneApp(app))
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (f Filter) matches(app Application) bool {
	if f.ApplicantID != "" && app.ApplicantID != f.ApplicantID {
		return false
	}
	if f.JobID != "" && app.JobID != f.JobID {
		return false
	}
	if f.Status != "" && app.Status != f.Status {
		return false
	}
	if f.JobIDs != nil {
		found := false
		for _, id := range f.JobIDs {
			if id == app.JobID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func cloneApp(a Application) Application {
	a.Timeline = append(make([]TimelineEntry, 0, len(a.Timeline)), a.Timeline...)
	a.Tags = append([]string(nil), a.Tags...)
	if a.Resume != nil {
		r := *a.Resume
		a.Resume = &r
	}
	if a.ParsedResumeData != nil {
		p := *a.ParsedResumeData
		p.Skills = append([]string(nil), p.Skills...)
		a.ParsedResumeData = &p
	}
	if a.AIScreeningScore != nil {
		s := *a.AIScreeningScore
		a.AIScreeningScore = &s
	}
	if a.ExpectedSalary != nil {
		v := *a.ExpectedSalary
		a.ExpectedSalary = &v
	}
	if a.AvailabilityDate != nil {
		v := *a.AvailabilityDate
		a.AvailabilityDate = &v
	}
	return a
}
