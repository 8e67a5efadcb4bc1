package jobs

import (
	"context"
	"sort"
	"strings"
	"sync"

	"recruit-backend/internal/lifecycle"
	"recruit-backend/internal/shared/pagination"
)

type MemoryRepo struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{jobs: make(map[string]Job)}
}

func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = cloneJob(job)
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.jobs[job.ID]
	if !ok {
		return ErrNotFound
	}
	job.ApplicationsCount = existing.ApplicationsCount
	job.ViewsCount = existing.ViewsCount
	r.jobs[job.ID] = cloneJob(job)
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[jobID]; !ok {
		return ErrNotFound
	}
	delete(r.jobs, jobID)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return Job{}, ErrNotFound
	}
	return cloneJob(job), nil
}

func (r *MemoryRepo) List(ctx context.Context, filter Filter, page pagination.Params) ([]Job, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	matched := make([]Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		if filter.matches(job) {
			matched = append(matched, cloneJob(job))
		}
	}
	r.mu.RUnlock()

	sortJobs(matched, filter.Sort)
	start, end := page.Window(len(matched))
	return matched[start:end], len(matched), nil
}

func (r *MemoryRepo) IDsByOwner(ctx context.Context, postedBy string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id, job := range r.jobs {
		if job.PostedBy == postedBy {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *MemoryRepo) Summary(ctx context.Context, postedBy string) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s Summary
	for _, job := range r.jobs {
		if postedBy != "" && job.PostedBy != postedBy {
			continue
		}
		s.Total++
		if job.Status == lifecycle.JobActive {
			s.Active++
		}
		s.Views += job.ViewsCount
	}
	return s, nil
}

func (r *MemoryRepo) IncrementViews(ctx context.Context, jobID string) error {
	return r.mutate(ctx, jobID, func(j *Job) { j.ViewsCount++ })
}

func (r *MemoryRepo) SetApplicationsCount(ctx context.Context, jobID string, n int) error {
	return r.mutate(ctx, jobID, func(j *Job) { j.ApplicationsCount = n })
}

func (r *MemoryRepo) mutate(ctx context.Context, jobID string, fn func(*Job)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	fn(&job)
	r.jobs[jobID] = job
	return nil
}

func (f Filter) matches(j Job) bool {
	if f.Status != "" && j.Status != f.Status {
		return false
	}
	if f.Type != "" && j.Type != f.Type {
		return false
	}
	if f.Category != "" && j.Category != f.Category {
		return false
	}
	if f.PostedBy != "" && j.PostedBy != f.PostedBy {
		return false
	}
	if loc := strings.TrimSpace(f.Location); loc != "" && !containsFold(j.Location, loc) {
		return false
	}
	if f.MinSalary != nil && j.Salary.Max < *f.MinSalary {
		return false
	}
	if f.MaxExperience != nil && j.Experience.Min > *f.MaxExperience {
		return false
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		text := strings.ToLower(j.Title + " " + j.Company + " " + j.Description)
		for _, term := range strings.Fields(strings.ToLower(q)) {
			if !strings.Contains(text, term) {
				return false
			}
		}
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func sortJobs(jobs []Job, key string) {
	less := func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) }
	switch key {
	case SortOldest:
		less = func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) }
	case SortSalaryHigh:
		less = func(i, j int) bool { return jobs[i].Salary.Max > jobs[j].Salary.Max }
	case SortSalaryLow:
		less = func(i, j int) bool { return jobs[i].Salary.Min < jobs[j].Salary.Min }
	case SortDeadline:
		less = func(i, j int) bool { return jobs[i].ApplicationDeadline.Before(jobs[j].ApplicationDeadline) }
	case SortPopular:
		less = func(i, j int) bool { return jobs[i].ViewsCount > jobs[j].ViewsCount }
	}
	sort.SliceStable(jobs, less)
}

func cloneJob(j Job) Job {
	j.Requirements = cloneStrings(j.Requirements)
	j.Responsibilities = cloneStrings(j.Responsibilities)
	j.Skills = cloneStrings(j.Skills)
	j.Benefits = cloneStrings(j.Benefits)
	return j
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
