package interviews

import (
	"context"
	"sort"
	"sync"

	"recruit-backend/internal/shared/pagination"
)

type MemoryRepo struct {
	mu         sync.RWMutex
	interviews map[string]Interview
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{interviews: make(map[string]Interview)}
}

func (r *MemoryRepo) Create(ctx context.Context, iv Interview) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.interviews {
		if existing.ID == iv.ID || existing.ApplicationID == iv.ApplicationID {
			return ErrDuplicate
		}
	}
	r.interviews[iv.ID] = cloneInterview(iv)
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, iv Interview) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.interviews[iv.ID]; !ok {
		return ErrNotFound
	}
	r.interviews[iv.ID] = cloneInterview(iv)
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, interviewID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.interviews[interviewID]; !ok {
		return ErrNotFound
	}
	delete(r.interviews, interviewID)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, interviewID string) (Interview, error) {
	if err := ctx.Err(); err != nil {
		return Interview{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	iv, ok := r.interviews[interviewID]
	if !ok {
		return Interview{}, ErrNotFound
	}
	return cloneInterview(iv), nil
}

func (r *MemoryRepo) GetByApplication(ctx context.Context, applicationID string) (Interview, error) {
	matched, err := r.collect(ctx, Filter{ApplicationID: applicationID})
	if err != nil {
		return Interview{}, err
	}
	if len(matched) == 0 {
		return Interview{}, ErrNotFound
	}
	return matched[0], nil
}

func (r *MemoryRepo) List(ctx context.Context, filter Filter, page pagination.Params) ([]Interview, int, error) {
	matched, err := r.collect(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	start, end := page.Window(len(matched))
	return matched[start:end], len(matched), nil
}

func (r *MemoryRepo) Count(ctx context.Context, filter Filter) (int, error) {
	matched, err := r.collect(ctx, filter)
	return len(matched), err
}

func (r *MemoryRepo) DeleteByJob(ctx context.Context, jobID string) error {
	return r.deleteWhere(ctx, func(iv Interview) bool { return iv.JobID == jobID })
}

func (r *MemoryRepo) DeleteByApplication(ctx context.Context, applicationID string) error {
	return r.deleteWhere(ctx, func(iv Interview) bool { return iv.ApplicationID == applicationID })
}

func (r *MemoryRepo) deleteWhere(ctx context.Context, match func(Interview) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, iv := range r.interviews {
		if match(iv) {
			delete(r.interviews, id)
		}
	}
	return nil
}

func (r *MemoryRepo) collect(ctx context.Context, filter Filter) ([]Interview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	matched := make([]Interview, 0, len(r.interviews))
	for _, iv := range r.interviews {
		if filter.matches(iv) {
			matched = append(matched, cloneInterview(iv))
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].ScheduledDate.Equal(matched[j].ScheduledDate) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].ScheduledDate.Before(matched[j].ScheduledDate)
	})
	return matched, nil
}

func (f Filter) matches(iv Interview) bool {
	switch {
	case f.ApplicationID != "" && iv.ApplicationID != f.ApplicationID:
		return false
	case f.ApplicantID != "" && iv.ApplicantID != f.ApplicantID:
		return false
	case f.InterviewerID != "" && iv.InterviewerID != f.InterviewerID:
		return false
	case f.JobID != "" && iv.JobID != f.JobID:
		return false
	case f.Status != "" && iv.Status != f.Status:
		return false
	case !f.After.IsZero() && !iv.ScheduledDate.After(f.After):
		return false
	}
	if f.JobIDs != nil && !containsString(f.JobIDs, iv.JobID) {
		return false
	}
	if len(f.Statuses) > 0 && !containsString(f.Statuses, iv.Status) {
		return false
	}
	return true
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func cloneInterview(iv Interview) Interview {
	iv.NoteHistory = append(make([]Note, 0, len(iv.NoteHistory)), iv.NoteHistory...)
	if iv.RescheduledFrom != nil {
		v := *iv.RescheduledFrom
		iv.RescheduledFrom = &v
	}
	if iv.Feedback != nil {
		fb := *iv.Feedback
		fb.Strengths = append([]string(nil), fb.Strengths...)
		fb.Weaknesses = append([]string(nil), fb.Weaknesses...)
		iv.Feedback = &fb
	}
	return iv
}
