package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"recruit-backend/internal/lifecycle"
	"recruit-backend/internal/shared/pagination"
	"recruit-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO jobs (
  id, title, company, status, type, category, location, posted_by,
  salary_min, salary_max, experience_min, experience_max, deadline,
  applications_count, views_count, created_at, updated_at, doc
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	doc, err := db.Doc(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		job.ID,
		job.Title,
		job.Company,
		job.Status,
		job.Type,
		job.Category,
		job.Location,
		job.PostedBy,
		job.Salary.Min,
		job.Salary.Max,
		job.Experience.Min,
		job.Experience.Max,
		job.ApplicationDeadline,
		job.ApplicationsCount,
		job.ViewsCount,
		job.CreatedAt,
		job.UpdatedAt,
		doc,
	)
	return err
}

func (r *PGRepo) Update(ctx context.Context, job Job) error {
	const query = `
UPDATE jobs SET
  title = $2,
  company = $3,
  status = $4,
  type = $5,
  category = $6,
  location = $7,
  salary_min = $8,
  salary_max = $9,
  experience_min = $10,
  experience_max = $11,
  deadline = $12,
  updated_at = $13,
  doc = $14
WHERE id = $1`
	doc, err := db.Doc(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query,
		job.ID,
		job.Title,
		job.Company,
		job.Status,
		job.Type,
		job.Category,
		job.Location,
		job.Salary.Min,
		job.Salary.Max,
		job.Experience.Min,
		job.Experience.Max,
		job.ApplicationDeadline,
		job.UpdatedAt,
		doc,
	)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *PGRepo) Delete(ctx context.Context, jobID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, jobID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

const selectJob = `SELECT applications_count, views_count, doc FROM jobs`

func (r *PGRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	job, err := scanJob(r.DB.QueryRowContext(ctx, selectJob+` WHERE id = $1 LIMIT 1`, jobID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return job, nil
}

var orderBy = map[string]string{
	SortNewest:     "created_at DESC",
	SortOldest:     "created_at ASC",
	SortSalaryHigh: "salary_max DESC, created_at DESC",
	SortSalaryLow:  "salary_min ASC, created_at DESC",
	SortDeadline:   "deadline ASC",
	SortPopular:    "views_count DESC, created_at DESC",
}

func (r *PGRepo) List(ctx context.Context, filter Filter, page pagination.Params) ([]Job, int, error) {
	w := filter.where()

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM jobs`+w.SQL(), w.Args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order, ok := orderBy[filter.Sort]
	if !ok {
		order = orderBy[SortNewest]
	}
	query := selectJob + w.SQL() + ` ORDER BY ` + order + w.Page(page.Limit, page.Offset())
	rows, err := r.DB.QueryContext(ctx, query, w.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Job, 0, page.Limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, job)
	}
	return out, total, rows.Err()
}

func (f Filter) where() *db.Where {
	w := &db.Where{}
	if f.Status != "" {
		w.Add("status = " + w.Arg(f.Status))
	}
	if f.Type != "" {
		w.Add("type = " + w.Arg(f.Type))
	}
	if f.Category != "" {
		w.Add("category = " + w.Arg(f.Category))
	}
	if f.PostedBy != "" {
		w.Add("posted_by = " + w.Arg(f.PostedBy))
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		w.Add("location ILIKE " + w.Arg("%"+loc+"%"))
	}
	if f.MinSalary != nil {
		w.Add("salary_max >= " + w.Arg(*f.MinSalary))
	}
	if f.MaxExperience != nil {
		w.Add("experience_min <= " + w.Arg(*f.MaxExperience))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		w.Add("search @@ plainto_tsquery('english', " + w.Arg(q) + ")")
	}
	return w
}

func (r *PGRepo) IDsByOwner(ctx context.Context, postedBy string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM jobs WHERE posted_by = $1 ORDER BY id`, postedBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PGRepo) Summary(ctx context.Context, postedBy string) (Summary, error) {
	query := `
SELECT count(*),
       count(*) FILTER (WHERE status = $1),
       coalesce(sum(views_count), 0)
FROM jobs`
	args := []any{lifecycle.JobActive}
	if postedBy != "" {
		query += ` WHERE posted_by = $2`
		args = append(args, postedBy)
	}
	var s Summary
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&s.Total, &s.Active, &s.Views)
	return s, err
}

func (r *PGRepo) IncrementViews(ctx context.Context, jobID string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE jobs SET views_count = views_count + 1 WHERE id = $1`, jobID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *PGRepo) SetApplicationsCount(ctx context.Context, jobID string, n int) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE jobs SET applications_count = $2 WHERE id = $1`, jobID, n)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func expectRow(res sql.Result) error {
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (Job, error) {
	var (
		applications int
		views        int
		doc          []byte
	)
	if err := row.Scan(&applications, &views, &doc); err != nil {
		return Job{}, err
	}
	var job Job
	if err := json.Unmarshal(doc, &job); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	job.ApplicationsCount = applications
	job.ViewsCount = views
	return job, nil
}
