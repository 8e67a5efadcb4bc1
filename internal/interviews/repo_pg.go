package interviews

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"recruit-backend/internal/shared/pagination"
	"recruit-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, iv Interview) error {
	const query = `
INSERT INTO interviews (id, application_id, job_id, applicant_id, interviewer_id, status, scheduled_date, created_at, updated_at, doc)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	doc, err := db.Doc(iv)
	if err != nil {
		return fmt.Errorf("encode interview: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		iv.ID,
		iv.ApplicationID,
		iv.JobID,
		iv.ApplicantID,
		db.NullableString(iv.InterviewerID),
		iv.Status,
		iv.ScheduledDate,
		iv.CreatedAt,
		iv.UpdatedAt,
		doc,
	)
	if db.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// Update rewrites the scalar columns and the document in one statement, so a
// reschedule lands completely or not at all.
func (r *PGRepo) Update(ctx context.Context, iv Interview) error {
	const query = `
UPDATE interviews SET
  interviewer_id = $2,
  status = $3,
  scheduled_date = $4,
  updated_at = $5,
  doc = $6
WHERE id = $1`
	doc, err := db.Doc(iv)
	if err != nil {
		return fmt.Errorf("encode interview: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query,
		iv.ID,
		db.NullableString(iv.InterviewerID),
		iv.Status,
		iv.ScheduledDate,
		iv.UpdatedAt,
		doc,
	)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *PGRepo) Delete(ctx context.Context, interviewID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM interviews WHERE id = $1`, interviewID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

const selectInterview = `SELECT doc FROM interviews`

func (r *PGRepo) GetByID(ctx context.Context, interviewID string) (Interview, error) {
	return r.getOne(ctx, selectInterview+` WHERE id = $1 LIMIT 1`, interviewID)
}

func (r *PGRepo) GetByApplication(ctx context.Context, applicationID string) (Interview, error) {
	return r.getOne(ctx, selectInterview+` WHERE application_id = $1 LIMIT 1`, applicationID)
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg string) (Interview, error) {
	iv, err := scanInterview(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Interview{}, ErrNotFound
		}
		return Interview{}, err
	}
	return iv, nil
}

func (r *PGRepo) List(ctx context.Context, filter Filter, page pagination.Params) ([]Interview, int, error) {
	w := filter.where()
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM interviews`+w.SQL(), w.Args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := selectInterview + w.SQL() + ` ORDER BY scheduled_date ASC, id` + w.Page(page.Limit, page.Offset())
	rows, err := r.DB.QueryContext(ctx, query, w.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, iv)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) Count(ctx context.Context, filter Filter) (int, error) {
	w := filter.where()
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM interviews`+w.SQL(), w.Args...).Scan(&n)
	return n, err
}

func (r *PGRepo) DeleteByJob(ctx context.Context, jobID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM interviews WHERE job_id = $1`, jobID)
	return err
}

func (r *PGRepo) DeleteByApplication(ctx context.Context, applicationID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM interviews WHERE application_id = $1`, applicationID)
	return err
}

func (f Filter) where() *db.Where {
	w := &db.Where{}
	if f.ApplicationID != "" {
		w.Add("application_id = " + w.Arg(f.ApplicationID))
	}
	if f.ApplicantID != "" {
		w.Add("applicant_id = " + w.Arg(f.ApplicantID))
	}
	if f.InterviewerID != "" {
		w.Add("interviewer_id = " + w.Arg(f.InterviewerID))
	}
	if f.JobID != "" {
		w.Add("job_id = " + w.Arg(f.JobID))
	}
	if f.Status != "" {
		w.Add("status = " + w.Arg(f.Status))
	}
	if len(f.Statuses) > 0 {
		w.Add("status = ANY(" + w.Arg(f.Statuses) + ")")
	}
	if !f.After.IsZero() {
		w.Add("scheduled_date > " + w.Arg(f.After))
	}
	if f.JobIDs != nil {
		if len(f.JobIDs) == 0 {
			w.Add("false")
		} else {
			w.Add("job_id = ANY(" + w.Arg(f.JobIDs) + ")")
		}
	}
	return w
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

func scanInterview(row scanner) (Interview, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		return Interview{}, err
	}
	var iv Interview
	if err := json.Unmarshal(doc, &iv); err != nil {
		return Interview{}, fmt.Errorf("decode interview: %w", err)
	}
	if iv.NoteHistory == nil {
		iv.NoteHistory = []Note{}
	}
	return iv, nil
}
