package applications

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

func (r *PGRepo) Create(ctx context.Context, app Application) error {
	const query = `
INSERT INTO applications (id, job_id, applicant_id, status, created_at, updated_at, doc)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	doc, err := db.Doc(app)
	if err != nil {
		return fmt.Errorf("encode application: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		app.ID,
		app.JobID,
		app.ApplicantID,
		app.Status,
		app.CreatedAt,
		app.UpdatedAt,
		doc,
	)
	if db.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PGRepo) Update(ctx context.Context, app Application) error {
	const query = `
UPDATE applications SET
  status = $2,
  updated_at = $3,
  doc = $4
WHERE id = $1`
	doc, err := db.Doc(app)
	if err != nil {
		return fmt.Errorf("encode application: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query, app.ID, app.Status, app.UpdatedAt, doc)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *PGRepo) SetScreening(ctx context.Context, appID, resumePath string, upd ScreeningUpdate) error {
	const query = `
UPDATE applications SET
  updated_at = $2,
  doc = doc || $3::jsonb
WHERE id = $1 AND doc->'resume'->>'storagePath' = $4`
	patch, err := json.Marshal(upd.patch())
	if err != nil {
		return fmt.Errorf("encode screening: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query, appID, upd.UpdatedAt, patch, resumePath)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return err
	}
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, appID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrStaleScreening
	}
	return ErrNotFound
}

func (r *PGRepo) Delete(ctx context.Context, appID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, appID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

const selectApplication = `SELECT doc FROM applications`

func (r *PGRepo) GetByID(ctx context.Context, appID string) (Application, error) {
	app, err := scanApplication(r.DB.QueryRowContext(ctx, selectApplication+` WHERE id = $1 LIMIT 1`, appID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, err
	}
	return app, nil
}

func (r *PGRepo) List(ctx context.Context, filter Filter, page pagination.Params) ([]Application, int, error) {
	w := filter.where()

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM applications`+w.SQL(), w.Args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := selectApplication + w.SQL() + ` ORDER BY created_at DESC, id` + w.Page(page.Limit, page.Offset())
	out, err := r.query(ctx, query, w.Args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PGRepo) ListByJob(ctx context.Context, jobID string) ([]Application, error) {
	return r.query(ctx, selectApplication+` WHERE job_id = $1 ORDER BY created_at DESC, id`, jobID)
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Application, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func (r *PGRepo) StatusCounts(ctx context.Context, filter Filter) (map[string]int, error) {
	w := filter.where()
	rows, err := r.DB.QueryContext(ctx, `SELECT status, count(*) FROM applications`+w.SQL()+` GROUP BY status`, w.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (r *PGRepo) CountByJob(ctx context.Context, jobID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM applications WHERE job_id = $1`, jobID).Scan(&n)
	return n, err
}

func (r *PGRepo) StatusCountsByJob(ctx context.Context, jobID string) (map[string]int, error) {
	return r.StatusCounts(ctx, Filter{JobID: jobID})
}

// DeleteByJob removes the job's applications. The jobs foreign key cascades
// as well; this keeps the behavior identical to the memory repo.
func (r *PGRepo) DeleteByJob(ctx context.Context, jobID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM applications WHERE job_id = $1`, jobID)
	return err
}

func (f Filter) where() *db.Where {
	w := &db.Where{}
	if f.ApplicantID != "" {
		w.Add("applicant_id = " + w.Arg(f.ApplicantID))
	}
	if f.JobID != "" {
		w.Add("job_id = " + w.Arg(f.JobID))
	}
	if f.Status != "" {
		w.Add("status = " + w.Arg(f.Status))
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

func scanApplication(row scanner) (Application, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		return Application{}, err
	}
	var app Application
	if err := json.Unmarshal(doc, &app); err != nil {
		return Application{}, fmt.Errorf("decode application: %w", err)
	}
	if app.Timeline == nil {
		app.Timeline = []TimelineEntry{}
	}
	return app, nil
}
