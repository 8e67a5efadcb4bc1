package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"recruit-backend/internal/shared/pagination"
	"recruit-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, role, is_active, password_hash, google_sub, created_at, updated_at, doc)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	doc, err := db.Doc(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		user.ID,
		strings.ToLower(user.Email),
		user.Role,
		user.IsActive,
		db.NullableString(user.PasswordHash),
		db.NullableString(user.GoogleSub),
		user.CreatedAt,
		user.UpdatedAt,
		doc,
	)
	if db.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PGRepo) Update(ctx context.Context, user User) error {
	const query = `
UPDATE users SET
  email = $2,
  role = $3,
  is_active = $4,
  password_hash = $5,
  google_sub = $6,
  updated_at = $7,
  doc = $8
WHERE id = $1`
	doc, err := db.Doc(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query,
		user.ID,
		strings.ToLower(user.Email),
		user.Role,
		user.IsActive,
		db.NullableString(user.PasswordHash),
		db.NullableString(user.GoogleSub),
		user.UpdatedAt,
		doc,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

const selectUser = `SELECT password_hash, google_sub, doc FROM users`

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1 LIMIT 1`, userID)
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = $1 LIMIT 1`, strings.ToLower(email))
}

func (r *PGRepo) GetByGoogleSub(ctx context.Context, sub string) (User, error) {
	return r.getOne(ctx, selectUser+` WHERE google_sub = $1 LIMIT 1`, sub)
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg any) (User, error) {
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PGRepo) List(ctx context.Context, filter Filter, page pagination.Params) ([]User, int, error) {
	var w db.Where
	if filter.Role != "" {
		w.Add("role = " + w.Arg(filter.Role))
	}
	if filter.IsActive != nil {
		w.Add("is_active = " + w.Arg(*filter.IsActive))
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		p := w.Arg("%" + q + "%")
		w.Add("(email ILIKE " + p + " OR doc->>'name' ILIKE " + p + ")")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM users`+w.SQL(), w.Args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := selectUser + w.SQL() + ` ORDER BY created_at DESC` + w.Page(page.Limit, page.Offset())
	rows, err := r.DB.QueryContext(ctx, query, w.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]User, 0, page.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, user)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) CountByRole(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT role, count(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		out[role] = n
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (User, error) {
	var (
		passwordHash sql.NullString
		googleSub    sql.NullString
		doc          []byte
	)
	if err := row.Scan(&passwordHash, &googleSub, &doc); err != nil {
		return User{}, err
	}
	var user User
	if err := json.Unmarshal(doc, &user); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	user.PasswordHash = passwordHash.String
	user.GoogleSub = googleSub.String
	return user, nil
}
