package users

import (
	"context"
	"database/sql"
	"errors"
)

const userColumns = `id, COALESCE(auth_subject, ''), username, email, full_name, role, email_opt_in, created_at`

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, auth_subject, username, email, full_name, role, email_opt_in, created_at)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, now())
ON CONFLICT (id) DO UPDATE SET
  auth_subject = EXCLUDED.auth_subject,
  username = EXCLUDED.username,
  email = EXCLUDED.email,
  full_name = EXCLUDED.full_name,
  role = EXCLUDED.role,
  email_opt_in = EXCLUDED.email_opt_in`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.AuthSubject,
		user.Username,
		user.Email,
		user.FullName,
		user.Role,
		user.EmailOptIn,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) GetByAuthSubject(ctx context.Context, subject string) (User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE auth_subject = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, subject))
}

func (r *PGRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE username = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, username))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email))
}

func (r *PGRepo) scanOne(row *sql.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.AuthSubject,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.Role,
		&user.EmailOptIn,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

var _ Repo = (*PGRepo)(nil)
