package notifications

import (
	"context"
	"database/sql"
)

type PGRepo struct {
	DB *sql.DB
}

const insertQuery = `
INSERT INTO notifications (id, user_id, job_id, application_id, message, read, created_at)
VALUES ($1, $2, $3, $4, $5, FALSE, now())`

func (r *PGRepo) Create(ctx context.Context, n Notification) error {
	_, err := r.DB.ExecContext(ctx, insertQuery,
		n.ID, n.UserID, nullable(n.JobID), nullable(n.ApplicationID), n.Message)
	return err
}

func (r *PGRepo) Replace(ctx context.Context, n Notification) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM notifications WHERE user_id = $1 AND job_id = $2`,
		n.UserID, n.JobID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, insertQuery,
		n.ID, n.UserID, nullable(n.JobID), nullable(n.ApplicationID), n.Message); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	const query = `
SELECT id, user_id, COALESCE(job_id::text, ''), COALESCE(application_id::text, ''), message, read, read_at, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.JobID, &n.ApplicationID, &n.Message, &n.Read, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func (r *PGRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	const query = `SELECT count(*) FROM notifications WHERE user_id = $1 AND read = FALSE`
	var count int64
	if err := r.DB.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PGRepo) MarkRead(ctx context.Context, userID, id string) error {
	const query = `UPDATE notifications SET read = TRUE, read_at = now() WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) MarkAllRead(ctx context.Context, userID string) error {
	const query = `UPDATE notifications SET read = TRUE, read_at = now() WHERE user_id = $1 AND read = FALSE`
	_, err := r.DB.ExecContext(ctx, query, userID)
	return err
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
