package applications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type PGRepo struct {
	DB *sql.DB
}

const appColumns = `id, job_id, user_id, full_name, email, COALESCE(cover_letter, ''), resume_url, cv_data, score_details, match_score, status, created_at`

func (r *PGRepo) Create(ctx context.Context, app Application) error {
	const query = `
INSERT INTO applications (id, job_id, user_id, full_name, email, cover_letter, resume_url, cv_data, score_details, match_score, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.DB.ExecContext(ctx, query,
		app.ID, app.JobID, app.UserID, app.FullName, app.Email,
		app.CoverLetter, app.ResumeURL, rawOrNil(app.CVData), rawOrNil(app.ScoreDetails),
		app.MatchScore, app.Status, app.CreatedAt)
	return err
}

func rawOrNil(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1`, appColumns)
	return scanApplication(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PGRepo) ListByJob(ctx context.Context, jobID string, f ListFilter, page, size int) ([]Application, int64, error) {
	conds := []string{"job_id = $1"}
	args := []any{jobID}

	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Keyword != "" {
		args = append(args, "%"+strings.ToLower(f.Keyword)+"%")
		conds = append(conds, fmt.Sprintf("(lower(full_name) LIKE $%d OR lower(email) LIKE $%d)", len(args), len(args)))
	}
	where := strings.Join(conds, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT count(*) FROM applications WHERE %s`, where)
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	direction := "DESC"
	if strings.EqualFold(f.SortDir, "asc") {
		direction = "ASC"
	}
	args = append(args, size, page*size)
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE %s ORDER BY created_at %s LIMIT $%d OFFSET $%d`,
		appColumns, where, direction, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, app)
	}
	return list, total, rows.Err()
}

func (r *PGRepo) LatestByUserAndJob(ctx context.Context, userID, jobID string) (Application, error) {
	query := fmt.Sprintf(`
SELECT %s FROM applications
WHERE user_id = $1 AND job_id = $2
ORDER BY created_at DESC
LIMIT 1`, appColumns)
	return scanApplication(r.DB.QueryRowContext(ctx, query, userID, jobID))
}

func (r *PGRepo) HasApplied(ctx context.Context, userID, jobID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM applications WHERE user_id = $1 AND job_id = $2)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, userID, jobID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PGRepo) CountByJob(ctx context.Context, jobID string) (int64, error) {
	const query = `SELECT count(*) FROM applications WHERE job_id = $1`
	var count int64
	if err := r.DB.QueryRowContext(ctx, query, jobID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `UPDATE applications SET status = $1 WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM applications WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (Application, error) {
	var app Application
	var cvData, scoreDetails []byte
	err := row.Scan(&app.ID, &app.JobID, &app.UserID, &app.FullName, &app.Email,
		&app.CoverLetter, &app.ResumeURL, &cvData, &scoreDetails,
		&app.MatchScore, &app.Status, &app.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	if err != nil {
		return Application{}, err
	}
	app.CVData = json.RawMessage(cvData)
	app.ScoreDetails = json.RawMessage(scoreDetails)
	return app, nil
}

var _ Repo = (*PGRepo)(nil)
