package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type PGRepo struct {
	DB *sql.DB
}

const jobColumns = `j.id, j.owner_id, j.title, j.company, j.description, j.country, j.city,
j.employment_type, j.salary_min, j.salary_max, j.currency, j.pay_period, j.experience,
j.featured, j.is_deleted, j.expires_at, j.created_at`

func (r *PGRepo) Create(ctx context.Context, job JobPosting) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
INSERT INTO jobs (id, owner_id, title, company, description, country, city, employment_type,
  salary_min, salary_max, currency, pay_period, experience, featured, is_deleted, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, FALSE, $15, now())`
	if _, err := tx.ExecContext(ctx, query,
		job.ID, job.OwnerID, job.Title, job.Company, job.Description, job.Country, job.City,
		job.EmploymentType, job.SalaryMin, job.SalaryMax, job.Currency, job.PayPeriod,
		job.Experience, job.Featured, job.ExpiresAt,
	); err != nil {
		return err
	}

	if err := insertDetails(ctx, tx, job); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PGRepo) Update(ctx context.Context, job JobPosting) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
UPDATE jobs SET title = $2, company = $3, description = $4, country = $5, city = $6,
  employment_type = $7, salary_min = $8, salary_max = $9, currency = $10, pay_period = $11,
  experience = $12, featured = $13, expires_at = $14
WHERE id = $1 AND is_deleted = FALSE`
	res, err := tx.ExecContext(ctx, query,
		job.ID, job.Title, job.Company, job.Description, job.Country, job.City,
		job.EmploymentType, job.SalaryMin, job.SalaryMax, job.Currency, job.PayPeriod,
		job.Experience, job.Featured, job.ExpiresAt,
	)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	for _, table := range []string{"job_skills", "job_experience_levels", "job_certifications"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE job_id = $1", table), job.ID); err != nil {
			return err
		}
	}
	if err := insertDetails(ctx, tx, job); err != nil {
		return err
	}
	return tx.Commit()
}

func insertDetails(ctx context.Context, tx *sql.Tx, job JobPosting) error {
	for _, skill := range job.Skills {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO job_skills (job_id, skill) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			job.ID, skill); err != nil {
			return err
		}
	}
	for _, level := range job.ExperienceLevels {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO job_experience_levels (job_id, level) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			job.ID, level); err != nil {
			return err
		}
	}
	for _, cert := range job.Certifications {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO job_certifications (job_id, certification, score) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			job.ID, cert.Name, cert.Score); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (JobPosting, error) {
	query := fmt.Sprintf(`SELECT %s FROM jobs j WHERE j.id = $1 LIMIT 1`, jobColumns)
	job, err := scanJob(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return JobPosting{}, ErrNotFound
		}
		return JobPosting{}, err
	}

	jobsByID := map[string]*JobPosting{job.ID: &job}
	if err := r.loadDetails(ctx, jobsByID); err != nil {
		return JobPosting{}, err
	}
	return job, nil
}

// Search applies the multi-criteria filter. Soft-deleted and expired
// postings never appear.
func (r *PGRepo) Search(ctx context.Context, f SearchFilter, page, size int) ([]JobPosting, int64, error) {
	where, args := buildSearchWhere(f)

	countQuery := "SELECT count(*) FROM jobs j WHERE " + where
	var total int64
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	direction := "DESC"
	if !f.SortDesc() {
		direction = "ASC"
	}
	pageQuery := fmt.Sprintf(`SELECT %s FROM jobs j WHERE %s ORDER BY j.%s %s LIMIT $%d OFFSET $%d`,
		jobColumns, where, f.SortColumn(), direction, len(args)+1, len(args)+2)
	args = append(args, size, page*size)

	rows, err := r.DB.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []JobPosting
	jobsByID := make(map[string]*JobPosting)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range results {
		jobsByID[results[i].ID] = &results[i]
	}
	if err := r.loadDetails(ctx, jobsByID); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func buildSearchWhere(f SearchFilter) (string, []any) {
	conds := []string{
		"j.is_deleted = FALSE",
		"(j.expires_at IS NULL OR j.expires_at > now())",
	}
	var args []any

	next := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Country != "" {
		conds = append(conds, "j.country = "+next(f.Country))
	}
	if f.City != "" {
		conds = append(conds, "j.city = "+next(f.City))
	}
	if f.EmploymentType != "" {
		conds = append(conds, "j.employment_type = "+next(f.EmploymentType))
	}
	if f.SalaryMin != nil {
		conds = append(conds, "j.salary_min >= "+next(*f.SalaryMin))
	}
	if f.SalaryMax != nil {
		conds = append(conds, "j.salary_max <= "+next(*f.SalaryMax))
	}
	if len(f.ExperienceLevels) > 0 {
		placeholders := make([]string, 0, len(f.ExperienceLevels))
		for _, level := range f.ExperienceLevels {
			placeholders = append(placeholders, next(level))
		}
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM job_experience_levels el WHERE el.job_id = j.id AND el.level IN (%s))",
			strings.Join(placeholders, ", ")))
	}
	if len(f.Skills) > 0 {
		placeholders := make([]string, 0, len(f.Skills))
		for _, skill := range f.Skills {
			placeholders = append(placeholders, next(skill))
		}
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM job_skills sk WHERE sk.job_id = j.id AND sk.skill IN (%s))",
			strings.Join(placeholders, ", ")))
	}
	if f.CreatedAfter != nil {
		conds = append(conds, "j.created_at >= "+next(*f.CreatedAfter))
	}
	if f.Keyword != "" {
		pattern := "%" + strings.ToLower(f.Keyword) + "%"
		p := next(pattern)
		conds = append(conds, fmt.Sprintf(
			`(lower(j.title) LIKE %[1]s OR lower(j.company) LIKE %[1]s
  OR EXISTS (SELECT 1 FROM job_skills ks WHERE ks.job_id = j.id AND lower(ks.skill) LIKE %[1]s)
  OR EXISTS (SELECT 1 FROM job_experience_levels kel WHERE kel.job_id = j.id AND lower(kel.level) LIKE %[1]s))`,
			p))
	}
	if f.Currency != "" {
		conds = append(conds, "j.currency = "+next(f.Currency))
	}
	if f.PayPeriod != "" {
		conds = append(conds, "j.pay_period = "+next(f.PayPeriod))
	}
	if f.Username != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM users u WHERE u.id = j.owner_id AND u.username = "+next(f.Username)+")")
	}

	return strings.Join(conds, "\nAND "), args
}

func (r *PGRepo) Featured(ctx context.Context) ([]JobPosting, error) {
	query := fmt.Sprintf(`
SELECT %s FROM jobs j
WHERE j.featured = TRUE AND j.is_deleted = FALSE
  AND (j.expires_at IS NULL OR j.expires_at > now())
ORDER BY j.created_at DESC`, jobColumns)

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []JobPosting
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	jobsByID := make(map[string]*JobPosting, len(results))
	for i := range results {
		jobsByID[results[i].ID] = &results[i]
	}
	if err := r.loadDetails(ctx, jobsByID); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *PGRepo) EmploymentTypes(ctx context.Context) ([]string, error) {
	const query = `
SELECT DISTINCT employment_type FROM jobs
WHERE is_deleted = FALSE AND employment_type <> ''
ORDER BY employment_type`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *PGRepo) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE jobs SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish missing from already deleted.
		var deleted bool
		err := r.DB.QueryRowContext(ctx, `SELECT is_deleted FROM jobs WHERE id = $1`, id).Scan(&deleted)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrAlreadyDeleted
	}
	return nil
}

func (r *PGRepo) SetFavorite(ctx context.Context, jobID, userID string, favorite bool) error {
	if favorite {
		_, err := r.DB.ExecContext(ctx,
			`INSERT INTO job_favorites (user_id, job_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, jobID)
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM job_favorites WHERE user_id = $1 AND job_id = $2`,
		userID, jobID)
	return err
}

func (r *PGRepo) IsFavorite(ctx context.Context, jobID, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM job_favorites WHERE user_id = $1 AND job_id = $2)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, userID, jobID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (JobPosting, error) {
	var job JobPosting
	var salaryMin, salaryMax sql.NullFloat64
	var expiresAt sql.NullTime
	err := row.Scan(
		&job.ID, &job.OwnerID, &job.Title, &job.Company, &job.Description, &job.Country, &job.City,
		&job.EmploymentType, &salaryMin, &salaryMax, &job.Currency, &job.PayPeriod, &job.Experience,
		&job.Featured, &job.IsDeleted, &expiresAt, &job.CreatedAt,
	)
	if err != nil {
		return JobPosting{}, err
	}
	if salaryMin.Valid {
		job.SalaryMin = &salaryMin.Float64
	}
	if salaryMax.Valid {
		job.SalaryMax = &salaryMax.Float64
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		job.ExpiresAt = &t
	}
	return job, nil
}

func (r *PGRepo) loadDetails(ctx context.Context, jobsByID map[string]*JobPosting) error {
	if len(jobsByID) == 0 {
		return nil
	}

	ids := make([]any, 0, len(jobsByID))
	placeholders := make([]string, 0, len(jobsByID))
	for id := range jobsByID {
		ids = append(ids, id)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(ids)))
	}
	in := strings.Join(placeholders, ", ")

	skillRows, err := r.DB.QueryContext(ctx,
		fmt.Sprintf(`SELECT job_id, skill FROM job_skills WHERE job_id IN (%s) ORDER BY skill`, in), ids...)
	if err != nil {
		return err
	}
	defer skillRows.Close()
	for skillRows.Next() {
		var jobID, skill string
		if err := skillRows.Scan(&jobID, &skill); err != nil {
			return err
		}
		if job, ok := jobsByID[jobID]; ok {
			job.Skills = append(job.Skills, skill)
		}
	}
	if err := skillRows.Err(); err != nil {
		return err
	}

	levelRows, err := r.DB.QueryContext(ctx,
		fmt.Sprintf(`SELECT job_id, level FROM job_experience_levels WHERE job_id IN (%s) ORDER BY level`, in), ids...)
	if err != nil {
		return err
	}
	defer levelRows.Close()
	for levelRows.Next() {
		var jobID, level string
		if err := levelRows.Scan(&jobID, &level); err != nil {
			return err
		}
		if job, ok := jobsByID[jobID]; ok {
			job.ExperienceLevels = append(job.ExperienceLevels, level)
		}
	}
	if err := levelRows.Err(); err != nil {
		return err
	}

	certRows, err := r.DB.QueryContext(ctx,
		fmt.Sprintf(`SELECT job_id, certification, score FROM job_certifications WHERE job_id IN (%s) ORDER BY certification`, in), ids...)
	if err != nil {
		return err
	}
	defer certRows.Close()
	for certRows.Next() {
		var jobID, name string
		var score sql.NullFloat64
		if err := certRows.Scan(&jobID, &name, &score); err != nil {
			return err
		}
		if job, ok := jobsByID[jobID]; ok {
			cert := CertificationRequirement{Name: name}
			if score.Valid {
				cert.Score = &score.Float64
			}
			job.Certifications = append(job.Certifications, cert)
		}
	}
	return certRows.Err()
}

var _ Repo = (*PGRepo)(nil)
