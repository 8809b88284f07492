package applications

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func applicationRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "job_id", "user_id", "full_name", "email", "cover_letter",
		"resume_url", "cv_data", "score_details", "match_score", "status", "created_at",
	})
	for _, id := range ids {
		rows.AddRow(id, "job-1", "cand-1", "Jane Doe", "jane@example.test", "",
			"http://files.local/cv_x.pdf", []byte(`{}`), []byte(`{"details":{}}`),
			5.33, StatusPending, time.Now().UTC())
	}
	return rows
}

func TestPGRepoListByJobAppliesFilter(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery(`SELECT count\(\*\) FROM applications WHERE job_id = \$1 AND status = \$2 AND \(lower\(full_name\) LIKE`).
		WithArgs("job-1", StatusPending, "%jane%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(`SELECT .+ FROM applications WHERE .+ ORDER BY created_at DESC LIMIT`).
		WithArgs("job-1", StatusPending, "%jane%", 10, 0).
		WillReturnRows(applicationRows("app-1"))

	list, total, err := repo.ListByJob(context.Background(), "job-1",
		ListFilter{Status: StatusPending, Keyword: "Jane"}, 0, 10)
	if err != nil {
		t.Fatalf("ListByJob: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != "app-1" {
		t.Fatalf("total=%d list=%+v", total, list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery(`SELECT .+ FROM applications WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(applicationRows())

	if _, err := repo.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestPGRepoUpdateStatusMissing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec(`UPDATE applications SET status = \$1 WHERE id = \$2`).
		WithArgs(StatusAccepted, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateStatus(context.Background(), "missing", StatusAccepted); err != ErrNotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestPGRepoHasApplied(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("cand-1", "job-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	applied, err := repo.HasApplied(context.Background(), "cand-1", "job-1")
	if err != nil {
		t.Fatalf("HasApplied: %v", err)
	}
	if !applied {
		t.Fatal("expected applied = true")
	}
}
