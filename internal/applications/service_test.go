package applications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"nextstep-backend/internal/jobs"
	"nextstep-backend/internal/notifications"
	"nextstep-backend/internal/shared/storage/object"
	"nextstep-backend/internal/users"
)

type stubStore struct {
	err  error
	keys []string
}

func (s *stubStore) Save(ctx context.Context, fileName string, r io.Reader) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	objectName := object.ResumeObjectName(fileName)
	s.keys = append(s.keys, objectName)
	return "http://files.local/" + objectName, objectName, nil
}

func (s *stubStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

type stubParser struct {
	err error
}

func (p *stubParser) ParseResume(ctx context.Context, fileName string, data []byte) (json.RawMessage, error) {
	if p.err != nil {
		return nil, p.err
	}
	return json.RawMessage(`{"skills":["go"]}`), nil
}

type stubScorer struct {
	err      error
	response json.RawMessage
}

func (s *stubScorer) MatchScore(ctx context.Context, cvData, jdData json.RawMessage) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.response != nil {
		return s.response, nil
	}
	return json.RawMessage(`{"details":{"skill_score":"8/10","cert_score":"5/10","exp_score":"3/5"}}`), nil
}

type recordingMailer struct {
	to      []string
	subject []string
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.to = append(m.to, to)
	m.subject = append(m.subject, subject)
	return nil
}

type fixture struct {
	service  *Service
	repo     *MemoryRepo
	jobsRepo *jobs.MemoryRepo
	notes    *notifications.MemoryRepo
	mailer   *recordingMailer
	store    *stubStore
	parser   *stubParser
	scorer   *stubScorer
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     NewMemoryRepo(),
		jobsRepo: jobs.NewMemoryRepo(),
		notes:    notifications.NewMemoryRepo(),
		mailer:   &recordingMailer{},
		store:    &stubStore{},
		parser:   &stubParser{},
		scorer:   &stubScorer{},
		now:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	usersRepo := users.NewMemoryRepo()
	if err := usersRepo.Upsert(context.Background(), users.User{
		ID: "emp-1", Username: "acme", Email: "hr@acme.test",
		FullName: "Acme HR", Role: users.RoleEmployer, EmailOptIn: true,
	}); err != nil {
		t.Fatalf("seed employer: %v", err)
	}
	if err := usersRepo.Upsert(context.Background(), users.User{
		ID: "cand-1", Username: "jane", Email: "jane@example.test",
		FullName: "Jane Doe", Role: users.RoleCandidate, EmailOptIn: true,
	}); err != nil {
		t.Fatalf("seed candidate: %v", err)
	}
	if err := usersRepo.Upsert(context.Background(), users.User{
		ID: "cand-2", Username: "john", Email: "john@example.test",
		FullName: "John Roe", Role: users.RoleCandidate, EmailOptIn: true,
	}); err != nil {
		t.Fatalf("seed candidate: %v", err)
	}

	if err := f.jobsRepo.Create(context.Background(), jobs.JobPosting{
		ID: "job-1", OwnerID: "emp-1", Title: "Backend Engineer", Company: "Acme",
		CreatedAt: f.now.Add(-24 * time.Hour),
	}); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	f.service = &Service{
		Repo:          f.repo,
		Jobs:          f.jobsRepo,
		Users:         usersRepo,
		Store:         f.store,
		Parser:        f.parser,
		Scorer:        f.scorer,
		Notifier:      notifications.NewDispatcher(f.notes),
		Mailer:        f.mailer,
		PublicBaseURL: "http://ui.local/",
		Now:           func() time.Time { return f.now },
	}
	return f
}

func submitInput() SubmitInput {
	return SubmitInput{
		UserID:   "cand-1",
		FullName: "Jane Doe",
		Email:    "jane@example.test",
		JobID:    "job-1",
		FileName: "Resume.PDF",
		File:     []byte("%PDF-1.4 fake"),
	}
}

func TestSubmitRecordsApplication(t *testing.T) {
	f := newFixture(t)

	app, err := f.service.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if app.Status != StatusPending {
		t.Fatalf("status = %q", app.Status)
	}
	want := (8.0 + 5.0 + 3.0) / 3.0
	if app.MatchScore != want {
		t.Fatalf("score = %v, want %v", app.MatchScore, want)
	}
	if !strings.HasPrefix(f.store.keys[0], "cv_") || !strings.HasSuffix(f.store.keys[0], ".pdf") {
		t.Fatalf("stored object name = %q", f.store.keys[0])
	}

	stored, err := f.repo.GetByID(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.ResumeURL == "" {
		t.Fatal("resume url not recorded")
	}

	notes, _ := f.notes.ListByUser(context.Background(), "emp-1", 10, 0)
	if len(notes) != 1 || !strings.Contains(notes[0].Message, "Jane Doe") {
		t.Fatalf("employer notification = %+v", notes)
	}
	if len(f.mailer.to) != 1 || f.mailer.to[0] != "hr@acme.test" {
		t.Fatalf("mailer.to = %v", f.mailer.to)
	}
	if !strings.Contains(f.mailer.subject[0], "Backend Engineer") {
		t.Fatalf("subject = %q", f.mailer.subject[0])
	}
}

func TestSubmitRejectsEmptyFile(t *testing.T) {
	f := newFixture(t)
	in := submitInput()
	in.File = nil
	if _, err := f.service.Submit(context.Background(), in); !errors.Is(err, ErrEmptyResume) {
		t.Fatalf("err = %v", err)
	}
}

func TestSubmitRejectsClosedJob(t *testing.T) {
	f := newFixture(t)
	expired := f.now.Add(-time.Hour)
	if err := f.jobsRepo.Create(context.Background(), jobs.JobPosting{
		ID: "job-2", OwnerID: "emp-1", Title: "Old Role", Company: "Acme", ExpiresAt: &expired,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	in := submitInput()
	in.JobID = "job-2"
	if _, err := f.service.Submit(context.Background(), in); !errors.Is(err, ErrJobClosed) {
		t.Fatalf("err = %v", err)
	}
}

func TestSubmitParseFailureLeavesNoRecord(t *testing.T) {
	f := newFixture(t)
	f.parser.err = errors.New("matcher unavailable")

	if _, err := f.service.Submit(context.Background(), submitInput()); !errors.Is(err, ErrParseFailed) {
		t.Fatalf("err = %v", err)
	}
	if count, _ := f.repo.CountByJob(context.Background(), "job-1"); count != 0 {
		t.Fatalf("records persisted after failed parse: %d", count)
	}
}

func TestSubmitScoreFailureLeavesNoRecord(t *testing.T) {
	f := newFixture(t)
	f.scorer.err = errors.New("matcher unavailable")

	if _, err := f.service.Submit(context.Background(), submitInput()); !errors.Is(err, ErrScoreFailed) {
		t.Fatalf("err = %v", err)
	}
	if count, _ := f.repo.CountByJob(context.Background(), "job-1"); count != 0 {
		t.Fatalf("records persisted after failed scoring: %d", count)
	}
}

func TestSubmitStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.store.err = errors.New("disk full")
	if _, err := f.service.Submit(context.Background(), submitInput()); !errors.Is(err, ErrStorageFailed) {
		t.Fatalf("err = %v", err)
	}
}

func TestSubmitIncompleteScoreStillRecords(t *testing.T) {
	f := newFixture(t)
	f.scorer.response = json.RawMessage(`{"details":{"skill_score":"6/10"}}`)

	app, err := f.service.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if app.MatchScore != 2.0 {
		t.Fatalf("score = %v, want 2", app.MatchScore)
	}
}

func TestSubmitSkipsEmailWhenCandidateOptedOut(t *testing.T) {
	f := newFixture(t)
	if err := f.service.Users.Upsert(context.Background(), users.User{
		ID: "cand-1", Username: "jane", Email: "jane@example.test",
		FullName: "Jane Doe", Role: users.RoleCandidate, EmailOptIn: false,
	}); err != nil {
		t.Fatalf("update candidate: %v", err)
	}

	if _, err := f.service.Submit(context.Background(), submitInput()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(f.mailer.to) != 0 {
		t.Fatalf("email sent despite candidate opt-out: %v", f.mailer.to)
	}
}

func TestChangeStatusOwnerOnly(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := f.service.ChangeStatus(context.Background(), "someone-else", app.ID, StatusAccepted); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v", err)
	}

	updated, err := f.service.ChangeStatus(context.Background(), "emp-1", app.ID, StatusAccepted)
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if updated.Status != StatusAccepted {
		t.Fatalf("status = %q", updated.Status)
	}

	notes, _ := f.notes.ListByUser(context.Background(), "cand-1", 10, 0)
	if len(notes) != 1 || !strings.Contains(notes[0].Message, "accepted") {
		t.Fatalf("candidate notifications = %+v", notes)
	}
}

func TestChangeStatusSameStatusIsNoOp(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := f.service.ChangeStatus(context.Background(), "emp-1", app.ID, StatusPending); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	notes, _ := f.notes.ListByUser(context.Background(), "cand-1", 10, 0)
	if len(notes) != 0 {
		t.Fatalf("no-op status change produced notifications: %+v", notes)
	}
}

func TestChangeStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	if _, err := f.service.ChangeStatus(context.Background(), "emp-1", "any", "ON_HOLD"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v", err)
	}
}

func TestChangeStatusSupersedesEarlierNotification(t *testing.T) {
	f := newFixture(t)
	first, err := f.service.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	f.now = f.now.Add(time.Minute)
	second, err := f.service.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}

	if _, err := f.service.ChangeStatus(context.Background(), "emp-1", first.ID, StatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := f.service.ChangeStatus(context.Background(), "emp-1", second.ID, StatusAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}

	notes, _ := f.notes.ListByUser(context.Background(), "cand-1", 10, 0)
	if len(notes) != 1 {
		t.Fatalf("expected superseding notification only, got %d", len(notes))
	}
	if !strings.Contains(notes[0].Message, "accepted") {
		t.Fatalf("message = %q", notes[0].Message)
	}
}

func TestChangeStatusTerminalStates(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := f.service.ChangeStatus(context.Background(), "emp-1", app.ID, StatusAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := f.service.ChangeStatus(context.Background(), "emp-1", app.ID, StatusRejected); !errors.Is(err, ErrStatusFinal) {
		t.Fatalf("ACCEPTED -> REJECTED err = %v", err)
	}
	if _, err := f.service.ChangeStatus(context.Background(), "emp-1", app.ID, StatusPending); !errors.Is(err, ErrStatusFinal) {
		t.Fatalf("ACCEPTED -> PENDING err = %v", err)
	}

	stored, err := f.repo.GetByID(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != StatusAccepted {
		t.Fatalf("status = %q after rejected transitions", stored.Status)
	}
	notes, _ := f.notes.ListByUser(context.Background(), "cand-1", 10, 0)
	if len(notes) != 1 || !strings.Contains(notes[0].Message, "accepted") {
		t.Fatalf("rejected transitions must not notify, got %+v", notes)
	}
}

func TestSubmitRejectsUnknownCandidate(t *testing.T) {
	f := newFixture(t)
	in := submitInput()
	in.UserID = "ghost"

	if _, err := f.service.Submit(context.Background(), in); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if len(f.store.keys) != 0 {
		t.Fatalf("resume stored for unknown candidate: %v", f.store.keys)
	}
	if count, _ := f.repo.CountByJob(context.Background(), "job-1"); count != 0 {
		t.Fatalf("records persisted: %d", count)
	}
}

func TestCanWithdrawWindow(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	f.now = f.now.Add(WithdrawWindow)
	ok, err := f.service.CanWithdraw(context.Background(), "cand-1", app.ID)
	if err != nil {
		t.Fatalf("CanWithdraw: %v", err)
	}
	if !ok {
		t.Fatal("withdrawal should be allowed at the window boundary")
	}

	f.now = f.now.Add(time.Minute)
	ok, err = f.service.CanWithdraw(context.Background(), "cand-1", app.ID)
	if err != nil {
		t.Fatalf("CanWithdraw: %v", err)
	}
	if ok {
		t.Fatal("withdrawal should be closed past the window")
	}

	if err := f.service.Remove(context.Background(), "cand-1", app.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Remove err = %v", err)
	}
}

func TestRemoveInsideWindow(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	f.now = f.now.Add(10 * time.Minute)
	if err := f.service.Remove(context.Background(), "cand-1", app.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := f.repo.GetByID(context.Background(), app.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("application still present: %v", err)
	}
}

func TestRemoveByPostingOwnerIgnoresWindow(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	f.now = f.now.Add(2 * time.Hour)
	if err := f.service.Remove(context.Background(), "emp-1", app.ID); err != nil {
		t.Fatalf("Remove by owner: %v", err)
	}
	if _, err := f.repo.GetByID(context.Background(), app.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("application still present: %v", err)
	}
}

func TestSubmitKeepsScoreDetails(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	stored, err := f.repo.GetByID(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(stored.ScoreDetails) == 0 || !strings.Contains(string(stored.ScoreDetails), "skill_score") {
		t.Fatalf("score details = %s", stored.ScoreDetails)
	}
	if len(stored.CVData) == 0 {
		t.Fatal("parsed resume document not retained")
	}
}

func TestCanWithdrawRejectsOtherUsers(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := f.service.CanWithdraw(context.Background(), "cand-2", app.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v", err)
	}
}

func TestListByJobEmployerOnly(t *testing.T) {
	f := newFixture(t)
	if _, err := f.service.Submit(context.Background(), submitInput()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, _, err := f.service.ListByJob(context.Background(), "cand-1", "job-1", ListFilter{}, 0, 10); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v", err)
	}

	list, total, err := f.service.ListByJob(context.Background(), "emp-1", "job-1", ListFilter{}, 0, 10)
	if err != nil {
		t.Fatalf("ListByJob: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("total = %d, len = %d", total, len(list))
	}
}

func TestListByJobStatusFilter(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	second := submitInput()
	second.UserID = "cand-2"
	second.FullName = "John Roe"
	if _, err := f.service.Submit(context.Background(), second); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := f.service.ChangeStatus(context.Background(), "emp-1", app.ID, StatusAccepted); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}

	list, total, err := f.service.ListByJob(context.Background(), "emp-1", "job-1", ListFilter{Status: StatusAccepted}, 0, 10)
	if err != nil {
		t.Fatalf("ListByJob: %v", err)
	}
	if total != 1 || list[0].ID != app.ID {
		t.Fatalf("filtered list = %+v", list)
	}

	if _, _, err := f.service.ListByJob(context.Background(), "emp-1", "job-1", ListFilter{Status: "BOGUS"}, 0, 10); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v", err)
	}
}

func TestHasApplied(t *testing.T) {
	f := newFixture(t)
	if _, err := f.service.Submit(context.Background(), submitInput()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	applied, err := f.service.HasApplied(context.Background(), "cand-1", "job-1")
	if err != nil {
		t.Fatalf("HasApplied: %v", err)
	}
	if !applied {
		t.Fatal("expected applied = true")
	}
	applied, _ = f.service.HasApplied(context.Background(), "cand-9", "job-1")
	if applied {
		t.Fatal("expected applied = false")
	}
}

func TestLatestForJobSurfacesNewestAttempt(t *testing.T) {
	f := newFixture(t)
	first, err := f.service.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	f.now = f.now.Add(5 * time.Minute)
	second, err := f.service.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("duplicate attempts must be distinct records")
	}

	latest, err := f.service.LatestForJob(context.Background(), "cand-1", "job-1")
	if err != nil {
		t.Fatalf("LatestForJob: %v", err)
	}
	if latest.ID != second.ID {
		t.Fatalf("latest = %q, want %q", latest.ID, second.ID)
	}
}

func TestInfoOwnerOnly(t *testing.T) {
	f := newFixture(t)
	if _, err := f.service.Submit(context.Background(), submitInput()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := f.service.Info(context.Background(), "cand-1", "job-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v", err)
	}
	info, err := f.service.Info(context.Background(), "emp-1", "job-1")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Applications != 1 || info.Expired {
		t.Fatalf("info = %+v", info)
	}
}

func TestGetByIDCandidateOrOwner(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := f.service.GetByID(context.Background(), "cand-1", app.ID); err != nil {
		t.Fatalf("candidate GetByID: %v", err)
	}
	if _, err := f.service.GetByID(context.Background(), "emp-1", app.ID); err != nil {
		t.Fatalf("employer GetByID: %v", err)
	}
	if _, err := f.service.GetByID(context.Background(), "stranger", app.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v", err)
	}
}
