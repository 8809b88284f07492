package applications

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"nextstep-backend/internal/jobs"
	"nextstep-backend/internal/mail"
	"nextstep-backend/internal/matching"
	"nextstep-backend/internal/notifications"
	"nextstep-backend/internal/shared/metrics"
	"nextstep-backend/internal/shared/storage/object"
	"nextstep-backend/internal/shared/telemetry"
	"nextstep-backend/internal/users"
)

// Service runs the application intake pipeline and the employer-facing
// status workflow.
type Service struct {
	Repo     Repo
	Jobs     jobs.Repo
	Users    users.Repo
	Store    object.ResumeStore
	Parser   matching.Parser
	Scorer   matching.Scorer
	Notifier *notifications.Dispatcher
	Mailer   mail.Mailer

	// PublicBaseURL is the UI origin used to build the job link in the
	// employer email.
	PublicBaseURL string

	Now func() time.Time
}

// SubmitInput carries one application upload.
type SubmitInput struct {
	UserID      string
	FullName    string
	Email       string
	CoverLetter string
	JobID       string
	FileName    string
	File        []byte
}

// Submit runs the intake pipeline: store the resume, parse it, score it
// against the posting, and record the application. Notification and
// email to the employer are best effort; a failure there never undoes a
// recorded application.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Application, error) {
	start := s.now()
	app, err := s.submit(ctx, in)
	if err != nil {
		metrics.IncApplicationFailed()
		return Application{}, err
	}
	metrics.IncApplicationSubmitted()
	metrics.ObserveSubmitDuration(s.now().Sub(start))
	return app, nil
}

func (s *Service) submit(ctx context.Context, in SubmitInput) (Application, error) {
	if len(in.File) == 0 {
		return Application{}, ErrEmptyResume
	}
	if strings.TrimSpace(in.JobID) == "" || strings.TrimSpace(in.UserID) == "" {
		return Application{}, fmt.Errorf("%w: job id and user id are required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.FullName) == "" {
		return Application{}, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}

	if s.Users != nil {
		if _, err := s.Users.GetByID(ctx, in.UserID); err != nil {
			if errors.Is(err, users.ErrNotFound) {
				return Application{}, fmt.Errorf("%w: unknown candidate", ErrNotFound)
			}
			return Application{}, err
		}
	}

	job, err := s.Jobs.GetByID(ctx, in.JobID)
	if err != nil {
		return Application{}, err
	}
	if job.IsDeleted || job.Expired(s.now()) {
		return Application{}, ErrJobClosed
	}

	resumeURL, storageKey, err := s.Store.Save(ctx, in.FileName, bytes.NewReader(in.File))
	if err != nil {
		return Application{}, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	cvData, err := s.Parser.ParseResume(ctx, in.FileName, in.File)
	if err != nil {
		return Application{}, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	jdData, err := jobs.BuildJobDocument(job)
	if err != nil {
		return Application{}, fmt.Errorf("%w: %v", ErrScoreFailed, err)
	}
	scoreRaw, err := s.Scorer.MatchScore(ctx, cvData, jdData)
	if err != nil {
		return Application{}, fmt.Errorf("%w: %v", ErrScoreFailed, err)
	}

	score, warning := AggregateScore(scoreRaw)
	if warning != nil {
		telemetry.Warn("application.score_incomplete", map[string]any{
			"job_id":    job.ID,
			"user_id":   in.UserID,
			"missing":   warning.Missing,
			"malformed": warning.Malformed,
		})
	}

	app := Application{
		ID:           uuid.NewString(),
		JobID:        job.ID,
		UserID:       in.UserID,
		FullName:     strings.TrimSpace(in.FullName),
		Email:        strings.TrimSpace(in.Email),
		CoverLetter:  in.CoverLetter,
		ResumeURL:    resumeURL,
		CVData:       cvData,
		ScoreDetails: scoreRaw,
		MatchScore:   score,
		Status:       StatusPending,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.Repo.Create(ctx, app); err != nil {
		return Application{}, err
	}
	telemetry.Info("application.submitted", map[string]any{
		"application_id": app.ID,
		"job_id":         job.ID,
		"user_id":        in.UserID,
		"storage_key":    storageKey,
		"match_score":    score,
	})

	s.notifyEmployer(ctx, job, app)
	return app, nil
}

// notifyEmployer records the employer's notification and sends the
// email. Mail goes out only when the applying candidate has an email on
// record and has opted in to mail being sent on their behalf.
func (s *Service) notifyEmployer(ctx context.Context, job jobs.JobPosting, app Application) {
	if s.Notifier != nil {
		if err := s.Notifier.NotifyNewApplication(ctx, job.OwnerID, job.ID, app.ID, app.FullName, job.Title); err != nil {
			telemetry.Warn("application.notify_failed", map[string]any{
				"application_id": app.ID,
				"error":          err.Error(),
			})
		}
	}

	if s.Mailer == nil || s.Users == nil {
		return
	}
	candidate, err := s.Users.GetByID(ctx, app.UserID)
	if err != nil {
		telemetry.Warn("application.candidate_lookup_failed", map[string]any{
			"application_id": app.ID,
			"error":          err.Error(),
		})
		return
	}
	candidateEmail := candidate.Email
	if candidateEmail == "" {
		candidateEmail = app.Email
	}
	if strings.TrimSpace(candidateEmail) == "" || !candidate.EmailOptIn {
		return
	}

	employer, err := s.Users.GetByID(ctx, job.OwnerID)
	if err != nil {
		telemetry.Warn("application.employer_lookup_failed", map[string]any{
			"job_id": job.ID,
			"error":  err.Error(),
		})
		return
	}
	if strings.TrimSpace(employer.Email) == "" {
		return
	}

	email := mail.NewApplicationEmail{
		EmployerName:  employer.FullName,
		JobTitle:      job.Title,
		CandidateName: app.FullName,
		CoverLetter:   app.CoverLetter,
		ResumeURL:     app.ResumeURL,
		JobLink:       strings.TrimRight(s.PublicBaseURL, "/") + "/jobs/" + job.ID,
	}
	if err := s.Mailer.Send(ctx, employer.Email, email.Subject(), email.Body()); err != nil {
		telemetry.Warn("application.email_failed", map[string]any{
			"application_id": app.ID,
			"error":          err.Error(),
		})
	}
}

// ChangeStatus moves an application through the workflow. Only the
// employer who owns the posting may change status. Setting the current
// status again is a no-op; ACCEPTED and REJECTED are final, nothing
// transitions out of them.
func (s *Service) ChangeStatus(ctx context.Context, actorID, id, status string) (Application, error) {
	if !ValidStatus(status) {
		return Application{}, ErrInvalidStatus
	}

	app, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	job, err := s.Jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return Application{}, err
	}
	if job.OwnerID != actorID {
		return Application{}, ErrForbidden
	}
	if app.Status == status {
		return app, nil
	}
	if app.Status != StatusPending {
		return Application{}, fmt.Errorf("%w: %s", ErrStatusFinal, app.Status)
	}

	if err := s.Repo.UpdateStatus(ctx, id, status); err != nil {
		return Application{}, err
	}
	metrics.IncStatusChange()
	telemetry.Info("application.status_changed", map[string]any{
		"application_id": app.ID,
		"job_id":         job.ID,
		"from":           app.Status,
		"to":             status,
	})

	if s.Notifier != nil {
		if err := s.Notifier.NotifyStatusChange(ctx, app.UserID, job.ID, app.ID, job.Title, status); err != nil {
			telemetry.Warn("application.notify_failed", map[string]any{
				"application_id": app.ID,
				"error":          err.Error(),
			})
		}
	}

	app.Status = status
	return app, nil
}

// CanWithdraw reports whether the candidate is still inside the
// withdrawal window for their application.
func (s *Service) CanWithdraw(ctx context.Context, userID, id string) (bool, error) {
	app, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if app.UserID != userID {
		return false, ErrForbidden
	}
	return s.now().Sub(app.CreatedAt) <= WithdrawWindow, nil
}

// Remove deletes an application. The candidate may remove their own
// submission while the withdrawal window is open; the posting's owner
// may remove it at any time.
func (s *Service) Remove(ctx context.Context, actorID, id string) error {
	app, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if app.UserID == actorID {
		if s.now().Sub(app.CreatedAt) > WithdrawWindow {
			return fmt.Errorf("%w: withdrawal window has closed", ErrForbidden)
		}
		return s.Repo.Delete(ctx, id)
	}

	job, err := s.Jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return err
	}
	if job.OwnerID != actorID {
		return ErrForbidden
	}
	return s.Repo.Delete(ctx, id)
}

// GetByID loads an application for either the candidate who submitted
// it or the employer who owns the posting.
func (s *Service) GetByID(ctx context.Context, actorID, id string) (Application, error) {
	app, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if app.UserID == actorID {
		return app, nil
	}
	job, err := s.Jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return Application{}, err
	}
	if job.OwnerID != actorID {
		return Application{}, ErrForbidden
	}
	return app, nil
}

// ListByJob pages through a posting's applications for its owning
// employer.
func (s *Service) ListByJob(ctx context.Context, actorID, jobID string, f ListFilter, page, size int) ([]Application, int64, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}
	if size > 50 {
		size = 50
	}
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, 0, ErrInvalidStatus
	}

	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, 0, err
	}
	if job.OwnerID != actorID {
		return nil, 0, ErrForbidden
	}
	return s.Repo.ListByJob(ctx, jobID, f, page, size)
}

// HasApplied reports whether the user already applied to the posting.
func (s *Service) HasApplied(ctx context.Context, userID, jobID string) (bool, error) {
	return s.Repo.HasApplied(ctx, userID, jobID)
}

// LatestForJob returns the user's most recent application to a posting.
// Duplicate attempts are recorded separately; only the newest surfaces
// here.
func (s *Service) LatestForJob(ctx context.Context, userID, jobID string) (Application, error) {
	return s.Repo.LatestByUserAndJob(ctx, userID, jobID)
}

// JobInfo summarises a posting's application activity for its owner.
type JobInfo struct {
	JobID        string `json:"jobId"`
	Applications int64  `json:"applications"`
	Expired      bool   `json:"expired"`
}

// Info returns application counts for a posting the actor owns.
func (s *Service) Info(ctx context.Context, actorID, jobID string) (JobInfo, error) {
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return JobInfo{}, err
	}
	if job.OwnerID != actorID {
		return JobInfo{}, ErrForbidden
	}
	count, err := s.Repo.CountByJob(ctx, jobID)
	if err != nil {
		return JobInfo{}, err
	}
	return JobInfo{JobID: jobID, Applications: count, Expired: job.Expired(s.now())}, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IsNotFound reports whether err maps to a missing application or job.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, jobs.ErrNotFound)
}
