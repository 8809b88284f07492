package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"nextstep-backend/internal/shared/metrics"
)

// Dispatcher creates the notifications that accompany application
// activity.
type Dispatcher struct {
	Repo Repo
}

func NewDispatcher(repo Repo) *Dispatcher {
	return &Dispatcher{Repo: repo}
}

// NotifyNewApplication tells an employer a candidate applied to their
// posting.
func (d *Dispatcher) NotifyNewApplication(ctx context.Context, employerID, jobID, applicationID, candidateName, jobTitle string) error {
	message := fmt.Sprintf("You have received a new application from %s for the position '%s'.",
		candidateName, jobTitle)
	err := d.Repo.Create(ctx, Notification{
		ID:            uuid.NewString(),
		UserID:        employerID,
		JobID:         jobID,
		ApplicationID: applicationID,
		Message:       message,
	})
	if err == nil {
		metrics.IncNotificationCreated()
	}
	return err
}

// NotifyStatusChange replaces the candidate's notification about a job
// with one reflecting the new application status. Earlier messages for
// the same job are superseded.
func (d *Dispatcher) NotifyStatusChange(ctx context.Context, candidateID, jobID, applicationID, jobTitle, status string) error {
	message, err := statusMessage(status, jobTitle)
	if err != nil {
		return err
	}
	err = d.Repo.Replace(ctx, Notification{
		ID:            uuid.NewString(),
		UserID:        candidateID,
		JobID:         jobID,
		ApplicationID: applicationID,
		Message:       message,
	})
	if err == nil {
		metrics.IncNotificationCreated()
	}
	return err
}

func statusMessage(status, jobTitle string) (string, error) {
	switch status {
	case "ACCEPTED":
		return fmt.Sprintf("Congratulations! Your application for the position '%s' has been accepted.", jobTitle), nil
	case "REJECTED":
		return fmt.Sprintf("Unfortunately, your application for the position '%s' has been rejected.", jobTitle), nil
	case "PENDING":
		return fmt.Sprintf("Your application for the position '%s' is now under review.", jobTitle), nil
	default:
		return "", fmt.Errorf("unknown application status %q", status)
	}
}
