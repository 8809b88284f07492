package applications

import (
	"encoding/json"
	"time"
)

const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)

// ValidStatus reports whether s is one of the recognised application
// statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Application is one candidate's submission against a posting. The
// parsed resume document and the raw score breakdown are kept for
// auditing; the parsed resume never leaves the API.
type Application struct {
	ID           string          `json:"id"`
	JobID        string          `json:"jobId"`
	UserID       string          `json:"userId"`
	FullName     string          `json:"fullName"`
	Email        string          `json:"email"`
	CoverLetter  string          `json:"coverLetter,omitempty"`
	ResumeURL    string          `json:"resumeUrl"`
	CVData       json.RawMessage `json:"-"`
	ScoreDetails json.RawMessage `json:"scoreDetails,omitempty"`
	MatchScore   float64         `json:"matchScore"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// WithdrawWindow is how long after submission a candidate may withdraw.
const WithdrawWindow = 30 * time.Minute
