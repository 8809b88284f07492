package notifications

import "time"

// Notification is an in-app message about application activity.
type Notification struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	JobID         string    `json:"jobId,omitempty"`
	ApplicationID string    `json:"applicationId,omitempty"`
	Message       string     `json:"message"`
	Read          bool       `json:"read"`
	ReadAt        *time.Time `json:"readAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}
