package notifications

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("notification not found")

type Repo interface {
	Create(ctx context.Context, n Notification) error
	// Replace supersedes all of a user's notifications about one job
	// with a single new one. Delete and insert happen atomically.
	Replace(ctx context.Context, n Notification) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) error
}
