package notifications

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	items []Notification
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{now: time.Now}
}

func (r *MemoryRepo) Create(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.now().UTC()
	}
	r.items = append(r.items, n)
	return nil
}

func (r *MemoryRepo) Replace(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.items[:0]
	for _, item := range r.items {
		if item.UserID == n.UserID && item.JobID == n.JobID {
			continue
		}
		kept = append(kept, item)
	}
	r.items = kept
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.now().UTC()
	}
	r.items = append(r.items, n)
	return nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var mine []Notification
	for _, item := range r.items {
		if item.UserID == userID {
			mine = append(mine, item)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})

	if offset >= len(mine) {
		return []Notification{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(mine) {
		end = len(mine)
	}
	return mine[offset:end], nil
}

func (r *MemoryRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, item := range r.items {
		if item.UserID == userID && !item.Read {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepo) MarkRead(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].UserID == userID && r.items[i].ID == id {
			now := r.now().UTC()
			r.items[i].Read = true
			r.items[i].ReadAt = &now
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepo) MarkAllRead(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	for i := range r.items {
		if r.items[i].UserID == userID && !r.items[i].Read {
			r.items[i].Read = true
			r.items[i].ReadAt = &now
		}
	}
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
