package applications

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Application
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Application)}
}

func (r *MemoryRepo) Create(ctx context.Context, app Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[app.ID] = app
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.items[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	return app, nil
}

func (r *MemoryRepo) ListByJob(ctx context.Context, jobID string, f ListFilter, page, size int) ([]Application, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Application
	for _, app := range r.items {
		if app.JobID != jobID {
			continue
		}
		if f.Status != "" && app.Status != f.Status {
			continue
		}
		if f.Keyword != "" {
			kw := strings.ToLower(f.Keyword)
			if !strings.Contains(strings.ToLower(app.FullName), kw) &&
				!strings.Contains(strings.ToLower(app.Email), kw) {
				continue
			}
		}
		matched = append(matched, app)
	}

	asc := strings.EqualFold(f.SortDir, "asc")
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		if asc {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := page * size
	if start >= len(matched) {
		return []Application{}, total, nil
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *MemoryRepo) LatestByUserAndJob(ctx context.Context, userID, jobID string) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest Application
	found := false
	for _, app := range r.items {
		if app.UserID != userID || app.JobID != jobID {
			continue
		}
		if !found || app.CreatedAt.After(latest.CreatedAt) {
			latest = app
			found = true
		}
	}
	if !found {
		return Application{}, ErrNotFound
	}
	return latest, nil
}

func (r *MemoryRepo) HasApplied(ctx context.Context, userID, jobID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, app := range r.items {
		if app.UserID == userID && app.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) CountByJob(ctx context.Context, jobID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, app := range r.items {
		if app.JobID == jobID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	app.Status = status
	r.items[id] = app
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
