package applications

import "context"

// ListFilter narrows an employer's view of a posting's applications.
type ListFilter struct {
	Status  string
	Keyword string
	SortDir string
}

// Repo persists applications.
type Repo interface {
	Create(ctx context.Context, app Application) error
	GetByID(ctx context.Context, id string) (Application, error)
	ListByJob(ctx context.Context, jobID string, f ListFilter, page, size int) ([]Application, int64, error)
	LatestByUserAndJob(ctx context.Context, userID, jobID string) (Application, error)
	HasApplied(ctx context.Context, userID, jobID string) (bool, error)
	CountByJob(ctx context.Context, jobID string) (int64, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}
