package jobs

import "context"

// Repo persists job postings and viewer favorites.
type Repo interface {
	Create(ctx context.Context, job JobPosting) error
	Update(ctx context.Context, job JobPosting) error
	GetByID(ctx context.Context, id string) (JobPosting, error)
	Search(ctx context.Context, f SearchFilter, page, size int) ([]JobPosting, int64, error)
	Featured(ctx context.Context) ([]JobPosting, error)
	EmploymentTypes(ctx context.Context) ([]string, error)
	SoftDelete(ctx context.Context, id string) error
	SetFavorite(ctx context.Context, jobID, userID string, favorite bool) error
	IsFavorite(ctx context.Context, jobID, userID string) (bool, error)
}
