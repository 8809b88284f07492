package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"nextstep-backend/internal/shared/cache"
	"nextstep-backend/internal/users"
)

const employmentTypesCacheKey = "jobs:employment_types"

// Viewer identifies who is looking at postings. A zero Viewer is an
// anonymous visitor.
type Viewer struct {
	ID       string
	Username string
	Role     string
}

func (v Viewer) anonymous() bool { return v.ID == "" }

// Service implements posting search and lifecycle.
type Service struct {
	Repo  Repo
	Cache *cache.Cache
	Now   func() time.Time
}

func NewService(repo Repo, c *cache.Cache) *Service {
	return &Service{Repo: repo, Cache: c, Now: time.Now}
}

// Search runs the multi-criteria filter for a viewer. The employer
// scoping criterion is taken from the viewer's own identity: employers
// see their own postings when set, everyone else searches the full
// board.
func (s *Service) Search(ctx context.Context, viewer Viewer, f SearchFilter, page, size int) ([]Response, int64, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}
	if size > 50 {
		size = 50
	}

	if viewer.Role == users.RoleEmployer && viewer.Username != "" {
		f.Username = viewer.Username
	} else {
		f.Username = ""
	}
	f.Normalize(s.Now())

	list, total, err := s.Repo.Search(ctx, f, page, size)
	if err != nil {
		return nil, 0, err
	}
	responses, err := s.decorate(ctx, viewer, list)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// Featured returns up to size featured postings, optionally narrowed to
// one employment type.
func (s *Service) Featured(ctx context.Context, viewer Viewer, size int, employmentType string) ([]Response, error) {
	if size <= 0 {
		size = 6
	}

	list, err := s.Repo.Featured(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]JobPosting, 0, len(list))
	for _, job := range list {
		if employmentType != "" && !strings.EqualFold(employmentType, job.EmploymentType) {
			continue
		}
		filtered = append(filtered, job)
		if len(filtered) == size {
			break
		}
	}
	return s.decorate(ctx, viewer, filtered)
}

// EmploymentTypes returns the distinct employment types in use,
// read-through cached.
func (s *Service) EmploymentTypes(ctx context.Context) ([]string, error) {
	var cached []string
	if hit, err := s.Cache.GetJSON(ctx, employmentTypesCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	types, err := s.Repo.EmploymentTypes(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.Cache.SetJSON(ctx, employmentTypesCacheKey, types, 10*time.Minute)
	return types, nil
}

// GetByID loads one posting for a viewer.
func (s *Service) GetByID(ctx context.Context, viewer Viewer, id string) (Response, error) {
	if strings.TrimSpace(id) == "" {
		return Response{}, ErrInvalidInput
	}
	job, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Response{}, err
	}
	if job.IsDeleted {
		return Response{}, ErrNotFound
	}
	responses, err := s.decorate(ctx, viewer, []JobPosting{job})
	if err != nil {
		return Response{}, err
	}
	return responses[0], nil
}

// Create publishes a posting owned by the viewer. Only employers may
// publish.
func (s *Service) Create(ctx context.Context, viewer Viewer, job JobPosting) (JobPosting, error) {
	if viewer.Role != users.RoleEmployer {
		return JobPosting{}, ErrForbidden
	}
	if strings.TrimSpace(job.Title) == "" || strings.TrimSpace(job.Company) == "" {
		return JobPosting{}, fmt.Errorf("%w: title and company are required", ErrInvalidInput)
	}
	if job.SalaryMin != nil && job.SalaryMax != nil && *job.SalaryMin > *job.SalaryMax {
		return JobPosting{}, fmt.Errorf("%w: salary range is inverted", ErrInvalidInput)
	}

	job.ID = uuid.NewString()
	job.OwnerID = viewer.ID
	job.IsDeleted = false
	job.CreatedAt = s.Now().UTC()
	if err := s.Repo.Create(ctx, job); err != nil {
		return JobPosting{}, err
	}
	s.invalidateEmploymentTypes(ctx)
	return job, nil
}

// Update edits a posting. Only the owning employer may edit.
func (s *Service) Update(ctx context.Context, viewer Viewer, job JobPosting) (JobPosting, error) {
	existing, err := s.Repo.GetByID(ctx, job.ID)
	if err != nil {
		return JobPosting{}, err
	}
	if existing.OwnerID != viewer.ID {
		return JobPosting{}, ErrForbidden
	}
	if strings.TrimSpace(job.Title) == "" || strings.TrimSpace(job.Company) == "" {
		return JobPosting{}, fmt.Errorf("%w: title and company are required", ErrInvalidInput)
	}

	job.OwnerID = existing.OwnerID
	job.CreatedAt = existing.CreatedAt
	if err := s.Repo.Update(ctx, job); err != nil {
		return JobPosting{}, err
	}
	s.invalidateEmploymentTypes(ctx)
	return job, nil
}

// Delete soft-deletes a posting. Deleting twice is an error.
func (s *Service) Delete(ctx context.Context, viewer Viewer, id string) error {
	existing, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.OwnerID != viewer.ID {
		return ErrForbidden
	}
	if err := s.Repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidateEmploymentTypes(ctx)
	return nil
}

// ToggleFavorite flips the viewer's favorite flag and returns the new
// state.
func (s *Service) ToggleFavorite(ctx context.Context, viewer Viewer, jobID string) (bool, error) {
	if viewer.anonymous() {
		return false, ErrForbidden
	}
	if _, err := s.Repo.GetByID(ctx, jobID); err != nil {
		return false, err
	}

	current, err := s.Repo.IsFavorite(ctx, jobID, viewer.ID)
	if err != nil {
		return false, err
	}
	if err := s.Repo.SetFavorite(ctx, jobID, viewer.ID, !current); err != nil {
		return false, err
	}
	return !current, nil
}

func (s *Service) decorate(ctx context.Context, viewer Viewer, list []JobPosting) ([]Response, error) {
	responses := make([]Response, 0, len(list))
	for _, job := range list {
		resp := Response{JobPosting: job}
		if !viewer.anonymous() {
			fav, err := s.Repo.IsFavorite(ctx, job.ID, viewer.ID)
			if err != nil {
				return nil, err
			}
			resp.IsFavorite = fav
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *Service) invalidateEmploymentTypes(ctx context.Context) {
	_ = s.Cache.Delete(ctx, employmentTypesCacheKey)
}
