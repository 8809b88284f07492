package jobs

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo backs development environments without a database.
type MemoryRepo struct {
	mu        sync.RWMutex
	jobs      map[string]JobPosting
	favorites map[string]map[string]bool // userID -> jobID -> true
	now       func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		jobs:      make(map[string]JobPosting),
		favorites: make(map[string]map[string]bool),
		now:       time.Now,
	}
}

func (r *MemoryRepo) Create(ctx context.Context, job JobPosting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = r.now().UTC()
	}
	r.jobs[job.ID] = job
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, job JobPosting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.jobs[job.ID]
	if !ok || existing.IsDeleted {
		return ErrNotFound
	}
	job.CreatedAt = existing.CreatedAt
	job.IsDeleted = existing.IsDeleted
	r.jobs[job.ID] = job
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (JobPosting, error) {
	if err := ctx.Err(); err != nil {
		return JobPosting{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return JobPosting{}, ErrNotFound
	}
	return job, nil
}

func (r *MemoryRepo) Search(ctx context.Context, f SearchFilter, page, size int) ([]JobPosting, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	var matched []JobPosting
	for _, job := range r.jobs {
		if job.IsDeleted || job.Expired(now) {
			continue
		}
		if !matchesFilter(job, f) {
			continue
		}
		matched = append(matched, job)
	}

	sortJobs(matched, f)

	total := int64(len(matched))
	start := page * size
	if start >= len(matched) {
		return []JobPosting{}, total, nil
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func matchesFilter(job JobPosting, f SearchFilter) bool {
	if f.Country != "" && job.Country != f.Country {
		return false
	}
	if f.City != "" && job.City != f.City {
		return false
	}
	if f.EmploymentType != "" && job.EmploymentType != f.EmploymentType {
		return false
	}
	if f.SalaryMin != nil && (job.SalaryMin == nil || *job.SalaryMin < *f.SalaryMin) {
		return false
	}
	if f.SalaryMax != nil && (job.SalaryMax == nil || *job.SalaryMax > *f.SalaryMax) {
		return false
	}
	if len(f.ExperienceLevels) > 0 && !intersects(job.ExperienceLevels, f.ExperienceLevels) {
		return false
	}
	if len(f.Skills) > 0 && !intersects(job.Skills, f.Skills) {
		return false
	}
	if f.CreatedAfter != nil && job.CreatedAt.Before(*f.CreatedAfter) {
		return false
	}
	if f.Keyword != "" && !matchesKeyword(job, f.Keyword) {
		return false
	}
	if f.Currency != "" && job.Currency != f.Currency {
		return false
	}
	if f.PayPeriod != "" && job.PayPeriod != f.PayPeriod {
		return false
	}
	// Username scoping requires the users table; the in-memory repo
	// approximates it by matching against OwnerID.
	if f.Username != "" && job.OwnerID != f.Username {
		return false
	}
	return true
}

func matchesKeyword(job JobPosting, keyword string) bool {
	kw := strings.ToLower(keyword)
	if strings.Contains(strings.ToLower(job.Title), kw) ||
		strings.Contains(strings.ToLower(job.Company), kw) {
		return true
	}
	for _, skill := range job.Skills {
		if strings.Contains(strings.ToLower(skill), kw) {
			return true
		}
	}
	for _, level := range job.ExperienceLevels {
		if strings.Contains(strings.ToLower(level), kw) {
			return true
		}
	}
	return false
}

func intersects(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

func sortJobs(list []JobPosting, f SearchFilter) {
	desc := f.SortDesc()
	less := func(i, j int) bool {
		var cmp int
		switch f.SortColumn() {
		case "title":
			cmp = strings.Compare(list[i].Title, list[j].Title)
		case "company":
			cmp = strings.Compare(list[i].Company, list[j].Company)
		case "salary_min":
			cmp = compareFloatPtr(list[i].SalaryMin, list[j].SalaryMin)
		default:
			switch {
			case list[i].CreatedAt.Before(list[j].CreatedAt):
				cmp = -1
			case list[i].CreatedAt.After(list[j].CreatedAt):
				cmp = 1
			}
		}
		if cmp == 0 {
			cmp = strings.Compare(list[i].ID, list[j].ID)
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	}
	sort.SliceStable(list, less)
}

func compareFloatPtr(a, b *float64) int {
	av, bv := 0.0, 0.0
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func (r *MemoryRepo) Featured(ctx context.Context) ([]JobPosting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	var featured []JobPosting
	for _, job := range r.jobs {
		if job.Featured && !job.IsDeleted && !job.Expired(now) {
			featured = append(featured, job)
		}
	}
	sort.Slice(featured, func(i, j int) bool {
		return featured[i].CreatedAt.After(featured[j].CreatedAt)
	})
	return featured, nil
}

func (r *MemoryRepo) EmploymentTypes(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var types []string
	for _, job := range r.jobs {
		if job.IsDeleted || job.EmploymentType == "" {
			continue
		}
		if _, dup := seen[job.EmploymentType]; dup {
			continue
		}
		seen[job.EmploymentType] = struct{}{}
		types = append(types, job.EmploymentType)
	}
	sort.Strings(types)
	return types, nil
}

func (r *MemoryRepo) SoftDelete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.IsDeleted {
		return ErrAlreadyDeleted
	}
	job.IsDeleted = true
	r.jobs[id] = job
	return nil
}

func (r *MemoryRepo) SetFavorite(ctx context.Context, jobID, userID string, favorite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if favorite {
		if r.favorites[userID] == nil {
			r.favorites[userID] = make(map[string]bool)
		}
		r.favorites[userID][jobID] = true
		return nil
	}
	delete(r.favorites[userID], jobID)
	return nil
}

func (r *MemoryRepo) IsFavorite(ctx context.Context, jobID, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.favorites[userID][jobID], nil
}

var _ Repo = (*MemoryRepo)(nil)
