package jobs

import "time"

// CertificationRequirement is a certification an employer asks for,
// optionally weighted for match scoring.
type CertificationRequirement struct {
	Name  string   `json:"name"`
	Score *float64 `json:"score,omitempty"`
}

// JobPosting is a published job offer.
type JobPosting struct {
	ID               string                     `json:"id"`
	OwnerID          string                     `json:"ownerId"`
	Title            string                     `json:"title"`
	Company          string                     `json:"company"`
	Description      string                     `json:"description"`
	Country          string                     `json:"country"`
	City             string                     `json:"city"`
	EmploymentType   string                     `json:"employmentType"`
	SalaryMin        *float64                   `json:"salaryMin,omitempty"`
	SalaryMax        *float64                   `json:"salaryMax,omitempty"`
	Currency         string                     `json:"currency,omitempty"`
	PayPeriod        string                     `json:"payPeriod,omitempty"`
	Experience       string                     `json:"experience,omitempty"`
	Skills           []string                   `json:"skills"`
	ExperienceLevels []string                   `json:"experienceLevels"`
	Certifications   []CertificationRequirement `json:"certifications"`
	Featured         bool                       `json:"featured"`
	IsDeleted        bool                       `json:"-"`
	ExpiresAt        *time.Time                 `json:"expiresAt,omitempty"`
	CreatedAt        time.Time                  `json:"createdAt"`
}

// Expired reports whether the posting's expiry has passed at now.
func (j JobPosting) Expired(now time.Time) bool {
	return j.ExpiresAt != nil && !j.ExpiresAt.After(now)
}

// Response is a posting as returned to a viewer, carrying the
// viewer-specific favorite flag.
type Response struct {
	JobPosting
	IsFavorite bool `json:"isFavorite"`
}
