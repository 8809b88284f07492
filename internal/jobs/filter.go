package jobs

import (
	"strings"
	"time"
)

// SearchFilter carries the multi-criteria search parameters. Zero
// values mean "no constraint"; the UI sentinel "all" is treated the
// same after Normalize.
type SearchFilter struct {
	Country          string   `json:"country"`
	City             string   `json:"city"`
	EmploymentType   string   `json:"employmentType"`
	SalaryMin        *float64 `json:"salaryMin"`
	SalaryMax        *float64 `json:"salaryMax"`
	ExperienceLevels []string `json:"experienceLevels"`
	Skills           []string `json:"skills"`
	DatePosted       string   `json:"datePosted"`
	Keyword          string   `json:"keyword"`
	Currency         string   `json:"currency"`
	PayPeriod        string   `json:"payPeriod"`
	SortBy           string   `json:"sortBy"`
	SortDirection    string   `json:"sortDirection"`

	// Username scopes results to one employer's postings. The service
	// clears it for candidate viewers.
	Username string `json:"username"`

	// CreatedAfter is derived from DatePosted during Normalize.
	CreatedAfter *time.Time `json:"-"`
}

// Normalize clears "all" sentinels, trims inputs, and resolves the
// DatePosted bucket into an absolute cut-off.
func (f *SearchFilter) Normalize(now time.Time) {
	f.Country = clearAll(f.Country)
	f.City = clearAll(f.City)
	f.EmploymentType = clearAll(f.EmploymentType)
	f.Keyword = strings.TrimSpace(f.Keyword)
	f.Currency = strings.TrimSpace(f.Currency)
	f.PayPeriod = strings.TrimSpace(f.PayPeriod)
	f.Username = strings.TrimSpace(f.Username)
	f.ExperienceLevels = dropEmpty(f.ExperienceLevels)
	f.Skills = dropEmpty(f.Skills)

	f.CreatedAfter = nil
	switch strings.ToLower(strings.TrimSpace(f.DatePosted)) {
	case "day":
		cutoff := now.AddDate(0, 0, -1)
		f.CreatedAfter = &cutoff
	case "week":
		cutoff := now.AddDate(0, 0, -7)
		f.CreatedAfter = &cutoff
	case "month":
		cutoff := now.AddDate(0, -1, 0)
		f.CreatedAfter = &cutoff
	}
}

// SortColumn maps the requested sort field to a safe column name.
func (f SearchFilter) SortColumn() string {
	switch f.SortBy {
	case "title":
		return "title"
	case "company":
		return "company"
	case "salaryMin":
		return "salary_min"
	default:
		return "created_at"
	}
}

// SortDesc reports whether results should sort descending (the default).
func (f SearchFilter) SortDesc() bool {
	return !strings.EqualFold(f.SortDirection, "asc")
}

func clearAll(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return ""
	}
	return s
}

func dropEmpty(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
