package jobs

import (
	"encoding/json"
	"sort"
)

type jobDocument struct {
	ExperienceLevels []string                  `json:"experienceLevels"`
	Skills           []string                  `json:"skills"`
	Certifications   []certificationProjection `json:"certifications"`
	Description      string                    `json:"description"`
}

type certificationProjection struct {
	Name  string   `json:"name"`
	Score *float64 `json:"score,omitempty"`
}

// BuildJobDocument projects a posting into the job-description document
// the matching service scores against. Output is deterministic: lists
// are sorted and a certification's score is present only when the
// posting defines one.
func BuildJobDocument(job JobPosting) (json.RawMessage, error) {
	doc := jobDocument{
		ExperienceLevels: sortedCopy(job.ExperienceLevels),
		Skills:           sortedCopy(job.Skills),
		Certifications:   make([]certificationProjection, 0, len(job.Certifications)),
		Description:      job.Description,
	}

	certs := make([]CertificationRequirement, len(job.Certifications))
	copy(certs, job.Certifications)
	sort.Slice(certs, func(i, j int) bool { return certs[i].Name < certs[j].Name })
	for _, cert := range certs {
		doc.Certifications = append(doc.Certifications, certificationProjection{
			Name:  cert.Name,
			Score: cert.Score,
		})
	}

	return json.Marshal(doc)
}

func sortedCopy(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}
