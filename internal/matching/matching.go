// Package matching talks to the external service that parses resumes
// and scores them against job descriptions.
package matching

import (
	"context"
	"encoding/json"
)

// Parser extracts structured data from an uploaded resume.
type Parser interface {
	ParseResume(ctx context.Context, fileName string, data []byte) (json.RawMessage, error)
}

// Scorer computes a match between parsed resume data and a job
// description document.
type Scorer interface {
	MatchScore(ctx context.Context, cvData, jdData json.RawMessage) (json.RawMessage, error)
}
