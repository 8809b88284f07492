package jobs

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestBuildJobDocumentDeterministic(t *testing.T) {
	score := 5.0
	job := JobPosting{
		Description:      "Build backend services.",
		Skills:           []string{"kubernetes", "go", "postgres"},
		ExperienceLevels: []string{"Senior", "Mid"},
		Certifications: []CertificationRequirement{
			{Name: "CKA", Score: &score},
			{Name: "AWS SAA"},
		},
	}

	doc1, err := BuildJobDocument(job)
	if err != nil {
		t.Fatalf("BuildJobDocument: %v", err)
	}
	doc2, err := BuildJobDocument(job)
	if err != nil {
		t.Fatalf("BuildJobDocument: %v", err)
	}
	if !bytes.Equal(doc1, doc2) {
		t.Fatalf("projection should be deterministic:\n%s\n%s", doc1, doc2)
	}

	var parsed struct {
		ExperienceLevels []string `json:"experienceLevels"`
		Skills           []string `json:"skills"`
		Certifications   []struct {
			Name  string   `json:"name"`
			Score *float64 `json:"score"`
		} `json:"certifications"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(doc1, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if parsed.Skills[0] != "go" || parsed.Skills[1] != "kubernetes" || parsed.Skills[2] != "postgres" {
		t.Fatalf("skills not sorted: %v", parsed.Skills)
	}
	if parsed.ExperienceLevels[0] != "Mid" {
		t.Fatalf("experience levels not sorted: %v", parsed.ExperienceLevels)
	}
	if parsed.Description != "Build backend services." {
		t.Fatalf("description = %q", parsed.Description)
	}

	// Certifications sorted by name; score present only when defined.
	if parsed.Certifications[0].Name != "AWS SAA" || parsed.Certifications[0].Score != nil {
		t.Fatalf("cert[0] = %+v", parsed.Certifications[0])
	}
	if parsed.Certifications[1].Name != "CKA" || parsed.Certifications[1].Score == nil || *parsed.Certifications[1].Score != 5.0 {
		t.Fatalf("cert[1] = %+v", parsed.Certifications[1])
	}
}

func TestBuildJobDocumentOmitsAbsentScore(t *testing.T) {
	job := JobPosting{Certifications: []CertificationRequirement{{Name: "CKA"}}}
	doc, err := BuildJobDocument(job)
	if err != nil {
		t.Fatalf("BuildJobDocument: %v", err)
	}
	if bytes.Contains(doc, []byte(`"score"`)) {
		t.Fatalf("score key should be omitted when absent:\n%s", doc)
	}
}

func TestBuildJobDocumentEmptyLists(t *testing.T) {
	doc, err := BuildJobDocument(JobPosting{Description: "d"})
	if err != nil {
		t.Fatalf("BuildJobDocument: %v", err)
	}
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(doc, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"experienceLevels", "skills", "certifications"} {
		if string(parsed[key]) != "[]" {
			t.Fatalf("%s should encode as empty array, got %s", key, parsed[key])
		}
	}
}
