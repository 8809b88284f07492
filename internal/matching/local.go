package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LocalParser extracts plain text from resumes in-process. It stands
// in for the external parser in development environments.
type LocalParser struct{}

// ParseResume wraps the resume text as a minimal parsed document of the
// shape {"raw_text": ...}. PDFs are extracted; any other file is taken
// as plain text.
func (LocalParser) ParseResume(ctx context.Context, fileName string, data []byte) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var text string
	if strings.ToLower(path.Ext(fileName)) == ".pdf" {
		extracted, err := extractPDF(data)
		if err != nil {
			return nil, fmt.Errorf("extract pdf text: %w", err)
		}
		text = extracted
	} else {
		text = string(data)
	}

	doc := map[string]string{"raw_text": text}
	return json.Marshal(doc)
}

// NoopScorer returns an empty score document. Used in development when
// no matching service is configured; aggregation then reports the
// breakdown as missing.
type NoopScorer struct{}

func (NoopScorer) MatchScore(ctx context.Context, cvData, jdData json.RawMessage) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return json.RawMessage(`{"details":{}}`), nil
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var (
	_ Parser = LocalParser{}
	_ Scorer = NoopScorer{}
)
