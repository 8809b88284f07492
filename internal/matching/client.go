package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"nextstep-backend/internal/shared/metrics"
)

// HTTPClient implements Parser and Scorer against the matching service's
// /parse-resume and /match-score endpoints.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient constructs a client for the matching service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("matcher base URL is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// ParseResume uploads the resume bytes as multipart form data and
// returns the parsed document.
func (c *HTTPClient) ParseResume(ctx context.Context, fileName string, data []byte) (json.RawMessage, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse-resume", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}

type scoreRequest struct {
	CVData json.RawMessage `json:"cv_data"`
	JDData json.RawMessage `json:"jd_data"`
}

// MatchScore submits parsed resume data and a job description document
// and returns the raw score response.
func (c *HTTPClient) MatchScore(ctx context.Context, cvData, jdData json.RawMessage) (json.RawMessage, error) {
	payload, err := json.Marshal(scoreRequest{CVData: cvData, JDData: jdData})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/match-score", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) (json.RawMessage, error) {
	metrics.IncMatcherCall()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncMatcherFailure()
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("matcher request timeout: %w", err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.IncMatcherFailure()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		metrics.IncMatcherFailure()
		return nil, fmt.Errorf("matcher status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if !json.Valid(body) {
		metrics.IncMatcherFailure()
		return nil, fmt.Errorf("matcher returned invalid JSON")
	}
	return json.RawMessage(body), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var (
	_ Parser = (*HTTPClient)(nil)
	_ Scorer = (*HTTPClient)(nil)
)
