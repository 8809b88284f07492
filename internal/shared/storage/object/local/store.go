package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"nextstep-backend/internal/shared/storage/object"
)

// Store implements ResumeStore using the local filesystem. Stored files
// are served by the API under /files/.
type Store struct {
	baseDir       string
	publicBaseURL string
}

// New creates a local resume store rooted at baseDir.
func New(baseDir, publicBaseURL string) *Store {
	return &Store{
		baseDir:       baseDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// BaseDir returns the directory files are written to.
func (s *Store) BaseDir() string { return s.baseDir }

// Save writes the reader to disk under a generated object name.
func (s *Store) Save(ctx context.Context, fileName string, r io.Reader) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	objectName := object.ResumeObjectName(fileName)

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", "", fmt.Errorf("mkdir: %w", err)
	}

	fullPath := filepath.Join(s.baseDir, objectName)
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", "", fmt.Errorf("write body: %w", err)
	}

	url := s.publicBaseURL + "/files/" + objectName
	return url, objectName, nil
}

// Open opens a stored resume for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := filepath.Clean(storageKey)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) || strings.ContainsRune(clean, filepath.Separator) {
		return nil, fmt.Errorf("invalid storage key")
	}

	return os.Open(filepath.Join(s.baseDir, clean))
}

var _ object.ResumeStore = (*Store)(nil)
