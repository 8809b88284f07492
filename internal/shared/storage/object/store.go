package object

import (
	"context"
	"io"

	"github.com/google/uuid"

	"nextstep-backend/internal/shared/util"
)

// ResumeStore defines the contract for persisting uploaded resumes and
// handing back a URL the rest of the system can reference.
type ResumeStore interface {
	Save(ctx context.Context, fileName string, r io.Reader) (url string, storageKey string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

// ResumeObjectName derives the stored object name for an uploaded resume.
// The original file name contributes only its extension, lowercased, so
// uploads can never collide or leak the uploader's naming.
func ResumeObjectName(fileName string) string {
	return "cv_" + uuid.NewString() + util.FileExtension(fileName)
}
