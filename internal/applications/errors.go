package applications

import "errors"

var (
	ErrNotFound      = errors.New("application not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyResume   = errors.New("resume file is empty")
	ErrInvalidStatus = errors.New("invalid application status")
	ErrStatusFinal   = errors.New("application status is final")
	ErrJobClosed     = errors.New("job posting is closed")
	ErrForbidden     = errors.New("forbidden")
	ErrStorageFailed = errors.New("resume storage failed")
	ErrParseFailed   = errors.New("resume parsing failed")
	ErrScoreFailed   = errors.New("match scoring failed")
)
