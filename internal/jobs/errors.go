package jobs

import "errors"

var (
	ErrNotFound       = errors.New("job not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrAlreadyDeleted = errors.New("job is already deleted")
	ErrForbidden      = errors.New("forbidden")
)
