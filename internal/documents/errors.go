package documents

import "errors"

var (
	// ErrNotFound indicates the requested document does not exist for the user.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidInput indicates a caller-supplied value failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPersistence wraps database failures so callers can classify them.
	ErrPersistence = errors.New("persistence error")
)
