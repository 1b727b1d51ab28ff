package medai

import (
	"errors"
	"fmt"
)

// ErrUnavailable signals the analyzer could not be reached or did not answer
// healthily. Callers surface it as a service_unavailable condition.
var ErrUnavailable = errors.New("analyzer unavailable")

// APIError is a non-2xx answer from the analyzer. Message carries the
// analyzer's own message when the error body could be parsed, otherwise a
// generic description.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("analyzer returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("analyzer returned %d", e.StatusCode)
}
