package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the backend answered 2xx without any text.
var ErrEmptyResponse = errors.New("empty response from llm backend")

// StatusError carries the HTTP status of a failed backend call so callers
// can decide whether to retry.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s api error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}
