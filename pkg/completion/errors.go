package completion

import (
	"errors"
	"fmt"
)

var (
	// ErrTransient marks a failure that was retryable but exhausted its attempts.
	ErrTransient = errors.New("transient backend error")
	// ErrAuth marks a rejected API key or missing permission. Never retried.
	ErrAuth = errors.New("backend authentication failed")
	// ErrModelMismatch marks a response produced by a model other than the one requested.
	ErrModelMismatch = errors.New("backend model mismatch")
	// ErrInvalidResponse marks an empty or undecodable response body.
	ErrInvalidResponse = errors.New("invalid backend response")
	// ErrRejected marks any other non-retryable backend refusal (bad request, not found).
	ErrRejected = errors.New("backend rejected request")
	// ErrQueueCleared is returned to callers still waiting when the queue is cleared.
	ErrQueueCleared = errors.New("completion queue cleared")
)

// Error is what Complete returns once it gives up on a request.
type Error struct {
	Kind       error
	Attempts   int
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

type ModelMismatchError struct {
	Requested string
	Actual    string
}

func (e *ModelMismatchError) Error() string {
	return fmt.Sprintf("requested model %q but backend answered with %q", e.Requested, e.Actual)
}

func (e *ModelMismatchError) Is(target error) bool {
	return target == ErrModelMismatch
}
