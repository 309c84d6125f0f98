package service

import (
	"errors"
	"fmt"

	"ai-digest-be/internal/dto"
	"ai-digest-be/pkg/ai/pipeline"
	"ai-digest-be/pkg/completion"
)

var (
	ErrInvalidSource    = errors.New("invalid content source")
	ErrJobNotFound      = errors.New("job not found")
	ErrSummaryNotFound  = errors.New("summary not found")
	ErrArchiveDisabled  = errors.New("summary archive is not configured")
	ErrSummarizerFailed = errors.New("summarization failed")
)

// SummaryFailedError carries the structured failure body alongside the cause.
type SummaryFailedError struct {
	Response *dto.SummaryResponse
	Err      error
}

func (e *SummaryFailedError) Error() string {
	return fmt.Sprintf("%v: %v", ErrSummarizerFailed, e.Err)
}

func (e *SummaryFailedError) Unwrap() []error {
	return []error{ErrSummarizerFailed, e.Err}
}

// BackendFailed reports whether the failure came from the LLM backend
// rather than from the input.
func (e *SummaryFailedError) BackendFailed() bool {
	return errors.Is(e.Err, completion.ErrTransient) ||
		errors.Is(e.Err, completion.ErrAuth) ||
		errors.Is(e.Err, completion.ErrModelMismatch) ||
		errors.Is(e.Err, completion.ErrInvalidResponse) ||
		errors.Is(e.Err, completion.ErrRejected) ||
		errors.Is(e.Err, completion.ErrQueueCleared) ||
		errors.Is(e.Err, pipeline.ErrNoChunksProcessed)
}
