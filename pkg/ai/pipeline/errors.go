package pipeline

import (
	"context"
	"errors"
	"fmt"

	"ai-digest-be/pkg/completion"
)

// ErrNoChunksProcessed means every chunk extraction failed.
var ErrNoChunksProcessed = errors.New("no chunks could be processed")

// StageError wraps a failure in a mandatory stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// mustSurface reports errors that abort a run even inside optional stages.
func mustSurface(err error) bool {
	return errors.Is(err, completion.ErrModelMismatch) ||
		errors.Is(err, context.Canceled)
}
