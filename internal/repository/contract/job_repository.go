package contract

import (
	"context"

	"ai-digest-be/internal/entity"

	"github.com/google/uuid"
)

// JobRepository holds async summarization jobs. FindByID returns
// (nil, nil) for unknown or expired jobs.
type JobRepository interface {
	Save(ctx context.Context, job *entity.Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error)
}
