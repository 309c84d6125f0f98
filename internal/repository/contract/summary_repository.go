package contract

import (
	"context"

	"ai-digest-be/internal/entity"
	"ai-digest-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SummaryRepository interface {
	Create(ctx context.Context, summary *entity.Summary) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Summary, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Summary, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
