package memory

import (
	"context"
	"time"

	"ai-digest-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// JobRepository keeps jobs in process memory. Jobs expire after ttl.
type JobRepository struct {
	cache *cache.Cache
}

func NewJobRepository(ttl time.Duration) *JobRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JobRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *JobRepository) Save(_ context.Context, job *entity.Job) error {
	copied := *job
	r.cache.Set(job.Id.String(), &copied, cache.DefaultExpiration)
	return nil
}

func (r *JobRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Job, error) {
	if x, found := r.cache.Get(id.String()); found {
		copied := *x.(*entity.Job)
		return &copied, nil
	}
	return nil, nil
}
