// Package redis stores jobs in Redis so any API instance can report them.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-digest-be/internal/entity"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "ai-digest:job:"

type JobRepository struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewJobRepository(rdb *goredis.Client, ttl time.Duration) *JobRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JobRepository{rdb: rdb, ttl: ttl}
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

func (r *JobRepository) Save(ctx context.Context, job *entity.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return r.rdb.Set(ctx, key(job.Id), payload, r.ttl).Err()
}

func (r *JobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	payload, err := r.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var job entity.Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &job, nil
}
