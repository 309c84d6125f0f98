package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"ai-digest-be/internal/entity"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *goredis.Client {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opt, err := goredis.ParseURL(url)
	require.NoError(t, err)
	rdb := goredis.NewClient(opt)
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestJobRepositoryRoundTrip(t *testing.T) {
	rdb := newTestClient(t)
	repo := NewJobRepository(rdb, time.Minute)
	ctx := context.Background()

	job := &entity.Job{
		Id:        uuid.New(),
		Status:    entity.JobCompleted,
		Input:     entity.JobInput{SourceType: "text", Title: "Notes"},
		Summary:   "done",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.Save(ctx, job))
	t.Cleanup(func() { rdb.Del(ctx, key(job.Id)) })

	found, err := repo.FindByID(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, job.Summary, found.Summary)
	assert.Equal(t, job.Input, found.Input)
	assert.True(t, job.CreatedAt.Equal(found.CreatedAt))

	ttl := rdb.TTL(ctx, key(job.Id)).Val()
	assert.Greater(t, ttl, time.Duration(0))
}

func TestJobRepositoryMissing(t *testing.T) {
	repo := NewJobRepository(newTestClient(t), time.Minute)

	found, err := repo.FindByID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, found)
}
