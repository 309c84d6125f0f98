package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-digest-be/internal/dto"
	"ai-digest-be/internal/entity"
	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/internal/repository/memory"
	"ai-digest-be/pkg/ai/pipeline"
	"ai-digest-be/pkg/content"
	"ai-digest-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

type jobHarness struct {
	jobs   IJobService
	repo   *memory.JobRepository
	events *recordingPublisher
}

func newJobHarness(t *testing.T, summarizer DocumentSummarizer) *jobHarness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { pubSub.Close() })

	repo := memory.NewJobRepository(time.Hour)
	recorder := &recordingPublisher{}
	log := logger.NewNopLogger()

	summaries := NewSummaryService(summarizer, textResolver{}, &fakeQuiz{}, fakeDiagnostics{}, nil, log)

	consumer := NewConsumerService(pubSub, "summary.jobs", repo, summaries, recorder, log)
	require.NoError(t, consumer.Consume(ctx))

	return &jobHarness{
		jobs:   NewJobService(repo, NewPublisherService("summary.jobs", pubSub), log),
		repo:   repo,
		events: recorder,
	}
}

type textResolver struct{}

func (textResolver) Resolve(_ context.Context, src content.Source) (*content.Resolved, error) {
	text, ok := src.(content.TextSource)
	if !ok {
		return nil, errors.New("only text sources in tests")
	}
	return &content.Resolved{Document: pipeline.Document{Content: text.Text, Title: text.Title, Kind: pipeline.KindGeneral}}, nil
}

func (h *jobHarness) waitFor(t *testing.T, id uuid.UUID, status entity.JobStatus) *dto.JobResponse {
	t.Helper()
	var last *dto.JobResponse
	require.Eventually(t, func() bool {
		res, err := h.jobs.Get(context.Background(), id)
		if err != nil {
			return false
		}
		last = res
		return res.Status == string(status)
	}, 2*time.Second, 10*time.Millisecond)
	return last
}

func TestJobRunsToCompletion(t *testing.T) {
	h := newJobHarness(t, &fakeSummarizer{})

	submitted, err := h.jobs.Submit(context.Background(), &dto.SourceRequest{Type: "text", Text: "hello world", Title: "Greeting"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.JobPending), submitted.Status)

	done := h.waitFor(t, submitted.Id, entity.JobCompleted)
	assert.Equal(t, "summary of Greeting", done.Summary)
	assert.NotEmpty(t, done.Metadata)
	assert.Eventually(t, func() bool {
		return len(h.events.types()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{events.SummaryCompleted}, h.events.types())
}

func TestJobRecordsFailure(t *testing.T) {
	failing := &fakeSummarizer{result: func(pipeline.Document) *pipeline.Result {
		return &pipeline.Result{Success: false, Error: "no chunks could be processed", Err: pipeline.ErrNoChunksProcessed}
	}}
	h := newJobHarness(t, failing)

	submitted, err := h.jobs.Submit(context.Background(), &dto.SourceRequest{Type: "text", Text: "hello"})
	require.NoError(t, err)

	failed := h.waitFor(t, submitted.Id, entity.JobFailed)
	assert.Equal(t, "no chunks could be processed", failed.Error)
	assert.Eventually(t, func() bool {
		types := h.events.types()
		return len(types) == 1 && types[0] == events.SummaryFailed
	}, time.Second, 10*time.Millisecond)
}

func TestSubmitRejectsInvalidSource(t *testing.T) {
	h := newJobHarness(t, &fakeSummarizer{})

	_, err := h.jobs.Submit(context.Background(), &dto.SourceRequest{Type: "youtube"})
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestGetUnknownJob(t *testing.T) {
	h := newJobHarness(t, &fakeSummarizer{})

	_, err := h.jobs.Get(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrJobNotFound))
}
