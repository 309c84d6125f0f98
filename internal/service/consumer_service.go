package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ai-digest-be/internal/dto"
	"ai-digest-be/internal/entity"
	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/internal/repository/contract"
	"ai-digest-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	jobs       contract.JobRepository
	summaries  ISummaryService
	events     events.Publisher
	logger     logger.ILogger
}

// NewConsumerService runs queued jobs. eventPublisher may be nil.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	jobs contract.JobRepository,
	summaries ISummaryService,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		jobs:       jobs,
		summaries:  summaries,
		events:     eventPublisher,
		logger:     log,
	}
}

// Consume subscribes and returns; messages are handled one at a time in
// the background until ctx is done.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// Every outcome is recorded on the job itself, so the message is
	// always acked.
	defer msg.Ack()

	var payload dto.PublishSummaryJobMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(jobModule, "Failed to unmarshal job message", map[string]interface{}{"error": err.Error()})
		return
	}

	job, err := cs.jobs.FindByID(ctx, payload.JobId)
	if err != nil || job == nil {
		cs.logger.Error(jobModule, "Job not found", map[string]interface{}{"job_id": payload.JobId.String(), "error": errString(err)})
		return
	}

	job.Status = entity.JobProcessing
	job.UpdatedAt = time.Now().UTC()
	if err := cs.jobs.Save(ctx, job); err != nil {
		cs.logger.Warn(jobModule, "Failed to mark job processing", map[string]interface{}{"job_id": job.Id.String(), "error": err.Error()})
	}

	resp, err := cs.run(ctx, job)
	cs.finish(ctx, job, resp, err)
}

func (cs *consumerService) run(ctx context.Context, job *entity.Job) (*dto.SummaryResponse, error) {
	src, err := SourceFromInput(job.Input)
	if err != nil {
		return nil, err
	}
	return cs.summaries.SummarizeSource(ctx, src)
}

func (cs *consumerService) finish(ctx context.Context, job *entity.Job, resp *dto.SummaryResponse, err error) {
	job.UpdatedAt = time.Now().UTC()
	if resp != nil {
		if metadata, mErr := json.Marshal(resp.Metadata); mErr == nil {
			job.Metadata = metadata
		}
	}

	eventType := events.SummaryCompleted
	data := map[string]interface{}{"job_id": job.Id.String()}

	if err != nil {
		job.Status = entity.JobFailed
		job.Error = err.Error()
		var failed *SummaryFailedError
		if errors.As(err, &failed) && failed.Response.Error != "" {
			job.Error = failed.Response.Error
		}
		eventType = events.SummaryFailed
		data["error"] = job.Error
		cs.logger.Error(jobModule, "Job failed", map[string]interface{}{"job_id": job.Id.String(), "error": job.Error})
	} else {
		job.Status = entity.JobCompleted
		job.Summary = resp.Summary
		job.SummaryId = resp.SummaryId
		data["title"] = resp.Metadata.Title
		data["summary_words"] = resp.Metadata.SummaryWords
		if resp.SummaryId != nil {
			data["summary_id"] = resp.SummaryId.String()
		}
		cs.logger.Info(jobModule, "Job completed", map[string]interface{}{
			"job_id":        job.Id.String(),
			"summary_words": resp.Metadata.SummaryWords,
		})
	}

	if err := cs.jobs.Save(ctx, job); err != nil {
		cs.logger.Error(jobModule, "Failed to save job result", map[string]interface{}{"job_id": job.Id.String(), "error": err.Error()})
	}

	if cs.events == nil {
		return
	}
	if err := cs.events.Publish(ctx, events.New(eventType, data)); err != nil {
		cs.logger.Warn(jobModule, "Failed to publish job event", map[string]interface{}{"type": eventType, "error": err.Error()})
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
