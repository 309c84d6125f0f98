package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-digest-be/internal/dto"
	"ai-digest-be/internal/entity"
	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/internal/repository/contract"

	"github.com/google/uuid"
)

const jobModule = "JOB"

type IJobService interface {
	Submit(ctx context.Context, req *dto.SourceRequest) (*dto.JobResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.JobResponse, error)
}

type jobService struct {
	jobs      contract.JobRepository
	publisher IPublisherService
	logger    logger.ILogger
}

func NewJobService(jobs contract.JobRepository, publisher IPublisherService, log logger.ILogger) IJobService {
	return &jobService{jobs: jobs, publisher: publisher, logger: log}
}

func (s *jobService) Submit(ctx context.Context, req *dto.SourceRequest) (*dto.JobResponse, error) {
	input := JobInputFromRequest(req)
	if _, err := SourceFromInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &entity.Job{
		Id:        uuid.New(),
		Status:    entity.JobPending,
		Input:     input,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(dto.PublishSummaryJobMessage{JobId: job.Id})
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.logger.Error(jobModule, "Failed to enqueue job", map[string]interface{}{"job_id": job.Id.String(), "error": err.Error()})
		return nil, err
	}

	s.logger.Info(jobModule, "Job submitted", map[string]interface{}{
		"job_id": job.Id.String(),
		"source": input.SourceType,
	})
	return toJobResponse(job), nil
}

func (s *jobService) Get(ctx context.Context, id uuid.UUID) (*dto.JobResponse, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return toJobResponse(job), nil
}

func toJobResponse(job *entity.Job) *dto.JobResponse {
	return &dto.JobResponse{
		Id:        job.Id,
		Status:    string(job.Status),
		Summary:   job.Summary,
		Metadata:  job.Metadata,
		Error:     job.Error,
		SummaryId: job.SummaryId,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}
