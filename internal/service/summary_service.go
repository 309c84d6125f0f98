package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-digest-be/internal/dto"
	"ai-digest-be/internal/entity"
	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/internal/repository/contract"
	"ai-digest-be/internal/repository/specification"
	"ai-digest-be/pkg/ai/pipeline"
	"ai-digest-be/pkg/completion"
	"ai-digest-be/pkg/content"
	"ai-digest-be/pkg/quiz"

	"github.com/google/uuid"
)

const summaryModule = "SUMMARY"

type DocumentSummarizer interface {
	Summarize(ctx context.Context, doc pipeline.Document) *pipeline.Result
}

type SourceResolver interface {
	Resolve(ctx context.Context, src content.Source) (*content.Resolved, error)
}

type QuizGenerator interface {
	Generate(ctx context.Context, summary string, count int) ([]quiz.Question, error)
}

type CompletionDiagnostics interface {
	Status() completion.Status
	VerifyModel(ctx context.Context) (*completion.ModelReport, error)
}

type ISummaryService interface {
	Summarize(ctx context.Context, req *dto.SummarizeRequest) (*dto.SummaryResponse, error)
	ExtractBook(ctx context.Context, req *dto.ExtractBookRequest) (*dto.SummaryResponse, error)
	SummarizeSource(ctx context.Context, src content.Source) (*dto.SummaryResponse, error)
	GenerateQuiz(ctx context.Context, req *dto.QuizRequest) (*dto.QuizResponse, error)
	CompletionStatus() completion.Status
	VerifyModel(ctx context.Context) (*completion.ModelReport, error)
	ListSummaries(ctx context.Context, req *dto.ListSummariesRequest) (*dto.SummaryListResponse, error)
	GetSummary(ctx context.Context, id uuid.UUID) (*dto.ArchivedSummaryResponse, error)
}

type summaryService struct {
	summarizer  DocumentSummarizer
	resolver    SourceResolver
	quiz        QuizGenerator
	diagnostics CompletionDiagnostics
	archive     contract.SummaryRepository
	logger      logger.ILogger
}

// NewSummaryService wires the summarizer and its collaborators. archive
// may be nil, in which case results are not persisted.
func NewSummaryService(
	summarizer DocumentSummarizer,
	resolver SourceResolver,
	quizGenerator QuizGenerator,
	diagnostics CompletionDiagnostics,
	archive contract.SummaryRepository,
	log logger.ILogger,
) ISummaryService {
	return &summaryService{
		summarizer:  summarizer,
		resolver:    resolver,
		quiz:        quizGenerator,
		diagnostics: diagnostics,
		archive:     archive,
		logger:      log,
	}
}

func (s *summaryService) Summarize(ctx context.Context, req *dto.SummarizeRequest) (*dto.SummaryResponse, error) {
	doc := pipeline.Document{Content: req.Text, Title: req.Title, Kind: pipeline.ParseKind(req.Type)}
	return s.run(ctx, doc, nil)
}

func (s *summaryService) ExtractBook(ctx context.Context, req *dto.ExtractBookRequest) (*dto.SummaryResponse, error) {
	doc := pipeline.Document{Content: req.Text, Title: req.Title, Kind: pipeline.KindBook}
	return s.run(ctx, doc, nil)
}

func (s *summaryService) SummarizeSource(ctx context.Context, src content.Source) (*dto.SummaryResponse, error) {
	resolved, err := s.resolver.Resolve(ctx, src)
	if err != nil {
		s.logger.Error(summaryModule, "Failed to resolve source", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	return s.run(ctx, resolved.Document, resolved)
}

func (s *summaryService) run(ctx context.Context, doc pipeline.Document, resolved *content.Resolved) (*dto.SummaryResponse, error) {
	result := s.summarizer.Summarize(ctx, doc)

	resp := &dto.SummaryResponse{
		Success:        result.Success,
		Summary:        result.Summary,
		Metadata:       result.Metadata,
		Error:          result.Error,
		ProcessingTime: result.Metadata.ProcessingTimeMs,
	}
	if resolved != nil {
		resp.PageCount = resolved.PageCount
		resp.LowConfidence = resolved.LowConfidence
	}

	if !result.Success {
		return resp, &SummaryFailedError{Response: resp, Err: result.Err}
	}

	resp.SummaryId = s.store(ctx, result)
	return resp, nil
}

// store archives a successful result. Archive failures are logged only.
func (s *summaryService) store(ctx context.Context, result *pipeline.Result) *uuid.UUID {
	if s.archive == nil {
		return nil
	}

	metadata, err := json.Marshal(result.Metadata)
	if err != nil {
		s.logger.Warn(summaryModule, "Failed to encode metadata", map[string]interface{}{"error": err.Error()})
		metadata = nil
	}

	record := &entity.Summary{
		Id:       uuid.New(),
		Title:    result.Metadata.Title,
		Kind:     string(result.Metadata.Kind),
		Summary:  result.Summary,
		Metadata: metadata,
	}
	if err := s.archive.Create(ctx, record); err != nil {
		s.logger.Warn(summaryModule, "Failed to archive summary", map[string]interface{}{
			"title": record.Title,
			"error": err.Error(),
		})
		return nil
	}
	return &record.Id
}

func (s *summaryService) GenerateQuiz(ctx context.Context, req *dto.QuizRequest) (*dto.QuizResponse, error) {
	count := req.Count
	if count <= 0 {
		count = quiz.DefaultCount
	}
	questions, err := s.quiz.Generate(ctx, req.Summary, count)
	if err != nil {
		return nil, err
	}
	return &dto.QuizResponse{Questions: questions}, nil
}

func (s *summaryService) CompletionStatus() completion.Status {
	return s.diagnostics.Status()
}

func (s *summaryService) VerifyModel(ctx context.Context) (*completion.ModelReport, error) {
	return s.diagnostics.VerifyModel(ctx)
}

func (s *summaryService) ListSummaries(ctx context.Context, req *dto.ListSummariesRequest) (*dto.SummaryListResponse, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}

	var filters []specification.Specification
	if req.Kind != "" {
		filters = append(filters, specification.ByKind{Kind: req.Kind})
	}
	if q := strings.TrimSpace(req.Query); q != "" {
		filters = append(filters, specification.TitleContains{Query: q})
	}
	if req.Since != "" {
		since, err := time.Parse(time.DateOnly, req.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: since must be YYYY-MM-DD", ErrInvalidSource)
		}
		filters = append(filters, specification.CreatedAfter{Time: since})
	}

	total, err := s.archive.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	specs := append(filters,
		specification.Newest{},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	)
	summaries, err := s.archive.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SummaryListItem, 0, len(summaries))
	for _, sm := range summaries {
		items = append(items, dto.SummaryListItem{
			Id:        sm.Id,
			Title:     sm.Title,
			Kind:      sm.Kind,
			CreatedAt: sm.CreatedAt,
		})
	}
	return &dto.SummaryListResponse{Items: items, Total: total}, nil
}

func (s *summaryService) GetSummary(ctx context.Context, id uuid.UUID) (*dto.ArchivedSummaryResponse, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	sm, err := s.archive.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if sm == nil {
		return nil, ErrSummaryNotFound
	}
	return &dto.ArchivedSummaryResponse{
		Id:        sm.Id,
		Title:     sm.Title,
		Kind:      sm.Kind,
		Summary:   sm.Summary,
		Metadata:  sm.Metadata,
		CreatedAt: sm.CreatedAt,
	}, nil
}
