// Package pipeline turns an arbitrarily long text into one exhaustive
// summary: segment, extract every chunk in parallel, combine, then one
// completeness audit and one density audit.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/pkg/segmenter"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("ai-digest/pipeline")

const (
	ModeChunked = "chunked"
	ModeSingle  = "single"
)

type Metadata struct {
	Title                string `json:"title"`
	Kind                 Kind   `json:"kind"`
	Mode                 string `json:"mode"`
	OriginalLength       int    `json:"originalLength"`
	ChunkCount           int    `json:"chunkCount"`
	SuccessfulChunks     int    `json:"successfulChunks"`
	FailedChunks         []int  `json:"failedChunks,omitempty"`
	DraftWords           int    `json:"draftWords,omitempty"`
	SummaryWords         int    `json:"summaryWords"`
	CompletenessAppended bool   `json:"completenessAppended"`
	DensityExpanded      bool   `json:"densityExpanded"`
	ProcessingTimeMs     int64  `json:"processingTimeMs"`
}

// Result is either a summary or a structured failure, never both.
type Result struct {
	Success  bool     `json:"success"`
	Summary  string   `json:"summary,omitempty"`
	Error    string   `json:"error,omitempty"`
	Metadata Metadata `json:"metadata"`

	Err error `json:"-"`
}

type Pipeline struct {
	settings     Settings
	extractor    *Extractor
	combiner     *Combiner
	completeness *CompletenessAuditor
	density      *DensityAuditor
	logger       logger.ILogger
}

func New(completer Completer, settings Settings, log logger.ILogger) *Pipeline {
	return &Pipeline{
		settings:     settings,
		extractor:    NewExtractor(completer, settings, log),
		combiner:     NewCombiner(completer, settings, log),
		completeness: NewCompletenessAuditor(completer, settings, log),
		density:      NewDensityAuditor(completer, settings, log),
		logger:       log,
	}
}

func (p *Pipeline) Settings() Settings {
	return p.settings
}

// Run executes the chunked path. Mandatory-stage failures come back as
// Success=false with Err set; optional audit failures are absorbed.
func (p *Pipeline) Run(ctx context.Context, doc Document) *Result {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()

	res := &Result{Metadata: Metadata{
		Title:          doc.title(),
		Kind:           doc.Kind,
		Mode:           ModeChunked,
		OriginalLength: len(doc.Content),
	}}
	fail := func(err error) *Result {
		res.Success = false
		res.Err = err
		res.Error = err.Error()
		res.Metadata.ProcessingTimeMs = time.Since(started).Milliseconds()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Error(module, "Pipeline failed", map[string]interface{}{
			"title":              res.Metadata.Title,
			"error":              err.Error(),
			"processing_time_ms": res.Metadata.ProcessingTimeMs,
		})
		return res
	}

	chunks, err := segmenter.Segment(doc.Content, p.settings.Segmenter)
	if err != nil {
		return fail(err)
	}
	res.Metadata.ChunkCount = len(chunks)
	span.SetAttributes(
		attribute.Int("pipeline.chunks", len(chunks)),
		attribute.Int("pipeline.original_length", len(doc.Content)),
	)
	p.logger.Info(module, "Document segmented", map[string]interface{}{
		"title":  res.Metadata.Title,
		"chars":  len(doc.Content),
		"chunks": len(chunks),
	})

	extractCtx, extractSpan := tracer.Start(ctx, "pipeline.extract")
	partials, err := p.extractor.ExtractAll(extractCtx, chunks, doc.Kind)
	extractSpan.End()
	if err != nil {
		return fail(err)
	}

	ok := Successful(partials)
	res.Metadata.SuccessfulChunks = len(ok)
	res.Metadata.FailedChunks = failedIndexes(partials)
	if len(ok) == 0 {
		return fail(&StageError{Stage: "extract", Err: fmt.Errorf("%w (first error: %v)", ErrNoChunksProcessed, firstError(partials))})
	}

	combineCtx, combineSpan := tracer.Start(ctx, "pipeline.combine")
	draft, err := p.combiner.Combine(combineCtx, partials, len(chunks), doc.title(), doc.Kind)
	combineSpan.End()
	if err != nil {
		return fail(err)
	}
	res.Metadata.DraftWords = WordCount(draft)

	source := SourceText(partials, p.settings.SourceBound)

	auditCtx, auditSpan := tracer.Start(ctx, "pipeline.audit.completeness")
	draft, res.Metadata.CompletenessAppended, err = p.completeness.Run(auditCtx, draft, source)
	auditSpan.End()
	if err != nil {
		return fail(err)
	}

	densityCtx, densitySpan := tracer.Start(ctx, "pipeline.audit.density")
	draft, res.Metadata.DensityExpanded, err = p.density.AuditDensity(densityCtx, draft, doc.Content, source)
	densitySpan.End()
	if err != nil {
		return fail(err)
	}

	res.Success = true
	res.Summary = draft
	res.Metadata.SummaryWords = WordCount(draft)
	res.Metadata.ProcessingTimeMs = time.Since(started).Milliseconds()

	p.logger.Info(module, "Pipeline completed", map[string]interface{}{
		"title":             res.Metadata.Title,
		"chunks":            res.Metadata.ChunkCount,
		"successful_chunks": res.Metadata.SuccessfulChunks,
		"summary_words":     res.Metadata.SummaryWords,
		"processing_ms":     res.Metadata.ProcessingTimeMs,
	})
	return res
}
