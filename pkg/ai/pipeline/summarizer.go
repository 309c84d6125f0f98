package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-digest-be/internal/constant"
	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/pkg/llm"
	"ai-digest-be/pkg/segmenter"
)

// Summarizer picks between one direct completion and the full chunked
// pipeline. Books always take the chunked path.
type Summarizer struct {
	pipeline  *Pipeline
	completer Completer
	settings  Settings
	logger    logger.ILogger
}

func NewSummarizer(completer Completer, settings Settings, log logger.ILogger) *Summarizer {
	return &Summarizer{
		pipeline:  New(completer, settings, log),
		completer: completer,
		settings:  settings,
		logger:    log,
	}
}

func (s *Summarizer) Pipeline() *Pipeline {
	return s.pipeline
}

func (s *Summarizer) UsesChunking(doc Document) bool {
	preferred := s.settings.Segmenter.PreferredChunkSize
	if preferred <= 0 {
		preferred = segmenter.DefaultPreferredChunkSize
	}
	return doc.Kind == KindBook || len(doc.Content) > preferred
}

func (s *Summarizer) Summarize(ctx context.Context, doc Document) *Result {
	if s.UsesChunking(doc) {
		return s.pipeline.Run(ctx, doc)
	}
	return s.singlePass(ctx, doc)
}

func (s *Summarizer) singlePass(ctx context.Context, doc Document) *Result {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "pipeline.single_pass")
	defer span.End()

	res := &Result{Metadata: Metadata{
		Title:          doc.title(),
		Kind:           doc.Kind,
		Mode:           ModeSingle,
		OriginalLength: len(doc.Content),
	}}

	if strings.TrimSpace(doc.Content) == "" {
		res.Err = segmenter.ErrEmptyInput
		res.Error = res.Err.Error()
		return res
	}
	res.Metadata.ChunkCount = 1

	user := doc.Content
	if strings.TrimSpace(doc.Title) != "" {
		user = fmt.Sprintf("Title: %s\n\n%s", doc.Title, doc.Content)
	}

	summary, err := s.completer.Complete(ctx, []llm.Message{
		llm.System(singlePassPrompt(doc.Kind)),
		llm.User(user),
	},
		llm.WithTemperature(s.settings.ChunkTemperature),
		llm.WithMaxTokens(s.settings.ChunkMaxTokens),
	)
	res.Metadata.ProcessingTimeMs = time.Since(started).Milliseconds()
	if err != nil {
		res.Err = &StageError{Stage: "summarize", Err: err}
		res.Error = res.Err.Error()
		s.logger.Error(module, "Single pass summary failed", map[string]interface{}{"error": err.Error()})
		return res
	}

	res.Success = true
	res.Summary = strings.TrimSpace(summary)
	res.Metadata.SuccessfulChunks = 1
	res.Metadata.SummaryWords = WordCount(res.Summary)
	return res
}

func singlePassPrompt(kind Kind) string {
	switch kind {
	case KindBook:
		return constant.SinglePassBookPrompt
	case KindAudio:
		return constant.SinglePassAudioPrompt
	case KindVideo:
		return constant.SinglePassVideoPrompt
	default:
		return constant.SinglePassDefaultPrompt
	}
}
