package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"ai-digest-be/internal/constant"
	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/pkg/llm"
	"ai-digest-be/pkg/segmenter"

	"golang.org/x/sync/errgroup"
)

// PartialExtraction is the outcome of one chunk.
type PartialExtraction struct {
	Index   int    `json:"index"`
	Text    string `json:"text,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	err error
}

type Extractor struct {
	completer Completer
	settings  Settings
	logger    logger.ILogger
}

func NewExtractor(completer Completer, settings Settings, log logger.ILogger) *Extractor {
	return &Extractor{completer: completer, settings: settings, logger: log}
}

// Extract never fails: a backend error is recorded on the result.
func (e *Extractor) Extract(ctx context.Context, chunk segmenter.Chunk, total int, kind Kind) PartialExtraction {
	messages := []llm.Message{
		llm.System(fmt.Sprintf(constant.ChunkExtractionSystemPrompt, kind.label())),
		llm.User(fmt.Sprintf(constant.ChunkExtractionUserPrompt, chunk.Index+1, total, chunk.Text)),
	}

	text, err := e.completer.Complete(ctx, messages,
		llm.WithTemperature(e.settings.ChunkTemperature),
		llm.WithMaxTokens(e.settings.ChunkMaxTokens),
	)
	if err != nil {
		e.logger.Warn(module, "Chunk extraction failed", map[string]interface{}{
			"chunk": chunk.Index + 1,
			"total": total,
			"error": err.Error(),
		})
		return PartialExtraction{Index: chunk.Index, Success: false, Error: err.Error(), err: err}
	}

	e.logger.Debug(module, "Chunk extracted", map[string]interface{}{
		"chunk": chunk.Index + 1,
		"total": total,
		"chars": len(text),
	})
	return PartialExtraction{Index: chunk.Index, Text: text, Success: true}
}

// ExtractAll fans out one call per chunk. Results come back in chunk order.
// Only a model mismatch or caller cancellation stops the run early.
func (e *Extractor) ExtractAll(ctx context.Context, chunks []segmenter.Chunk, kind Kind) ([]PartialExtraction, error) {
	results := make([]PartialExtraction, len(chunks))
	g, gctx := errgroup.WithContext(ctx)

	for i, chunk := range chunks {
		g.Go(func() error {
			res := e.Extract(gctx, chunk, len(chunks), kind)
			results[i] = res
			if res.err != nil && mustSurface(res.err) {
				return res.err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// Successful keeps the successful extractions sorted by chunk index.
func Successful(partials []PartialExtraction) []PartialExtraction {
	out := make([]PartialExtraction, 0, len(partials))
	for _, p := range partials {
		if p.Success {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func failedIndexes(partials []PartialExtraction) []int {
	var out []int
	for _, p := range partials {
		if !p.Success {
			out = append(out, p.Index)
		}
	}
	return out
}

// firstError returns the first recorded backend error, if any.
func firstError(partials []PartialExtraction) error {
	for _, p := range partials {
		if p.err != nil {
			return p.err
		}
	}
	return errors.New("no extraction returned text")
}
