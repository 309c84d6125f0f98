package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"ai-digest-be/internal/constant"
	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/pkg/llm"
)

type Combiner struct {
	completer Completer
	settings  Settings
	logger    logger.ILogger
}

func NewCombiner(completer Completer, settings Settings, log logger.ILogger) *Combiner {
	return &Combiner{completer: completer, settings: settings, logger: log}
}

// Combine merges successful extractions into one draft, always in chunk order
// whatever order partials arrive in.
func (c *Combiner) Combine(ctx context.Context, partials []PartialExtraction, chunkCount int, title string, kind Kind) (string, error) {
	ok := Successful(partials)
	if len(ok) == 0 {
		return "", ErrNoChunksProcessed
	}

	messages := []llm.Message{
		llm.System(fmt.Sprintf(constant.CombineSystemPrompt, title, kind.label(), len(ok))),
		llm.User(fmt.Sprintf(constant.CombineUserPrompt, CombineInput(ok))),
	}

	draft, err := c.completer.Complete(ctx, messages,
		llm.WithTemperature(c.settings.CombineTemperature),
		llm.WithMaxTokens(c.settings.CombineMaxTokens),
	)
	if err != nil {
		return "", &StageError{Stage: "combine", Err: err}
	}

	c.logger.Info(module, "Extractions combined", map[string]interface{}{
		"sections":    len(ok),
		"chunk_count": chunkCount,
		"draft_words": WordCount(draft),
	})
	return strings.TrimSpace(draft), nil
}

// CombineInput lays out extractions under numbered section separators.
// Callers pass them already sorted.
func CombineInput(sorted []PartialExtraction) string {
	parts := make([]string, 0, len(sorted))
	for _, p := range sorted {
		parts = append(parts, fmt.Sprintf(constant.CombineSeparator, p.Index+1)+"\n\n"+strings.TrimSpace(p.Text))
	}
	return strings.Join(parts, "\n\n")
}

// SourceText joins successful extractions for the audit follow-ups and
// truncates the result to bound bytes on a rune boundary.
func SourceText(partials []PartialExtraction, bound int) string {
	ok := Successful(partials)
	texts := make([]string, len(ok))
	for i, p := range ok {
		texts[i] = p.Text
	}
	return truncate(strings.Join(texts, constant.SourceChunkSeparator), bound)
}

func truncate(s string, bound int) string {
	if bound <= 0 || len(s) <= bound {
		return s
	}
	cut := bound
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
