package pipeline

import (
	"context"
	"fmt"
	"strings"

	"ai-digest-be/internal/constant"
	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/pkg/llm"
)

// WordCount splits on any run of whitespace.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

type DensityAuditor struct {
	completer Completer
	settings  Settings
	logger    logger.ILogger
}

func NewDensityAuditor(completer Completer, settings Settings, log logger.ILogger) *DensityAuditor {
	return &DensityAuditor{completer: completer, settings: settings, logger: log}
}

// Ratio is draft words over source words; an empty source counts as dense.
func Ratio(draft, source string) float64 {
	sourceWords := WordCount(source)
	if sourceWords == 0 {
		return 1
	}
	return float64(WordCount(draft)) / float64(sourceWords)
}

func (d *DensityAuditor) NeedsExpansion(draft, source string) bool {
	return Ratio(draft, source) < d.settings.DensityFloor || WordCount(draft) < d.settings.MinSummaryWords
}

// AcceptExpansion rejects an expansion longer than DuplicateFactor times the
// draft; such output is almost always the draft rewritten.
func (d *DensityAuditor) AcceptExpansion(draft, expansion string) bool {
	return float64(WordCount(expansion)) <= d.settings.DuplicateFactor*float64(WordCount(draft))
}

// AuditDensity runs at most one expand pass. extractions is the truncated
// source material the expansion may draw from.
func (d *DensityAuditor) AuditDensity(ctx context.Context, draft, source, extractions string) (string, bool, error) {
	if !d.NeedsExpansion(draft, source) {
		return draft, false, nil
	}

	draftWords := WordCount(draft)
	d.logger.Info(module, "Summary below density floor, expanding", map[string]interface{}{
		"draft_words": draftWords,
		"ratio":       Ratio(draft, source),
	})

	expansion, err := d.completer.Complete(ctx, []llm.Message{
		llm.System(constant.ExpandSystemPrompt),
		llm.User(fmt.Sprintf(constant.ExpandUserPrompt, draftWords, extractions, draft)),
	},
		llm.WithTemperature(d.settings.ExpandTemperature),
		llm.WithMaxTokens(d.settings.CombineMaxTokens),
	)
	if err != nil {
		if mustSurface(err) {
			return draft, false, err
		}
		d.logger.Warn(module, "Expand pass failed, keeping draft", map[string]interface{}{"error": err.Error()})
		return draft, false, nil
	}

	expansion = strings.TrimSpace(expansion)
	if expansion == "" {
		return draft, false, nil
	}
	if !d.AcceptExpansion(draft, expansion) {
		d.logger.Warn(module, "Expansion discarded as likely duplicate", map[string]interface{}{
			"draft_words":     draftWords,
			"expansion_words": WordCount(expansion),
		})
		return draft, false, nil
	}
	return draft + "\n\n" + expansion, true, nil
}
