package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-digest-be/internal/constant"
	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/pkg/llm"
)

type MissingItems struct {
	Principles  []string `json:"principles"`
	Differences []string `json:"differences"`
	Quotes      []string `json:"quotes"`
	Stories     []string `json:"stories"`
	Exercises   []string `json:"exercises"`
	Statistics  []string `json:"statistics"`
}

type CompletenessReport struct {
	Missing MissingItems `json:"missing"`
}

func (r CompletenessReport) Empty() bool {
	return len(r.Categories()) == 0
}

// Categories names the categories with at least one missing item.
func (r CompletenessReport) Categories() []string {
	var out []string
	m := r.Missing
	for _, c := range []struct {
		name  string
		items []string
	}{
		{"principles", m.Principles},
		{"differences", m.Differences},
		{"quotes", m.Quotes},
		{"stories", m.Stories},
		{"exercises", m.Exercises},
		{"statistics", m.Statistics},
	} {
		if len(c.items) > 0 {
			out = append(out, c.name)
		}
	}
	return out
}

// categoryAliases also accepts the French keys some models answer with.
var categoryAliases = map[string]string{
	"principles": "principles", "principes": "principles",
	"differences": "differences", "différences": "differences", "contrasts": "differences",
	"quotes": "quotes", "citations": "quotes",
	"stories": "stories", "histoires": "stories",
	"exercises": "exercises", "exercices": "exercises", "techniques": "exercises",
	"statistics": "statistics", "stats": "statistics", "statistiques": "statistics",
}

// ParseCompletenessReport never fails: anything unparseable is an empty
// report, so a confused auditor cannot break the run.
func ParseCompletenessReport(raw string) CompletenessReport {
	var report CompletenessReport

	body := extractJSON(raw, '{', '}')
	if body == "" {
		return report
	}

	var loose struct {
		Missing map[string]json.RawMessage `json:"missing"`
	}
	if err := json.Unmarshal([]byte(body), &loose); err != nil {
		return report
	}

	for key, value := range loose.Missing {
		canonical, ok := categoryAliases[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			continue
		}
		items := decodeItems(value)
		m := &report.Missing
		switch canonical {
		case "principles":
			m.Principles = append(m.Principles, items...)
		case "differences":
			m.Differences = append(m.Differences, items...)
		case "quotes":
			m.Quotes = append(m.Quotes, items...)
		case "stories":
			m.Stories = append(m.Stories, items...)
		case "exercises":
			m.Exercises = append(m.Exercises, items...)
		case "statistics":
			m.Statistics = append(m.Statistics, items...)
		}
	}
	return report
}

// decodeItems accepts an array of strings or objects, or a single string.
func decodeItems(raw json.RawMessage) []string {
	var list []interface{}
	if err := json.Unmarshal(raw, &list); err != nil {
		var single string
		if json.Unmarshal(raw, &single) == nil && strings.TrimSpace(single) != "" {
			return []string{strings.TrimSpace(single)}
		}
		return nil
	}
	var out []string
	for _, item := range list {
		switch v := item.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				out = append(out, s)
			}
		case nil:
		default:
			if b, err := json.Marshal(v); err == nil {
				out = append(out, string(b))
			}
		}
	}
	return out
}

// extractJSON strips code fences and returns the outermost open..close span.
func extractJSON(raw string, open, close byte) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

type CompletenessAuditor struct {
	completer Completer
	settings  Settings
	logger    logger.ILogger
}

func NewCompletenessAuditor(completer Completer, settings Settings, log logger.ILogger) *CompletenessAuditor {
	return &CompletenessAuditor{completer: completer, settings: settings, logger: log}
}

// Audit asks the backend which categories the draft under-represents.
func (a *CompletenessAuditor) Audit(ctx context.Context, draft string) (CompletenessReport, error) {
	raw, err := a.completer.Complete(ctx, []llm.Message{
		llm.System(constant.CompletenessAuditSystemPrompt),
		llm.User(fmt.Sprintf(constant.CompletenessAuditUserPrompt, draft)),
	},
		llm.WithTemperature(a.settings.AuditTemperature),
		llm.WithMaxTokens(a.settings.AuditMaxTokens),
	)
	if err != nil {
		return CompletenessReport{}, err
	}
	return ParseCompletenessReport(raw), nil
}

// Remediate appends the missing items once. Failures leave the draft as is.
func (a *CompletenessAuditor) Remediate(ctx context.Context, draft string, report CompletenessReport, source string) (string, bool, error) {
	if report.Empty() {
		return draft, false, nil
	}

	missing, _ := json.Marshal(report)
	addition, err := a.completer.Complete(ctx, []llm.Message{
		llm.System(constant.AppendMissingSystemPrompt),
		llm.User(fmt.Sprintf(constant.AppendMissingUserPrompt, missing, source, draft)),
	},
		llm.WithTemperature(a.settings.AppendTemperature),
		llm.WithMaxTokens(a.settings.CombineMaxTokens),
	)
	if err != nil {
		if mustSurface(err) {
			return draft, false, err
		}
		a.logger.Warn(module, "Append pass failed, keeping draft", map[string]interface{}{"error": err.Error()})
		return draft, false, nil
	}

	addition = strings.TrimSpace(addition)
	if addition == "" {
		return draft, false, nil
	}
	return draft + "\n\n" + addition, true, nil
}

// Run is one audit followed by at most one append.
func (a *CompletenessAuditor) Run(ctx context.Context, draft, source string) (string, bool, error) {
	report, err := a.Audit(ctx, draft)
	if err != nil {
		if mustSurface(err) {
			return draft, false, err
		}
		a.logger.Warn(module, "Completeness audit failed, keeping draft", map[string]interface{}{"error": err.Error()})
		return draft, false, nil
	}
	if report.Empty() {
		return draft, false, nil
	}

	a.logger.Info(module, "Completeness audit found gaps", map[string]interface{}{"categories": report.Categories()})
	return a.Remediate(ctx, draft, report, source)
}
