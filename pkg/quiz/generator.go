// Package quiz builds multiple-choice pre-test questions from a summary.
package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"ai-digest-be/internal/constant"
	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/pkg/llm"

	"github.com/go-playground/validator/v10"
)

var ErrNoQuestions = errors.New("quiz generation returned no valid questions")

const (
	DefaultCount = 5
	MaxCount     = 20
)

type Question struct {
	Question    string   `json:"question" validate:"required"`
	Options     []string `json:"options" validate:"len=4,dive,required"`
	Answer      string   `json:"answer" validate:"required"`
	Explanation string   `json:"explanation"`
}

type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, options ...llm.Option) (string, error)
}

type Generator struct {
	completer Completer
	validate  *validator.Validate
	logger    logger.ILogger
}

func NewGenerator(completer Completer, log logger.ILogger) *Generator {
	return &Generator{completer: completer, validate: validator.New(), logger: log}
}

func (g *Generator) Generate(ctx context.Context, summary string, count int) ([]Question, error) {
	if count <= 0 {
		count = DefaultCount
	}
	if count > MaxCount {
		count = MaxCount
	}

	raw, err := g.completer.Complete(ctx, []llm.Message{
		llm.System(fmt.Sprintf(constant.QuizSystemPrompt, count)),
		llm.User(fmt.Sprintf(constant.QuizUserPrompt, summary)),
	},
		llm.WithTemperature(0.3),
		llm.WithMaxTokens(250*count),
	)
	if err != nil {
		return nil, fmt.Errorf("quiz completion: %w", err)
	}

	questions := g.Parse(raw)
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if len(questions) > count {
		questions = questions[:count]
	}
	return questions, nil
}

var (
	optionPrefix = regexp.MustCompile(`^\s*([A-Da-d])\s*[).:]\s+`)
	answerLetter = regexp.MustCompile(`^\s*([A-Da-d])\s*[).]?\s*$`)
)

// Parse keeps only well-formed questions whose answer resolves to one of
// the options. Lettered options ("B) two") lose their prefix and a bare
// letter answer is mapped to the option at that position.
func (g *Generator) Parse(raw string) []Question {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	start := strings.IndexByte(body, '[')
	end := strings.LastIndexByte(body, ']')
	if start < 0 || end <= start {
		return nil
	}

	var candidates []Question
	if err := json.Unmarshal([]byte(body[start:end+1]), &candidates); err != nil {
		g.logger.Warn("QUIZ", "Unparseable quiz output", map[string]interface{}{"error": err.Error()})
		return nil
	}

	var out []Question
	for i, q := range candidates {
		if err := g.validate.Struct(q); err != nil {
			g.logger.Debug("QUIZ", "Dropping invalid question", map[string]interface{}{"index": i, "error": err.Error()})
			continue
		}
		q.Options = stripLetters(q.Options)
		answer, ok := resolveAnswer(q.Options, q.Answer)
		if !ok {
			g.logger.Debug("QUIZ", "Dropping question with unknown answer", map[string]interface{}{"index": i, "answer": q.Answer})
			continue
		}
		q.Answer = answer
		out = append(out, q)
	}
	return out
}

// stripLetters removes "A) " style prefixes, only when every option
// carries its own letter in order.
func stripLetters(options []string) []string {
	stripped := make([]string, len(options))
	for i, o := range options {
		m := optionPrefix.FindStringSubmatch(o)
		if m == nil || strings.ToUpper(m[1]) != string(rune('A'+i)) {
			return options
		}
		stripped[i] = strings.TrimSpace(o[len(m[0]):])
	}
	return stripped
}

func resolveAnswer(options []string, answer string) (string, bool) {
	text := strings.TrimSpace(answer)
	if o, ok := matchOption(options, text); ok {
		return o, true
	}
	if m := optionPrefix.FindStringSubmatch(text); m != nil {
		if o, ok := matchOption(options, strings.TrimSpace(text[len(m[0]):])); ok {
			return o, true
		}
	}

	if m := answerLetter.FindStringSubmatch(answer); m != nil {
		idx := int(strings.ToUpper(m[1])[0] - 'A')
		if idx < len(options) {
			return options[idx], true
		}
	}
	return "", false
}

func matchOption(options []string, text string) (string, bool) {
	for _, o := range options {
		if strings.TrimSpace(o) == text {
			return o, true
		}
	}
	return "", false
}
