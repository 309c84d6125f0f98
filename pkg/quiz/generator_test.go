package quiz

import (
	"context"
	"testing"

	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	reply string
}

func (s stubCompleter) Complete(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return s.reply, nil
}

const validQuiz = "```json\n" + `[
 {"question":"What compounds?","options":["Habits","Luck","Talent","Money"],"answer":"Habits","explanation":"Chapter 1"},
 {"question":"Too few options","options":["A","B"],"answer":"A"},
 {"question":"Answer not an option","options":["A","B","C","D"],"answer":"E"},
 {"question":"","options":["A","B","C","D"],"answer":"A"}
]` + "\n```"

func TestParseKeepsOnlyValidQuestions(t *testing.T) {
	g := NewGenerator(stubCompleter{}, logger.NewNopLogger())
	questions := g.Parse(validQuiz)

	require.Len(t, questions, 1)
	assert.Equal(t, "What compounds?", questions[0].Question)
}

func TestParseGarbage(t *testing.T) {
	g := NewGenerator(stubCompleter{}, logger.NewNopLogger())
	assert.Empty(t, g.Parse("I cannot do that"))
	assert.Empty(t, g.Parse("[not json]"))
}

func TestGenerate(t *testing.T) {
	g := NewGenerator(stubCompleter{reply: validQuiz}, logger.NewNopLogger())
	questions, err := g.Generate(context.Background(), "summary", 3)
	require.NoError(t, err)
	assert.Len(t, questions, 1)

	g = NewGenerator(stubCompleter{reply: "[]"}, logger.NewNopLogger())
	_, err = g.Generate(context.Background(), "summary", 3)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestParseResolvesLetteredAnswers(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantAnswer  string
		wantOptions []string
	}{
		{
			name:        "letter answer",
			raw:         `[{"question":"Capital of France?","options":["Paris","London","Rome","Berlin"],"answer":"A"}]`,
			wantAnswer:  "Paris",
			wantOptions: []string{"Paris", "London", "Rome", "Berlin"},
		},
		{
			name:        "lowercase letter with paren",
			raw:         `[{"question":"Capital of Italy?","options":["Paris","London","Rome","Berlin"],"answer":"c)"}]`,
			wantAnswer:  "Rome",
			wantOptions: []string{"Paris", "London", "Rome", "Berlin"},
		},
		{
			name:        "prefixed options with letter answer",
			raw:         `[{"question":"Two?","options":["A) one","B) two","C) three","D) four"],"answer":"B"}]`,
			wantAnswer:  "two",
			wantOptions: []string{"one", "two", "three", "four"},
		},
		{
			name:        "prefixed options with prefixed answer",
			raw:         `[{"question":"Four?","options":["A. one","B. two","C. three","D. four"],"answer":"D. four"}]`,
			wantAnswer:  "four",
			wantOptions: []string{"one", "two", "three", "four"},
		},
		{
			name:        "options that only look lettered keep their text",
			raw:         `[{"question":"Author?","options":["A. Smith","J. Doe","R. Roe","K. Poe"],"answer":"A. Smith"}]`,
			wantAnswer:  "A. Smith",
			wantOptions: []string{"A. Smith", "J. Doe", "R. Roe", "K. Poe"},
		},
	}

	g := NewGenerator(stubCompleter{}, logger.NewNopLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions := g.Parse(tt.raw)
			require.Len(t, questions, 1)
			assert.Equal(t, tt.wantAnswer, questions[0].Answer)
			assert.Equal(t, tt.wantOptions, questions[0].Options)
		})
	}
}

func TestParseDropsLetterOutOfRange(t *testing.T) {
	g := NewGenerator(stubCompleter{}, logger.NewNopLogger())
	assert.Empty(t, g.Parse(`[{"question":"?","options":["w","x","y","z"],"answer":"E"}]`))
}
