package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-digest-be/internal/constant"
	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/pkg/completion"
	"ai-digest-be/pkg/llm"
	"ai-digest-be/pkg/segmenter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var markers = []string{"ALPHA", "BRAVO", "GAMMA"}

type fakeCompleter struct {
	mu    sync.Mutex
	calls map[string]int
	users map[string][]string

	failChunks map[string]error
	audit      string
	auditErr   error
	appendText string
	expandText string
	single     string
}

func newFakeCompleter() *fakeCompleter {
	return &fakeCompleter{
		calls:      map[string]int{},
		users:      map[string][]string{},
		failChunks: map[string]error{},
		audit:      `{"missing":{"principles":[],"differences":[],"quotes":[],"stories":[],"exercises":[],"statistics":[]}}`,
	}
}

func stageOf(system string) string {
	switch {
	case strings.HasPrefix(system, "You are an exhaustive content extractor"):
		return "extract"
	case strings.HasPrefix(system, "You are assembling"):
		return "combine"
	case system == constant.CompletenessAuditSystemPrompt:
		return "audit"
	case system == constant.AppendMissingSystemPrompt:
		return "append"
	case system == constant.ExpandSystemPrompt:
		return "expand"
	default:
		return "single"
	}
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []llm.Message, _ ...llm.Option) (string, error) {
	stage := stageOf(messages[0].Content)
	user := messages[len(messages)-1].Content

	f.mu.Lock()
	f.calls[stage]++
	f.users[stage] = append(f.users[stage], user)
	f.mu.Unlock()

	switch stage {
	case "extract":
		for i, m := range markers {
			if !strings.Contains(user, m) {
				continue
			}
			// Later chunks finish first.
			time.Sleep(time.Duration(len(markers)-i) * 5 * time.Millisecond)
			if err, ok := f.failChunks[m]; ok {
				return "", err
			}
			return "EXTRACT[" + m + "]", nil
		}
		return "EXTRACT[?]", nil
	case "combine":
		return "DRAFT\n" + user, nil
	case "audit":
		return f.audit, f.auditErr
	case "append":
		return f.appendText, nil
	case "expand":
		return f.expandText, nil
	default:
		return f.single, nil
	}
}

func (f *fakeCompleter) count(stage string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[stage]
}

func threeChapterDoc() Document {
	var b strings.Builder
	for i, m := range markers {
		fmt.Fprintf(&b, "Chapter %d\n\nThis section is about %s and nothing else at all, really nothing more.\n", i+1, m)
	}
	return Document{Content: b.String(), Title: "Atomic Notes", Kind: KindBook}
}

func testSettings() Settings {
	s := DefaultSettings()
	s.Segmenter = segmenter.Options{MaxChunks: 10, PreferredChunkSize: 100, MinChunkSize: 50}
	s.DensityFloor = 0
	s.MinSummaryWords = 0
	return s
}

func transient() error {
	return &completion.Error{Kind: completion.ErrTransient, Attempts: 4, Err: &llm.StatusError{StatusCode: http.StatusServiceUnavailable}}
}

func TestThreeChapterDocSegmentsIntoThree(t *testing.T) {
	chunks, err := segmenter.Segment(threeChapterDoc().Content, testSettings().Segmenter)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, m := range markers {
		assert.Contains(t, chunks[i].Text, m)
	}
}

func TestRunToleratesOneFailedChunk(t *testing.T) {
	fc := newFakeCompleter()
	fc.failChunks["BRAVO"] = transient()
	p := New(fc, testSettings(), logger.NewNopLogger())

	res := p.Run(context.Background(), threeChapterDoc())

	require.True(t, res.Success, res.Error)
	assert.Contains(t, res.Summary, "EXTRACT[ALPHA]")
	assert.Contains(t, res.Summary, "EXTRACT[GAMMA]")
	assert.NotContains(t, res.Summary, "EXTRACT[BRAVO]")
	assert.Equal(t, 3, res.Metadata.ChunkCount)
	assert.Equal(t, 2, res.Metadata.SuccessfulChunks)
	assert.Equal(t, []int{1}, res.Metadata.FailedChunks)
	assert.Equal(t, 1, fc.count("combine"))
}

func TestRunFailsWhenAllChunksFail(t *testing.T) {
	fc := newFakeCompleter()
	for _, m := range markers {
		fc.failChunks[m] = transient()
	}
	p := New(fc, testSettings(), logger.NewNopLogger())

	res := p.Run(context.Background(), threeChapterDoc())

	assert.False(t, res.Success)
	assert.Empty(t, res.Summary)
	assert.True(t, errors.Is(res.Err, ErrNoChunksProcessed))
	assert.Contains(t, res.Error, "no chunks could be processed")
	assert.Equal(t, 0, fc.count("combine"))
}

func TestRunRestoresChunkOrderBeforeCombining(t *testing.T) {
	fc := newFakeCompleter()
	p := New(fc, testSettings(), logger.NewNopLogger())

	res := p.Run(context.Background(), threeChapterDoc())
	require.True(t, res.Success, res.Error)

	require.Len(t, fc.users["combine"], 1)
	input := fc.users["combine"][0]
	a := strings.Index(input, "EXTRACT[ALPHA]")
	b := strings.Index(input, "EXTRACT[BRAVO]")
	g := strings.Index(input, "EXTRACT[GAMMA]")
	assert.True(t, a >= 0 && a < b && b < g, "combine input out of order:\n%s", input)
	assert.Contains(t, input, "═══ SECTION 1 ═══")
}

func TestCombineSortsWhateverOrderPartialsArrive(t *testing.T) {
	fc := newFakeCompleter()
	c := NewCombiner(fc, testSettings(), logger.NewNopLogger())

	partials := []PartialExtraction{
		{Index: 2, Text: "third", Success: true},
		{Index: 0, Text: "first", Success: true},
		{Index: 1, Error: "boom"},
		{Index: 3, Text: "fourth", Success: true},
	}
	draft, err := c.Combine(context.Background(), partials, 4, "T", KindGeneral)
	require.NoError(t, err)

	assert.Less(t, strings.Index(draft, "first"), strings.Index(draft, "third"))
	assert.Less(t, strings.Index(draft, "third"), strings.Index(draft, "fourth"))
	assert.NotContains(t, draft, "SECTION 2 ")
}

func TestCombineWithNothingSuccessful(t *testing.T) {
	c := NewCombiner(newFakeCompleter(), testSettings(), logger.NewNopLogger())
	_, err := c.Combine(context.Background(), []PartialExtraction{{Index: 0, Error: "x"}}, 1, "T", KindGeneral)
	assert.ErrorIs(t, err, ErrNoChunksProcessed)
}

func TestRunSurfacesModelMismatch(t *testing.T) {
	fc := newFakeCompleter()
	fc.failChunks["BRAVO"] = &completion.Error{
		Kind:     completion.ErrModelMismatch,
		Attempts: 1,
		Err:      &completion.ModelMismatchError{Requested: "deepseek-chat", Actual: "other"},
	}
	p := New(fc, testSettings(), logger.NewNopLogger())

	res := p.Run(context.Background(), threeChapterDoc())

	assert.False(t, res.Success)
	assert.True(t, errors.Is(res.Err, completion.ErrModelMismatch))
	assert.Equal(t, 0, fc.count("combine"))
}

func TestRunRejectsEmptyDocument(t *testing.T) {
	p := New(newFakeCompleter(), testSettings(), logger.NewNopLogger())
	res := p.Run(context.Background(), Document{Content: "  \n "})
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, segmenter.ErrEmptyInput)
}

func TestEmptyCompletenessReportLeavesDraftUnchanged(t *testing.T) {
	fc := newFakeCompleter()
	a := NewCompletenessAuditor(fc, testSettings(), logger.NewNopLogger())

	draft := "**Essence**: a draft."
	out, appended, err := a.Run(context.Background(), draft, "source")
	require.NoError(t, err)

	assert.Equal(t, draft, out)
	assert.False(t, appended)
	assert.Equal(t, 1, fc.count("audit"))
	assert.Equal(t, 0, fc.count("append"))
}

func TestMalformedAuditIsTreatedAsNothingMissing(t *testing.T) {
	for _, raw := range []string{"not json at all", `{"missing": "oops"`, "", `["principles"]`} {
		fc := newFakeCompleter()
		fc.audit = raw
		a := NewCompletenessAuditor(fc, testSettings(), logger.NewNopLogger())

		out, appended, err := a.Run(context.Background(), "draft", "source")
		require.NoError(t, err)
		assert.Equal(t, "draft", out)
		assert.False(t, appended)
		assert.Equal(t, 0, fc.count("append"), "raw=%q", raw)
	}
}

func TestCompletenessGapTriggersOneAppend(t *testing.T) {
	fc := newFakeCompleter()
	fc.audit = "```json\n{\"missing\":{\"principles\":[\"Two-Minute Rule\"],\"quotes\":[]}}\n```"
	fc.appendText = "**Mental Models & Principles**: Two-Minute Rule"
	a := NewCompletenessAuditor(fc, testSettings(), logger.NewNopLogger())

	out, appended, err := a.Run(context.Background(), "draft", "source text")
	require.NoError(t, err)

	assert.True(t, appended)
	assert.Equal(t, "draft\n\n**Mental Models & Principles**: Two-Minute Rule", out)
	assert.Equal(t, 1, fc.count("append"))
	assert.Contains(t, fc.users["append"][0], "Two-Minute Rule")
	assert.Contains(t, fc.users["append"][0], "source text")
}

func TestCompletenessAuditFailureIsSwallowed(t *testing.T) {
	fc := newFakeCompleter()
	fc.auditErr = transient()
	a := NewCompletenessAuditor(fc, testSettings(), logger.NewNopLogger())

	out, appended, err := a.Run(context.Background(), "draft", "source")
	require.NoError(t, err)
	assert.Equal(t, "draft", out)
	assert.False(t, appended)
}

func TestParseCompletenessReport(t *testing.T) {
	r := ParseCompletenessReport(`Here you go: {"missing":{"principes":["Loi 1"],"citations":["\"quote\""],"stats":[{"value":"40%"}],"unknown":["x"]}}`)
	assert.Equal(t, []string{"Loi 1"}, r.Missing.Principles)
	assert.Equal(t, []string{`"quote"`}, r.Missing.Quotes)
	assert.Equal(t, []string{`{"value":"40%"}`}, r.Missing.Statistics)
	assert.Equal(t, []string{"principles", "quotes", "statistics"}, r.Categories())
	assert.False(t, r.Empty())

	assert.True(t, ParseCompletenessReport(`{"missing":{}}`).Empty())
}

func TestDensityGuardDiscardsLongExpansion(t *testing.T) {
	fc := newFakeCompleter()
	s := testSettings()
	s.MinSummaryWords = 3000
	d := NewDensityAuditor(fc, s, logger.NewNopLogger())

	draft := strings.Repeat("word ", 10)
	fc.expandText = strings.Repeat("more ", 13)

	out, expanded, err := d.AuditDensity(context.Background(), draft, strings.Repeat("src ", 1000), "extractions")
	require.NoError(t, err)

	assert.Equal(t, draft, out)
	assert.False(t, expanded)
	assert.Equal(t, 1, fc.count("expand"))
}

func TestDensityAcceptsShortExpansion(t *testing.T) {
	fc := newFakeCompleter()
	s := testSettings()
	s.DensityFloor = 0.15
	d := NewDensityAuditor(fc, s, logger.NewNopLogger())

	draft := strings.Repeat("word ", 10)
	fc.expandText = strings.Repeat("more ", 12)

	out, expanded, err := d.AuditDensity(context.Background(), draft, strings.Repeat("src ", 1000), "extractions")
	require.NoError(t, err)

	assert.True(t, expanded)
	assert.Equal(t, draft+"\n\n"+strings.TrimSpace(fc.expandText), out)
}

func TestDensitySkipsDenseDraft(t *testing.T) {
	fc := newFakeCompleter()
	d := NewDensityAuditor(fc, DefaultSettings(), logger.NewNopLogger())

	draft := strings.Repeat("word ", 4000)
	out, expanded, err := d.AuditDensity(context.Background(), draft, strings.Repeat("src ", 10000), "")
	require.NoError(t, err)
	assert.Equal(t, draft, out)
	assert.False(t, expanded)
	assert.Equal(t, 0, fc.count("expand"))
}

func TestRunAuditsRunOnceEach(t *testing.T) {
	fc := newFakeCompleter()
	fc.audit = `{"missing":{"stories":["The barber"]}}`
	fc.appendText = "**Stories & Examples**: The barber"
	fc.expandText = "**Essence**: extra depth"
	s := testSettings()
	s.MinSummaryWords = 3000
	p := New(fc, s, logger.NewNopLogger())

	res := p.Run(context.Background(), threeChapterDoc())
	require.True(t, res.Success, res.Error)

	assert.Equal(t, 1, fc.count("audit"))
	assert.Equal(t, 1, fc.count("append"))
	assert.Equal(t, 1, fc.count("expand"))
	assert.True(t, res.Metadata.CompletenessAppended)
	assert.True(t, res.Metadata.DensityExpanded)
	assert.True(t, strings.HasSuffix(res.Summary, "**Essence**: extra depth"))
	assert.Less(t, strings.Index(res.Summary, "The barber"), strings.Index(res.Summary, "extra depth"))
}

func TestSummarizerRouting(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		chunked bool
	}{
		{"short general text", Document{Content: "A short transcript.", Kind: KindGeneral}, false},
		{"short audio", Document{Content: "A short transcript.", Kind: KindAudio}, false},
		{"short book", Document{Content: "A short book.", Kind: KindBook}, true},
		{"long video", Document{Content: strings.Repeat("long words here. ", 20), Kind: KindVideo}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := newFakeCompleter()
			fc.single = "single summary"
			s := NewSummarizer(fc, testSettings(), logger.NewNopLogger())

			assert.Equal(t, tt.chunked, s.UsesChunking(tt.doc))
			res := s.Summarize(context.Background(), tt.doc)
			require.True(t, res.Success, res.Error)
			if tt.chunked {
				assert.Equal(t, ModeChunked, res.Metadata.Mode)
				assert.Equal(t, 1, fc.count("combine"))
			} else {
				assert.Equal(t, ModeSingle, res.Metadata.Mode)
				assert.Equal(t, "single summary", res.Summary)
				assert.Equal(t, 0, fc.count("extract"))
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindBook, ParseKind("PDF"))
	assert.Equal(t, KindVideo, ParseKind("youtube"))
	assert.Equal(t, KindAudio, ParseKind("audio"))
	assert.Equal(t, KindGeneral, ParseKind(""))
}
