package segmenter

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prose(n int) string {
	sentences := []string{
		"The quick brown fox jumps over the lazy dog near the river bank. ",
		"Habits compound slowly and then all at once. ",
		"Every system is perfectly designed to get the results it gets! ",
		"Is the goal the outcome or the identity behind it? ",
	}
	var b strings.Builder
	for i := 0; b.Len() < n; i++ {
		b.WriteString(sentences[i%len(sentences)])
		if i%7 == 6 {
			b.WriteString("\n\n")
		}
	}
	return b.String()[:n]
}

func chapters(count, bodyLen int) string {
	var b strings.Builder
	for i := 1; i <= count; i++ {
		fmt.Fprintf(&b, "Chapter %d\n\n", i)
		b.WriteString(prose(bodyLen))
		b.WriteString("\n")
	}
	return b.String()
}

func joined(chunks []Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Text)
	}
	return b.String()
}

func TestSegmentReconstructsInput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"short", "A short note."},
		{"plain prose", prose(50000)},
		{"chapters", chapters(6, 9000)},
		{"single giant word", strings.Repeat("x", 40000)},
		{"multibyte without spaces", strings.Repeat("é", 20000)},
		{"words without punctuation", strings.Repeat("word ", 8000)},
		{"trailing blank lines", prose(30000) + "\n\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Segment(tt.text, DefaultOptions())
			require.NoError(t, err)
			require.NotEmpty(t, chunks)

			assert.Equal(t, tt.text, joined(chunks))
			prevEnd := 0
			for i, c := range chunks {
				assert.Equal(t, i, c.Index)
				assert.Equal(t, prevEnd, c.Start)
				assert.Equal(t, tt.text[c.Start:c.End], c.Text)
				assert.NotEmpty(t, c.Text)
				assert.True(t, utf8.ValidString(c.Text), "chunk %d splits a rune", i)
				prevEnd = c.End
			}
			assert.Equal(t, len(tt.text), prevEnd)
		})
	}
}

func TestSegmentShortTextIsSingleChunk(t *testing.T) {
	text := prose(DefaultPreferredChunkSize)
	chunks, err := Segment(text, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
}

func TestSegmentRejectsEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   \n\t  "} {
		_, err := Segment(text, DefaultOptions())
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
}

func TestSegmentFiftyThousandCharacters(t *testing.T) {
	opts := DefaultOptions()
	chunks, err := Segment(prose(50000), opts)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(chunks), 5)
	assert.LessOrEqual(t, len(chunks), opts.MaxChunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, c.Len(), opts.PreferredChunkSize)
	}
}

func TestSegmentCutsAtHeadings(t *testing.T) {
	text := chapters(5, 7000)
	chunks, err := Segment(text, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, chunks, 5)
	for i, c := range chunks {
		assert.True(t, strings.HasPrefix(c.Text, fmt.Sprintf("Chapter %d\n", i+1)), "chunk %d starts with %q", i, c.Text[:20])
	}
}

func TestSegmentMergesDownToMaxChunks(t *testing.T) {
	text := chapters(4, 5000)
	opts := Options{MaxChunks: 2, PreferredChunkSize: 11200, MinChunkSize: 1000}

	chunks, err := Segment(text, opts)
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, text, joined(chunks))
	for _, c := range chunks {
		assert.LessOrEqual(t, c.Len(), int(1.5*float64(opts.PreferredChunkSize)))
	}
}

func TestSegmentStopsMergingAtCeiling(t *testing.T) {
	opts := Options{MaxChunks: 1, PreferredChunkSize: 11200, MinChunkSize: 5600}
	chunks, err := Segment(prose(60000), opts)
	require.NoError(t, err)

	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, c.Len(), int(1.5*float64(opts.PreferredChunkSize)))
	}
}

func TestSegmentCharacterFallbackBreaksOnWhitespace(t *testing.T) {
	text := strings.Repeat("word ", 8000)
	chunks, err := Segment(text, DefaultOptions())
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(c.Text, " "), "chunk %d ends mid-word", c.Index)
	}
}

func TestTargetSize(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		total, sections, want int
	}{
		{50000, 1, 11200},
		{50000, 10, 5600},
		{60000, 8, 7500},
		{2000000, 500, 11200},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TargetSize(tt.total, tt.sections, opts), "total=%d sections=%d", tt.total, tt.sections)
	}
}

func TestIsHeading(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Chapter 1", true},
		{"CHAPITRE III - Les habitudes", true},
		{"Part Two: Make It Obvious", true},
		{"2.3 Identity based habits", true},
		{"## The Four Laws", true},
		{"THE SURPRISING POWER OF TINY HABITS", true},
		{"Part of the reason is simple.", false},
		{"Bibliography", false},
		{"APPENDIX", false},
		{"INDEX OF TERMS", false},
		{"ok", false},
		{"just a normal lowercase line of text", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHeading(tt.line))
		})
	}
}
