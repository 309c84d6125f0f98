// Package segmenter splits long documents into chunks that fit the
// completion backend's input budget, cutting at chapter or section headings
// first, then paragraphs, then sentences and only then raw characters.
//
// Chunks are an exact partition of the input: concatenating Text in Index
// order gives back the original string byte for byte.
package segmenter

import (
	"errors"
	"strings"
)

var ErrEmptyInput = errors.New("segmenter: input text is empty")

const (
	DefaultMaxChunks          = 100
	DefaultPreferredChunkSize = 11200
	DefaultMinChunkSize       = 5600

	// mergeCeiling bounds chunk growth when reducing the count below MaxChunks.
	mergeCeiling = 1.5
)

type Options struct {
	MaxChunks          int
	PreferredChunkSize int
	MinChunkSize       int
}

func DefaultOptions() Options {
	return Options{
		MaxChunks:          DefaultMaxChunks,
		PreferredChunkSize: DefaultPreferredChunkSize,
		MinChunkSize:       DefaultMinChunkSize,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.MaxChunks <= 0 {
		o.MaxChunks = d.MaxChunks
	}
	if o.PreferredChunkSize <= 0 {
		o.PreferredChunkSize = d.PreferredChunkSize
	}
	if o.MinChunkSize <= 0 {
		o.MinChunkSize = o.PreferredChunkSize / 2
	}
	if o.MinChunkSize > o.PreferredChunkSize {
		o.MinChunkSize = o.PreferredChunkSize
	}
	return o
}

// Chunk is text[Start:End] of the source document.
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"-"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

func (c Chunk) Len() int { return c.End - c.Start }

// span is a half-open byte range; newSection marks a heading boundary.
type span struct {
	start, end int
	newSection bool
}

func (s span) len() int { return s.end - s.start }

// Segment splits text into ordered chunks.
func Segment(text string, opts Options) ([]Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	opts = opts.normalized()

	if len(text) <= opts.PreferredChunkSize {
		return []Chunk{{Index: 0, Text: text, Start: 0, End: len(text)}}, nil
	}

	sections := findSections(text)
	target := TargetSize(len(text), len(sections), opts)

	var pieces []span
	for _, sec := range sections {
		parts := splitSpan(text, sec, target)
		parts[0].newSection = true
		pieces = append(pieces, parts...)
	}

	chunks := pack(pieces, target, opts.MinChunkSize)
	chunks = reduce(chunks, opts.MaxChunks, int(mergeCeiling*float64(opts.PreferredChunkSize)))

	out := make([]Chunk, len(chunks))
	for i, c := range chunks {
		out[i] = Chunk{Index: i, Text: text[c.start:c.end], Start: c.start, End: c.end}
	}
	return out, nil
}

// TargetSize is max(min, min(preferred, total / min(maxChunks, sections))).
func TargetSize(total, sections int, opts Options) int {
	opts = opts.normalized()
	divisor := sections
	if divisor > opts.MaxChunks {
		divisor = opts.MaxChunks
	}
	if divisor < 1 {
		divisor = 1
	}
	size := (total + divisor - 1) / divisor
	if size > opts.PreferredChunkSize {
		size = opts.PreferredChunkSize
	}
	if size < opts.MinChunkSize {
		size = opts.MinChunkSize
	}
	return size
}

// splitSpan cascades paragraph, sentence then character splitting until
// every piece fits target.
func splitSpan(text string, s span, target int) []span {
	if s.len() <= target {
		return []span{s}
	}
	var out []span
	for _, para := range cutAfter(text, s, paragraphBreak) {
		if para.len() <= target {
			out = append(out, para)
			continue
		}
		for _, sentence := range cutAfter(text, para, sentenceEnd) {
			if sentence.len() <= target {
				out = append(out, sentence)
				continue
			}
			out = append(out, splitChars(text, sentence, target)...)
		}
	}
	return out
}

// pack greedily joins consecutive pieces up to target. A heading starts a
// new chunk unless the chunk in progress is still below minSize.
func pack(pieces []span, target, minSize int) []span {
	var chunks []span
	cur := pieces[0]
	for _, p := range pieces[1:] {
		fits := p.end-cur.start <= target
		breakHere := p.newSection && cur.len() >= minSize
		if fits && !breakHere {
			cur.end = p.end
			continue
		}
		chunks = append(chunks, cur)
		cur = p
	}
	return append(chunks, cur)
}

// reduce merges the cheapest adjacent pair while over maxChunks and the
// merged chunk stays within ceiling.
func reduce(chunks []span, maxChunks, ceiling int) []span {
	for len(chunks) > maxChunks {
		best := -1
		bestLen := 0
		for i := 0; i+1 < len(chunks); i++ {
			combined := chunks[i+1].end - chunks[i].start
			if combined > ceiling {
				continue
			}
			if best == -1 || combined < bestLen {
				best, bestLen = i, combined
			}
		}
		if best == -1 {
			break
		}
		chunks[best].end = chunks[best+1].end
		chunks = append(chunks[:best+1], chunks[best+2:]...)
	}
	return chunks
}
