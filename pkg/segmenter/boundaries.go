package segmenter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	headingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(chapitre|chapter|partie|part|section|principe|principle|règle|rule|loi|law|leçon|lesson|livre|book)\s+([0-9]+|[ivxlcdm]+|one|two|three|four|five|six|seven|eight|nine|ten|first|second|third|un|une|deux|trois|quatre|cinq|sept|huit|neuf|dix|premier|première)\b`),
		regexp.MustCompile(`^([0-9]+(\.[0-9]+)*\.?|[IVXLCDM]+\.)\s+\p{Lu}`),
		regexp.MustCompile(`^#{1,6}\s+\S`),
	}
	// Case sensitive on purpose: a shouted line, not a lowercase one.
	allCapsHeading = regexp.MustCompile(`^[\p{Lu}0-9][\p{Lu}0-9\s\-:'’,.!?]+$`)
	excludedHeading = regexp.MustCompile(`(?i)(bibliograph|références?|references|annexe|appendix|index)`)

	paragraphBreak = regexp.MustCompile(`\n[ \t\r]*\n\s*`)
	sentenceEnd    = regexp.MustCompile(`[.!?…]+["'»”’)\]]*\s+`)
)

// IsHeading reports whether a single line looks like a chapter or section title.
func IsHeading(line string) bool {
	line = strings.TrimSpace(line)
	if len(line) <= 5 || len(line) >= 200 {
		return false
	}
	if excludedHeading.MatchString(line) {
		return false
	}
	for _, re := range headingPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return allCapsHeading.MatchString(line) && countLetters(line) >= 4
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// findSections returns spans starting at each heading line. Text before the
// first heading forms its own section.
func findSections(text string) []span {
	var starts []int
	offset := 0
	for offset < len(text) {
		end := strings.IndexByte(text[offset:], '\n')
		lineEnd := len(text)
		if end >= 0 {
			lineEnd = offset + end
		}
		if offset > 0 && IsHeading(text[offset:lineEnd]) {
			starts = append(starts, offset)
		}
		offset = lineEnd + 1
	}

	sections := make([]span, 0, len(starts)+1)
	prev := 0
	for _, s := range starts {
		sections = append(sections, span{start: prev, end: s})
		prev = s
	}
	return append(sections, span{start: prev, end: len(text)})
}

// cutAfter splits s after every match of re, keeping separators attached
// to the preceding piece.
func cutAfter(text string, s span, re *regexp.Regexp) []span {
	segment := text[s.start:s.end]
	var out []span
	prev := 0
	for _, m := range re.FindAllStringIndex(segment, -1) {
		if m[1] <= prev || m[1] >= len(segment) {
			continue
		}
		out = append(out, span{start: s.start + prev, end: s.start + m[1]})
		prev = m[1]
	}
	return append(out, span{start: s.start + prev, end: s.end})
}

// splitChars cuts s into windows of at most size bytes, preferring to break
// right after whitespace or punctuation in the last fifth of each window.
func splitChars(text string, s span, size int) []span {
	var out []span
	start := s.start
	for s.end-start > size {
		limit := start + size
		cut := -1
		floor := start + size*4/5
		for i := limit; i > floor; i-- {
			if isBreak(text[i-1]) {
				cut = i
				break
			}
		}
		if cut == -1 {
			cut = limit
			for cut > start+1 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		out = append(out, span{start: start, end: cut})
		start = cut
	}
	return append(out, span{start: start, end: s.end})
}

func isBreak(b byte) bool {
	switch b {
	case ' ', '\n', '\t', '\r', '.', ',', ';', ':', '!', '?', ')', ']', '-':
		return true
	}
	return false
}
