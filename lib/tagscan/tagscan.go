// Package tagscan finds {{...}} template tags in layout markup.
//
// A tag opens with "{{", continues with a non-whitespace character and ends
// at the first following "}}" on the same line. Scanning is a single
// left-to-right pass; an opener without a closer is skipped and scanning
// resumes at the next byte.
package tagscan

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span locates one match in the scanned text. End is exclusive.
type Span struct {
	Start int
	End   int
}

// Text returns the matched text within src.
func (s Span) Text(src string) string {
	return src[s.Start:s.End]
}

// Scan returns the spans of every tag in src in order of appearance.
func Scan(src string) []Span {
	var spans []Span
	for i := 0; i+2 <= len(src); {
		open := strings.Index(src[i:], "{{")
		if open < 0 {
			break
		}
		start := i + open
		if end, ok := closeAt(src, start); ok {
			spans = append(spans, Span{Start: start, End: end})
			i = end
			continue
		}
		i = start + 1
	}
	return spans
}

// closeAt matches a tag opening at start and returns the end of the match.
func closeAt(src string, start int) (int, bool) {
	pos := start + 2
	if pos >= len(src) {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(src[pos:])
	if unicode.IsSpace(r) {
		return 0, false
	}
	pos += size
	for pos < len(src) {
		r, size = utf8.DecodeRuneInString(src[pos:])
		if isLineBreak(r) {
			return 0, false
		}
		if r == '}' && pos+1 < len(src) && src[pos+1] == '}' {
			return pos + 2, true
		}
		pos += size
	}
	return 0, false
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

// Replace rebuilds src with each tag replaced by fn(match). The output is
// assembled in one builder regardless of the number of matches.
func Replace(src string, fn func(match string) string) string {
	spans := Scan(src)
	if len(spans) == 0 {
		return src
	}
	var sb strings.Builder
	sb.Grow(len(src))
	last := 0
	for _, sp := range spans {
		sb.WriteString(src[last:sp.Start])
		sb.WriteString(fn(sp.Text(src)))
		last = sp.End
	}
	sb.WriteString(src[last:])
	return sb.String()
}
