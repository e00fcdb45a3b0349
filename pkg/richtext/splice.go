package richtext

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// urlPattern stops at angle brackets so that a URL already wrapped as <url>
// is matched without its closing bracket.
var urlPattern = regexp.MustCompile(`https?://[^\s<>]+`)

// SpliceCandidate replaces span in text with the token for candidate and
// returns the new text and the cursor just after the token.
//
// span must have been scanned from this exact text. When it no longer
// lines up (offsets out of range, different characters under the span, or
// a candidate of another kind) the text is returned unchanged with ok set
// to false.
func SpliceCandidate(text string, span TriggerSpan, candidate Candidate) (string, int, bool) {
	runes := []rune(text)
	end := span.End()
	noop := func() (string, int, bool) {
		return text, clamp(end, 0, len(runes)), false
	}

	if !span.Active() || candidate == nil || candidate.Kind() != span.Kind {
		return noop()
	}
	if span.Start < 0 || end > len(runes) {
		return noop()
	}
	if span.Trigger != 0 && runes[span.Start] != span.Trigger {
		return noop()
	}
	if string(runes[span.Start+1:end]) != span.Query {
		return noop()
	}

	token, ok := FormatCandidate(candidate)
	if !ok {
		return noop()
	}

	before := string(runes[:span.Start])
	after := string(runes[end:])
	cursor := span.Start + utf8.RuneCountInString(token)
	return before + token + after, cursor, true
}

// LinkifyPastedText wraps every bare http or https URL in angle brackets.
// URLs that are already wrapped are left alone, so applying it twice gives
// the same result as applying it once.
func LinkifyPastedText(text string) string {
	matches := urlPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + 2*len(matches))
	last := 0
	for _, match := range matches {
		start, end := match[0], match[1]
		b.WriteString(text[last:start])
		if isBracketed(text, start, end) {
			b.WriteString(text[start:end])
		} else {
			b.WriteByte('<')
			b.WriteString(text[start:end])
			b.WriteByte('>')
		}
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

func isBracketed(text string, start, end int) bool {
	return start > 0 && text[start-1] == '<' && end < len(text) && text[end] == '>'
}

// InsertAtCursor inserts text at the buffer's cursor and moves the cursor
// to the end of the inserted text.
func InsertAtCursor(buffer InputBuffer, text string) InputBuffer {
	runes := []rune(buffer.Text)
	cursor := clamp(buffer.Cursor, 0, len(runes))
	inserted := []rune(text)

	result := make([]rune, 0, len(runes)+len(inserted))
	result = append(result, runes[:cursor]...)
	result = append(result, inserted...)
	result = append(result, runes[cursor:]...)

	return InputBuffer{Text: string(result), Cursor: cursor + len(inserted)}
}
