package fainder

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Keywords and separators recognized by the scanner.
const (
	keywordAnd    = "AND"
	keywordColumn = "COLUMN"
	separatorAnd  = " AND "
)

// queryScanner is a cursor over an immutable query string.
//
// Offsets are byte offsets. Keywords are ASCII, so comparing byte slices
// against them case-insensitively is safe even next to multi-byte runes.
type queryScanner struct {
	input  string
	offset int
}

func newQueryScanner(input string) *queryScanner {
	return &queryScanner{input: input}
}

func (s *queryScanner) eof() bool {
	return s.offset >= len(s.input)
}

func (s *queryScanner) skipSpace() {
	for !s.eof() {
		r, size := utf8.DecodeRuneInString(s.input[s.offset:])
		if !unicode.IsSpace(r) {
			return
		}

		s.offset += size
	}
}

// atKeyword reports whether kw starts at the cursor, ignoring case.
//
// The guard is strict: a keyword that ends exactly at the end of the input
// is not recognized, and no word boundary is required after it. Both quirks
// decide how queries like "ANDROID" or a trailing "AND" are split, so they
// are kept as is.
func (s *queryScanner) atKeyword(kw string) bool {
	end := s.offset + len(kw)
	if end >= len(s.input) {
		return false
	}

	return strings.EqualFold(s.input[s.offset:end], kw)
}

// indexFrom returns the absolute index of the next sub at or after the
// cursor, or -1.
func (s *queryScanner) indexFrom(sub string) int {
	i := strings.Index(s.input[s.offset:], sub)
	if i < 0 {
		return -1
	}

	return s.offset + i
}

// opaque consumes one fragment up to the next " AND " separator (or the end
// of input) and returns it trimmed, with the span it was cut from.
func (s *queryScanner) opaque() (string, Span) {
	end := s.indexFrom(separatorAnd)
	if end < 0 {
		end = len(s.input)
	}

	span := Span{Start: s.offset, End: end}
	fragment := strings.TrimSpace(s.input[s.offset:end])
	s.offset = min(end+len(separatorAnd), len(s.input))

	return fragment, span
}

// extractBalanced returns the text strictly inside the parenthesis opened at
// open and the absolute index of its matching ')'. Nested pairs stay in the
// content verbatim. ok is false when the input ends before the pair closes.
func extractBalanced(input string, open int) (content string, end int, ok bool) {
	depth := 1

	for i := open + 1; i < len(input); i++ {
		switch input[i] {
		case '(':
			depth++
		case ')':
			depth--
		}

		if depth == 0 {
			return input[open+1 : i], i, true
		}
	}

	return "", -1, false
}
