package report

import (
	"strings"

	"github.com/fainder-search/fainder"
)

// Highlight renders the trimmed query with each segment styled by kind.
// Recognized clauses use Term, operators Operator, and opaque text Opaque,
// or Malformed when it starts like a COLUMN clause.
func Highlight(query string, styles *Styles) string {
	trimmed := strings.TrimSpace(query)

	var b strings.Builder

	pos := 0

	for _, seg := range fainder.Segments(query) {
		if seg.Span.Start > pos {
			b.WriteString(styles.Operator.Render(trimmed[pos:seg.Span.Start]))
		}

		text := trimmed[seg.Span.Start:seg.Span.End]

		switch {
		case seg.Kind == fainder.SegmentTerm:
			b.WriteString(styles.Term.Render(text))
		case seg.Kind == fainder.SegmentAnd:
			b.WriteString(styles.Operator.Render(text))
		case seg.MalformedClause():
			b.WriteString(styles.Malformed.Render(text))
		default:
			b.WriteString(styles.Opaque.Render(text))
		}

		pos = seg.Span.End
	}

	if pos < len(trimmed) {
		b.WriteString(styles.Operator.Render(trimmed[pos:]))
	}

	return b.String()
}
