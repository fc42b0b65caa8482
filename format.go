package fainder

import (
	"strconv"
	"strings"
)

// Span is a half-open byte range [Start, End) in a trimmed query.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end"   yaml:"end"`
}

// Len returns the number of bytes covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// SegmentKind classifies a piece of a scanned query.
type SegmentKind int

// SegmentKind constants.
const (
	// SegmentOpaque is text passed through to keyword search.
	SegmentOpaque SegmentKind = iota
	// SegmentAnd is a conjunction operator consumed by the scanner.
	SegmentAnd
	// SegmentTerm is a recognized COLUMN(...) clause.
	SegmentTerm
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentOpaque:
		return "opaque"
	case SegmentAnd:
		return "and"
	case SegmentTerm:
		return "term"
	default:
		return "unknown"
	}
}

// Segment is one classified piece of a query.
type Segment struct {
	Kind SegmentKind
	Span Span
	// Text is the source text; opaque fragments are trimmed.
	Text string
	// Term is set for SegmentTerm only.
	Term SearchTerm
}

// MalformedClause reports whether an opaque segment starts like a COLUMN
// clause, which means the clause was written but not understood.
func (s Segment) MalformedClause() bool {
	return s.Kind == SegmentOpaque &&
		len(s.Text) >= len(keywordColumn) &&
		strings.EqualFold(s.Text[:len(keywordColumn)], keywordColumn)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (t ColumnTerm) predicate() string {
	return "NAME(" + t.Column + ";" + formatNumber(t.Threshold) + ")"
}

func (t PercentileTerm) predicate() string {
	return "PERCENTILE(" + formatNumber(t.Percentile) + ";" + string(t.Comparison) + ";" + formatNumber(t.Value) + ")"
}

// String renders the term back into query syntax, e.g. COLUMN(NAME(age;1)).
func (t ColumnTerm) String() string {
	return keywordColumn + "(" + t.predicate() + ")"
}

// String renders the term back into query syntax.
func (t PercentileTerm) String() string {
	return keywordColumn + "(" + t.predicate() + ")"
}

// String renders the term back into query syntax.
func (t CombinedTerm) String() string {
	return keywordColumn + "(" + t.NameTerm().predicate() + separatorAnd + t.PercentileTerm().predicate() + ")"
}

// Query renders the result as a query string: every term, then the
// remaining query, joined by " AND ". Parsing the output yields an equal
// result. The remaining query goes last so a trailing AND kept as keyword
// text stays at the end of the input.
func (r ParseResult) Query() string {
	parts := make([]string, 0, len(r.Terms)+1)
	for _, t := range r.Terms {
		parts = append(parts, t.String())
	}

	if r.RemainingQuery != "" {
		parts = append(parts, r.RemainingQuery)
	}

	return strings.Join(parts, separatorAnd)
}

// FormatQuery normalizes a query: comparisons are lowercased, numbers
// printed in shortest form, and separators collapsed.
func FormatQuery(query string) string {
	return ParseQuery(query).Query()
}
