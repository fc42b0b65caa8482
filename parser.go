package fainder

import (
	"regexp"
	"strconv"
	"strings"
)

// Predicate shapes accepted inside COLUMN(...).
var (
	namePattern       = regexp.MustCompile(`(?i)^\s*NAME\(([^;]+);(\d+)\)\s*$`)
	percentilePattern = regexp.MustCompile(`(?i)^\s*PERCENTILE\((\d*\.?\d+);(ge|gt|le|lt);(\d*\.?\d+)\)\s*$`)
)

// Predicate name prefixes that select the single-predicate forms.
const (
	prefixName       = "NAME"
	prefixPercentile = "PERCENTILE"
)

// ParseQuery splits a query into structured COLUMN(...) predicates and the
// residual text meant for keyword search.
//
// ParseQuery never fails. A clause it cannot interpret, whether unbalanced or
// not matching a known predicate, is kept verbatim in RemainingQuery.
func ParseQuery(query string) ParseResult {
	return ResultFromSegments(Segments(query))
}

// ResultFromSegments assembles a ParseResult from segments returned by
// Segments, so callers holding the segments need not scan the query again.
func ResultFromSegments(segs []Segment) ParseResult {
	terms := []SearchTerm{}

	var remaining []string

	for _, seg := range segs {
		switch seg.Kind {
		case SegmentTerm:
			terms = append(terms, seg.Term)
		case SegmentOpaque:
			remaining = append(remaining, seg.Text)
		case SegmentAnd:
		}
	}

	return ParseResult{
		Terms:          terms,
		RemainingQuery: strings.TrimSpace(strings.Join(remaining, separatorAnd)),
	}
}

// Segments returns the classified pieces of a query in scan order. Offsets
// refer to the query with surrounding whitespace trimmed.
func Segments(query string) []Segment {
	var segs []Segment

	scan(query, func(seg Segment) {
		segs = append(segs, seg)
	})

	return segs
}

// scan walks the trimmed query and reports every AND operator, recognized
// clause and non-empty opaque fragment to emit.
func scan(query string, emit func(Segment)) {
	if query == "" {
		return
	}

	s := newQueryScanner(strings.TrimSpace(query))

	for !s.eof() {
		s.skipSpace()

		start := s.offset

		if s.atKeyword(keywordAnd) {
			s.offset += len(keywordAnd)
			emit(Segment{Kind: SegmentAnd, Span: Span{start, s.offset}, Text: s.input[start:s.offset]})

			continue
		}

		if s.atKeyword(keywordColumn) {
			if term, end, ok := s.columnClause(); ok {
				s.offset = end + 1
				emit(Segment{Kind: SegmentTerm, Span: Span{start, s.offset}, Text: s.input[start:s.offset], Term: term})

				continue
			}
		}

		fragment, span := s.opaque()
		if fragment != "" {
			emit(Segment{Kind: SegmentOpaque, Span: span, Text: fragment})
		}
	}
}

// columnClause tries to read a COLUMN(...) clause at the cursor without
// moving it. end is the index of the clause's closing parenthesis.
//
//nolint:ireturn // SearchTerm is a closed sum type.
func (s *queryScanner) columnClause() (SearchTerm, int, bool) {
	open := s.indexFrom("(")
	if open < 0 {
		return nil, 0, false
	}

	content, end, ok := extractBalanced(s.input, open)
	if !ok {
		return nil, 0, false
	}

	term, ok := classifyColumnContent(content)
	if !ok {
		return nil, 0, false
	}

	return term, end, true
}

//nolint:ireturn // SearchTerm is a closed sum type.
func classifyColumnContent(content string) (SearchTerm, bool) {
	if namePart, percentilePart, found := strings.Cut(content, separatorAnd); found {
		name, ok := matchName(namePart)
		if !ok {
			return nil, false
		}

		pct, ok := matchPercentile(percentilePart)
		if !ok {
			return nil, false
		}

		return CombinedTerm{
			Column:     name.Column,
			Threshold:  name.Threshold,
			Percentile: pct.Percentile,
			Comparison: pct.Comparison,
			Value:      pct.Value,
		}, true
	}

	switch {
	case strings.HasPrefix(content, prefixName):
		if name, ok := matchName(content); ok {
			return name, true
		}
	case strings.HasPrefix(content, prefixPercentile):
		if pct, ok := matchPercentile(content); ok {
			return pct, true
		}
	}

	return nil, false
}

func matchName(s string) (ColumnTerm, bool) {
	m := namePattern.FindStringSubmatch(s)
	if m == nil {
		return ColumnTerm{}, false
	}

	threshold, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return ColumnTerm{}, false
	}

	return ColumnTerm{Column: m[1], Threshold: threshold}, true
}

func matchPercentile(s string) (PercentileTerm, bool) {
	m := percentilePattern.FindStringSubmatch(s)
	if m == nil {
		return PercentileTerm{}, false
	}

	percentile, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return PercentileTerm{}, false
	}

	cmp, err := ParseComparison(m[2])
	if err != nil {
		return PercentileTerm{}, false
	}

	value, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return PercentileTerm{}, false
	}

	return PercentileTerm{Percentile: percentile, Comparison: cmp, Value: value}, true
}
