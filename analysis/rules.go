package analysis

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fainder-search/fainder"
)

// Rule is one check run over an analyzed query.
type Rule struct {
	// Name is the diagnostic code.
	Name string

	// Doc is a one line description of the check.
	Doc string

	// Severity of every diagnostic the rule reports.
	Severity Severity

	// Run appends the rule's diagnostics to q.
	Run func(q *AnalyzedQuery)
}

// DefaultRules returns every built-in rule.
func DefaultRules() []*Rule {
	return []*Rule{
		// Error-level checks.
		MalformedColumnRule,
		PercentileRangeRule,

		// Warning-level checks.
		DanglingAndRule,
		DuplicateTermRule,

		// Hint-level checks.
		SwallowedAndRule,
	}
}

// ----------------------------------------------------------------------------
// Rule: malformed-column
// ----------------------------------------------------------------------------

// MalformedColumnRule reports COLUMN clauses left in the keyword text.
var MalformedColumnRule = &Rule{
	Name:     "malformed-column",
	Doc:      "Reports COLUMN(...) clauses that were not recognized and fall through to keyword search.",
	Severity: SeverityError,
	Run:      checkMalformedColumns,
}

func checkMalformedColumns(q *AnalyzedQuery) {
	for _, seg := range q.Segments {
		if seg.MalformedClause() {
			q.report(seg.Span, SeverityError, "malformed-column", "unparsed COLUMN clause: "+seg.Text)
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: percentile-range
// ----------------------------------------------------------------------------

// PercentileRangeRule reports percentiles outside [0, 1].
var PercentileRangeRule = &Rule{
	Name:     "percentile-range",
	Doc:      "Reports percentile predicates whose percentile is not between 0 and 1.",
	Severity: SeverityError,
	Run:      checkPercentileRange,
}

func checkPercentileRange(q *AnalyzedQuery) {
	for _, seg := range q.Segments {
		if seg.Kind != fainder.SegmentTerm {
			continue
		}

		var p float64

		switch t := seg.Term.(type) {
		case fainder.PercentileTerm:
			p = t.Percentile
		case fainder.CombinedTerm:
			p = t.Percentile
		default:
			continue
		}

		if p < 0 || p > 1 {
			q.report(seg.Span, SeverityError, "percentile-range",
				"percentile "+strconv.FormatFloat(p, 'f', -1, 64)+" is outside [0, 1]")
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: dangling-and
// ----------------------------------------------------------------------------

// DanglingAndRule reports AND operators with nothing on one side.
var DanglingAndRule = &Rule{
	Name:     "dangling-and",
	Doc:      "Reports a leading AND, which is dropped, and a trailing AND, which becomes keyword text.",
	Severity: SeverityWarning,
	Run:      checkDanglingAnd,
}

func checkDanglingAnd(q *AnalyzedQuery) {
	if len(q.Segments) == 0 {
		return
	}

	if first := q.Segments[0]; first.Kind == fainder.SegmentAnd && !swallowed(q, first) {
		q.report(first.Span, SeverityWarning, "dangling-and", "leading AND is ignored")
	}

	last := q.Segments[len(q.Segments)-1]
	if upper := strings.ToUpper(last.Text); last.Kind == fainder.SegmentOpaque &&
		(upper == "AND" || strings.HasSuffix(upper, " AND")) {
		q.report(last.Span, SeverityWarning, "dangling-and", "trailing AND is searched as a keyword")
	}
}

// ----------------------------------------------------------------------------
// Rule: duplicate-term
// ----------------------------------------------------------------------------

// DuplicateTermRule reports terms that repeat an earlier term.
var DuplicateTermRule = &Rule{
	Name:     "duplicate-term",
	Doc:      "Reports COLUMN terms identical to an earlier term in the same query.",
	Severity: SeverityWarning,
	Run:      checkDuplicateTerms,
}

func checkDuplicateTerms(q *AnalyzedQuery) {
	seen := make(map[string]bool)

	for _, seg := range q.Segments {
		if seg.Kind != fainder.SegmentTerm {
			continue
		}

		key := seg.Term.String()
		if seen[key] {
			q.report(seg.Span, SeverityWarning, "duplicate-term", "duplicate term: "+key)

			continue
		}

		seen[key] = true
	}
}

// ----------------------------------------------------------------------------
// Rule: swallowed-and
// ----------------------------------------------------------------------------

// SwallowedAndRule reports AND operators cut from the front of a longer word.
var SwallowedAndRule = &Rule{
	Name:     "swallowed-and",
	Doc:      "Reports words such as ANDROID whose leading AND was read as an operator.",
	Severity: SeverityHint,
	Run:      checkSwallowedAnd,
}

func checkSwallowedAnd(q *AnalyzedQuery) {
	for _, seg := range q.Segments {
		if seg.Kind != fainder.SegmentAnd || !swallowed(q, seg) {
			continue
		}

		word := q.Trimmed[seg.Span.Start:]
		if i := strings.IndexFunc(word, unicode.IsSpace); i >= 0 {
			word = word[:i]
		}

		q.report(seg.Span, SeverityHint, "swallowed-and", fmt.Sprintf("AND at the start of %q is read as an operator", word))
	}
}

// swallowed reports whether an AND segment runs straight into more text.
func swallowed(q *AnalyzedQuery, seg fainder.Segment) bool {
	if seg.Span.End >= len(q.Trimmed) {
		return false
	}

	r, _ := utf8.DecodeRuneInString(q.Trimmed[seg.Span.End:])

	return !unicode.IsSpace(r)
}
