// Package analysis reports diagnostics for search queries.
//
// The parser never fails: anything it cannot interpret silently becomes
// keyword text. Analysis makes those outcomes visible by running a set of
// rules over the classified segments and the parse result.
package analysis

import (
	"strings"

	"github.com/fainder-search/fainder"
)

// Severity ranks a diagnostic.
type Severity int

// Severity levels, most severe first.
const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diagnostic is a finding about part of a query.
type Diagnostic struct {
	// Span is relative to the trimmed query.
	Span     fainder.Span `json:"span"     yaml:"span"`
	Severity Severity     `json:"severity" yaml:"severity"`
	Code     string       `json:"code"     yaml:"code"`
	Message  string       `json:"message"  yaml:"message"`
}

// AnalyzedQuery holds a query, its parse and the diagnostics rules produced.
type AnalyzedQuery struct {
	Query string
	// Trimmed is the query with surrounding whitespace removed; segment
	// spans index into it.
	Trimmed     string
	Result      fainder.ParseResult
	Segments    []fainder.Segment
	Diagnostics []Diagnostic
}

// HasErrors reports whether any diagnostic is an error.
func (q *AnalyzedQuery) HasErrors() bool {
	return len(q.Errors()) > 0
}

// Errors returns the error-level diagnostics.
func (q *AnalyzedQuery) Errors() []Diagnostic {
	var errs []Diagnostic

	for _, d := range q.Diagnostics {
		if d.Severity == SeverityError {
			errs = append(errs, d)
		}
	}

	return errs
}

func (q *AnalyzedQuery) report(span fainder.Span, severity Severity, code, msg string) {
	q.Diagnostics = append(q.Diagnostics, Diagnostic{
		Span:     span,
		Severity: severity,
		Code:     code,
		Message:  msg,
	})
}

// Analyzer runs rules over queries. It is safe for concurrent use.
type Analyzer struct {
	rules []*Rule
}

// NewAnalyzer creates an analyzer with DefaultRules.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithRules(DefaultRules())
}

// NewAnalyzerWithRules creates an analyzer running only rules.
func NewAnalyzerWithRules(rules []*Rule) *Analyzer {
	return &Analyzer{rules: rules}
}

// Analyze parses query and runs every rule on it.
func (a *Analyzer) Analyze(query string) *AnalyzedQuery {
	segs := fainder.Segments(query)

	q := &AnalyzedQuery{
		Query:       query,
		Trimmed:     strings.TrimSpace(query),
		Result:      fainder.ResultFromSegments(segs),
		Segments:    segs,
		Diagnostics: []Diagnostic{},
	}

	for _, rule := range a.rules {
		rule.Run(q)
	}

	return q
}
