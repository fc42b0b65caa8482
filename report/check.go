package report

import (
	"strings"

	"github.com/fainder-search/fainder"
	"github.com/fainder-search/fainder/analysis"
)

// commentPrefix starts a comment line in a query file.
const commentPrefix = "#"

var analyzer = analysis.NewAnalyzer()

// LineResult is the parse of one query line.
type LineResult struct {
	Line   int                 `json:"line"   yaml:"line"`
	Query  string              `json:"query"  yaml:"query"`
	Result fainder.ParseResult `json:"result" yaml:"result"`

	// Malformed lists COLUMN clauses that were left in the remaining query.
	Malformed []string `json:"malformed,omitempty" yaml:"malformed,omitempty"`

	// Diagnostics holds every finding of the query analyzer.
	Diagnostics []analysis.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// FileResult holds every query line of one file.
type FileResult struct {
	Path  string       `json:"path"  yaml:"path"`
	Lines []LineResult `json:"lines" yaml:"lines"`
}

// CheckSummary aggregates the files of a check run.
type CheckSummary struct {
	Files []FileResult `json:"files" yaml:"files"`
}

// CheckFile parses every query line of data. Blank lines and lines starting
// with # are skipped; line numbers are 1-based.
func CheckFile(path string, data []byte) FileResult {
	fr := FileResult{Path: path, Lines: []LineResult{}}

	for i, line := range strings.Split(string(data), "\n") {
		query := strings.TrimSpace(line)
		if query == "" || strings.HasPrefix(query, commentPrefix) {
			continue
		}

		fr.Lines = append(fr.Lines, CheckQuery(i+1, query))
	}

	return fr
}

// CheckQuery parses and analyzes a single query.
func CheckQuery(line int, query string) LineResult {
	q := analyzer.Analyze(query)

	lr := LineResult{
		Line:   line,
		Query:  query,
		Result: q.Result,
	}

	for _, seg := range q.Segments {
		if seg.MalformedClause() {
			lr.Malformed = append(lr.Malformed, seg.Text)
		}
	}

	if len(q.Diagnostics) > 0 {
		lr.Diagnostics = q.Diagnostics
	}

	return lr
}

// Lines returns the number of checked queries.
func (s *CheckSummary) Lines() int {
	n := 0
	for _, f := range s.Files {
		n += len(f.Lines)
	}

	return n
}

// Terms returns the number of recognized terms across all queries.
func (s *CheckSummary) Terms() int {
	n := 0
	for _, f := range s.Files {
		for _, l := range f.Lines {
			n += len(l.Result.Terms)
		}
	}

	return n
}

// Malformed returns the number of queries with at least one malformed clause.
func (s *CheckSummary) Malformed() int {
	n := 0
	for _, f := range s.Files {
		for _, l := range f.Lines {
			if len(l.Malformed) > 0 {
				n++
			}
		}
	}

	return n
}

// Ok reports whether no query contains a malformed clause.
func (s *CheckSummary) Ok() bool {
	return s.Malformed() == 0
}
