// Package report renders parse results, search responses, local evaluations
// and check summaries as text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fainder-search/fainder"
	"github.com/fainder-search/fainder/analysis"
	"github.com/fainder-search/fainder/client"
	"github.com/fainder-search/fainder/eval"
)

// Formatter renders command output.
type Formatter interface {
	Parse(query string, r fainder.ParseResult) error
	Search(resp *client.Response) error
	Matches(query string, matches []eval.Match) error
	Check(summary *CheckSummary) error
	Cache(info *client.CacheInfo) error
}

// NewFormatter returns the formatter registered under name, writing to w.
// Text output is coloured when w is a terminal.
//
//nolint:ireturn // callers pick the formatter at runtime.
func NewFormatter(name string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", fainder.FormatText:
		return NewTextFormatter(w, StylesFor(w)), nil
	case fainder.FormatJSON:
		return NewJSONFormatter(w), nil
	case fainder.FormatYAML:
		return NewYAMLFormatter(w), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// -----------------------------------------------------------------------------
// Text Formatter
// -----------------------------------------------------------------------------

// TextFormatter prints human readable output.
type TextFormatter struct {
	w      io.Writer
	styles *Styles
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(w io.Writer, styles *Styles) *TextFormatter {
	return &TextFormatter{w: w, styles: styles}
}

// Parse prints the highlighted query, each term and the remaining query.
func (t *TextFormatter) Parse(query string, r fainder.ParseResult) error {
	s := t.styles

	_, _ = fmt.Fprintf(t.w, "%s %s\n", s.Header.Render("query:"), Highlight(query, s))
	_, _ = fmt.Fprintf(t.w, "%s %d\n", s.Header.Render("terms:"), len(r.Terms))

	for i, term := range r.Terms {
		_, _ = fmt.Fprintf(t.w, "  %d. %s %s\n", i+1, s.Kind.Render(fmt.Sprintf("%-10s", term.Kind())), s.Term.Render(term.String()))
	}

	remaining := r.RemainingQuery
	if remaining == "" {
		remaining = s.Dim.Render("(none)")
	}

	_, err := fmt.Fprintf(t.w, "%s %s\n", s.Header.Render("remaining:"), remaining)

	return err
}

// Search prints one line per result followed by paging information.
func (t *TextFormatter) Search(resp *client.Response) error {
	s := t.styles

	_, _ = fmt.Fprintf(t.w, "%s %s\n", s.Header.Render("query:"), resp.Query)

	for i, result := range resp.Results {
		_, _ = fmt.Fprintf(t.w, "  %d. %s\n", i+1, describeResult(result))
	}

	_, err := fmt.Fprintf(t.w, "%s\n", s.Dim.Render(fmt.Sprintf(
		"%d results, page %d of %d, %.3fs",
		resp.ResultCount, resp.Page, resp.TotalPages, resp.SearchTime,
	)))

	return err
}

// Matches prints every matching dataset with the columns satisfying each term.
func (t *TextFormatter) Matches(query string, matches []eval.Match) error {
	s := t.styles

	_, _ = fmt.Fprintf(t.w, "%s %s\n", s.Header.Render("query:"), Highlight(query, s))

	for _, m := range matches {
		_, _ = fmt.Fprintf(t.w, "%s\n", s.Pass.Render(m.Dataset))

		for _, tm := range m.Terms {
			names := make([]string, 0, len(tm.Columns))
			for _, c := range tm.Columns {
				names = append(names, c.Name)
			}

			_, _ = fmt.Fprintf(t.w, "  %s %s\n", s.Term.Render(tm.Term.String()), strings.Join(names, ", "))
		}
	}

	_, err := fmt.Fprintf(t.w, "%s\n", s.Dim.Render(fmt.Sprintf("%d datasets", len(matches))))

	return err
}

// Check prints every line with diagnostics and a one line summary.
func (t *TextFormatter) Check(summary *CheckSummary) error {
	s := t.styles

	for _, f := range summary.Files {
		for _, l := range f.Lines {
			if len(l.Diagnostics) == 0 {
				continue
			}

			_, _ = fmt.Fprintf(t.w, "%s:%d: %s\n", f.Path, l.Line, Highlight(l.Query, s))

			for _, d := range l.Diagnostics {
				_, _ = fmt.Fprintf(t.w, "    %s %s\n", t.severity(d.Severity), d.Message+s.Dim.Render(" ["+d.Code+"]"))
			}
		}
	}

	status := s.Pass.Render("OK")
	if !summary.Ok() {
		status = s.Fail.Render("MALFORMED")
	}

	_, err := fmt.Fprintf(t.w, "%s %d files, %d queries, %d terms, %d malformed\n",
		status,
		len(summary.Files),
		summary.Lines(),
		summary.Terms(),
		summary.Malformed(),
	)

	return err
}

func (t *TextFormatter) severity(sev analysis.Severity) string {
	label := sev.String() + ":"

	switch sev {
	case analysis.SeverityError:
		return t.styles.Fail.Render(label)
	case analysis.SeverityWarning:
		return t.styles.Malformed.Render(label)
	default:
		return t.styles.Dim.Render(label)
	}
}

// Cache prints the backend cache statistics.
func (t *TextFormatter) Cache(info *client.CacheInfo) error {
	maxSize := "unbounded"
	if info.MaxSize != nil {
		maxSize = fmt.Sprint(*info.MaxSize)
	}

	_, err := fmt.Fprintf(t.w, "hits: %d\nmisses: %d\nsize: %d / %s\n",
		info.Hits, info.Misses, info.CurrSize, maxSize)

	return err
}

// describeResult picks a display name for a search hit.
func describeResult(result map[string]any) string {
	for _, key := range []string{"name", "title", "id"} {
		if v, ok := result[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprint(result)
	}

	return string(data)
}

// -----------------------------------------------------------------------------
// JSON Formatter
// -----------------------------------------------------------------------------

// JSONFormatter writes one indented JSON document per call.
type JSONFormatter struct {
	enc *json.Encoder
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return &JSONFormatter{enc: enc}
}

// Parse writes {query, terms, remainingQuery}.
func (j *JSONFormatter) Parse(query string, r fainder.ParseResult) error {
	return j.enc.Encode(parseDocument(query, r))
}

// Search writes the backend response unchanged.
func (j *JSONFormatter) Search(resp *client.Response) error {
	return j.enc.Encode(resp)
}

// Matches writes {query, datasets}.
func (j *JSONFormatter) Matches(query string, matches []eval.Match) error {
	return j.enc.Encode(matchesDocument(query, matches))
}

// Check writes the summary with its totals.
func (j *JSONFormatter) Check(summary *CheckSummary) error {
	return j.enc.Encode(checkDocument(summary))
}

// Cache writes the backend cache statistics.
func (j *JSONFormatter) Cache(info *client.CacheInfo) error {
	return j.enc.Encode(info)
}

// -----------------------------------------------------------------------------
// YAML Formatter
// -----------------------------------------------------------------------------

// YAMLFormatter writes one YAML document per call.
type YAMLFormatter struct {
	w io.Writer
}

// NewYAMLFormatter creates a YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{w: w}
}

func (y *YAMLFormatter) encode(v any) error {
	enc := yaml.NewEncoder(y.w)

	err := enc.Encode(v)
	if err != nil {
		return err
	}

	return enc.Close()
}

// Parse writes {query, terms, remainingQuery}.
func (y *YAMLFormatter) Parse(query string, r fainder.ParseResult) error {
	return y.encode(parseDocument(query, r))
}

// Search writes the backend response.
func (y *YAMLFormatter) Search(resp *client.Response) error {
	return y.encode(resp)
}

// Matches writes {query, datasets}.
func (y *YAMLFormatter) Matches(query string, matches []eval.Match) error {
	return y.encode(matchesDocument(query, matches))
}

// Check writes the summary with its totals.
func (y *YAMLFormatter) Check(summary *CheckSummary) error {
	return y.encode(checkDocument(summary))
}

// Cache writes the backend cache statistics.
func (y *YAMLFormatter) Cache(info *client.CacheInfo) error {
	return y.encode(info)
}

// -----------------------------------------------------------------------------
// Documents shared by the structured formatters
// -----------------------------------------------------------------------------

type parseDoc struct {
	Query          string               `json:"query"          yaml:"query"`
	Terms          []fainder.SearchTerm `json:"terms"          yaml:"terms"`
	RemainingQuery string               `json:"remainingQuery" yaml:"remainingQuery"`
}

func parseDocument(query string, r fainder.ParseResult) parseDoc {
	terms := r.Terms
	if terms == nil {
		terms = []fainder.SearchTerm{}
	}

	return parseDoc{Query: query, Terms: terms, RemainingQuery: r.RemainingQuery}
}

type termMatchDoc struct {
	Term    fainder.SearchTerm `json:"term"    yaml:"term"`
	Columns []string           `json:"columns" yaml:"columns"`
}

type datasetDoc struct {
	Dataset string         `json:"dataset" yaml:"dataset"`
	Terms   []termMatchDoc `json:"terms"   yaml:"terms"`
}

type matchesDoc struct {
	Query    string       `json:"query"    yaml:"query"`
	Datasets []datasetDoc `json:"datasets" yaml:"datasets"`
}

func matchesDocument(query string, matches []eval.Match) matchesDoc {
	doc := matchesDoc{Query: query, Datasets: make([]datasetDoc, 0, len(matches))}

	for _, m := range matches {
		ds := datasetDoc{Dataset: m.Dataset, Terms: make([]termMatchDoc, 0, len(m.Terms))}

		for _, tm := range m.Terms {
			cols := make([]string, 0, len(tm.Columns))
			for _, c := range tm.Columns {
				cols = append(cols, c.Name)
			}

			ds.Terms = append(ds.Terms, termMatchDoc{Term: tm.Term, Columns: cols})
		}

		doc.Datasets = append(doc.Datasets, ds)
	}

	return doc
}

type checkTotals struct {
	Files     int `json:"files"     yaml:"files"`
	Queries   int `json:"queries"   yaml:"queries"`
	Terms     int `json:"terms"     yaml:"terms"`
	Malformed int `json:"malformed" yaml:"malformed"`
}

type checkDoc struct {
	Files  []FileResult `json:"files"  yaml:"files"`
	Totals checkTotals  `json:"totals" yaml:"totals"`
	Ok     bool         `json:"ok"     yaml:"ok"`
}

func checkDocument(s *CheckSummary) checkDoc {
	files := s.Files
	if files == nil {
		files = []FileResult{}
	}

	return checkDoc{
		Files: files,
		Totals: checkTotals{
			Files:     len(s.Files),
			Queries:   s.Lines(),
			Terms:     s.Terms(),
			Malformed: s.Malformed(),
		},
		Ok: s.Ok(),
	}
}
