// Package eval evaluates parsed search terms against local column profiles.
//
// Every term is compiled to an expr-lang program over a small environment
// (name, count, quantile and the term's parameters). Programs are cached by
// source, so terms of the same shape share one compiled program.
package eval

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"go.uber.org/zap"

	"github.com/fainder-search/fainder"
)

// Expression sources for the predicate halves.
const (
	nameSource = `lower(name) == lower(column) && count >= threshold`
	// The comparison operator is appended after the quantile call.
	percentileSourcePrefix = `count > 0 && quantile(percentile) `
)

var operators = map[fainder.Comparison]string{
	fainder.GreaterThan:    ">",
	fainder.GreaterOrEqual: ">=",
	fainder.LessThan:       "<",
	fainder.LessOrEqual:    "<=",
}

// Evaluator matches terms against a ProfileSet.
type Evaluator struct {
	columns []*Column
	logger  *zap.Logger

	mu       sync.Mutex
	programs map[string]*vm.Program
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for compilation and match tracing.
func WithLogger(l *zap.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// New creates an Evaluator over the given profiles.
func New(ps *ProfileSet, opts ...Option) *Evaluator {
	e := &Evaluator{
		columns:  ps.Columns,
		logger:   zap.NewNop(),
		programs: make(map[string]*vm.Program),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// TermMatch lists the columns of one dataset that satisfy one term.
type TermMatch struct {
	Term    fainder.SearchTerm
	Columns []*Column
}

// Match is a dataset in which every term is satisfied by at least one column.
type Match struct {
	Dataset string
	Terms   []TermMatch
}

// Evaluate returns the datasets satisfying every term of r, sorted by name.
// The remaining query is keyword text and is not evaluated locally.
func (e *Evaluator) Evaluate(r fainder.ParseResult) ([]Match, error) {
	if len(r.Terms) == 0 {
		return nil, nil
	}

	// dataset -> per-term matching columns
	byDataset := make(map[string][][]*Column)

	for i, term := range r.Terms {
		cols, err := e.MatchTerm(term)
		if err != nil {
			return nil, fmt.Errorf("term %d %s: %w", i, term, err)
		}

		for _, c := range cols {
			perTerm, ok := byDataset[c.Dataset]
			if !ok {
				perTerm = make([][]*Column, len(r.Terms))
				byDataset[c.Dataset] = perTerm
			}

			perTerm[i] = append(perTerm[i], c)
		}
	}

	var matches []Match

	for dataset, perTerm := range byDataset {
		if slices.ContainsFunc(perTerm, func(cols []*Column) bool { return len(cols) == 0 }) {
			continue
		}

		m := Match{Dataset: dataset, Terms: make([]TermMatch, len(r.Terms))}
		for i, term := range r.Terms {
			m.Terms[i] = TermMatch{Term: term, Columns: perTerm[i]}
		}

		matches = append(matches, m)
	}

	slices.SortFunc(matches, func(a, b Match) int {
		return strings.Compare(a.Dataset, b.Dataset)
	})

	e.logger.Debug("evaluated query",
		zap.Int("terms", len(r.Terms)),
		zap.Int("datasets", len(matches)),
	)

	return matches, nil
}

// MatchTerm returns every column satisfying term, in profile order.
func (e *Evaluator) MatchTerm(term fainder.SearchTerm) ([]*Column, error) {
	source, params, err := compileTerm(term)
	if err != nil {
		return nil, err
	}

	program, err := e.program(source)
	if err != nil {
		return nil, err
	}

	var matched []*Column

	for _, c := range e.columns {
		env := columnEnv(c, params)

		out, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("evaluating column %s/%s: %w", c.Dataset, c.Name, err)
		}

		if ok, _ := out.(bool); ok {
			matched = append(matched, c)
		}
	}

	return matched, nil
}

func (e *Evaluator) program(source string) (*vm.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p, ok := e.programs[source]; ok {
		return p, nil
	}

	p, err := expr.Compile(source, expr.Env(compileEnv()), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compiling %q: %w", source, err)
	}

	e.logger.Debug("compiled term program", zap.String("source", source))
	e.programs[source] = p

	return p, nil
}

// termParams are the per-term variables bound into the environment.
type termParams struct {
	column     string
	threshold  float64
	percentile float64
	value      float64
}

func compileTerm(term fainder.SearchTerm) (string, termParams, error) {
	switch t := term.(type) {
	case fainder.ColumnTerm:
		return nameSource, termParams{column: t.Column, threshold: t.Threshold}, nil
	case fainder.PercentileTerm:
		src, err := percentileSource(t.Percentile, t.Comparison)
		if err != nil {
			return "", termParams{}, err
		}

		return src, termParams{percentile: t.Percentile, value: t.Value}, nil
	case fainder.CombinedTerm:
		src, err := percentileSource(t.Percentile, t.Comparison)
		if err != nil {
			return "", termParams{}, err
		}

		return "(" + nameSource + ") && (" + src + ")", termParams{
			column:     t.Column,
			threshold:  t.Threshold,
			percentile: t.Percentile,
			value:      t.Value,
		}, nil
	default:
		return "", termParams{}, fmt.Errorf("%w: %T", ErrUnknownTerm, term)
	}
}

func percentileSource(p float64, cmp fainder.Comparison) (string, error) {
	if p < 0 || p > 1 {
		return "", fmt.Errorf("%w: %v", ErrPercentileRange, p)
	}

	op, ok := operators[cmp]
	if !ok {
		return "", fmt.Errorf("%w: %q", fainder.ErrUnknownComparison, cmp)
	}

	return percentileSourcePrefix + op + " value", nil
}

func compileEnv() map[string]any {
	return map[string]any{
		"name":       "",
		"count":      float64(0),
		"quantile":   func(float64) float64 { return 0 },
		"column":     "",
		"threshold":  float64(0),
		"percentile": float64(0),
		"value":      float64(0),
	}
}

func columnEnv(c *Column, p termParams) map[string]any {
	return map[string]any{
		"name":       c.Name,
		"count":      float64(c.Count()),
		"quantile":   c.Quantile,
		"column":     p.column,
		"threshold":  p.threshold,
		"percentile": p.percentile,
		"value":      p.value,
	}
}
