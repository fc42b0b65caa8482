package fainder

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Comparison is the operator of a percentile predicate.
type Comparison string

// Comparison operators, always lowercase.
const (
	GreaterThan    Comparison = "gt"
	GreaterOrEqual Comparison = "ge"
	LessThan       Comparison = "lt"
	LessOrEqual    Comparison = "le"
)

// ParseComparison normalizes a comparison token. Matching is case-insensitive.
func ParseComparison(s string) (Comparison, error) {
	switch c := Comparison(strings.ToLower(s)); c {
	case GreaterThan, GreaterOrEqual, LessThan, LessOrEqual:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownComparison, s)
	}
}

// Compare applies the operator to a and b.
func (c Comparison) Compare(a, b float64) bool {
	switch c {
	case GreaterThan:
		return a > b
	case GreaterOrEqual:
		return a >= b
	case LessThan:
		return a < b
	case LessOrEqual:
		return a <= b
	default:
		return false
	}
}

// TermKind identifies a SearchTerm variant.
type TermKind string

// Term kinds. These are the "type" discriminators of the JSON form.
const (
	KindColumn     TermKind = "column"
	KindPercentile TermKind = "percentile"
	KindCombined   TermKind = "combined"
)

// SearchTerm is a structured predicate recovered from a COLUMN(...) clause.
//
// The set of implementations is closed: ColumnTerm, PercentileTerm and
// CombinedTerm. Consumers switch on the concrete type.
type SearchTerm interface {
	Kind() TermKind
	String() string
	isSearchTerm()
}

// ColumnTerm filters on a named column with a minimum value count.
type ColumnTerm struct {
	Column    string
	Threshold float64
}

// PercentileTerm filters on a percentile of a column's values.
type PercentileTerm struct {
	Percentile float64
	Comparison Comparison
	Value      float64
}

// CombinedTerm is a ColumnTerm and a PercentileTerm scoped to the same column.
type CombinedTerm struct {
	Column     string
	Threshold  float64
	Percentile float64
	Comparison Comparison
	Value      float64
}

func (ColumnTerm) isSearchTerm()     {}
func (PercentileTerm) isSearchTerm() {}
func (CombinedTerm) isSearchTerm()   {}

// Kind returns KindColumn.
func (ColumnTerm) Kind() TermKind { return KindColumn }

// Kind returns KindPercentile.
func (PercentileTerm) Kind() TermKind { return KindPercentile }

// Kind returns KindCombined.
func (CombinedTerm) Kind() TermKind { return KindCombined }

// NameTerm returns the column-name half of the conjunction.
func (t CombinedTerm) NameTerm() ColumnTerm {
	return ColumnTerm{Column: t.Column, Threshold: t.Threshold}
}

// PercentileTerm returns the percentile half of the conjunction.
func (t CombinedTerm) PercentileTerm() PercentileTerm {
	return PercentileTerm{Percentile: t.Percentile, Comparison: t.Comparison, Value: t.Value}
}

// ParseResult is the outcome of ParseQuery.
type ParseResult struct {
	// Terms in the order they appear in the query.
	Terms []SearchTerm
	// RemainingQuery holds every unrecognized fragment joined by " AND ".
	RemainingQuery string
}

// HasTerms reports whether any structured predicate was recognized.
func (r ParseResult) HasTerms() bool {
	return len(r.Terms) > 0
}

// IsEmpty reports whether the result carries neither terms nor residual text.
func (r ParseResult) IsEmpty() bool {
	return len(r.Terms) == 0 && r.RemainingQuery == ""
}

// termJSON is the wire shape of every term variant.
type termJSON struct {
	Type       TermKind   `json:"type"                 yaml:"type"`
	Column     string     `json:"column,omitempty"     yaml:"column,omitempty"`
	Threshold  *float64   `json:"threshold,omitempty"  yaml:"threshold,omitempty"`
	Percentile *float64   `json:"percentile,omitempty" yaml:"percentile,omitempty"`
	Comparison Comparison `json:"comparison,omitempty" yaml:"comparison,omitempty"`
	Value      *float64   `json:"value,omitempty"      yaml:"value,omitempty"`
}

func toTermJSON(t SearchTerm) termJSON {
	switch t := t.(type) {
	case ColumnTerm:
		return termJSON{Type: KindColumn, Column: t.Column, Threshold: &t.Threshold}
	case PercentileTerm:
		return termJSON{Type: KindPercentile, Percentile: &t.Percentile, Comparison: t.Comparison, Value: &t.Value}
	case CombinedTerm:
		return termJSON{
			Type:       KindCombined,
			Column:     t.Column,
			Threshold:  &t.Threshold,
			Percentile: &t.Percentile,
			Comparison: t.Comparison,
			Value:      &t.Value,
		}
	default:
		return termJSON{}
	}
}

// MarshalJSON encodes the term with a "type" discriminator.
func (t ColumnTerm) MarshalJSON() ([]byte, error) { return json.Marshal(toTermJSON(t)) }

// MarshalJSON encodes the term with a "type" discriminator.
func (t PercentileTerm) MarshalJSON() ([]byte, error) { return json.Marshal(toTermJSON(t)) }

// MarshalJSON encodes the term with a "type" discriminator.
func (t CombinedTerm) MarshalJSON() ([]byte, error) { return json.Marshal(toTermJSON(t)) }

// MarshalYAML encodes the term with a "type" discriminator.
func (t ColumnTerm) MarshalYAML() (any, error) { return toTermJSON(t), nil }

// MarshalYAML encodes the term with a "type" discriminator.
func (t PercentileTerm) MarshalYAML() (any, error) { return toTermJSON(t), nil }

// MarshalYAML encodes the term with a "type" discriminator.
func (t CombinedTerm) MarshalYAML() (any, error) { return toTermJSON(t), nil }

// UnmarshalTerm decodes the JSON form produced by MarshalJSON.
//
//nolint:ireturn // SearchTerm is a closed sum type.
func UnmarshalTerm(data []byte) (SearchTerm, error) {
	var raw termJSON

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return nil, err
	}

	deref := func(f *float64) float64 {
		if f == nil {
			return 0
		}

		return *f
	}

	switch raw.Type {
	case KindColumn:
		return ColumnTerm{Column: raw.Column, Threshold: deref(raw.Threshold)}, nil
	case KindPercentile:
		cmp, err := ParseComparison(string(raw.Comparison))
		if err != nil {
			return nil, err
		}

		return PercentileTerm{Percentile: deref(raw.Percentile), Comparison: cmp, Value: deref(raw.Value)}, nil
	case KindCombined:
		cmp, err := ParseComparison(string(raw.Comparison))
		if err != nil {
			return nil, err
		}

		return CombinedTerm{
			Column:     raw.Column,
			Threshold:  deref(raw.Threshold),
			Percentile: deref(raw.Percentile),
			Comparison: cmp,
			Value:      deref(raw.Value),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTermKind, raw.Type)
	}
}

// MarshalJSON encodes the result as {"terms": [...], "remainingQuery": "..."}.
func (r ParseResult) MarshalJSON() ([]byte, error) {
	terms := r.Terms
	if terms == nil {
		terms = []SearchTerm{}
	}

	return json.Marshal(struct {
		Terms          []SearchTerm `json:"terms"`
		RemainingQuery string       `json:"remainingQuery"`
	}{terms, r.RemainingQuery})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (r *ParseResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Terms          []json.RawMessage `json:"terms"`
		RemainingQuery string            `json:"remainingQuery"`
	}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	terms := make([]SearchTerm, 0, len(raw.Terms))

	for i, msg := range raw.Terms {
		term, err := UnmarshalTerm(msg)
		if err != nil {
			return fmt.Errorf("term %d: %w", i, err)
		}

		terms = append(terms, term)
	}

	r.Terms = terms
	r.RemainingQuery = raw.RemainingQuery

	return nil
}

// MarshalYAML encodes the result with the same keys as MarshalJSON.
func (r ParseResult) MarshalYAML() (any, error) {
	terms := make([]termJSON, 0, len(r.Terms))
	for _, t := range r.Terms {
		terms = append(terms, toTermJSON(t))
	}

	return struct {
		Terms          []termJSON `yaml:"terms"`
		RemainingQuery string     `yaml:"remainingQuery"`
	}{terms, r.RemainingQuery}, nil
}
