package eval

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Column is the profile of one dataset column.
type Column struct {
	ID      int       `yaml:"id"      json:"id"`
	Dataset string    `yaml:"dataset" json:"dataset"`
	Name    string    `yaml:"name"    json:"name"`
	Values  []float64 `yaml:"values"  json:"values"`

	sorted []float64
}

// Count returns the number of values in the column.
func (c *Column) Count() int {
	return len(c.Values)
}

// Quantile returns the p-quantile of the column's values using linear
// interpolation between closest ranks. It returns NaN for an empty column.
func (c *Column) Quantile(p float64) float64 {
	sorted := c.sorted
	if len(sorted) != len(c.Values) {
		sorted = sortedCopy(c.Values)
	}

	return quantile(sorted, p)
}

func sortedCopy(values []float64) []float64 {
	s := slices.Clone(values)
	slices.Sort(s)

	return s
}

func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}

	h := float64(n-1) * p
	lo := int(math.Floor(h))

	if lo >= n-1 {
		return sorted[n-1]
	}

	if lo < 0 {
		return sorted[0]
	}

	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// ProfileSet is the collection of columns a query is evaluated against.
type ProfileSet struct {
	Columns []*Column `yaml:"columns" json:"columns"`
}

// LoadProfiles reads a profile set from YAML or JSON.
func LoadProfiles(path string) (*ProfileSet, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	return ParseProfiles(data)
}

// ParseProfiles decodes a profile set. JSON input is accepted as YAML.
func ParseProfiles(data []byte) (*ProfileSet, error) {
	var ps ProfileSet

	err := yaml.Unmarshal(data, &ps)
	if err != nil {
		return nil, fmt.Errorf("decoding profiles: %w", err)
	}

	if len(ps.Columns) == 0 {
		return nil, ErrNoProfiles
	}

	for i, c := range ps.Columns {
		if c == nil {
			return nil, fmt.Errorf("%w at index %d", ErrNullColumn, i)
		}

		for _, v := range c.Values {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("column %s/%s: NaN value", c.Dataset, c.Name)
			}
		}

		c.sorted = sortedCopy(c.Values)
	}

	return &ps, nil
}

// Datasets returns the distinct dataset names in sorted order.
func (ps *ProfileSet) Datasets() []string {
	seen := make(map[string]struct{})

	var names []string

	for _, c := range ps.Columns {
		if _, ok := seen[c.Dataset]; ok {
			continue
		}

		seen[c.Dataset] = struct{}{}
		names = append(names, c.Dataset)
	}

	slices.Sort(names)

	return names
}
