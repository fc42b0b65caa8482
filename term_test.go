package fainder_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/fainder-search/fainder"
)

func TestParseComparison(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"gt", "GT", "Ge", "lt", "LE"} {
		if _, err := fainder.ParseComparison(in); err != nil {
			t.Errorf("ParseComparison(%q) error: %v", in, err)
		}
	}

	_, err := fainder.ParseComparison("eq")
	if !errors.Is(err, fainder.ErrUnknownComparison) {
		t.Errorf("ParseComparison(eq) error = %v, want ErrUnknownComparison", err)
	}
}

func TestComparisonCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cmp  fainder.Comparison
		a, b float64
		want bool
	}{
		{fainder.GreaterThan, 2, 1, true},
		{fainder.GreaterThan, 1, 1, false},
		{fainder.GreaterOrEqual, 1, 1, true},
		{fainder.LessThan, 1, 2, true},
		{fainder.LessThan, 2, 2, false},
		{fainder.LessOrEqual, 2, 2, true},
		{fainder.Comparison("eq"), 2, 2, false},
	}

	for _, tt := range tests {
		if got := tt.cmp.Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("%s.Compare(%v, %v) = %v, want %v", tt.cmp, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestParseResultJSON(t *testing.T) {
	t.Parallel()

	result := fainder.ParseQuery("KW(a) AND COLUMN(NAME(age;1)) AND COLUMN(NAME(age;1) AND PERCENTILE(0.01;gt;1))")

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	want := `{"terms":[` +
		`{"type":"column","column":"age","threshold":1},` +
		`{"type":"combined","column":"age","threshold":1,"percentile":0.01,"comparison":"gt","value":1}` +
		`],"remainingQuery":"KW(a)"}`

	if string(data) != want {
		t.Errorf("Marshal =\n%s\nwant\n%s", data, want)
	}

	var decoded fainder.ParseResult

	err = json.Unmarshal(data, &decoded)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if diff := cmp.Diff(result, decoded, cmpResult); diff != "" {
		t.Errorf("decoded mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResultJSON_Empty(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(fainder.ParseResult{})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if got, want := string(data), `{"terms":[],"remainingQuery":""}`; got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}
}

func TestUnmarshalTerm_Errors(t *testing.T) {
	t.Parallel()

	_, err := fainder.UnmarshalTerm([]byte(`{"type":"range"}`))
	if !errors.Is(err, fainder.ErrUnknownTermKind) {
		t.Errorf("unknown kind error = %v", err)
	}

	_, err = fainder.UnmarshalTerm([]byte(`{"type":"percentile","percentile":0.5,"comparison":"eq","value":1}`))
	if !errors.Is(err, fainder.ErrUnknownComparison) {
		t.Errorf("unknown comparison error = %v", err)
	}

	_, err = fainder.UnmarshalTerm([]byte(`{"type":"combined","column":"a","threshold":1,"percentile":0.5,"value":1}`))
	if !errors.Is(err, fainder.ErrUnknownComparison) {
		t.Errorf("combined without comparison error = %v", err)
	}

	term, err := fainder.UnmarshalTerm([]byte(`{"type":"column","column":"age","threshold":2}`))
	if err != nil {
		t.Fatalf("column term without comparison: %v", err)
	}

	if diff := cmp.Diff(fainder.SearchTerm(fainder.ColumnTerm{Column: "age", Threshold: 2}), term); diff != "" {
		t.Errorf("column term mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResultUnmarshalJSON_UnknownKind(t *testing.T) {
	t.Parallel()

	var result fainder.ParseResult

	err := json.Unmarshal([]byte(`{"terms":[{"type":"column","column":"a","threshold":1},{"type":"range"}]}`), &result)
	if !errors.Is(err, fainder.ErrUnknownTermKind) {
		t.Errorf("Unmarshal error = %v, want %v", err, fainder.ErrUnknownTermKind)
	}

	if errors.Is(err, fainder.ErrUnknownComparison) {
		t.Errorf("kind error reported as comparison error: %v", err)
	}
}

func TestParseResultYAML(t *testing.T) {
	t.Parallel()

	result := fainder.ParseQuery("KW(a) AND COLUMN(PERCENTILE(0.5;le;3))")

	data, err := yaml.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	want := `terms:
    - type: percentile
      percentile: 0.5
      comparison: le
      value: 3
remainingQuery: KW(a)
`

	if string(data) != want {
		t.Errorf("yaml.Marshal =\n%s\nwant\n%s", data, want)
	}
}

func TestCombinedTermHalves(t *testing.T) {
	t.Parallel()

	c := fainder.CombinedTerm{Column: "age", Threshold: 2, Percentile: 0.5, Comparison: fainder.LessThan, Value: 9}

	if got, want := c.NameTerm(), (fainder.ColumnTerm{Column: "age", Threshold: 2}); got != want {
		t.Errorf("NameTerm() = %+v, want %+v", got, want)
	}

	want := fainder.PercentileTerm{Percentile: 0.5, Comparison: fainder.LessThan, Value: 9}
	if got := c.PercentileTerm(); got != want {
		t.Errorf("PercentileTerm() = %+v, want %+v", got, want)
	}
}
