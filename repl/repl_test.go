package repl

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fainder-search/fainder/client"
	"github.com/fainder-search/fainder/report"
)

const sampleQuery = "KW(a) AND COLUMN(NAME(age;1))"

type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, req client.Request) (*client.Response, error) {
	f.mu.Lock()
	f.queries = append(f.queries, req.Query)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	return &client.Response{
		Query:       req.Query,
		Results:     []map[string]any{{"name": "people"}},
		SearchTime:  0.25,
		ResultCount: 1,
		Page:        1,
		TotalPages:  1,
	}, nil
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)

	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}

	return model, cmd
}

func assertContains(t *testing.T, got string, wants ...string) {
	t.Helper()

	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestModel_LiveParse(t *testing.T) {
	t.Parallel()

	m := New(context.Background(), nil, report.PlainStyles())
	m.input.SetValue(sampleQuery)

	assertContains(t, m.View(),
		"  "+sampleQuery+"\n",
		"  column COLUMN(NAME(age;1))\n",
		"  keywords KW(a)\n",
	)
}

func TestModel_Typing(t *testing.T) {
	t.Parallel()

	m := New(context.Background(), nil, report.PlainStyles())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("KW(x)")})

	if got := m.input.Value(); got != "KW(x)" {
		t.Errorf("input = %q, want %q", got, "KW(x)")
	}
}

func TestModel_SubmitWithoutSearcher(t *testing.T) {
	t.Parallel()

	m := New(context.Background(), nil, report.PlainStyles())
	m.input.SetValue("  COLUMN(PERCENTILE(0.5;GT;1)) AND KW(a)  ")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected no command without a searcher")
	}

	if got := m.History(); len(got) != 1 || got[0] != "COLUMN(PERCENTILE(0.5;GT;1)) AND KW(a)" {
		t.Errorf("History() = %q", got)
	}

	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	assertContains(t, m.View(), "parsed: COLUMN(PERCENTILE(0.5;gt;1)) AND KW(a)")
}

func TestModel_SubmitEmpty(t *testing.T) {
	t.Parallel()

	m := New(context.Background(), &fakeSearcher{}, report.PlainStyles())
	m.input.SetValue("   ")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || len(m.History()) != 0 {
		t.Error("blank query should be ignored")
	}
}

func TestModel_Search(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{}

	m := New(context.Background(), searcher, report.PlainStyles())
	m.input.SetValue(sampleQuery)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a search command")
	}

	assertContains(t, m.View(), "searching "+sampleQuery)

	// A result for another query is stale.
	m, _ = update(t, m, searchDoneMsg{query: "KW(other)"})
	assertContains(t, m.View(), "searching "+sampleQuery)

	m, _ = update(t, m, m.search(sampleQuery)())

	assertContains(t, m.View(),
		"query: "+sampleQuery+"\n",
		"  1. people\n",
		"1 results in 0.250s",
	)

	if len(searcher.queries) != 1 || searcher.queries[0] != sampleQuery {
		t.Errorf("searcher got %q", searcher.queries)
	}
}

func TestModel_SearchError(t *testing.T) {
	t.Parallel()

	m := New(context.Background(), &fakeSearcher{err: errors.New("backend down")}, report.PlainStyles())
	m.input.SetValue("KW(a)")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, m.search("KW(a)")())

	assertContains(t, m.View(), "error: backend down")
}

func TestModel_Quit(t *testing.T) {
	t.Parallel()

	m := New(context.Background(), nil, report.PlainStyles())

	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		_, cmd := update(t, m, tea.KeyMsg{Type: key})
		if cmd == nil {
			t.Fatalf("key %v: expected quit command", key)
		}

		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("key %v: expected tea.QuitMsg", key)
		}
	}
}

func TestRunLines(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	searcher := &fakeSearcher{}
	in := strings.NewReader(sampleQuery + "\n\nCOLUMN(NAME(x;y))\n")

	if err := RunLines(context.Background(), searcher, in, &out); err != nil {
		t.Fatal(err)
	}

	assertContains(t, out.String(),
		"remaining: KW(a)\n",
		"remaining: COLUMN(NAME(x;y))\n",
		"  1. people\n",
	)

	if len(searcher.queries) != 2 {
		t.Errorf("expected 2 searches, got %d", len(searcher.queries))
	}
}

func TestRunLines_SearchError(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	err := RunLines(context.Background(), &fakeSearcher{err: errors.New("boom")}, strings.NewReader("KW(a)\n"), &out)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("got %v, want wrapped search error", err)
	}
}
