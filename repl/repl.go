// Package repl is an interactive prompt that shows how a query parses while
// it is typed and sends it to the search backend on enter.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/fainder-search/fainder"
	"github.com/fainder-search/fainder/client"
	"github.com/fainder-search/fainder/report"
)

// maxResults bounds the hits listed under the prompt.
const maxResults = 10

// Searcher runs a query against a backend. *client.Client implements it.
type Searcher interface {
	Search(ctx context.Context, req client.Request) (*client.Response, error)
}

type searchDoneMsg struct {
	query string
	resp  *client.Response
	err   error
}

// Model is the bubbletea model of the prompt.
type Model struct {
	ctx      context.Context //nolint:containedctx // bubbletea commands run without a caller context.
	searcher Searcher
	styles   *report.Styles

	input   textinput.Model
	spinner spinner.Model
	width   int

	// pending is the query of the in-flight search, empty when idle.
	pending string
	last    string
	resp    *client.Response
	err     error
	history []string
}

// New creates a prompt. A nil searcher makes enter only record the query.
func New(ctx context.Context, searcher Searcher, styles *report.Styles) Model {
	in := textinput.New()
	in.Prompt = "fainder> "
	in.Placeholder = "KW(...) AND COLUMN(NAME(age;1))"
	in.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Term

	return Model{
		ctx:      ctx,
		searcher: searcher,
		styles:   styles,
		input:    in,
		spinner:  s,
	}
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) search(query string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.searcher.Search(m.ctx, client.Request{Query: query})

		return searchDoneMsg{query: query, resp: resp, err: err}
	}
}

// Update handles key presses, search completions and spinner ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 0)

		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		default:
		}

	case searchDoneMsg:
		if msg.query != m.pending {
			return m, nil
		}

		m.pending = ""
		m.resp = msg.resp
		m.err = msg.err

		return m, nil

	case spinner.TickMsg:
		if m.pending == "" {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m, nil
	}

	m.history = append(m.history, query)
	m.last = query
	m.resp = nil
	m.err = nil
	m.input.Reset()

	if m.searcher == nil {
		return m, nil
	}

	m.pending = query

	return m, tea.Batch(m.spinner.Tick, m.search(query))
}

// View renders the prompt, the live parse and the latest search outcome.
func (m Model) View() string {
	s := m.styles

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	if value := strings.TrimSpace(m.input.Value()); value != "" {
		r := fainder.ParseQuery(value)

		b.WriteString("  " + report.Highlight(value, s) + "\n")

		for _, term := range r.Terms {
			fmt.Fprintf(&b, "  %s %s\n", s.Kind.Render(string(term.Kind())), s.Term.Render(term.String()))
		}

		if r.RemainingQuery != "" {
			fmt.Fprintf(&b, "  %s %s\n", s.Kind.Render("keywords"), s.Opaque.Render(r.RemainingQuery))
		}
	}

	b.WriteString("\n")

	switch {
	case m.pending != "":
		fmt.Fprintf(&b, "%s searching %s\n", m.spinner.View(), m.pending)
	case m.err != nil:
		fmt.Fprintf(&b, "%s %v\n", s.Fail.Render("error:"), m.err)
	case m.resp != nil:
		m.writeResponse(&b)
	case m.last != "":
		fmt.Fprintf(&b, "%s %s\n", s.Dim.Render("parsed:"), fainder.FormatQuery(m.last))
	}

	b.WriteString(s.Dim.Render("enter: search  esc: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) writeResponse(b *strings.Builder) {
	s := m.styles

	fmt.Fprintf(b, "%s %s\n", s.Header.Render("query:"), m.resp.Query)

	for i, result := range m.resp.Results {
		if i == maxResults {
			fmt.Fprintf(b, "  %s\n", s.Dim.Render(fmt.Sprintf("... %d more", len(m.resp.Results)-maxResults)))

			break
		}

		fmt.Fprintf(b, "  %d. %s\n", i+1, resultName(result))
	}

	fmt.Fprintf(b, "%s\n", s.Dim.Render(fmt.Sprintf(
		"%d results in %.3fs", m.resp.ResultCount, m.resp.SearchTime,
	)))
}

func resultName(result map[string]any) string {
	for _, key := range []string{"name", "title", "id"} {
		if v, ok := result[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}

	return fmt.Sprint(result)
}

// History returns the submitted queries, oldest first.
func (m Model) History() []string {
	return m.history
}

// Run starts the prompt on in/out and blocks until the user quits. When in
// is not a terminal, queries are read line by line instead.
func Run(ctx context.Context, searcher Searcher, in io.Reader, out io.Writer) error {
	f, ok := in.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return RunLines(ctx, searcher, in, out)
	}

	p := tea.NewProgram(
		New(ctx, searcher, report.StylesFor(out)),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("running prompt: %w", err)
	}

	return nil
}

// RunLines parses every non-blank line of in, printing the parse and, with a
// searcher, the search response as text.
func RunLines(ctx context.Context, searcher Searcher, in io.Reader, out io.Writer) error {
	f := report.NewTextFormatter(out, report.StylesFor(out))

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		query := strings.TrimSpace(sc.Text())
		if query == "" {
			continue
		}

		err := f.Parse(query, fainder.ParseQuery(query))
		if err != nil {
			return err
		}

		if searcher == nil {
			continue
		}

		resp, err := searcher.Search(ctx, client.Request{Query: query})
		if err != nil {
			return fmt.Errorf("searching %q: %w", query, err)
		}

		err = f.Search(resp)
		if err != nil {
			return err
		}
	}

	return sc.Err()
}
