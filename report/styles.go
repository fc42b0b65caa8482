package report

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles holds the lipgloss styles used by the text formatter and the REPL.
type Styles struct {
	Header    lipgloss.Style
	Term      lipgloss.Style
	Kind      lipgloss.Style
	Opaque    lipgloss.Style
	Operator  lipgloss.Style
	Malformed lipgloss.Style
	Dim       lipgloss.Style
	Pass      lipgloss.Style
	Fail      lipgloss.Style
}

// DefaultStyles returns the coloured style set.
func DefaultStyles() *Styles {
	return &Styles{
		Header:    lipgloss.NewStyle().Bold(true),
		Term:      lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true),
		Kind:      lipgloss.NewStyle().Foreground(lipgloss.Color("#9B9B9B")).Italic(true),
		Opaque:    lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD")),
		Operator:  lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
		Malformed: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Underline(true),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
		Pass:      lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
		Fail:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
	}
}

// PlainStyles returns styles that leave text untouched.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()

	return &Styles{
		Header:    plain,
		Term:      plain,
		Kind:      plain,
		Opaque:    plain,
		Operator:  plain,
		Malformed: plain,
		Dim:       plain,
		Pass:      plain,
		Fail:      plain,
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// StylesFor picks coloured styles for terminals and plain styles otherwise.
func StylesFor(w io.Writer) *Styles {
	if IsTerminal(w) {
		return DefaultStyles()
	}

	return PlainStyles()
}
