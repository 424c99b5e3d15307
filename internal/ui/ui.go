// Package ui renders terminal feedback on stderr: a spinner while the network
// call runs and styled diagnostics. Nothing here ever writes to stdout.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

var (
	errorLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	spinStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// doneMsg tells the spinner program that the work finished.
type doneMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	label   string
	done    bool
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.label + "\n"
}

// Spin runs fn while showing label next to a spinner on stderr. When stderr is
// not a terminal fn simply runs. fn runs exactly once either way and its error
// is returned.
func Spin(label string, fn func() error) error {
	if !IsTerminal(os.Stderr) {
		return fn()
	}

	p := tea.NewProgram(
		spinnerModel{
			spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinStyle)),
			label:   label,
		},
		tea.WithOutput(os.Stderr),
		tea.WithInput(nil),
	)

	result := make(chan error, 1)
	go func() {
		err := fn()
		result <- err
		p.Send(doneMsg{})
	}()

	// The spinner is cosmetic: whatever ends it, wait for the work.
	if _, err := p.Run(); err != nil {
		log.Debug("spinner stopped", "err", err)
	}
	return <-result
}

// PrintError writes a styled diagnostic for err to w.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", errorLabel.Render("error:"), err.Error())
}

// PrintHint writes a dimmed follow-up line to w.
func PrintHint(w io.Writer, hint string) {
	fmt.Fprintln(w, hintStyle.Render(hint))
}
