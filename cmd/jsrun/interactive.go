package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/js-runtime/errors"
)

const replFilename = "<repl>"

const (
	// maxEntries bounds how many results the view renders.
	maxEntries = 12
	// maxRecall bounds how many stored inputs are loaded for recall.
	maxRecall = 500
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type entry struct {
	source string
	output string
	failed bool
}

type interactiveModel struct {
	err     error
	logger  *zap.Logger
	session *session
	hist    *history
	entries []entry
	sources []string
	input   textinput.Model
	recall  int
	line    int
}

func newInteractiveModel(logger *zap.Logger) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "1 + 1"
	ti.Prompt = "js> "
	ti.Width = 60
	ti.Focus()

	return &interactiveModel{
		logger: logger,
		input:  ti,
		line:   1,
	}
}

type openedMsg struct {
	err     error
	session *session
	hist    *history
	sources []string
}

type evalResultMsg struct {
	entry entry
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.open, textinput.Blink)
}

func (m *interactiveModel) open() tea.Msg {
	s, err := openSession(m.logger)
	if err != nil {
		return openedMsg{err: err}
	}

	// history is optional; the REPL works without it
	dir, err := historyDir()
	if err != nil {
		m.logger.Warn("history disabled", zap.Error(err))
		return openedMsg{session: s}
	}
	h, err := openHistory(dir)
	if err != nil {
		m.logger.Warn("history disabled", zap.Error(err))
		return openedMsg{session: s}
	}
	sources, err := h.Recent(maxRecall)
	if err != nil {
		m.logger.Warn("read history", zap.Error(err))
	}
	return openedMsg{session: s, hist: h, sources: sources}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.close()
			return m, tea.Quit

		case "enter":
			src := strings.TrimSpace(m.input.Value())
			if src == "" || m.session == nil {
				return m, nil
			}
			m.input.SetValue("")
			m.remember(src)
			return m, m.evaluate(src)

		case "up":
			if m.recall > 0 {
				m.recall--
				m.input.SetValue(m.sources[m.recall])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.recall < len(m.sources)-1 {
				m.recall++
				m.input.SetValue(m.sources[m.recall])
				m.input.CursorEnd()
			} else {
				m.recall = len(m.sources)
				m.input.SetValue("")
			}
			return m, nil
		}

	case openedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session = msg.session
		m.hist = msg.hist
		m.sources = msg.sources
		m.recall = len(m.sources)

	case evalResultMsg:
		m.entries = append(m.entries, msg.entry)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) remember(src string) {
	m.sources = append(m.sources, src)
	m.recall = len(m.sources)
	if m.hist == nil {
		return
	}
	if err := m.hist.Append(src); err != nil {
		m.logger.Warn("append history", zap.Error(err))
	}
}

// evaluate runs src as the next line of the REPL file, so exception
// locations count lines across inputs.
func (m *interactiveModel) evaluate(src string) tea.Cmd {
	line := m.line
	m.line += strings.Count(src, "\n") + 1
	s := m.session

	return func() tea.Msg {
		out, err := s.eval([]byte(src), replFilename, line)
		if err != nil {
			return evalResultMsg{entry: entry{source: src, output: describeError(err), failed: true}}
		}
		return evalResultMsg{entry: entry{source: src, output: out}}
	}
}

func describeError(err error) string {
	var se *errors.ScriptError
	if !errors.As(err, &se) {
		return err.Error()
	}
	name := se.Name
	if name == "" {
		name = "Uncaught"
	}
	msg := fmt.Sprintf("%s: %s", name, se.Message)
	if se.Line > 0 {
		msg += fmt.Sprintf(" (%s:%d:%d)", se.Filename, se.Line, se.Column)
	}
	return msg
}

func (m *interactiveModel) close() {
	if m.hist != nil {
		if err := m.hist.Close(); err != nil {
			m.logger.Warn("close history", zap.Error(err))
		}
		m.hist = nil
	}
	if m.session == nil {
		return
	}
	if err := m.session.close(); err != nil {
		m.logger.Warn("close session", zap.Error(err))
	}
	m.session = nil
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to quit.", m.err))
	}
	if m.session == nil {
		return "Starting runtime..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("JS Runner"))
	b.WriteString(" ")
	b.WriteString(m.session.rt.Engine())
	b.WriteString("\n\n")

	start := 0
	if len(m.entries) > maxEntries {
		start = len(m.entries) - maxEntries
	}
	for _, e := range m.entries[start:] {
		b.WriteString(sourceStyle.Render("> " + e.source))
		b.WriteString("\n")
		if e.failed {
			b.WriteString(errorStyle.Render(e.output))
		} else {
			b.WriteString(resultStyle.Render(e.output))
		}
		b.WriteString("\n")
	}
	if len(m.entries) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("enter evaluate • ↑/↓ history • esc quit • roots %d", m.session.rt.RootCount())))

	return b.String()
}

func runInteractive(logger *zap.Logger) error {
	p := tea.NewProgram(newInteractiveModel(logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
