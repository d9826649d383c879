// Package ui renders executed traces in an interactive viewer.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"qir/internal/inst"
)

type traceModel struct {
	title string
	lines []string
	view  viewport.Model
	ready bool
	width int
}

// NewTraceModel returns a Bubble Tea model paging through the instruction
// trace of one execution.
func NewTraceModel(title string, m *inst.Model) tea.Model {
	lines := traceLines(m)
	return &traceModel{title: title, lines: lines, width: 80}
}

func (m *traceModel) Init() tea.Cmd {
	return nil
}

func (m *traceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		height := msg.Height - 3
		if height < 4 {
			height = 4
		}
		if !m.ready {
			m.view = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = height
		}
		m.view.SetContent(m.content())
		return m, nil
	}
	if m.ready {
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *traceModel) View() string {
	if !m.ready {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	hintStyle := lipgloss.NewStyle().Faint(true)
	header := titleStyle.Render(truncate(m.title, m.width))
	hint := hintStyle.Render("up/down to scroll, q to quit")
	return header + "\n" + m.view.View() + "\n" + hint
}

func (m *traceModel) content() string {
	var b strings.Builder
	for i, line := range m.lines {
		fmt.Fprintf(&b, "%4d  %s\n", i, truncate(line, m.width-6))
	}
	return b.String()
}

func traceLines(m *inst.Model) []string {
	lines := make([]string, 0, len(m.Registers)+len(m.Instructions))
	for _, r := range m.Registers {
		switch r.Kind {
		case inst.RegQuantum:
			lines = append(lines, fmt.Sprintf("qreg %s[%d]", r.Name, r.Index))
		case inst.RegClassical:
			lines = append(lines, fmt.Sprintf("creg %s(%d)", r.Name, r.Size))
		}
	}
	for _, in := range m.Instructions {
		lines = append(lines, in.String())
	}
	return lines
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// RunTraceViewer opens the interactive viewer over the given model.
func RunTraceViewer(title string, m *inst.Model) error {
	p := tea.NewProgram(NewTraceModel(title, m), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
