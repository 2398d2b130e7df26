package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/annometa/snapshot"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	containerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	annoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	memberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err       error
	report    *snapshot.Report
	filename  string
	filter    textinput.Model
	filtering bool
	container int
	value     int
	state     modelState
}

type modelState int

const (
	stateSelectContainer modelState = iota
	stateSelectValue
	stateShowValue
)

func newInteractiveModel(filename string) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "type name"
	ti.Prompt = "/ "
	ti.Width = 40
	return &interactiveModel{
		filename: filename,
		filter:   ti,
		state:    stateSelectContainer,
	}
}

type loadedMsg struct {
	err    error
	report *snapshot.Report
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadSnapshot
}

func (m *interactiveModel) loadSnapshot() tea.Msg {
	f, err := os.Open(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	defer f.Close()

	rep, err := snapshot.Inspect(f)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{report: rep}
}

// visibleValues returns the selected container's annotations, narrowed by
// the filter input.
func (m *interactiveModel) visibleValues() []snapshot.ValueReport {
	if m.report == nil || m.container >= len(m.report.Containers) {
		return nil
	}
	values := m.report.Containers[m.container].Values
	needle := m.filter.Value()
	if needle == "" {
		return values
	}
	var out []snapshot.ValueReport
	for _, v := range values {
		if strings.Contains(v.Type, needle) {
			out = append(out, v)
		}
	}
	return out
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if !m.filtering {
				return m, tea.Quit
			}

		case "up", "k":
			if m.filtering && msg.String() == "k" {
				break
			}
			switch m.state {
			case stateSelectContainer:
				if m.container > 0 {
					m.container--
				}
			case stateSelectValue:
				if m.value > 0 {
					m.value--
				}
			}
			return m, nil

		case "down", "j":
			if m.filtering && msg.String() == "j" {
				break
			}
			switch m.state {
			case stateSelectContainer:
				if m.report != nil && m.container < len(m.report.Containers)-1 {
					m.container++
				}
			case stateSelectValue:
				if m.value < len(m.visibleValues())-1 {
					m.value++
				}
			}
			return m, nil

		case "enter":
			switch m.state {
			case stateSelectContainer:
				if m.report != nil && len(m.report.Containers) > 0 {
					m.state = stateSelectValue
					m.value = 0
				}
			case stateSelectValue:
				if m.filtering {
					m.filtering = false
					m.filter.Blur()
				} else if len(m.visibleValues()) > 0 {
					m.state = stateShowValue
				}
			case stateShowValue:
				m.state = stateSelectValue
			}
			return m, nil

		case "/":
			if m.state == stateSelectValue && !m.filtering {
				m.filtering = true
				m.filter.Focus()
				return m, nil
			}

		case "esc":
			switch {
			case m.filtering:
				m.filtering = false
				m.filter.Blur()
				m.filter.SetValue("")
				m.value = 0
			case m.state == stateShowValue:
				m.state = stateSelectValue
			case m.state == stateSelectValue:
				m.state = stateSelectContainer
				m.filter.SetValue("")
				m.value = 0
			}
			return m, nil
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.report = msg.report
		return m, nil
	}

	if m.filtering {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		if m.value >= len(m.visibleValues()) {
			m.value = 0
		}
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.report == nil {
		return "Loading snapshot..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Annotation Snapshot"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	if len(m.report.Containers) == 0 {
		b.WriteString("Snapshot is empty.\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}

	switch m.state {
	case stateSelectContainer:
		b.WriteString("Select a container:\n\n")
		for i, c := range m.report.Containers {
			line := fmt.Sprintf("%s (%d)", c.Name, len(c.Values))
			if i == m.container {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + containerStyle.Render(c.Name) + fmt.Sprintf(" (%d)", len(c.Values)))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • q quit"))

	case stateSelectValue:
		c := m.report.Containers[m.container]
		b.WriteString(containerStyle.Render(c.Name))
		b.WriteString("\n\n")
		if m.filtering || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		values := m.visibleValues()
		if len(values) == 0 {
			b.WriteString("No annotations match.\n")
		}
		for i, v := range values {
			if i == m.value {
				b.WriteString(selectedStyle.Render("> " + formatValue(v, false)))
			} else {
				b.WriteString("  " + formatValue(v, true))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter details • / filter • esc back"))

	case stateShowValue:
		values := m.visibleValues()
		if len(values) == 0 {
			m.state = stateSelectValue
			b.WriteString("No annotations match.\n\n")
			b.WriteString(helpStyle.Render("esc back"))
			return b.String()
		}
		if m.value >= len(values) {
			m.value = 0
		}
		v := values[m.value]
		b.WriteString(annoStyle.Render("@" + v.Type))
		b.WriteString("\n\n")
		if len(v.Members) == 0 {
			b.WriteString("No members.\n")
		}
		for _, mem := range v.Members {
			b.WriteString("  ")
			b.WriteString(memberStyle.Render(mem.Name))
			b.WriteString(" = ")
			b.WriteString(mem.Value)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/esc back • q quit"))
	}

	return b.String()
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newInteractiveModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
