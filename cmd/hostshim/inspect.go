package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hostlayer/hostshim"
	"github.com/hostlayer/hostshim/permissions"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	opStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	grantedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	deniedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inspectorState int

const (
	stateOverview inspectorState = iota
	stateProbe
)

type inspectorModel struct {
	env    *hostshim.Env
	input  textinput.Model
	result string
	state  inspectorState
}

func newInspectorModel(env *hostshim.Env) *inspectorModel {
	ti := textinput.New()
	ti.Placeholder = "read /etc/hosts"
	ti.Prompt = "probe: "
	ti.Width = 48
	return &inspectorModel{env: env, input: ti}
}

func (m *inspectorModel) Init() tea.Cmd {
	return nil
}

func (m *inspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state == stateOverview {
				return m, tea.Quit
			}

		case "p":
			if m.state == stateOverview {
				m.state = stateProbe
				m.result = ""
				m.input.SetValue("")
				m.input.Focus()
				return m, textinput.Blink
			}

		case "enter":
			if m.state == stateProbe {
				m.result = m.probe(m.input.Value())
				return m, nil
			}

		case "esc":
			if m.state == stateProbe {
				m.state = stateOverview
				m.input.Blur()
				return m, nil
			}
		}
	}

	if m.state == stateProbe {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// probe parses "capability value" and reports the policy's answer.
func (m *inspectorModel) probe(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	value := ""
	if len(fields) > 1 {
		value = fields[1]
	}

	d := permissions.Describe(permissions.Capability(fields[0]), value)
	switch m.env.Permissions().Query(d) {
	case permissions.Granted:
		return grantedStyle.Render("granted")
	case permissions.Prompt:
		return promptStyle.Render("prompt")
	default:
		return deniedStyle.Render("denied")
	}
}

func (m *inspectorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("hostshim inspector"))
	b.WriteString("\n\n")

	switch m.state {
	case stateOverview:
		b.WriteString(headingStyle.Render("Operations"))
		b.WriteString("\n")
		snap := m.env.Metrics().Snapshot()
		if len(snap) == 0 {
			b.WriteString("  (none recorded)\n")
		}
		for _, op := range m.env.Metrics().Ops() {
			s := snap[op]
			b.WriteString(fmt.Sprintf("  %s started=%d completed=%d errored=%d\n",
				opStyle.Render(op), s.Started, s.Completed, s.Errored))
		}

		b.WriteString("\n")
		b.WriteString(headingStyle.Render("Open resources"))
		b.WriteString("\n")
		open := m.env.Metrics().OpenResources()
		if len(open) == 0 {
			b.WriteString("  (none)\n")
		} else {
			kinds := make([]string, 0, len(open))
			counts := make(map[string]int, len(open))
			for k, n := range open {
				kinds = append(kinds, k.String())
				counts[k.String()] = n
			}
			sort.Strings(kinds)
			for _, k := range kinds {
				b.WriteString(fmt.Sprintf("  %s: %d\n", k, counts[k]))
			}
		}

		b.WriteString("\n")
		b.WriteString(helpStyle.Render("p probe permission • q quit"))

	case stateProbe:
		b.WriteString("Query a permission as \"capability value\":\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		if m.result != "" {
			b.WriteString(m.result)
			b.WriteString("\n\n")
		}
		b.WriteString(helpStyle.Render("enter query • esc back"))
	}

	return b.String()
}

func runInspector(env *hostshim.Env) error {
	p := tea.NewProgram(newInspectorModel(env), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
