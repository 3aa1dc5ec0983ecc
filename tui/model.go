package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"reply-presets/preset"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

const helpText = "You can set a custom quick reply here. Leave a field empty to use the default."

// editor is the part of preset.Store the screen drives.
type editor interface {
	Edit(id, text string)
}

// presetsMsg carries a backend snapshot into the update loop.
type presetsMsg preset.Set

type model struct {
	store  editor
	fields []preset.Field
	inputs []textinput.Model
	focus  int
	width  int
}

func newModel(store editor, fields []preset.Field, set preset.Set) *model {
	m := &model{
		store:  store,
		fields: fields,
		inputs: make([]textinput.Model, len(fields)),
	}
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = "  "
		ti.Placeholder = f.Placeholder
		ti.CharLimit = 0
		ti.Width = 40
		ti.SetValue(set[f.ID])
		m.inputs[i] = ti
	}
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		for i := range m.inputs {
			m.inputs[i].Width = max(20, m.width-6)
		}
		return m, nil
	case presetsMsg:
		m.applySnapshot(preset.Set(msg))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "shift+tab":
			return m, m.moveFocus(-1)
		case "down", "tab", "enter":
			return m, m.moveFocus(1)
		}
	}

	if len(m.inputs) == 0 {
		return m, nil
	}
	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if after := m.inputs[m.focus].Value(); after != before {
		m.store.Edit(m.fields[m.focus].ID, strings.TrimSpace(after))
	}
	return m, cmd
}

// fill sets every field from set, the focused one included. Used once the
// initial load completes, before anything has been typed.
func (m *model) fill(set preset.Set) {
	for i, f := range m.fields {
		m.inputs[i].SetValue(set[f.ID])
	}
}

// applySnapshot refreshes every field except the one being typed into; the
// user's own text wins there until they move away.
func (m *model) applySnapshot(set preset.Set) {
	for i, f := range m.fields {
		if i == m.focus {
			continue
		}
		m.inputs[i].SetValue(set[f.ID])
	}
}

func (m *model) moveFocus(delta int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.focus].Focus()
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Apple Watch") + "\n\n")
	b.WriteString(headerStyle.Render("REPLY PRESETS") + "\n")
	for i := range m.inputs {
		marker := " "
		if i == m.focus {
			marker = ">"
		}
		b.WriteString(fmt.Sprintf("%s%s\n", marker, m.inputs[i].View()))
	}
	b.WriteString("\n" + statusStyle.Render(helpText) + "\n")
	b.WriteString(statusStyle.Render("↑/↓ move • esc quit") + "\n")
	return b.String()
}
