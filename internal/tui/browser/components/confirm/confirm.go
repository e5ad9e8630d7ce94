package confirm

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmedMsg is sent when the user confirms the action.
type ConfirmedMsg struct {
	Tag string
}

// CancelledMsg is sent when the user cancels the action.
type CancelledMsg struct {
	Tag string
}

// Model is a yes/no dialog. Tag identifies which pending action an answer
// belongs to.
type Model struct {
	Active bool
	Prompt string
	Tag    string
	keys   keyMap
}

// New creates a new confirmation dialog model.
func New() Model {
	return Model{keys: defaultKeyMap}
}

// Activate shows the dialog with a prompt.
func (m *Model) Activate(tag, prompt string) {
	m.Tag = tag
	m.Prompt = prompt
	m.Active = true
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.Active {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		tag := m.Tag
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.Active = false
			return m, func() tea.Msg { return ConfirmedMsg{Tag: tag} }
		case key.Matches(msg, m.keys.Cancel):
			m.Active = false
			return m, func() tea.Msg { return CancelledMsg{Tag: tag} }
		}
	}
	return m, nil
}

var borderColor = lipgloss.AdaptiveColor{Light: "#D75F00", Dark: "#FFAF5F"}

func (m Model) View() string {
	if !m.Active {
		return ""
	}

	dialogBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(1, 2).
		Render(m.Prompt)

	helpText := lipgloss.NewStyle().
		Faint(true).
		Width(lipgloss.Width(dialogBox)).
		Align(lipgloss.Center).
		Render("\n(y/n)")

	return lipgloss.JoinVertical(lipgloss.Left, dialogBox, helpText)
}

type keyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

var defaultKeyMap = keyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}
