package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/grove-nodemanager/pkg/tree"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#005F87", Dark: "#5FAFFF"})
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AF5F00", Dark: "#FFAF00"})
	selectedStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	favoriteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"})
)

func (m Model) View() string {
	if m.help.ShowAll {
		return "\n" + headerStyle.Render("Node Manager - Help") + "\n\n" + m.help.View(m.keys)
	}

	header := headerStyle.Render("Node Manager")
	if m.svc.Store.ShowHidden() {
		header += mutedStyle.Render("  [showing hidden plugins]")
	}
	if m.filter != "" && m.mode != inputFilter {
		header += mutedStyle.Render(fmt.Sprintf("  [filter: %s]", m.filter))
	}

	body := m.renderTree()
	if m.confirm.Active {
		body = m.confirm.View()
	}

	footer := m.help.View(m.keys)
	switch {
	case m.mode != inputNone:
		footer = m.input.View()
	case m.status != "" && m.statusErr:
		footer = errorStyle.Render(m.status) + "\n" + footer
	case m.status != "":
		footer = mutedStyle.Render(m.status) + "\n" + footer
	}

	return "\n" + lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", footer)
}

func (m Model) renderTree() string {
	if len(m.items) == 0 {
		if m.filter != "" {
			return mutedStyle.Render("No matches.")
		}
		return mutedStyle.Render("No folders yet. Press n to create one.")
	}

	var b strings.Builder
	start := m.offset
	end := start + m.viewportHeight()
	if end > len(m.items) {
		end = len(m.items)
	}
	for i := start; i < end; i++ {
		it := m.items[i]
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("▶ ")
		}
		line := strings.Repeat("  ", it.Depth()) + m.renderItem(it)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}
	if len(m.items) > m.viewportHeight() {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" (%d-%d of %d)", start+1, end, len(m.items))))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderItem(it *tree.Item) string {
	switch it.Type {
	case tree.TypeFavorites, tree.TypeFolder:
		fold := "▼ "
		if !it.Expanded && m.filter == "" {
			fold = "▶ "
		}
		name := it.Name
		if it.Type == tree.TypeFavorites {
			name = favoriteStyle.Render("★ ") + name
		}
		return fmt.Sprintf("%s%s %s", fold, name, mutedStyle.Render(fmt.Sprintf("(%d)", len(it.Children))))
	default:
		var marks string
		if it.Favorite {
			marks += favoriteStyle.Render(" ★")
		}
		if it.HasNote {
			marks += mutedStyle.Render(" ✎")
		}
		return "• " + it.Name + marks
	}
}
