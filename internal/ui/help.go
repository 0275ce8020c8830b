package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

const (
	helpWidth    = 44
	helpKeyWidth = 10
)

var helpTitles = []string{"Navigation", "Feed", "Selection", "General"}

// renderHelp draws the keymap's FullHelp groups in a centered box.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning)).Width(helpKeyWidth)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("-", helpWidth-6)))

	for i, group := range m.keys.FullHelp() {
		b.WriteString("\n\n")
		if i < len(helpTitles) {
			b.WriteString(styles.AccentText.Bold(true).Render(helpTitles[i]))
		}
		for _, binding := range group {
			b.WriteString("\n")
			b.WriteString(keyStyle.Render(binding.Help().Key))
			b.WriteString(styles.Text.Render(m.helpDesc(binding)))
		}
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(helpWidth).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

// helpDesc names the configured default reaction on the React binding.
func (m Model) helpDesc(b key.Binding) string {
	if slices.Equal(b.Keys(), m.keys.React.Keys()) {
		return "Toggle " + string(m.reaction)
	}
	return b.Help().Desc
}
