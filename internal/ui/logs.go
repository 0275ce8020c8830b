package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(m.width, m.listHeight())
	m.logViewport.Style = lipgloss.NewStyle()
}

// updateLogViewport keeps the viewport sized to the content area.
func (m *Model) updateLogViewport() {
	m.logViewport.Width = m.width
	m.logViewport.Height = m.listHeight()
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
}

// handleLogTail replaces the pane content. The view follows the tail unless
// the user scrolled up.
func (m *Model) handleLogTail(msg logTailMsg) {
	if msg.err != nil {
		m.setFlash("read log: "+msg.err.Error(), true)
		return
	}
	follow := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0
	lines := msg.lines
	if len(lines) == 0 {
		lines = []string{"(no log output yet)"}
	}
	m.logViewport.SetContent(m.colorizeLines(lines))
	if follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the log pane in place of the list.
func (m Model) renderLogs() string {
	if m.logPath == "" {
		styles := m.theme.Styles()
		return lipgloss.NewStyle().Height(m.listHeight()).Render(
			styles.MutedText.Render("Logging to a file is disabled."))
	}
	return m.logViewport.View()
}

func (m Model) colorizeLines(lines []string) string {
	styles := m.theme.Styles()
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = m.levelStyle(line, styles).Render(truncate(line, m.width))
	}
	return strings.Join(out, "\n")
}

// levelStyle picks a color from the level column written by logtail.Format.
func (m Model) levelStyle(line string, styles Styles) lipgloss.Style {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return styles.Text
	}
	switch fields[1] {
	case "ERROR", "FATAL", "PANIC":
		return styles.DangerText
	case "WARN":
		return styles.WarningText
	case "DEBUG", "TRACE":
		return styles.FaintText
	default:
		return styles.Text
	}
}
