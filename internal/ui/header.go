package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/feedsync/internal/feed"
)

// renderHeader renders the status bar: logo, feed state, counts, selection
// and realtime status.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{
		bg.Render("feedsync", styles.Logo),
		m.theme.Styles().StateStyle(m.state.Kind.String()).Render(stateLabel(m.state.Kind)),
		bg.Render(pluralize(len(m.items), "post"), styles.Text),
	}
	if m.state.Page >= 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("page %d", m.state.Page+1), styles.MutedText))
	}
	if m.selActive {
		parts = append(parts, bg.Render(fmt.Sprintf("%d selected", m.selCount), styles.WarningText.Bold(true)))
	}
	if inflight := m.sess.Mutations.InFlight(); inflight > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("sending %d", inflight), styles.InfoText))
	}
	if live := m.renderLive(styles, bg); live != "" {
		parts = append(parts, live)
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(strings.Join(parts, sep))
}

func (m Model) renderLive(styles Styles, bg BgStyle) string {
	if m.status == nil {
		return ""
	}
	s := m.liveStatus
	switch {
	case s.IsOffline():
		return bg.Render("OFFLINE", styles.DangerText)
	case s.LastUpdated.IsZero():
		return bg.Render("live: waiting", styles.FaintText)
	default:
		return bg.Render("live "+s.LastUpdated.Format("15:04:05"), styles.SuccessText)
	}
}

func stateLabel(k feed.Kind) string {
	switch k {
	case feed.KindInitial:
		return "idle"
	case feed.KindRefreshing:
		return "refreshing"
	case feed.KindLoadingMore:
		return "loading"
	case feed.KindError:
		return "error"
	case feed.KindEndOfList:
		return "end"
	default:
		return "ready"
	}
}

// renderCommandBar lists the keys relevant to the current mode.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.showLogs:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"L", "Close logs"},
			{"?", "More"},
		}
	case m.selActive:
		commands = []cmd{
			{"space", "Toggle"},
			{"y", "Copy"},
			{"esc", "Done"},
			{"j/k", "Navigate"},
		}
	default:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"r", "Refresh"},
			{"l", string(m.reaction)},
			{"1-3", "React"},
			{"space", "Select"},
			{"L", "Logs"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

// renderFooter shows a transient message, the load error, or the load state.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	var text string
	style := styles.MutedText
	switch {
	case m.flash != "":
		text = m.flash
		if m.flashErr {
			style = styles.DangerText
		} else {
			style = styles.InfoText
		}
	case m.state.Kind == feed.KindError:
		text = m.state.Message() + "  (r to retry)"
		style = styles.DangerText
	case m.state.Kind == feed.KindRefreshing:
		text = m.spinner.View() + " Refreshing..."
	case m.state.Kind == feed.KindLoadingMore:
		text = m.spinner.View() + " Loading more..."
	case m.state.Kind == feed.KindEndOfList:
		text = "End of feed"
		style = styles.FaintText
	}
	return styles.Footer.Width(m.width).Render(style.Render(truncate(text, maxInt(m.width-2, 1))))
}
