package ui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/five82/feedsync/internal/feed"
	"github.com/five82/feedsync/internal/mutation"
)

// applyEvent folds one hub event into the model. Row-level events patch a
// single row when the index still lines up and re-read the engine otherwise,
// so a dropped event never leaves the screen stale for long.
func (m *Model) applyEvent(ev feed.Event) tea.Cmd {
	var cmd tea.Cmd
	switch ev.Type {
	case feed.EventState:
		m.state = ev.State
		m.items = ev.State.Items
		if ev.State.Kind == feed.KindSuccess || ev.State.Kind == feed.KindEndOfList {
			cmd = loadedCmd(m.onLoaded, ev.State.Items)
		}

	case feed.EventItemChanged:
		if !ev.Inserted && ev.Index >= 0 && ev.Index < len(m.items) && m.items[ev.Index].ID == ev.ItemID {
			m.items[ev.Index] = ev.Item
			break
		}
		m.reanchor(m.cursorID())

	case feed.EventItemRemoved:
		if id := m.cursorID(); id != ev.ItemID {
			m.reanchor(id)
		} else {
			m.items = m.sess.Engine.Items()
		}

	case feed.EventSelectionCount:
		m.selCount = ev.SelectionCount
		m.selActive = ev.SelectionActive
		if !ev.SelectionActive {
			m.selected = nil
		}

	case feed.EventSelectionRender:
		ids := m.sess.Selection.Selected()
		m.selected = make(map[string]bool, len(ids))
		for _, id := range ids {
			m.selected[id] = true
		}
		m.reanchor(m.cursorID())

	case feed.EventScrollRestore:
		m.restoreScroll()
	}
	m.ensureVisible()
	return cmd
}

// cursorID returns the id of the post under the cursor, or "".
func (m Model) cursorID() string {
	if it, ok := m.current(); ok {
		return it.ID
	}
	return ""
}

// reanchor re-reads the list and moves the cursor to the post with id,
// shifting the scroll offset by the same amount. Tracking the post instead
// of counting insert events keeps the cursor right when the hub drops some.
func (m *Model) reanchor(id string) {
	m.items = m.sess.Engine.Items()
	if id == "" {
		return
	}
	if idx := slices.IndexFunc(m.items, func(it feed.Item) bool { return it.ID == id }); idx >= 0 {
		m.top += idx - m.cursor
		m.cursor = idx
	}
}

// restoreScroll applies a pending scroll restore from the selection
// controller. The position refers to the list as the model last saw it.
func (m *Model) restoreScroll() bool {
	p, ok := m.sess.Viewport.TakeRestore()
	if !ok {
		return false
	}
	m.top = p.Index
	m.cursor = p.Index + p.OffsetPixels
	return true
}

// settleExit applies a selection exit that ran on the render loop. The
// flush can publish more events than the subscriber buffer holds, so the
// model restores the scroll position and re-reads the list here; events
// still queued from the exit then find nothing left to change.
func (m *Model) settleExit() {
	m.restoreScroll()
	m.cursor = clamp(m.cursor, 0, len(m.items)-1)
	m.reanchor(m.cursorID())
	m.selActive = false
	m.selCount = 0
	m.selected = nil
	m.ensureVisible()
}

func (m *Model) handleLoadDone(msg loadDoneMsg) {
	if msg.err == nil || feed.IsSuperseded(msg.err) {
		return
	}
	m.log.Debug().Err(msg.err).Str("op", msg.op).Msg("load finished with error")
}

func (m *Model) handleMutationDone(msg mutationDoneMsg) {
	switch {
	case msg.err == nil:
	case errors.Is(msg.err, mutation.ErrMutationInProgress):
		m.setFlash("still sending the last reaction", false)
	case errors.Is(msg.err, mutation.ErrItemNotFound):
	case errors.Is(msg.err, mutation.ErrMutationFailed):
		m.setFlash(fmt.Sprintf("%s failed, reverted", msg.kind), true)
	default:
		m.setFlash(msg.err.Error(), true)
	}
}

// move shifts the cursor and asks the engine for the next page when the
// bottom of the list comes into view.
func (m Model) move(delta int) (tea.Model, tea.Cmd) {
	if len(m.items) == 0 {
		return m, nil
	}
	m.cursor = clamp(m.cursor+delta, 0, len(m.items)-1)
	m.ensureVisible()
	return m, loadMoreCmd(m.ctx, m.sess.Engine, m.lastVisible())
}

func (m *Model) toggleSelection() {
	it, ok := m.current()
	if !ok {
		return
	}
	if m.sess.Selection.Active() {
		m.sess.Selection.Toggle(it.ID)
		if !m.sess.Selection.Active() {
			m.settleExit()
		}
		return
	}
	m.sess.Selection.Enter(it.ID)
}

func (m Model) reactCmd(kind mutation.Kind) tea.Cmd {
	it, ok := m.current()
	if !ok {
		return nil
	}
	return toggleCmd(m.ctx, m.sess.Mutations, it.ID, kind)
}

func (m Model) copyCmd() tea.Cmd {
	var ids []string
	if m.sess.Selection.Active() {
		ids = m.sess.Selection.Selected()
	} else if it, ok := m.current(); ok {
		ids = []string{it.ID}
	}
	if len(ids) == 0 {
		return nil
	}
	return copyCmd(m.copyText, strings.Join(ids, "\n"), len(ids))
}

func (m Model) current() (feed.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return feed.Item{}, false
	}
	return m.items[m.cursor], true
}

func (m Model) listHeight() int {
	return maxInt(1, m.height-chromeLines)
}

func (m Model) lastVisible() int {
	last := m.top + m.listHeight() - 1
	if last >= len(m.items) {
		last = len(m.items) - 1
	}
	return last
}

// ensureVisible clamps the cursor and scrolls so it stays on screen, then
// reports the position to the session viewport.
func (m *Model) ensureVisible() {
	m.cursor = clamp(m.cursor, 0, len(m.items)-1)
	h := m.listHeight()
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+h {
		m.top = m.cursor - h + 1
	}
	m.top = clamp(m.top, 0, maxInt(0, len(m.items)-h))
	if m.cursor < m.top {
		m.cursor = m.top
	}
	m.sess.Viewport.Set(m.top, m.cursor-m.top)
}

// renderFeed renders exactly listHeight lines.
func (m Model) renderFeed() string {
	h := m.listHeight()
	lines := make([]string, 0, h)
	if len(m.items) == 0 {
		lines = append(lines, m.renderEmpty())
	}
	for i := m.top; i < len(m.items) && len(lines) < h; i++ {
		lines = append(lines, m.renderRow(i, m.items[i]))
	}
	blank := lipgloss.NewStyle().Background(lipgloss.Color(m.theme.Background)).Width(m.width).Render("")
	for len(lines) < h {
		lines = append(lines, blank)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEmpty() string {
	styles := m.theme.Styles()
	var text string
	switch {
	case m.state.Kind.Loading(), m.state.Kind == feed.KindInitial:
		text = m.spinner.View() + " Loading feed..."
	case m.state.Kind == feed.KindError:
		text = "Could not load the feed. Press r to retry."
	default:
		text = "Nothing here yet."
	}
	return styles.MutedText.Width(m.width).Render(text)
}

// renderRow renders one post on one line:
//
//	[x] 5m   @author        text ...              like 3* love 1 laugh 0
func (m Model) renderRow(idx int, it feed.Item) string {
	styles := m.theme.Styles()
	compact := m.width < LayoutCompactWidth

	var left strings.Builder
	if m.selActive {
		if m.selected[it.ID] {
			left.WriteString("[x] ")
		} else {
			left.WriteString("[ ] ")
		}
	} else if idx == m.cursor {
		left.WriteString("> ")
	} else {
		left.WriteString("  ")
	}
	if m.width >= LayoutWideWidth {
		age := ""
		if !it.CreatedAt.IsZero() {
			age = humanizeDuration(m.now().Sub(it.CreatedAt))
		}
		left.WriteString(padRight(age, timeColumnWidth))
	}
	if !compact {
		left.WriteString(padRight(truncate("@"+it.Author, authorColumnWidth-1), authorColumnWidth))
	}

	right, rightStyled := m.renderReactions(it, compact, styles)
	leftText := left.String()
	textWidth := m.width - runewidth.StringWidth(leftText) - runewidth.StringWidth(right) - 1
	body := singleLine(it.Text)
	if n := len(it.Media); n > 0 {
		body = fmt.Sprintf("%s [%s]", body, pluralize(n, "attachment"))
	}
	if it.ReplyCount > 0 {
		body = fmt.Sprintf("%s (%s)", body, pluralize(it.ReplyCount, "reply"))
	}
	body = padRight(truncate(body, textWidth), maxInt(textWidth, 0))

	plain := leftText + body + " " + right
	switch {
	case idx == m.cursor:
		return styles.Selected.Width(m.width).Render(plain)
	case m.selected[it.ID]:
		return styles.Marked.Width(m.width).Render(plain)
	}
	return styles.MutedText.Render(leftText) + styles.Text.Render(body) + " " + rightStyled
}

// renderReactions returns the reaction counters in plain and styled form.
// The user's own reaction carries a trailing star; a pending write shows "~".
func (m Model) renderReactions(it feed.Item, compact bool, styles Styles) (string, string) {
	plain := make([]string, 0, len(mutation.Kinds)+1)
	styled := make([]string, 0, len(mutation.Kinds)+1)
	for _, k := range mutation.Kinds {
		label := string(k)
		if compact {
			label = label[:1]
		}
		part := fmt.Sprintf("%s %d", label, it.ReactionCount(string(k)))
		if it.UserReaction == string(k) {
			part += "*"
		}
		plain = append(plain, part)
		styled = append(styled, styles.ReactionStyle(string(k)).Render(part))
	}
	if m.sess.Mutations.Pending(it.ID) {
		plain = append(plain, "~")
		styled = append(styled, styles.FaintText.Render("~"))
	}
	return strings.Join(plain, " "), strings.Join(styled, " ")
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	if strings.HasSuffix(noun, "y") {
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(noun, "y"))
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
