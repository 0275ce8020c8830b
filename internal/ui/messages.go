package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/feedsync/internal/feed"
	"github.com/five82/feedsync/internal/logtail"
	"github.com/five82/feedsync/internal/mutation"
)

// Messages

type tickMsg time.Time

type hubEventMsg feed.Event

type hubClosedMsg struct{}

type loadDoneMsg struct {
	op  string
	err error
}

type mutationDoneMsg struct {
	itemID string
	kind   mutation.Kind
	err    error
}

type copiedMsg struct {
	count int
	err   error
}

type logTailMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForEvent blocks on the hub subscription. Update re-arms it after every
// event so exactly one reader is outstanding.
func waitForEvent(ch <-chan feed.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return hubClosedMsg{}
		}
		return hubEventMsg(ev)
	}
}

func refreshCmd(ctx context.Context, e *feed.Engine) tea.Cmd {
	return func() tea.Msg {
		return loadDoneMsg{op: "refresh", err: e.Refresh(ctx)}
	}
}

func loadMoreCmd(ctx context.Context, e *feed.Engine, lastVisible int) tea.Cmd {
	return func() tea.Msg {
		started, err := e.MaybeLoadMore(ctx, lastVisible)
		if !started {
			return nil
		}
		return loadDoneMsg{op: "load more", err: err}
	}
}

func toggleCmd(ctx context.Context, c *mutation.Coordinator, itemID string, kind mutation.Kind) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{itemID: itemID, kind: kind, err: c.Toggle(ctx, itemID, kind)}
	}
}

func copyCmd(write func(string) error, text string, count int) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{count: count, err: write(text)}
	}
}

func readLogsCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		return logTailMsg{lines: logtail.FormatLines(lines), err: err}
	}
}

func loadedCmd(fn func([]feed.Item), items []feed.Item) tea.Cmd {
	if fn == nil {
		return nil
	}
	return func() tea.Msg {
		fn(items)
		return nil
	}
}

func keyMatches(msg tea.KeyMsg, b key.Binding) bool {
	return key.Matches(msg, b)
}
