package ui

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/feedsync/internal/feed"
	"github.com/five82/feedsync/internal/live"
	"github.com/five82/feedsync/internal/mutation"
	"github.com/five82/feedsync/internal/prefs"
	"github.com/five82/feedsync/internal/session"
)

// Options configures the feed screen.
type Options struct {
	Context   context.Context
	Session   *session.Session
	Status    func() live.Snapshot // realtime poll status; nil hides it
	LogPath   string
	Prefs     prefs.Prefs
	PrefsPath string
	Logger    zerolog.Logger

	// OnLoaded runs off the render loop after every successful load.
	OnLoaded func([]feed.Item)
	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
	Now       func() time.Time
}

// Model is the root state of the feed screen.
type Model struct {
	// Configuration
	ctx       context.Context
	sess      *session.Session
	events    <-chan feed.Event
	status    func() live.Snapshot
	logPath   string
	prefsPath string
	prefs     prefs.Prefs
	reaction  mutation.Kind
	onLoaded  func([]feed.Item)
	copyText  func(string) error
	now       func() time.Time
	log       zerolog.Logger
	keys      keyMap

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool

	// Feed state
	state  feed.ListState
	items  []feed.Item
	cursor int
	top    int

	// Selection mode
	selActive bool
	selCount  int
	selected  map[string]bool

	// Chrome
	spinner     spinner.Model
	showHelp    bool
	showLogs    bool
	logViewport viewport.Model
	liveStatus  live.Snapshot
	flash       string
	flashErr    bool
	flashAt     time.Time
}

// New creates the model and subscribes it to the session hub.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	p := opts.Prefs
	if p.Theme == "" {
		p = prefs.Defaults()
	}
	reaction, ok := mutation.ParseKind(p.DefaultReaction)
	if !ok {
		reaction = mutation.KindLike
	}

	_, events := opts.Session.Hub.Subscribe()
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	st := opts.Session.Engine.State()
	return Model{
		ctx:       ctx,
		sess:      opts.Session,
		events:    events,
		status:    opts.Status,
		logPath:   opts.LogPath,
		prefsPath: opts.PrefsPath,
		prefs:     p,
		reaction:  reaction,
		onLoaded:  opts.OnLoaded,
		copyText:  copyText,
		now:       now,
		log:       opts.Logger,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(p.Theme),
		state:     st,
		items:     st.Items,
		spinner:   sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.events),
		refreshCmd(m.ctx, m.sess.Engine),
		tickCmd(DefaultUIInterval),
		m.spinner.Tick,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.updateLogViewport()
		m.ensureVisible()
		return m, nil

	case hubEventMsg:
		cmd := m.applyEvent(feed.Event(msg))
		return m, tea.Batch(waitForEvent(m.events), cmd)

	case hubClosedMsg:
		return m, nil

	case loadDoneMsg:
		m.handleLoadDone(msg)
		return m, nil

	case mutationDoneMsg:
		m.handleMutationDone(msg)
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.setFlash("copy failed: "+msg.err.Error(), true)
		} else {
			m.setFlash(pluralize(msg.count, "id")+" copied", false)
		}
		return m, nil

	case logTailMsg:
		m.handleLogTail(msg)
		return m, nil

	case tickMsg:
		return m.handleTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	if m.showLogs {
		b.WriteString(m.renderLogs())
	} else {
		b.WriteString(m.renderFeed())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case keyMatches(msg, m.keys.Quit):
		return m, tea.Quit

	case keyMatches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case keyMatches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		if m.prefsPath != "" {
			if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
				m.log.Warn().Err(err).Msg("save prefs")
			}
		}
		return m, nil

	case keyMatches(msg, m.keys.Logs):
		m.showLogs = !m.showLogs
		if m.showLogs {
			return m, readLogsCmd(m.logPath)
		}
		return m, nil

	case keyMatches(msg, m.keys.Escape):
		if m.sess.Selection.Active() {
			m.sess.Selection.Exit()
			m.settleExit()
			return m, nil
		}
		m.showLogs = false
		return m, nil
	}

	if m.showLogs {
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}
	return m.handleFeedKey(msg)
}

// handleFeedKey processes keys that act on the list.
func (m Model) handleFeedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := maxInt(1, m.listHeight()-1)

	switch {
	case keyMatches(msg, m.keys.Refresh):
		return m, refreshCmd(m.ctx, m.sess.Engine)
	case keyMatches(msg, m.keys.Down):
		return m.move(1)
	case keyMatches(msg, m.keys.Up):
		return m.move(-1)
	case keyMatches(msg, m.keys.PageDown):
		return m.move(page)
	case keyMatches(msg, m.keys.PageUp):
		return m.move(-page)
	case keyMatches(msg, m.keys.Top):
		return m.move(-len(m.items))
	case keyMatches(msg, m.keys.Bottom):
		return m.move(len(m.items))
	case keyMatches(msg, m.keys.React):
		return m, m.reactCmd(m.reaction)
	case keyMatches(msg, m.keys.Like):
		return m, m.reactCmd(mutation.KindLike)
	case keyMatches(msg, m.keys.Love):
		return m, m.reactCmd(mutation.KindLove)
	case keyMatches(msg, m.keys.Laugh):
		return m, m.reactCmd(mutation.KindLaugh)
	case keyMatches(msg, m.keys.Select):
		m.toggleSelection()
		return m, nil
	case keyMatches(msg, m.keys.Copy):
		return m, m.copyCmd()
	}
	return m, nil
}

// handleTick refreshes the realtime status and the log pane.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(DefaultUIInterval)}
	if m.status != nil {
		m.liveStatus = m.status()
	}
	if m.flash != "" && m.now().Sub(m.flashAt) >= flashDuration {
		m.flash = ""
	}
	if m.showLogs {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
	m.flashAt = m.now()
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(opts Options) error {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(opts.Context))
	_, err := p.Run()
	return err
}
