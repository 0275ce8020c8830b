// Package session wires one feed screen: a pagination engine, its scroll
// anchor, the optimistic mutation coordinator and the selection controller,
// all publishing on a single hub. A session lives exactly as long as the
// screen that owns it; nothing here is global.
package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/feedsync/internal/anchor"
	"github.com/five82/feedsync/internal/debounce"
	"github.com/five82/feedsync/internal/feed"
	"github.com/five82/feedsync/internal/mutation"
	"github.com/five82/feedsync/internal/selection"
)

// Deps are the collaborators and tunables a session is built from. Zero
// values fall back to package defaults.
type Deps struct {
	Loader feed.PageLoader
	Writer mutation.Writer

	PageSize          int
	PrefetchThreshold int
	AnchorTTL         time.Duration
	Debounce          time.Duration

	Haptics   selection.Haptics
	Scheduler debounce.Scheduler
	OnRender  func()
	Observer  func(mutation.Outcome)
	Logger    zerolog.Logger
	Clock     func() time.Time
}

// Session is the per-screen object graph.
type Session struct {
	Hub       *feed.Hub
	Engine    *feed.Engine
	Anchor    *anchor.Anchor
	Mutations *mutation.Coordinator
	Selection *selection.Controller
	Viewport  *Viewport

	closeOnce sync.Once
}

// New builds a session. Loader and Writer are required.
func New(d Deps) *Session {
	log := d.Logger
	hub := feed.NewHub()

	var anchorOpts []anchor.Option
	if d.Clock != nil {
		anchorOpts = append(anchorOpts, anchor.WithClock(d.Clock))
	}
	anc := anchor.New(d.AnchorTTL, anchorOpts...)

	engine := feed.NewEngine(d.Loader,
		feed.WithHub(hub),
		feed.WithPageSize(d.PageSize),
		feed.WithPrefetchThreshold(prefetch(d.PrefetchThreshold)),
		feed.WithLogger(log.With().Str("component", "feed").Logger()),
	)

	mutOpts := []mutation.Option{
		mutation.WithLogger(log.With().Str("component", "mutation").Logger()),
	}
	if d.Observer != nil {
		mutOpts = append(mutOpts, mutation.WithObserver(d.Observer))
	}
	coord := mutation.New(engine, d.Writer, mutOpts...)

	vp := &Viewport{}
	selOpts := []selection.Option{
		selection.WithAnchor(anc),
		selection.WithViewport(vp),
		selection.WithHub(hub),
		selection.WithDebounce(d.Debounce),
		selection.WithLogger(log.With().Str("component", "selection").Logger()),
	}
	if d.Haptics != nil {
		selOpts = append(selOpts, selection.WithHaptics(d.Haptics))
	}
	if d.Scheduler != nil {
		selOpts = append(selOpts, selection.WithScheduler(d.Scheduler))
	}
	if d.OnRender != nil {
		selOpts = append(selOpts, selection.WithRender(d.OnRender))
	}
	ctrl := selection.New(engine, selOpts...)

	return &Session{
		Hub:       hub,
		Engine:    engine,
		Anchor:    anc,
		Mutations: coord,
		Selection: ctrl,
		Viewport:  vp,
	}
}

// Close rolls back in-flight mutations, aborts the running load and closes
// every subscriber channel. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.Mutations.CancelAll()
		s.Engine.Cancel()
		s.Hub.Close()
	})
}

// prefetch maps the zero value to the engine default; an explicit zero
// threshold is not expressible through Deps.
func prefetch(n int) int {
	if n <= 0 {
		return feed.DefaultPrefetchThreshold
	}
	return n
}

// Viewport bridges the selection controller and a renderer that only learns
// its scroll position while drawing. The renderer reports with Set and
// picks up restore requests with TakeRestore.
type Viewport struct {
	mu      sync.Mutex
	index   int
	offset  int
	restore *anchor.Position
}

// Set records the first visible row and its pixel offset.
func (v *Viewport) Set(index, offset int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.index, v.offset = index, offset
}

// Position implements selection.Viewport.
func (v *Viewport) Position() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.index, v.offset
}

// ScrollTo implements selection.Viewport.
func (v *Viewport) ScrollTo(p anchor.Position) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.index, v.offset = p.Index, p.OffsetPixels
	pos := p
	v.restore = &pos
}

// TakeRestore returns and clears the last requested scroll target.
func (v *Viewport) TakeRestore() (anchor.Position, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.restore == nil {
		return anchor.Position{}, false
	}
	p := *v.restore
	v.restore = nil
	return p, true
}
