// Package selection implements the multi-select interaction layered over a
// feed list.
//
// While selection mode is active, incoming live updates are queued rather than
// applied, so rows keep their positions under the user's finger. Exiting the
// mode restores the scroll position captured on entry and then flushes the
// queue into the list in arrival order.
package selection

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/feedsync/internal/anchor"
	"github.com/five82/feedsync/internal/debounce"
	"github.com/five82/feedsync/internal/feed"
)

// DefaultDebounce is the quiet period before a full re-render after toggles.
const DefaultDebounce = 100 * time.Millisecond

// Applier receives items once they may touch the visible list.
// *feed.Engine satisfies it.
type Applier interface {
	ApplyLocalUpdate(item feed.Item)
}

var _ Applier = (*feed.Engine)(nil)

// Feedback names a haptic cue.
type Feedback int

const (
	FeedbackEnter Feedback = iota
	FeedbackToggle
	FeedbackExit
)

// Haptics plays a cue. Failures are logged and otherwise ignored.
type Haptics interface {
	Perform(Feedback) error
}

// NopHaptics does nothing.
type NopHaptics struct{}

// Perform implements Haptics.
func (NopHaptics) Perform(Feedback) error { return nil }

// Viewport exposes the host's scroll position.
type Viewport interface {
	Position() (index, offsetPixels int)
	ScrollTo(pos anchor.Position)
}

// Option configures a Controller.
type Option func(*Controller)

// WithAnchor sets the anchor used to save and restore scroll position.
func WithAnchor(a *anchor.Anchor) Option {
	return func(c *Controller) { c.anchor = a }
}

// WithViewport sets the host viewport.
func WithViewport(v Viewport) Option {
	return func(c *Controller) { c.viewport = v }
}

// WithHaptics sets the haptic sink.
func WithHaptics(h Haptics) Option {
	return func(c *Controller) {
		if h != nil {
			c.haptics = h
		}
	}
}

// WithHub publishes selection events on h.
func WithHub(h *feed.Hub) Option {
	return func(c *Controller) { c.hub = h }
}

// WithScheduler replaces the timer used for debouncing.
func WithScheduler(s debounce.Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithRender registers a callback for the debounced full re-render.
func WithRender(fn func()) Option {
	return func(c *Controller) { c.onRender = fn }
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller is the selection mode state machine: Inactive, or Active with a
// non-empty selection.
type Controller struct {
	sink     Applier
	anchor   *anchor.Anchor
	viewport Viewport
	haptics  Haptics
	hub      *feed.Hub
	sched    debounce.Scheduler
	delay    time.Duration
	onRender func()
	log      zerolog.Logger
	render   *debounce.Debouncer

	mu       sync.Mutex
	flushMu  sync.Mutex
	selected map[string]struct{}
	order    []string
	queue    []feed.Item
}

// New builds an inactive controller that applies updates to sink.
func New(sink Applier, opts ...Option) *Controller {
	c := &Controller{
		sink:     sink,
		haptics:  NopHaptics{},
		delay:    DefaultDebounce,
		log:      zerolog.Nop(),
		selected: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.render = debounce.New(c.sched, c.delay, c.fireRender)
	return c
}

// Enter activates selection mode with itemID selected. It reports false and
// does nothing when the mode is already active.
func (c *Controller) Enter(itemID string) bool {
	c.mu.Lock()
	if len(c.selected) > 0 {
		c.mu.Unlock()
		return false
	}
	c.selected[itemID] = struct{}{}
	c.order = []string{itemID}
	if c.anchor != nil && c.viewport != nil {
		idx, off := c.viewport.Position()
		c.anchor.Capture(idx, off)
	}
	c.mu.Unlock()

	c.feedback(FeedbackEnter)
	c.log.Debug().Str("item", itemID).Msg("selection mode entered")
	c.publishCount(1, true)
	c.hub.Publish(feed.Event{Type: feed.EventSelectionRender})
	return true
}

// Toggle flips itemID in the selection. It reports false when the mode is
// inactive. Removing the last selected item exits the mode.
func (c *Controller) Toggle(itemID string) bool {
	c.mu.Lock()
	if len(c.selected) == 0 {
		c.mu.Unlock()
		return false
	}
	if _, ok := c.selected[itemID]; ok {
		delete(c.selected, itemID)
		c.order = removeID(c.order, itemID)
	} else {
		c.selected[itemID] = struct{}{}
		c.order = append(c.order, itemID)
	}
	count := len(c.selected)
	if count == 0 {
		c.exitLocked()
		return true
	}
	c.mu.Unlock()

	c.feedback(FeedbackToggle)
	c.publishCount(count, true)
	c.render.Trigger()
	return true
}

// Exit leaves selection mode: the selection is cleared, a pending re-render
// is cancelled, the captured scroll position is restored and queued updates
// are flushed in arrival order. It is a no-op when inactive.
func (c *Controller) Exit() {
	c.mu.Lock()
	if len(c.selected) == 0 {
		c.mu.Unlock()
		return
	}
	c.exitLocked()
}

// exitLocked is entered with mu held and releases it. flushMu is taken
// before mu is dropped so updates offered after the switch wait for the
// queue to drain. The anchor is consumed under mu, so an Enter that races
// the rest of the exit keeps its own capture.
func (c *Controller) exitLocked() {
	c.selected = make(map[string]struct{})
	c.order = nil
	c.render.Cancel()
	queued := c.queue
	c.queue = nil
	var (
		pos      anchor.Position
		restored bool
	)
	if c.anchor != nil {
		pos, restored = c.anchor.Restore()
	}
	c.flushMu.Lock()
	defer c.flushMu.Unlock()
	c.mu.Unlock()

	c.feedback(FeedbackExit)
	c.publishCount(0, false)

	if restored {
		if c.viewport != nil {
			c.viewport.ScrollTo(pos)
		}
		c.hub.Publish(feed.Event{Type: feed.EventScrollRestore, Position: pos})
	}

	for _, it := range queued {
		c.sink.ApplyLocalUpdate(it)
	}
	c.log.Debug().Int("flushed", len(queued)).Msg("selection mode exited")
	c.hub.Publish(feed.Event{Type: feed.EventSelectionRender})
}

// OfferIncomingUpdate queues item while the mode is active and applies it
// immediately otherwise.
func (c *Controller) OfferIncomingUpdate(item feed.Item) {
	c.mu.Lock()
	if len(c.selected) > 0 {
		c.queue = append(c.queue, item.Clone())
		c.mu.Unlock()
		return
	}
	c.flushMu.Lock()
	defer c.flushMu.Unlock()
	c.mu.Unlock()
	c.sink.ApplyLocalUpdate(item)
}

// Active reports whether selection mode is on.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.selected) > 0
}

// Count returns the number of selected items.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.selected)
}

// IsSelected reports whether itemID is selected.
func (c *Controller) IsSelected(itemID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.selected[itemID]
	return ok
}

// Selected returns the selected ids in the order they were picked.
func (c *Controller) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Queued returns the number of updates waiting for exit.
func (c *Controller) Queued() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

func (c *Controller) fireRender() {
	c.hub.Publish(feed.Event{Type: feed.EventSelectionRender})
	if c.onRender != nil {
		c.onRender()
	}
}

func (c *Controller) publishCount(n int, active bool) {
	c.hub.Publish(feed.Event{Type: feed.EventSelectionCount, SelectionCount: n, SelectionActive: active})
}

func (c *Controller) feedback(f Feedback) {
	if err := c.haptics.Perform(f); err != nil {
		c.log.Debug().Err(err).Int("feedback", int(f)).Msg("haptic feedback unavailable")
	}
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
