// Package anchor remembers a list scroll position across a screen teardown.
//
// A captured position is one-shot: Restore hands it out once and forgets it.
// Positions older than the TTL are dropped instead of restored, because the
// rows they point at may have changed meaning since.
package anchor

import (
	"sync"
	"time"
)

// DefaultTTL bounds how long a captured position stays restorable.
const DefaultTTL = 3 * time.Minute

// Position is a scroll offset within a list.
type Position struct {
	Index        int
	OffsetPixels int
	CapturedAt   time.Time
}

// Option configures an Anchor.
type Option func(*Anchor)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Anchor) {
		if now != nil {
			a.now = now
		}
	}
}

// Anchor holds at most one captured position.
type Anchor struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	pos *Position
}

// New returns an empty anchor. A non-positive ttl selects DefaultTTL.
func New(ttl time.Duration, opts ...Option) *Anchor {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	a := &Anchor{ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Capture stores the position, replacing any earlier one.
func (a *Anchor) Capture(index, offsetPixels int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pos = &Position{Index: index, OffsetPixels: offsetPixels, CapturedAt: a.now()}
}

// Restore returns the captured position if it has not expired. The stored
// value is cleared either way, so a second call returns false.
func (a *Anchor) Restore() (Position, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	pos := a.pos
	a.pos = nil
	if pos == nil {
		return Position{}, false
	}
	if a.now().Sub(pos.CapturedAt) >= a.ttl {
		return Position{}, false
	}
	return *pos, true
}

// Pending reports whether a position is stored, expired or not.
func (a *Anchor) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pos != nil
}

// TTL returns the expiry window.
func (a *Anchor) TTL() time.Duration {
	return a.ttl
}
