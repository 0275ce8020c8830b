package mutation

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/feedsync/internal/feed"
)

// Writer sends one reaction toggle to the backend. The coordinator makes a
// single attempt per toggle and never retries.
type Writer interface {
	Write(ctx context.Context, itemID string, kind Kind) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(ctx context.Context, itemID string, kind Kind) error

// Write calls f.
func (f WriterFunc) Write(ctx context.Context, itemID string, kind Kind) error {
	return f(ctx, itemID, kind)
}

// Store is the list the coordinator mutates. *feed.Engine satisfies it.
type Store interface {
	UpdateItem(id string, fn func(feed.Item) feed.Item) (feed.Item, bool)
}

var _ Store = (*feed.Engine)(nil)

// Result is the terminal state of one mutation.
type Result int

const (
	Committed Result = iota
	RolledBack
)

func (r Result) String() string {
	if r == Committed {
		return "committed"
	}
	return "rolled_back"
}

// Outcome describes a reconciled mutation.
type Outcome struct {
	ItemID      string
	Kind        Kind
	Result      Result
	Previous    feed.Item
	Speculative feed.Item
	Err         error
}

// pendingMutation lives for one in-flight toggle.
type pendingMutation struct {
	kind        Kind
	previous    feed.Item
	speculative feed.Item
	cancel      context.CancelFunc
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// WithObserver registers a callback invoked after every reconcile.
func WithObserver(fn func(Outcome)) Option {
	return func(c *Coordinator) { c.observer = fn }
}

// Coordinator applies reaction toggles optimistically and reconciles them
// against the backend. At most one toggle is in flight per item; different
// items may mutate concurrently.
type Coordinator struct {
	store    Store
	writer   Writer
	log      zerolog.Logger
	observer func(Outcome)

	mu      sync.Mutex
	pending map[string]*pendingMutation
}

// New builds a coordinator over store and writer.
func New(store Store, writer Writer, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:   store,
		writer:  writer,
		log:     zerolog.Nop(),
		pending: make(map[string]*pendingMutation),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Toggle applies kind to the item locally, then writes it remotely. It blocks
// until the write resolves. On failure the toggle is undone (see Revert) and
// a *MutationError is returned; an item nobody else touched is restored to
// its exact previous value.
func (c *Coordinator) Toggle(ctx context.Context, itemID string, kind Kind) error {
	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if _, busy := c.pending[itemID]; busy {
		c.mu.Unlock()
		c.log.Debug().Str("item", itemID).Str("kind", string(kind)).Msg("toggle rejected, mutation in progress")
		return ErrMutationInProgress
	}
	pm := &pendingMutation{kind: kind, cancel: cancel}
	c.pending[itemID] = pm
	c.mu.Unlock()

	speculative, ok := c.store.UpdateItem(itemID, func(cur feed.Item) feed.Item {
		pm.previous = cur.Clone()
		return Apply(cur, kind)
	})
	if !ok {
		c.finish(itemID)
		return ErrItemNotFound
	}
	pm.speculative = speculative
	previous := pm.previous

	err := c.writer.Write(writeCtx, itemID, kind)
	if err == nil {
		c.finish(itemID)
		c.log.Debug().Str("item", itemID).Str("kind", string(kind)).Msg("reaction committed")
		c.notify(Outcome{ItemID: itemID, Kind: kind, Result: Committed, Previous: previous, Speculative: speculative})
		return nil
	}

	// Items that left the list meanwhile are not resurrected, and values
	// merged while the write was out are kept.
	c.store.UpdateItem(itemID, func(cur feed.Item) feed.Item {
		return Revert(cur, pm.previous, pm.speculative)
	})
	c.finish(itemID)

	mErr := &MutationError{ItemID: itemID, Kind: kind, Err: err}
	c.log.Warn().Err(err).Str("item", itemID).Str("kind", string(kind)).Msg("reaction rolled back")
	c.notify(Outcome{ItemID: itemID, Kind: kind, Result: RolledBack, Previous: previous, Speculative: speculative, Err: mErr})
	return mErr
}

// Pending reports whether itemID has a write outstanding.
func (c *Coordinator) Pending(itemID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[itemID]
	return ok
}

// InFlight returns the number of outstanding writes.
func (c *Coordinator) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// CancelAll aborts every outstanding write. Each cancelled toggle rolls back
// as a failure.
func (c *Coordinator) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, pm := range c.pending {
		pm.cancel()
	}
}

func (c *Coordinator) finish(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, itemID)
}

func (c *Coordinator) notify(o Outcome) {
	if c.observer != nil {
		c.observer(o)
	}
}
