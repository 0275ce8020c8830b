package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

const (
	// DefaultPageSize is the number of items requested per page.
	DefaultPageSize = 20
	// DefaultPrefetchThreshold is how many unrendered trailing items may remain
	// before the host should ask for the next page.
	DefaultPrefetchThreshold = 5
)

// Option configures an Engine.
type Option func(*Engine)

// WithPageSize overrides DefaultPageSize. Non-positive values are ignored.
func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithPrefetchThreshold overrides DefaultPrefetchThreshold. Negative values are ignored.
func WithPrefetchThreshold(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.threshold = n
		}
	}
}

// WithHub publishes events on an existing hub instead of a private one.
func WithHub(h *Hub) Option {
	return func(e *Engine) {
		if h != nil {
			e.hub = h
		}
	}
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine owns a paginated list and its state machine. It is the only writer
// of the item list: realtime pushes, optimistic mutations and flushed
// selection queues all go through ApplyLocalUpdate or UpdateItem.
//
// Refresh and LoadNextPage block for the duration of the PageLoader call and
// are meant to be run off the render loop. At most one load is in flight.
type Engine struct {
	loader    PageLoader
	pageSize  int
	threshold int
	hub       *Hub
	log       zerolog.Logger

	mu       sync.Mutex
	kind     Kind
	items    []Item
	index    map[string]int
	cursor   int
	err      error
	gen      uint64
	inflight bool
	cancel   context.CancelFunc
}

// NewEngine builds an engine in the Initial state.
func NewEngine(loader PageLoader, opts ...Option) *Engine {
	e := &Engine{
		loader:    loader,
		pageSize:  DefaultPageSize,
		threshold: DefaultPrefetchThreshold,
		log:       zerolog.Nop(),
		kind:      KindInitial,
		index:     make(map[string]int),
		cursor:    -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.hub == nil {
		e.hub = NewHub()
	}
	return e
}

// Hub returns the event hub the engine publishes on.
func (e *Engine) Hub() *Hub {
	return e.hub
}

// PageSize returns the configured page size.
func (e *Engine) PageSize() int {
	return e.pageSize
}

// Refresh cancels any in-flight load, fetches page 0 and replaces the list
// wholesale. On failure the previous items and cursor are kept and the state
// becomes KindError. A Refresh that is itself superseded returns ErrSuperseded.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.gen++
	gen := e.gen
	loadCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.inflight = true
	e.kind = KindRefreshing
	e.err = nil
	e.publishStateLocked()
	e.mu.Unlock()

	e.log.Debug().Uint64("gen", gen).Msg("refresh started")
	items, err := e.loader.FetchPage(loadCtx, 0, e.pageSize)
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		e.log.Debug().Uint64("gen", gen).Msg("refresh result discarded")
		return ErrSuperseded
	}
	e.inflight = false
	e.cancel = nil

	if err != nil {
		e.kind = KindError
		e.err = &LoadError{Page: 0, Err: err}
		e.log.Warn().Err(err).Msg("refresh failed")
		e.publishStateLocked()
		return e.err
	}

	e.replaceLocked(items)
	e.cursor = 0
	e.kind = KindSuccess
	e.log.Debug().Int("items", len(e.items)).Msg("refresh complete")
	e.publishStateLocked()
	return nil
}

// LoadNextPage fetches the page after the cursor and appends it. It returns
// false without calling the loader when a load is already in flight or the
// list has reached KindEndOfList. A page shorter than the page size moves the
// engine to KindEndOfList.
func (e *Engine) LoadNextPage(ctx context.Context) (bool, error) {
	e.mu.Lock()
	if e.inflight || e.kind == KindEndOfList {
		e.mu.Unlock()
		return false, nil
	}
	e.gen++
	gen := e.gen
	page := e.cursor + 1
	loadCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.inflight = true
	e.kind = KindLoadingMore
	e.err = nil
	e.publishStateLocked()
	e.mu.Unlock()

	e.log.Debug().Int("page", page).Msg("loading next page")
	items, err := e.loader.FetchPage(loadCtx, page, e.pageSize)
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		e.log.Debug().Int("page", page).Msg("page result discarded after refresh")
		return true, ErrSuperseded
	}
	e.inflight = false
	e.cancel = nil

	if err != nil {
		e.kind = KindError
		e.err = &LoadError{Page: page, Err: err}
		e.log.Warn().Err(err).Int("page", page).Msg("load next page failed")
		e.publishStateLocked()
		return true, e.err
	}

	e.appendLocked(items)
	e.cursor = page
	if len(items) < e.pageSize {
		e.kind = KindEndOfList
	} else {
		e.kind = KindSuccess
	}
	e.log.Debug().Int("page", page).Int("received", len(items)).Str("state", e.kind.String()).Msg("page merged")
	e.publishStateLocked()
	return true, nil
}

// ShouldPrefetch reports whether fewer than the prefetch threshold items
// remain after lastVisible and another page may exist.
func (e *Engine) ShouldPrefetch(lastVisible int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inflight || e.kind == KindEndOfList || len(e.items) == 0 {
		return false
	}
	remaining := len(e.items) - 1 - lastVisible
	return remaining < e.threshold
}

// MaybeLoadMore calls LoadNextPage when ShouldPrefetch(lastVisible) holds.
func (e *Engine) MaybeLoadMore(ctx context.Context, lastVisible int) (bool, error) {
	if !e.ShouldPrefetch(lastVisible) {
		return false, nil
	}
	return e.LoadNextPage(ctx)
}

// Cancel aborts the in-flight load, if any, and discards its result. The
// state falls back to KindSuccess, or KindInitial when nothing was loaded yet.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.inflight {
		return
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.gen++
	e.inflight = false
	if e.cursor < 0 {
		e.kind = KindInitial
	} else {
		e.kind = KindSuccess
	}
	e.publishStateLocked()
}

// ApplyLocalUpdate merges one externally sourced item by id: it replaces the
// existing row in place or prepends a new one. The state Kind never changes.
func (e *Engine) ApplyLocalUpdate(item Item) {
	if item.ID == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mergeLocked(item.Clone())
}

// UpdateItem atomically rewrites the item with the given id. fn receives a
// private copy and returns the new value. It reports false, without calling
// fn, when the id is not in the list.
func (e *Engine) UpdateItem(id string, fn func(Item) Item) (Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx, ok := e.index[id]
	if !ok {
		return Item{}, false
	}
	next := fn(e.items[idx].Clone())
	next.ID = id
	e.mergeLocked(next)
	return next.Clone(), true
}

// RemoveItem drops the item with the given id, e.g. after a realtime delete.
func (e *Engine) RemoveItem(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx, ok := e.index[id]
	if !ok {
		return false
	}
	e.items = append(e.items[:idx], e.items[idx+1:]...)
	e.reindexLocked()
	e.hub.Publish(Event{Type: EventItemRemoved, ItemID: id, Index: idx})
	return true
}

// Seed installs cached items before the first load so the screen is not
// blank while the initial refresh runs. It is ignored once any page loaded.
func (e *Engine) Seed(items []Item) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cursor >= 0 || e.kind != KindInitial {
		return false
	}
	e.replaceLocked(items)
	e.publishStateLocked()
	return true
}

// State returns a copy of the current state.
func (e *Engine) State() ListState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Items returns a copy of the current items.
func (e *Engine) Items() []Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneItems(e.items)
}

// Item returns a copy of the item with the given id.
func (e *Engine) Item(id string) (Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx, ok := e.index[id]
	if !ok {
		return Item{}, false
	}
	return e.items[idx].Clone(), true
}

// IndexOf returns the position of id in the list, or -1.
func (e *Engine) IndexOf(id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if idx, ok := e.index[id]; ok {
		return idx
	}
	return -1
}

// IsSuperseded reports whether err only says a load result was discarded.
func IsSuperseded(err error) bool {
	return errors.Is(err, ErrSuperseded)
}

func (e *Engine) stateLocked() ListState {
	return ListState{
		Kind:  e.kind,
		Items: cloneItems(e.items),
		Err:   e.err,
		Page:  e.cursor,
	}
}

func (e *Engine) publishStateLocked() {
	e.hub.Publish(Event{Type: EventState, State: e.stateLocked()})
}

func (e *Engine) replaceLocked(items []Item) {
	e.items = make([]Item, 0, len(items))
	e.index = make(map[string]int, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		if idx, dup := e.index[it.ID]; dup {
			e.items[idx] = it.Clone()
			continue
		}
		e.index[it.ID] = len(e.items)
		e.items = append(e.items, it.Clone())
	}
}

// appendLocked keeps server order. Rows already present (the server list
// shifted between pages) are refreshed in place rather than duplicated.
func (e *Engine) appendLocked(items []Item) {
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		if idx, ok := e.index[it.ID]; ok {
			e.items[idx] = it.Clone()
			continue
		}
		e.index[it.ID] = len(e.items)
		e.items = append(e.items, it.Clone())
	}
}

func (e *Engine) mergeLocked(item Item) {
	if idx, ok := e.index[item.ID]; ok {
		e.items[idx] = item
		e.hub.Publish(Event{Type: EventItemChanged, Item: item.Clone(), ItemID: item.ID, Index: idx})
		return
	}
	e.items = append([]Item{item}, e.items...)
	e.reindexLocked()
	e.hub.Publish(Event{Type: EventItemChanged, Item: item.Clone(), ItemID: item.ID, Index: 0, Inserted: true})
}

func (e *Engine) reindexLocked() {
	e.index = make(map[string]int, len(e.items))
	for idx, it := range e.items {
		e.index[it.ID] = idx
	}
}
