package feed

import (
	"sync"

	"github.com/five82/feedsync/internal/anchor"
)

// EventType identifies what an Event carries.
type EventType int

const (
	// EventState carries a full ListState after a transition.
	EventState EventType = iota
	// EventItemChanged carries one item that was updated or inserted.
	EventItemChanged
	// EventItemRemoved carries the id of an item that left the list.
	EventItemRemoved
	// EventSelectionCount is the cheap label update sent on every selection toggle.
	EventSelectionCount
	// EventSelectionRender asks for a full list re-render once toggles settle.
	EventSelectionRender
	// EventScrollRestore carries a position to scroll back to.
	EventScrollRestore
)

func (t EventType) String() string {
	switch t {
	case EventState:
		return "state"
	case EventItemChanged:
		return "item_changed"
	case EventItemRemoved:
		return "item_removed"
	case EventSelectionCount:
		return "selection_count"
	case EventSelectionRender:
		return "selection_render"
	case EventScrollRestore:
		return "scroll_restore"
	default:
		return "unknown"
	}
}

// Event is a single notification on the observable stream. Only the fields
// relevant to Type are populated.
type Event struct {
	Type EventType

	State ListState

	Item     Item
	ItemID   string
	Index    int
	Inserted bool

	SelectionCount  int
	SelectionActive bool

	Position anchor.Position
}

const subscriberBuffer = 64

// Hub fans events out to subscribers. Sends never block: when a subscriber's
// buffer is full the event is dropped for that subscriber, so consumers should
// treat events as hints and read current state from the engine.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[int]chan Event),
		nextID:      1,
	}
}

// Subscribe registers a new subscriber and returns its id and channel.
func (h *Hub) Subscribe() (int, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Event, subscriberBuffer)
	h.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[id]; ok {
		close(ch)
		delete(h.subscribers, id)
	}
}

// Publish delivers ev to every subscriber without blocking.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount returns the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close unsubscribes everyone.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, id)
	}
}
