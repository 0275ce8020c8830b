package selection

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/five82/feedsync/internal/anchor"
	"github.com/five82/feedsync/internal/debounce"
	"github.com/five82/feedsync/internal/feed"
)

type fakeViewport struct {
	index, offset int
	scrolledTo    []anchor.Position
}

func (v *fakeViewport) Position() (int, int)       { return v.index, v.offset }
func (v *fakeViewport) ScrollTo(p anchor.Position) { v.scrolledTo = append(v.scrolledTo, p) }

type recordingHaptics struct {
	got []Feedback
	err error
}

func (h *recordingHaptics) Perform(f Feedback) error {
	h.got = append(h.got, f)
	return h.err
}

type harness struct {
	engine   *feed.Engine
	ctrl     *Controller
	sched    *debounce.ManualScheduler
	viewport *fakeViewport
	haptics  *recordingHaptics
	renders  int
	events   <-chan feed.Event
}

func newHarness(t *testing.T, haptErr error) *harness {
	t.Helper()
	items := []feed.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	e := feed.NewEngine(feed.PageLoaderFunc(func(context.Context, int, int) ([]feed.Item, error) {
		return items, nil
	}))
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	h := &harness{
		engine:   e,
		sched:    debounce.NewManualScheduler(),
		viewport: &fakeViewport{index: 7, offset: 42},
		haptics:  &recordingHaptics{err: haptErr},
	}
	_, h.events = e.Hub().Subscribe()
	h.ctrl = New(e,
		WithAnchor(anchor.New(time.Minute)),
		WithViewport(h.viewport),
		WithHaptics(h.haptics),
		WithHub(e.Hub()),
		WithScheduler(h.sched),
		WithRender(func() { h.renders++ }),
	)
	return h
}

func (h *harness) drain() []feed.Event {
	var out []feed.Event
	for {
		select {
		case ev := <-h.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func ids(items []feed.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestEnter_ActivatesOnceAndCapturesPosition(t *testing.T) {
	h := newHarness(t, nil)
	if !h.ctrl.Enter("a") {
		t.Fatal("Enter = false, want true")
	}
	if h.ctrl.Enter("b") {
		t.Fatal("second Enter = true, want no-op")
	}
	if diff := cmp.Diff([]string{"a"}, h.ctrl.Selected()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Feedback{FeedbackEnter}, h.haptics.got); diff != "" {
		t.Fatalf("haptics mismatch (-want +got):\n%s", diff)
	}

	h.ctrl.Exit()
	if len(h.viewport.scrolledTo) != 1 {
		t.Fatalf("ScrollTo calls = %d, want 1", len(h.viewport.scrolledTo))
	}
	got := h.viewport.scrolledTo[0]
	if got.Index != 7 || got.OffsetPixels != 42 {
		t.Fatalf("restored position = %+v, want index 7 offset 42", got)
	}
}

func TestOfferIncomingUpdate_QueuedWhileActiveFlushedInOrder(t *testing.T) {
	h := newHarness(t, nil)
	before := ids(h.engine.Items())

	h.ctrl.Enter("b")
	h.ctrl.OfferIncomingUpdate(feed.Item{ID: "n1"})
	h.ctrl.OfferIncomingUpdate(feed.Item{ID: "a", Text: "edited"})
	h.ctrl.OfferIncomingUpdate(feed.Item{ID: "n2"})

	if diff := cmp.Diff(before, ids(h.engine.Items())); diff != "" {
		t.Fatalf("visible list changed while active (-want +got):\n%s", diff)
	}
	if a, _ := h.engine.Item("a"); a.Text != "" {
		t.Fatalf("queued edit leaked: %+v", a)
	}
	if h.ctrl.Queued() != 3 {
		t.Fatalf("Queued = %d, want 3", h.ctrl.Queued())
	}
	h.drain()

	h.ctrl.Exit()
	if diff := cmp.Diff([]string{"n2", "n1", "a", "b", "c"}, ids(h.engine.Items())); diff != "" {
		t.Fatalf("list after flush mismatch (-want +got):\n%s", diff)
	}
	if a, _ := h.engine.Item("a"); a.Text != "edited" {
		t.Fatalf("a.Text = %q, want edited", a.Text)
	}
	if h.ctrl.Queued() != 0 {
		t.Fatalf("Queued = %d after exit, want 0", h.ctrl.Queued())
	}

	var applied []string
	for _, ev := range h.drain() {
		if ev.Type == feed.EventItemChanged {
			applied = append(applied, ev.ItemID)
		}
	}
	if diff := cmp.Diff([]string{"n1", "a", "n2"}, applied); diff != "" {
		t.Fatalf("flush order mismatch (-want +got):\n%s", diff)
	}
}

func TestOfferIncomingUpdate_InactiveAppliesImmediately(t *testing.T) {
	h := newHarness(t, nil)
	h.ctrl.OfferIncomingUpdate(feed.Item{ID: "live"})
	if h.engine.IndexOf("live") != 0 {
		t.Fatalf("IndexOf(live) = %d, want 0", h.engine.IndexOf("live"))
	}
	if h.ctrl.Queued() != 0 {
		t.Fatalf("Queued = %d, want 0", h.ctrl.Queued())
	}
}

func TestToggle_RemovingLastExits(t *testing.T) {
	h := newHarness(t, nil)
	if h.ctrl.Toggle("a") {
		t.Fatal("Toggle while inactive = true, want false")
	}

	h.ctrl.Enter("a")
	h.ctrl.Toggle("b")
	if h.ctrl.Count() != 2 {
		t.Fatalf("Count = %d, want 2", h.ctrl.Count())
	}
	h.ctrl.Toggle("a")
	h.ctrl.Toggle("b")
	if h.ctrl.Active() {
		t.Fatal("still active after last item removed")
	}
	if h.ctrl.Count() != 0 {
		t.Fatalf("Count = %d, want 0", h.ctrl.Count())
	}
	if len(h.viewport.scrolledTo) != 1 {
		t.Fatalf("ScrollTo calls = %d, want 1 (auto exit restores)", len(h.viewport.scrolledTo))
	}
}

func TestToggle_CountImmediateRenderDebounced(t *testing.T) {
	h := newHarness(t, nil)
	h.ctrl.Enter("a")
	h.drain()

	for _, id := range []string{"b", "c", "d", "e"} {
		h.ctrl.Toggle(id)
		h.sched.Advance(40 * time.Millisecond)
	}

	var counts []int
	renders := 0
	for _, ev := range h.drain() {
		switch ev.Type {
		case feed.EventSelectionCount:
			counts = append(counts, ev.SelectionCount)
		case feed.EventSelectionRender:
			renders++
		}
	}
	if diff := cmp.Diff([]int{2, 3, 4, 5}, counts); diff != "" {
		t.Fatalf("count signals mismatch (-want +got):\n%s", diff)
	}
	if renders != 0 || h.renders != 0 {
		t.Fatalf("renders during rapid toggles = %d/%d, want 0", renders, h.renders)
	}

	h.sched.Advance(DefaultDebounce)
	if h.renders != 1 {
		t.Fatalf("renders after quiet period = %d, want 1", h.renders)
	}
}

func TestExit_CancelsPendingRender(t *testing.T) {
	h := newHarness(t, nil)
	h.ctrl.Enter("a")
	h.ctrl.Toggle("b")
	h.ctrl.Exit()
	h.sched.Advance(time.Second)
	if h.renders != 0 {
		t.Fatalf("debounced render fired after exit: %d", h.renders)
	}
	if h.sched.Len() != 0 {
		t.Fatalf("timers left = %d, want 0", h.sched.Len())
	}
}

// reenterHaptics re-enters selection mode from inside the exit cue, the
// window between the exit dropping its lock and finishing the restore.
type reenterHaptics struct {
	ctrl     *Controller
	viewport *fakeViewport
	done     bool
}

func (h *reenterHaptics) Perform(f Feedback) error {
	if f == FeedbackExit && !h.done {
		h.done = true
		h.viewport.index, h.viewport.offset = 1, 5
		h.ctrl.Enter("c")
	}
	return nil
}

func TestExit_RestoreDoesNotConsumeConcurrentCapture(t *testing.T) {
	e := feed.NewEngine(feed.PageLoaderFunc(func(context.Context, int, int) ([]feed.Item, error) {
		return []feed.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}, nil
	}))
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	vp := &fakeViewport{index: 7, offset: 42}
	a := anchor.New(time.Minute)
	haptics := &reenterHaptics{viewport: vp}
	ctrl := New(e,
		WithAnchor(a),
		WithViewport(vp),
		WithHaptics(haptics),
		WithScheduler(debounce.NewManualScheduler()),
	)
	haptics.ctrl = ctrl

	ctrl.Enter("a")
	ctrl.Exit()

	want := []anchor.Position{{Index: 7, OffsetPixels: 42}}
	if diff := cmp.Diff(want, vp.scrolledTo, cmpopts.IgnoreFields(anchor.Position{}, "CapturedAt")); diff != "" {
		t.Fatalf("ScrollTo mismatch (-want +got):\n%s", diff)
	}
	if !ctrl.Active() {
		t.Fatal("re-entered selection not active")
	}
	if !a.Pending() {
		t.Fatal("capture from the re-entry was consumed by the exit")
	}
	ctrl.Exit()
	if n := len(vp.scrolledTo); n != 2 || vp.scrolledTo[1].Index != 1 || vp.scrolledTo[1].OffsetPixels != 5 {
		t.Fatalf("second restore = %+v, want index 1 offset 5", vp.scrolledTo)
	}
}

func TestExit_InactiveIsNoop(t *testing.T) {
	h := newHarness(t, nil)
	h.ctrl.Exit()
	if len(h.haptics.got) != 0 {
		t.Fatalf("haptics = %v, want none", h.haptics.got)
	}
}

func TestHapticFailuresAreSwallowed(t *testing.T) {
	h := newHarness(t, errors.New("no vibrator"))
	h.ctrl.Enter("a")
	h.ctrl.Toggle("b")
	h.ctrl.Exit()
	if diff := cmp.Diff([]Feedback{FeedbackEnter, FeedbackToggle, FeedbackExit}, h.haptics.got); diff != "" {
		t.Fatalf("haptics mismatch (-want +got):\n%s", diff)
	}
	if h.ctrl.Active() {
		t.Fatal("controller active after exit")
	}
}

func TestNew_DefaultsAcceptNoopCollaborators(t *testing.T) {
	e := feed.NewEngine(feed.PageLoaderFunc(func(context.Context, int, int) ([]feed.Item, error) {
		return nil, nil
	}))
	c := New(e)
	c.Enter("x")
	for i := range 3 {
		c.OfferIncomingUpdate(feed.Item{ID: fmt.Sprintf("q%d", i)})
	}
	c.Exit()
	if got := len(e.Items()); got != 3 {
		t.Fatalf("items after flush = %d, want 3", got)
	}
}
