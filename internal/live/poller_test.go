package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/five82/feedsync/internal/feed"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second},
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type recordingSink struct {
	mu  sync.Mutex
	got []string
}

func (s *recordingSink) OfferIncomingUpdate(it feed.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, it.ID)
}

func (s *recordingSink) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.got...)
}

type scriptedSource struct {
	mu    sync.Mutex
	pages [][]feed.Item
	errs  []error
	calls int
}

func (s *scriptedSource) FetchPage(_ context.Context, page, _ int) ([]feed.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if page != 0 {
		return nil, errors.New("poller must only read page 0")
	}
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.pages) {
		return s.pages[len(s.pages)-1], nil
	}
	return s.pages[i], nil
}

func TestPoller_OffersOnlyNewOrChangedItemsOldestFirst(t *testing.T) {
	src := &scriptedSource{pages: [][]feed.Item{
		{{ID: "b", Text: "two"}, {ID: "a", Text: "one"}},
		{{ID: "c", Text: "three"}, {ID: "b", Text: "two"}, {ID: "a", Text: "one, edited"}},
		{{ID: "c", Text: "three"}, {ID: "b", Text: "two"}, {ID: "a", Text: "one, edited"}},
	}}
	sink := &recordingSink{}
	p := NewPoller(src, sink)
	ctx := context.Background()

	n, err := p.Poll(ctx)
	if err != nil || n != 2 {
		t.Fatalf("first Poll = %d, %v, want 2, nil", n, err)
	}
	n, err = p.Poll(ctx)
	if err != nil || n != 2 {
		t.Fatalf("second Poll = %d, %v, want 2, nil", n, err)
	}
	n, err = p.Poll(ctx)
	if err != nil || n != 0 {
		t.Fatalf("third Poll = %d, %v, want 0, nil", n, err)
	}

	want := []string{"a", "b", "a", "c"}
	if diff := cmp.Diff(want, sink.ids()); diff != "" {
		t.Fatalf("offered ids mismatch (-want +got):\n%s", diff)
	}
	if got := p.Status().Offered; got != 4 {
		t.Fatalf("Status().Offered = %d, want 4", got)
	}
}

func TestPoller_PrimeSuppressesEcho(t *testing.T) {
	page := []feed.Item{{ID: "x", ReplyCount: 1}, {ID: "y"}}
	src := &scriptedSource{pages: [][]feed.Item{page}}
	sink := &recordingSink{}
	p := NewPoller(src, sink)
	p.Prime(page)

	n, err := p.Poll(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Poll = %d, %v, want 0, nil", n, err)
	}
	if got := sink.ids(); len(got) != 0 {
		t.Fatalf("offered %v, want nothing", got)
	}
}

func TestPoller_FailureUpdatesStatus(t *testing.T) {
	boom := errors.New("boom")
	src := &scriptedSource{
		pages: [][]feed.Item{nil, nil, {{ID: "a"}}},
		errs:  []error{boom, boom},
	}
	p := NewPoller(src, &recordingSink{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := p.Poll(ctx); !errors.Is(err, boom) {
			t.Fatalf("Poll %d error = %v, want boom", i, err)
		}
	}
	snap := p.Status()
	if snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("status = %+v, want offline after 2 failures", snap)
	}

	if _, err := p.Poll(ctx); err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	snap = p.Status()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() || snap.LastError != nil {
		t.Fatalf("status = %+v, want reset after success", snap)
	}
}

func TestPoller_StartStopsOnCancel(t *testing.T) {
	src := &scriptedSource{pages: [][]feed.Item{{{ID: "a"}}}}
	sink := &recordingSink{}
	p := NewPoller(src, sink, WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for len(sink.ids()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("poller never offered an item")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	if got := sink.ids(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("offered %v, want [a]", got)
	}
}
