package live

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/feedsync/internal/feed"
)

const (
	// DefaultInterval is the cadence between successful polls.
	DefaultInterval = 5 * time.Second
	maxBackoff      = 30 * time.Second
)

// Sink receives realtime items. *selection.Controller implements it, so
// pushes are held back while the user is selecting.
type Sink interface {
	OfferIncomingUpdate(item feed.Item)
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithPageSize sets how many head items each poll requests.
func WithPageSize(n int) Option {
	return func(p *Poller) {
		if n > 0 {
			p.pageSize = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Poller) { p.log = l }
}

// Poller watches the head of the feed and offers new or changed items to a
// Sink. It stands in for a push channel when the backend only serves pages.
type Poller struct {
	src      feed.PageLoader
	sink     Sink
	interval time.Duration
	pageSize int
	log      zerolog.Logger
	status   Status

	mu   sync.Mutex
	seen map[string]uint64
}

// NewPoller builds a poller reading page 0 of src.
func NewPoller(src feed.PageLoader, sink Sink, opts ...Option) *Poller {
	p := &Poller{
		src:      src,
		sink:     sink,
		interval: DefaultInterval,
		pageSize: feed.DefaultPageSize,
		log:      zerolog.Nop(),
		seen:     make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Status returns the latest poll outcome.
func (p *Poller) Status() Snapshot {
	return p.status.Snapshot()
}

// Prime marks items as already delivered, typically the first page the
// engine loaded, so the first poll does not echo them back.
func (p *Poller) Prime(items []feed.Item) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, it := range items {
		p.seen[it.ID] = fingerprint(it)
	}
}

// Start launches the polling goroutine. It returns immediately and stops
// when ctx is cancelled. Failures back off exponentially up to maxBackoff.
func (p *Poller) Start(ctx context.Context) {
	go func() {
		failures := 0
		for {
			wait := p.interval
			if _, err := p.Poll(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				failures++
				wait = calculateBackoff(failures, p.interval)
				p.log.Warn().Err(err).Int("failures", failures).Dur("retry_in", wait).Msg("feed poll failed")
			} else {
				failures = 0
			}
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// Poll runs one round and returns how many items were offered. Items are
// offered oldest first so that prepends leave the newest on top.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	items, err := p.src.FetchPage(ctx, 0, p.pageSize)
	if err != nil {
		p.status.Record(0, err)
		return 0, err
	}

	var fresh []feed.Item
	p.mu.Lock()
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if it.ID == "" {
			continue
		}
		fp := fingerprint(it)
		if prev, ok := p.seen[it.ID]; ok && prev == fp {
			continue
		}
		p.seen[it.ID] = fp
		fresh = append(fresh, it)
	}
	p.mu.Unlock()

	for _, it := range fresh {
		p.sink.OfferIncomingUpdate(it)
	}
	if len(fresh) > 0 {
		p.log.Debug().Int("offered", len(fresh)).Msg("realtime items offered")
	}
	p.status.Record(len(fresh), nil)
	return len(fresh), nil
}

// calculateBackoff doubles base once per failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

func fingerprint(it feed.Item) uint64 {
	h := fnv.New64a()
	// Item only holds strings, ints, slices and maps; Marshal cannot fail
	// and sorts map keys, so equal items hash equally.
	b, _ := json.Marshal(it)
	_, _ = h.Write(b)
	return h.Sum64()
}
