package live

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot is the latest realtime poll outcome, for the status bar.
type Snapshot struct {
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
	Offered             int // items handed to the sink since start
}

// IsOffline returns true when the feed has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Status coordinates concurrent updates to the snapshot. The zero value is
// ready to use.
type Status struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Record stores the result of one poll. On error the offered total is kept
// and the failure counter grows.
func (s *Status) Record(offered int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.Offered += offered
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Status) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
