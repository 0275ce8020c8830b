package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadFailed matches every LoadError via errors.Is.
	ErrLoadFailed = errors.New("feed: page load failed")
	// ErrSuperseded is returned by a load whose result was discarded because a
	// newer refresh reset the cursor while it was in flight.
	ErrSuperseded = errors.New("feed: load superseded by refresh")
)

// LoadError reports a failed page fetch. It is recoverable: the previously
// shown items are kept and the caller may retry with a fresh call.
type LoadError struct {
	Page int
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load page %d: %v", e.Page, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Is(target error) bool {
	return target == ErrLoadFailed
}
