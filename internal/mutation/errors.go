package mutation

import (
	"errors"
	"fmt"
)

var (
	// ErrMutationInProgress rejects a toggle while the same item still has a
	// write outstanding. Callers should ignore the tap.
	ErrMutationInProgress = errors.New("mutation: already in progress for item")
	// ErrItemNotFound means the item is not in the list.
	ErrItemNotFound = errors.New("mutation: item not in list")
	// ErrMutationFailed matches every MutationError via errors.Is.
	ErrMutationFailed = errors.New("mutation: remote write failed")
)

// MutationError reports a failed remote write. The optimistic change has
// already been rolled back when it is returned.
type MutationError struct {
	ItemID string
	Kind   Kind
	Err    error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("toggle %s on %s: %v", e.Kind, e.ItemID, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

func (e *MutationError) Is(target error) bool {
	return target == ErrMutationFailed
}
