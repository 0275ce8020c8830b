package feed

import "fmt"

// Kind tags the active variant of ListState.
type Kind int

const (
	KindInitial Kind = iota
	KindRefreshing
	KindLoadingMore
	KindSuccess
	KindError
	KindEndOfList
)

func (k Kind) String() string {
	switch k {
	case KindInitial:
		return "initial"
	case KindRefreshing:
		return "refreshing"
	case KindLoadingMore:
		return "loading_more"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	case KindEndOfList:
		return "end_of_list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Loading reports whether a page load is outstanding in this state.
func (k Kind) Loading() bool {
	return k == KindRefreshing || k == KindLoadingMore
}

// ListState is an immutable view of the engine at one transition. Items always
// holds the last successfully merged page set, whatever the Kind.
type ListState struct {
	Kind  Kind
	Items []Item
	// Err is set only for KindError and wraps ErrLoadFailed.
	Err error
	// Page is the index of the last page merged, -1 before the first one.
	Page int
}

// Message returns the text shown next to the retry affordance.
func (s ListState) Message() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Len is shorthand for len(s.Items).
func (s ListState) Len() int {
	return len(s.Items)
}
