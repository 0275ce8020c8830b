package mutation

import (
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/five82/feedsync/internal/feed"
)

// Kind names a reaction, e.g. "like".
type Kind string

const (
	KindLike  Kind = "like"
	KindLove  Kind = "love"
	KindLaugh Kind = "laugh"
)

// Kinds lists the reactions the client offers, in display order.
var Kinds = []Kind{KindLike, KindLove, KindLaugh}

// ParseKind maps a case-insensitive name to a Kind.
func ParseKind(s string) (Kind, bool) {
	name := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Kinds {
		if k == name {
			return k, true
		}
	}
	return "", false
}

// Apply returns the speculative value of it after the user toggles kind.
//
// Toggling the current reaction removes it (count -1). Toggling with no
// reaction adds one (count +1). Switching from one kind to another moves the
// user's vote: old -1, new +1, so TotalReactions is unchanged.
func Apply(it feed.Item, kind Kind) feed.Item {
	out := it.Clone()
	k := string(kind)
	switch out.UserReaction {
	case k:
		decrement(&out, k)
		out.UserReaction = ""
	case "":
		increment(&out, k)
		out.UserReaction = k
	default:
		decrement(&out, out.UserReaction)
		increment(&out, k)
		out.UserReaction = k
	}
	return out
}

func increment(it *feed.Item, k string) {
	if it.Reactions == nil {
		it.Reactions = make(map[string]int)
	}
	it.Reactions[k]++
}

// decrement never drops below zero; a zeroed counter is removed so a toggle
// pair lands back on the original map.
func decrement(it *feed.Item, k string) {
	n := it.Reactions[k]
	if n <= 1 {
		delete(it.Reactions, k)
		return
	}
	it.Reactions[k] = n - 1
}

// Revert undoes a failed toggle on cur, the item's value at rollback time.
//
// When nothing touched the item since the toggle, cur equals speculative and
// previous is returned unchanged. When a newer value already settled the
// user's reaction, such as a refresh from the server, cur is kept as is.
// Otherwise only the reaction delta between previous and speculative is
// backed out, so fields merged in the meantime survive.
func Revert(cur, previous, speculative feed.Item) feed.Item {
	if cmp.Equal(cur, speculative) {
		return previous.Clone()
	}
	if cur.UserReaction != speculative.UserReaction {
		return cur.Clone()
	}
	out := cur.Clone()
	out.UserReaction = previous.UserReaction
	for _, k := range []string{previous.UserReaction, speculative.UserReaction} {
		if k == "" {
			continue
		}
		delta := previous.Reactions[k] - speculative.Reactions[k]
		if delta == 0 {
			continue
		}
		n := out.Reactions[k] + delta
		if n <= 0 {
			delete(out.Reactions, k)
			continue
		}
		if out.Reactions == nil {
			out.Reactions = make(map[string]int)
		}
		out.Reactions[k] = n
	}
	return out
}
