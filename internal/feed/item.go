package feed

import (
	"maps"
	"slices"
	"time"
)

// Item is one post or message in a remotely sourced list. ID is stable and
// unique within a list; every other field may change between fetches.
type Item struct {
	ID           string         `json:"id"`
	Author       string         `json:"author"`
	Text         string         `json:"text"`
	Media        []string       `json:"media,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	ReplyCount   int            `json:"replyCount"`
	Reactions    map[string]int `json:"reactions,omitempty"`
	UserReaction string         `json:"userReaction,omitempty"`
}

// Clone returns a deep copy. Nil slices and maps stay nil so a restored clone
// compares equal to the original.
func (i Item) Clone() Item {
	dup := i
	if i.Media != nil {
		dup.Media = slices.Clone(i.Media)
	}
	if i.Reactions != nil {
		dup.Reactions = maps.Clone(i.Reactions)
	}
	return dup
}

// TotalReactions sums the per-kind reaction counters.
func (i Item) TotalReactions() int {
	total := 0
	for _, n := range i.Reactions {
		total += n
	}
	return total
}

// ReactionCount returns the counter for one reaction kind.
func (i Item) ReactionCount(kind string) int {
	return i.Reactions[kind]
}

func cloneItems(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	dup := make([]Item, len(items))
	for idx, it := range items {
		dup[idx] = it.Clone()
	}
	return dup
}
