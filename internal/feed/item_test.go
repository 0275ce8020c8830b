package feed

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestItemClone_IsDeepAndPreservesNil(t *testing.T) {
	orig := Item{ID: "a", Media: []string{"m1"}, Reactions: map[string]int{"like": 2}}
	dup := orig.Clone()
	dup.Media[0] = "changed"
	dup.Reactions["like"] = 9
	if orig.Media[0] != "m1" || orig.Reactions["like"] != 2 {
		t.Fatalf("Clone shared storage: %+v", orig)
	}

	bare := Item{ID: "b"}
	if diff := cmp.Diff(bare, bare.Clone()); diff != "" {
		t.Fatalf("Clone of bare item differs (-want +got):\n%s", diff)
	}
	if bare.Clone().Reactions != nil {
		t.Fatal("Clone allocated a Reactions map for a nil map")
	}
}

func TestItemTotalReactions(t *testing.T) {
	it := Item{Reactions: map[string]int{"like": 3, "love": 2}}
	if got := it.TotalReactions(); got != 5 {
		t.Fatalf("TotalReactions = %d, want 5", got)
	}
	if got := it.ReactionCount("laugh"); got != 0 {
		t.Fatalf("ReactionCount(laugh) = %d, want 0", got)
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindInitial:     "initial",
		KindRefreshing:  "refreshing",
		KindLoadingMore: "loading_more",
		KindSuccess:     "success",
		KindError:       "error",
		KindEndOfList:   "end_of_list",
		Kind(42):        "kind(42)",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
