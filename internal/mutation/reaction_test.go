package mutation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/five82/feedsync/internal/feed"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name      string
		in        feed.Item
		kind      Kind
		wantUser  string
		wantCount map[string]int
	}{
		{
			name:      "add to empty",
			in:        feed.Item{ID: "a"},
			kind:      KindLike,
			wantUser:  "like",
			wantCount: map[string]int{"like": 1},
		},
		{
			name:      "remove own",
			in:        feed.Item{ID: "a", UserReaction: "like", Reactions: map[string]int{"like": 3}},
			kind:      KindLike,
			wantUser:  "",
			wantCount: map[string]int{"like": 2},
		},
		{
			name:      "switch kind",
			in:        feed.Item{ID: "a", UserReaction: "like", Reactions: map[string]int{"like": 3, "love": 1}},
			kind:      KindLove,
			wantUser:  "love",
			wantCount: map[string]int{"like": 2, "love": 2},
		},
		{
			name:      "remove never goes negative",
			in:        feed.Item{ID: "a", UserReaction: "laugh"},
			kind:      KindLaugh,
			wantUser:  "",
			wantCount: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.in, tt.kind)
			if got.UserReaction != tt.wantUser {
				t.Fatalf("UserReaction = %q, want %q", got.UserReaction, tt.wantUser)
			}
			if diff := cmp.Diff(tt.wantCount, got.Reactions, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("Reactions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := feed.Item{ID: "a", Reactions: map[string]int{"like": 1}}
	_ = Apply(in, KindLike)
	if in.Reactions["like"] != 1 || in.UserReaction != "" {
		t.Fatalf("input mutated: %+v", in)
	}
}

func TestApply_SameKindTwiceRestoresOriginal(t *testing.T) {
	orig := feed.Item{ID: "a", Reactions: map[string]int{"like": 4, "love": 2}}
	got := Apply(Apply(orig, KindLike), KindLike)
	if diff := cmp.Diff(orig, got); diff != "" {
		t.Fatalf("double toggle drifted (-want +got):\n%s", diff)
	}
}

func TestApply_KindChangePreservesTotal(t *testing.T) {
	orig := feed.Item{ID: "a", Reactions: map[string]int{"like": 4, "love": 2, "laugh": 1}}
	for _, a := range Kinds {
		for _, b := range Kinds {
			if a == b {
				continue
			}
			afterA := Apply(orig, a)
			afterB := Apply(afterA, b)
			if afterB.TotalReactions() != afterA.TotalReactions() {
				t.Errorf("%s->%s total = %d, want %d", a, b, afterB.TotalReactions(), afterA.TotalReactions())
			}
			if afterB.UserReaction != string(b) {
				t.Errorf("%s->%s UserReaction = %q, want %q", a, b, afterB.UserReaction, b)
			}
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in     string
		want   Kind
		wantOK bool
	}{
		{"like", KindLike, true},
		{" LOVE ", KindLove, true},
		{"Laugh", KindLaugh, true},
		{"angry", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("ParseKind(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestRevert(t *testing.T) {
	previous := feed.Item{ID: "a", Text: "old", UserReaction: "like", Reactions: map[string]int{"like": 3, "love": 1}}
	speculative := Apply(previous, KindLove)

	tests := []struct {
		name string
		cur  feed.Item
		want feed.Item
	}{
		{
			name: "untouched restores previous",
			cur:  speculative,
			want: previous,
		},
		{
			name: "concurrent edit keeps other fields",
			cur: feed.Item{ID: "a", Text: "new", ReplyCount: 2, UserReaction: "love",
				Reactions: map[string]int{"like": 5, "love": 2}},
			want: feed.Item{ID: "a", Text: "new", ReplyCount: 2, UserReaction: "like",
				Reactions: map[string]int{"like": 6, "love": 1}},
		},
		{
			name: "counter backed out to zero is removed",
			cur: feed.Item{ID: "a", Text: "new", UserReaction: "love",
				Reactions: map[string]int{"love": 1}},
			want: feed.Item{ID: "a", Text: "new", UserReaction: "like",
				Reactions: map[string]int{"like": 1}},
		},
		{
			name: "server already settled the reaction",
			cur:  feed.Item{ID: "a", Text: "v2", Reactions: map[string]int{"love": 7}},
			want: feed.Item{ID: "a", Text: "v2", Reactions: map[string]int{"love": 7}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Revert(tt.cur, previous, speculative)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Revert mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
