package ui

import (
	"testing"

	"github.com/five82/feedsync/internal/feed"
	"github.com/five82/feedsync/internal/mutation"
)

func TestGetTheme_UnknownFallsBackToNightfox(t *testing.T) {
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Nightfox", got)
	}
}

func TestNextTheme_Cycles(t *testing.T) {
	names := ThemeNames()
	for i, name := range names {
		want := names[(i+1)%len(names)]
		if got := NextTheme(name); got != want {
			t.Fatalf("NextTheme(%q) = %q, want %q", name, got, want)
		}
	}
	if got := NextTheme("unknown"); got != names[0] {
		t.Fatalf("NextTheme(unknown) = %q, want %q", got, names[0])
	}
}

func TestThemes_CoverEveryStateAndReaction(t *testing.T) {
	kinds := []feed.Kind{
		feed.KindInitial, feed.KindRefreshing, feed.KindLoadingMore,
		feed.KindSuccess, feed.KindError, feed.KindEndOfList,
	}
	for _, name := range ThemeNames() {
		theme := GetTheme(name)
		for _, k := range kinds {
			if theme.StateColors[k.String()] == "" {
				t.Fatalf("theme %s has no color for state %s", name, k)
			}
		}
		for _, r := range mutation.Kinds {
			if theme.ReactionColors[string(r)] == "" {
				t.Fatalf("theme %s has no color for reaction %s", name, r)
			}
		}
		if theme.MarkedBg == "" {
			t.Fatalf("theme %s has no MarkedBg", name)
		}
	}
}
