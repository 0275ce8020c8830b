package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"

	"github.com/five82/feedsync/internal/cache"
	"github.com/five82/feedsync/internal/config"
	"github.com/five82/feedsync/internal/feed"
	"github.com/five82/feedsync/internal/logging"
	"github.com/five82/feedsync/internal/mutation"
)

const dumpTextWidth = 72

// dump pages through the feed with the same engine the TUI uses and prints
// one tab-separated line per post:
//
//	id  @author  text  like=3* love=0 laugh=1
func dump(ctx context.Context, cfg config.Config, src feed.PageLoader, store *cache.Store, logger zerolog.Logger, opts Options) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	engine := feed.NewEngine(src,
		feed.WithPageSize(cfg.Feed.PageSize),
		feed.WithLogger(logging.Component(logger, "feed")),
	)
	defer engine.Hub().Close()

	if err := engine.Refresh(ctx); err != nil {
		return fmt.Errorf("load feed: %w", err)
	}
	for loaded := 1; opts.Pages <= 0 || loaded < opts.Pages; loaded++ {
		if engine.State().Kind == feed.KindEndOfList {
			break
		}
		if _, err := engine.LoadNextPage(ctx); err != nil {
			return fmt.Errorf("load page %d: %w", loaded, err)
		}
	}

	items := engine.Items()
	saveHead(ctx, store, items, cfg.Feed.PageSize, logger)

	w := bufio.NewWriter(out)
	for _, it := range items {
		writeItem(w, it)
	}
	return w.Flush()
}

func writeItem(w io.Writer, it feed.Item) {
	text := strings.Join(strings.Fields(it.Text), " ")
	text = runewidth.Truncate(text, dumpTextWidth, "...")
	_, _ = fmt.Fprintf(w, "%s\t@%s\t%s\t%s\n", it.ID, it.Author, text, reactionSummary(it))
}

func reactionSummary(it feed.Item) string {
	parts := make([]string, 0, len(mutation.Kinds))
	for _, k := range mutation.Kinds {
		part := fmt.Sprintf("%s=%d", k, it.ReactionCount(string(k)))
		if it.UserReaction == string(k) {
			part += "*"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}
