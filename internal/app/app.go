package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/feedsync/internal/cache"
	"github.com/five82/feedsync/internal/config"
	"github.com/five82/feedsync/internal/feed"
	"github.com/five82/feedsync/internal/live"
	"github.com/five82/feedsync/internal/logging"
	"github.com/five82/feedsync/internal/mutation"
	"github.com/five82/feedsync/internal/prefs"
	"github.com/five82/feedsync/internal/remote"
	"github.com/five82/feedsync/internal/session"
	"github.com/five82/feedsync/internal/ui"
)

// Options configure a feedsync run.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/feedsync/prefs.toml
	PollEvery  int    // seconds; zero keeps the configured interval, negative disables polling
	Plain      bool   // print the feed to Out instead of starting the TUI
	Pages      int    // plain mode only; zero prints until the end of the feed
	Out        io.Writer
}

// Run boots feedsync until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyOverrides(&cfg, opts)

	logger, closer, err := logging.Setup(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closer.Close() }()
	logger.Info().
		Str("api", cfg.API.BaseURL).
		Int("page_size", cfg.Feed.PageSize).
		Dur("poll", cfg.PollInterval()).
		Bool("plain", opts.Plain).
		Msg("feedsync starting")

	client, err := remote.NewClient(cfg.API.BaseURL,
		remote.WithToken(cfg.API.Token),
		remote.WithTimeout(cfg.Timeout()),
		remote.WithRateLimit(cfg.API.RatePerSecond),
	)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	store := openCache(cfg.Cache.Path, logger)
	defer func() { _ = store.Close() }()

	if opts.Plain {
		return dump(ctx, cfg, client, store, logger, opts)
	}
	return runInteractive(ctx, cfg, client, store, logger, opts)
}

func runInteractive(ctx context.Context, cfg config.Config, client remote.FeedFetcher, store *cache.Store, logger zerolog.Logger, opts Options) error {
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		logger.Warn().Err(err).Msg("load prefs")
	}

	sess := session.New(session.Deps{
		Loader:            client,
		Writer:            client,
		PageSize:          cfg.Feed.PageSize,
		PrefetchThreshold: cfg.Feed.PrefetchThreshold,
		AnchorTTL:         cfg.AnchorTTL(),
		Debounce:          cfg.Debounce(),
		Observer:          outcomeLogger(logging.Component(logger, "reactions")),
		Logger:            logger,
	})
	defer sess.Close()

	if store != nil {
		cached, err := store.Load(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("read feed cache")
		} else if len(cached) > 0 && sess.Engine.Seed(cached) {
			logger.Debug().Int("items", len(cached)).Msg("seeded feed from cache")
		}
	}

	var poller *live.Poller
	var status func() live.Snapshot
	if interval := cfg.PollInterval(); interval > 0 {
		// Incoming items go through the selection controller so they are
		// held while the user is picking rows.
		poller = live.NewPoller(client, sess.Selection,
			live.WithInterval(interval),
			live.WithPageSize(cfg.Feed.PageSize),
			live.WithLogger(logging.Component(logger, "live")),
		)
		status = poller.Status
	}

	var startOnce sync.Once
	onLoaded := func(items []feed.Item) {
		if poller != nil {
			startOnce.Do(func() {
				poller.Prime(items)
				poller.Start(ctx)
			})
		}
		saveHead(ctx, store, items, cfg.Feed.PageSize, logger)
	}

	err = ui.Run(ui.Options{
		Context:   ctx,
		Session:   sess,
		Status:    status,
		LogPath:   cfg.Logging.File,
		Prefs:     userPrefs,
		PrefsPath: prefsPath,
		Logger:    logging.Component(logger, "ui"),
		OnLoaded:  onLoaded,
	})
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func applyOverrides(cfg *config.Config, opts Options) {
	switch {
	case opts.PollEvery > 0:
		cfg.Feed.PollSeconds = opts.PollEvery
	case opts.PollEvery < 0:
		cfg.Feed.PollSeconds = 0
	}
}

// openCache returns nil when the cache is disabled or cannot be opened; the
// feed works without it.
func openCache(path string, logger zerolog.Logger) *cache.Store {
	if path == "" {
		return nil
	}
	store, err := cache.Open(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("feed cache unavailable")
		return nil
	}
	return store
}

// saveHead stores the first page of items for the next warm start.
func saveHead(ctx context.Context, store *cache.Store, items []feed.Item, pageSize int, logger zerolog.Logger) {
	if store == nil || len(items) == 0 {
		return
	}
	if pageSize > 0 && len(items) > pageSize {
		items = items[:pageSize]
	}
	if err := store.Save(ctx, items); err != nil {
		logger.Warn().Err(err).Msg("write feed cache")
	}
}

func outcomeLogger(logger zerolog.Logger) func(mutation.Outcome) {
	return func(o mutation.Outcome) {
		logger.Debug().
			Str("item", o.ItemID).
			Str("kind", string(o.Kind)).
			Str("result", o.Result.String()).
			Msg("reaction settled")
	}
}
