// Package app provides the orchestration layer for feedsync.
//
// # Overview
//
// This package wires configuration, logging, the HTTP client, the warm-start
// cache, the feed session, realtime polling and the UI together. It is the
// composition root: every other package receives its dependencies from here.
//
// # Startup
//
//  1. Load config.toml, layered under FEEDSYNC_ environment overrides
//  2. Open the JSON log file and install it as the global zerolog logger
//  3. Build the remote client (token, timeout, client-side rate limit)
//  4. Open the SQLite cache, if a path is configured
//  5. Plain mode: page through the feed and print it, then exit
//  6. Interactive mode: build the session, seed it from the cache, start the
//     TUI and block until the user quits or the context is cancelled
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        Defaults, file, env
//	       ├─────> logging.Setup()      JSON file logger
//	       ├─────> remote.NewClient()   Feed API
//	       ├─────> cache.Open()         Warm start (optional)
//	       ├─────> session.New()        Engine, mutations, selection
//	       └─────> ui.Run()             TUI (blocks)
//
//	After the first successful load:
//	┌─────────────────────────────────────────┐
//	│ live.Poller goroutine                   │
//	│  ├─> FetchPage(0)                       │
//	│  └─> Selection.OfferIncomingUpdate()    │
//	│      (held while selection mode is on)  │
//	└─────────────────────────────────────────┘
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Invalid configuration or log level
//   - Log file that cannot be created
//   - In plain mode, any page load failure
//
// Recoverable errors (logged, the UI keeps running):
//   - Cache open, read or write failures
//   - Realtime poll failures, retried with backoff
//   - Page load failures, shown in the footer with a retry hint
package app
