// Package config loads feedsync configuration.
//
// # Resolution
//
// Values are merged in three layers, later layers winning:
//
//  1. Built-in defaults
//  2. The TOML file (default ~/.config/feedsync/config.toml); a missing file
//     is not an error
//  3. FEEDSYNC_ environment variables, with "__" separating section and key
//     (FEEDSYNC_FEED__PAGE_SIZE=50)
//
// Blank or out-of-range values fall back to defaults after merging, and a
// leading ~ in paths is expanded to the user's home directory.
//
// # Keys
//
//	[api]        base_url, token, timeout_seconds, rate_per_second
//	[feed]       page_size, prefetch_threshold, poll_seconds, anchor_ttl_seconds
//	[selection]  debounce_ms
//	[cache]      path (blank disables the warm-start cache)
//	[logging]    level, file
//
// A file that exists but cannot be parsed is reported as "parse config".
package config
