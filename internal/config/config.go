package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the merged feedsync configuration.
type Config struct {
	API       APIConfig       `koanf:"api"`
	Feed      FeedConfig      `koanf:"feed"`
	Selection SelectionConfig `koanf:"selection"`
	Cache     CacheConfig     `koanf:"cache"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// APIConfig describes the feed backend.
type APIConfig struct {
	BaseURL        string  `koanf:"base_url"`
	Token          string  `koanf:"token"`
	TimeoutSeconds int     `koanf:"timeout_seconds"`
	RatePerSecond  float64 `koanf:"rate_per_second"`
}

// FeedConfig tunes pagination and realtime polling.
type FeedConfig struct {
	PageSize          int `koanf:"page_size"`
	PrefetchThreshold int `koanf:"prefetch_threshold"`
	PollSeconds       int `koanf:"poll_seconds"`
	AnchorTTLSeconds  int `koanf:"anchor_ttl_seconds"`
}

// SelectionConfig tunes selection mode.
type SelectionConfig struct {
	DebounceMS int `koanf:"debounce_ms"`
}

// CacheConfig locates the warm-start cache. An empty path disables it.
type CacheConfig struct {
	Path string `koanf:"path"`
}

// LoggingConfig controls the JSON log file.
type LoggingConfig struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

const (
	envPrefix         = "FEEDSYNC_"
	defaultConfigPath = "~/.config/feedsync/config.toml"
	defaultBaseURL    = "127.0.0.1:8780"
	defaultCachePath  = "~/.cache/feedsync/feed.db"
	defaultLogFile    = "~/.local/state/feedsync/feedsync.log"
	defaultLogLevel   = "info"
	defaultPageSize   = 20
	defaultPrefetch   = 5
	defaultPollSecs   = 5
	defaultTimeout    = 10
	defaultRate       = 10.0
	defaultAnchorTTL  = 180
	defaultDebounceMS = 100
)

func defaults() map[string]any {
	return map[string]any{
		"api.base_url":            defaultBaseURL,
		"api.token":               "",
		"api.timeout_seconds":     defaultTimeout,
		"api.rate_per_second":     defaultRate,
		"feed.page_size":          defaultPageSize,
		"feed.prefetch_threshold": defaultPrefetch,
		"feed.poll_seconds":       defaultPollSecs,
		"feed.anchor_ttl_seconds": defaultAnchorTTL,
		"selection.debounce_ms":   defaultDebounceMS,
		"cache.path":              defaultCachePath,
		"logging.level":           defaultLogLevel,
		"logging.file":            defaultLogFile,
	}
}

// Load merges defaults, the TOML file at path (if it exists) and FEEDSYNC_
// environment overrides. Nested keys use a double underscore in the
// environment: FEEDSYNC_API__BASE_URL sets api.base_url.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if _, err := os.Stat(resolved); err == nil {
		if err := k.Load(file.Provider(resolved), toml.Parser()); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// normalize trims strings, replaces blank or out-of-range values with
// defaults and expands ~ in paths.
func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimSpace(c.API.BaseURL)
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultBaseURL
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = defaultTimeout
	}
	if c.API.RatePerSecond < 0 {
		c.API.RatePerSecond = 0
	}
	if c.Feed.PageSize <= 0 {
		c.Feed.PageSize = defaultPageSize
	}
	if c.Feed.PrefetchThreshold < 0 {
		c.Feed.PrefetchThreshold = defaultPrefetch
	}
	if c.Feed.PollSeconds < 0 {
		c.Feed.PollSeconds = defaultPollSecs
	}
	if c.Feed.AnchorTTLSeconds <= 0 {
		c.Feed.AnchorTTLSeconds = defaultAnchorTTL
	}
	if c.Selection.DebounceMS <= 0 {
		c.Selection.DebounceMS = defaultDebounceMS
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File == "" {
		c.Logging.File = defaultLogFile
	}
	c.Logging.File = mustExpand(c.Logging.File)

	// A blank cache path is kept blank: it disables the cache.
	c.Cache.Path = strings.TrimSpace(c.Cache.Path)
	if c.Cache.Path != "" {
		c.Cache.Path = mustExpand(c.Cache.Path)
	}
}

// Timeout returns the per-request API timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// PollInterval returns the realtime poll cadence. Zero disables polling.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Feed.PollSeconds) * time.Second
}

// AnchorTTL returns how long a captured scroll position stays valid.
func (c Config) AnchorTTL() time.Duration {
	return time.Duration(c.Feed.AnchorTTLSeconds) * time.Second
}

// Debounce returns the selection render debounce delay.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.Selection.DebounceMS) * time.Millisecond
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
