// Package logging configures the process-wide zerolog logger. The TUI owns
// the terminal, so records go to a JSON file that the log pane tails.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/five82/feedsync/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup opens the log file named in cfg and returns a logger writing to it.
// The global zerolog logger is replaced as well. An empty file path discards
// all output. The returned Closer flushes nothing but must be closed on exit.
func Setup(cfg config.LoggingConfig) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	path := strings.TrimSpace(cfg.File)
	if path == "" {
		logger := zerolog.Nop()
		log.Logger = logger
		return logger, nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("open log file: %w", err)
	}

	logger := New(file, level)
	log.Logger = logger
	return logger, file, nil
}

// New builds a timestamped JSON logger on w.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// ParseLevel accepts zerolog level names; blank means info.
func ParseLevel(raw string) (zerolog.Level, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(trimmed)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level %q: %w", raw, err)
	}
	return level, nil
}

// Component returns a child logger tagged with a component name, which the
// log pane shows in brackets.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
