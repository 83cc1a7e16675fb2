// Package logging builds the process logger for statebench.
//
// Records fan out to a terminal handler and, when a file is configured, a
// JSON handler appending to that file. All handlers share one LevelVar so
// the level can be raised at runtime.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Config selects the logger's handlers.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string

	// Format is text or json for the terminal handler.
	Format string

	// File, when non-empty, receives JSON records as well.
	File string

	// Writer is the terminal output. Defaults to os.Stderr.
	Writer io.Writer
}

// Logger is a *slog.Logger plus the resources behind it.
type Logger struct {
	*slog.Logger

	level *slog.LevelVar
	file  *os.File
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
}

// New builds a Logger from cfg.
func New(cfg Config) (*Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	level := new(slog.LevelVar)
	level.Set(lvl)

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		handlers = append(handlers, slog.NewTextHandler(w, opts))
	case "json":
		handlers = append(handlers, slog.NewJSONHandler(w, opts))
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	l := &Logger{level: level}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("logging: open %s: %w", cfg.File, err)
		}
		l.file = f
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
	}

	l.Logger = slog.New(slogmulti.Fanout(handlers...))
	return l, nil
}

// SetLevel changes the level of every handler.
func (l *Logger) SetLevel(lvl slog.Level) {
	l.level.Set(lvl)
}

// Level returns the current level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
