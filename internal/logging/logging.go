// Package logging configures the process-wide slog logger used by the CLI,
// the HTTP server and the terminal UI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the handler, the minimum level and, for the terminal UI,
// the file log lines go to.
type Config struct {
	Format string // json or text
	Level  string // debug, info, warn or error
	File   string // TUI only; empty discards
}

// DefaultConfig is text output at info level.
func DefaultConfig() Config {
	return Config{Format: "text", Level: "info"}
}

var logger *slog.Logger

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// parseLevel maps a config level to slog. Unknown names mean info.
func parseLevel(name string) slog.Level {
	if l, ok := levels[strings.ToLower(name)]; ok {
		return l
	}
	return slog.LevelInfo
}

func newHandler(cfg Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Setup logs to stderr.
func Setup(cfg Config) {
	SetupWriter(cfg, os.Stderr)
}

// SetupWriter logs to w and makes the logger the slog default.
func SetupWriter(cfg Config, w io.Writer) {
	logger = slog.New(newHandler(cfg, w))
	slog.SetDefault(logger)
}

type discard struct{}

func (discard) Close() error { return nil }

// SetupFile logs to cfg.File, appending, or nowhere when File is empty.
// The terminal owns stderr while the UI runs. Close the returned closer on
// exit.
func SetupFile(cfg Config) (io.Closer, error) {
	if cfg.File == "" {
		SetupWriter(cfg, io.Discard)
		return discard{}, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	SetupWriter(cfg, f)
	return f, nil
}

// Get returns the configured logger, falling back to slog's default.
func Get() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }

func Info(msg string, args ...any) { Get().Info(msg, args...) }

func Warn(msg string, args ...any) { Get().Warn(msg, args...) }

func Error(msg string, args ...any) { Get().Error(msg, args...) }
