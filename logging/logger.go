package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options configures the process logger
type Options struct {
	Dir            string
	Prefix         string
	RetentionWeeks int
	MaxFileSize    int64
	Level          string
	// Console receives human readable text; defaults to os.Stdout
	Console io.Writer
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a logger writing text to the console and JSON to a
// weekly rotating file. The file always records debug and above. When the
// file cannot be opened the logger degrades to console only and the error
// is returned alongside it.
func NewLogger(opts Options) (*slog.Logger, io.Closer, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	})

	if opts.Dir == "" {
		return slog.New(consoleHandler), nopCloser{}, nil
	}

	file, err := OpenRotatingFile(opts.Dir, opts.Prefix, opts.RetentionWeeks, opts.MaxFileSize)
	if err != nil {
		return slog.New(consoleHandler), nopCloser{}, err
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	return slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}), file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// multiHandler fans a record out to every handler that accepts its level
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
