package logging

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var (
	current  atomic.Pointer[slog.Logger]
	fallback = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// Init installs the process wide logger and makes it the slog default.
// The returned closer flushes and closes the log file.
func Init(opts Options) (io.Closer, error) {
	logger, closer, err := NewLogger(opts)
	SetLogger(logger)
	return closer, err
}

// SetLogger replaces the process wide logger
func SetLogger(logger *slog.Logger) {
	current.Store(logger)
	slog.SetDefault(logger)
}

// Logger returns the process wide logger, or a stderr logger before Init
func Logger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return fallback
}

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}
