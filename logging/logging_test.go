package logging

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRotatingFileWrites(t *testing.T) {
	dir := t.TempDir()

	rf, err := OpenRotatingFile(dir, "medicine-info-api", 1, 0)
	if err != nil {
		t.Fatalf("Failed to open rotating file: %v", err)
	}
	defer rf.Close()

	if _, err := rf.Write([]byte("first line\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	path := filepath.Join(dir, "medicine-info-api-"+weekKey(time.Now())+".log")
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file %s: %v", path, err)
	}
	if !strings.Contains(string(content), "first line") {
		t.Errorf("Log file does not contain the written line: %q", content)
	}
}

func TestRotatingFileSizeRotation(t *testing.T) {
	dir := t.TempDir()

	rf, err := OpenRotatingFile(dir, "app", 1, 10)
	if err != nil {
		t.Fatalf("Failed to open rotating file: %v", err)
	}
	defer rf.Close()

	for _, chunk := range []string{"12345678", "abcdef", "xyz"} {
		if _, err := rf.Write([]byte(chunk)); err != nil {
			t.Fatalf("Failed to write %q: %v", chunk, err)
		}
	}

	week := weekKey(time.Now())
	base, err := os.ReadFile(filepath.Join(dir, "app-"+week+".log"))
	if err != nil {
		t.Fatalf("Expected base log file: %v", err)
	}
	if string(base) != "12345678" {
		t.Errorf("Expected base file to hold the first chunk, got %q", base)
	}

	numbered, err := os.ReadFile(filepath.Join(dir, "app-"+week+"_01.log"))
	if err != nil {
		t.Fatalf("Expected numbered log file: %v", err)
	}
	if string(numbered) != "abcdefxyz" {
		t.Errorf("Expected numbered file to hold the overflow, got %q", numbered)
	}
}

func TestRotatingFileRemoveExpired(t *testing.T) {
	dir := t.TempDir()

	rf, err := OpenRotatingFile(dir, "app", 1, 0)
	if err != nil {
		t.Fatalf("Failed to open rotating file: %v", err)
	}
	defer rf.Close()

	old := filepath.Join(dir, "app-2020-W01.log")
	unrelated := filepath.Join(dir, "other-2020-W01.log")
	for _, path := range []string{old, unrelated} {
		if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
			t.Fatalf("Failed to seed %s: %v", path, err)
		}
		stale := time.Now().Add(-30 * 24 * time.Hour)
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("Failed to age %s: %v", path, err)
		}
	}

	removed, err := rf.removeExpired(time.Now())
	if err != nil {
		t.Fatalf("removeExpired failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed file, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Errorf("Expected %s to be removed", old)
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Errorf("Expected %s to be kept: %v", unrelated, err)
	}
}

func TestNewLoggerWritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger, closer, err := NewLogger(Options{
		Dir:     dir,
		Prefix:  "svc",
		Level:   "warn",
		Console: &console,
	})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Debug("debug only in file")
	logger.Warn("warn everywhere", "medicine", "dolo 650")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if strings.Contains(console.String(), "debug only in file") {
		t.Error("Console should not receive debug records at warn level")
	}
	if !strings.Contains(console.String(), "warn everywhere") {
		t.Errorf("Console missing warn record: %q", console.String())
	}

	content, err := os.ReadFile(filepath.Join(dir, "svc-"+weekKey(time.Now())+".log"))
	if err != nil {
		t.Fatalf("Expected log file: %v", err)
	}
	if !strings.Contains(string(content), `"msg":"debug only in file"`) {
		t.Errorf("File should record debug as JSON, got %q", content)
	}
	if !strings.Contains(string(content), `"medicine":"dolo 650"`) {
		t.Errorf("File missing attributes, got %q", content)
	}
}

func TestNewLoggerConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	logger, closer, err := NewLogger(Options{Console: &console})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer closer.Close()

	logger.Info("hello")
	if !strings.Contains(console.String(), "hello") {
		t.Errorf("Expected console output, got %q", console.String())
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	status := http.StatusOK
	handler := middleware.RequestID(LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte("ok"))
	})))

	t.Run("quiet paths are not logged", func(t *testing.T) {
		for _, path := range []string{"/health", "/metrics"} {
			out.Reset()
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
			if out.Len() != 0 {
				t.Errorf("Expected no log for %s, got %q", path, out.String())
			}
		}
	})

	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "level=INFO"},
		{http.StatusBadRequest, "level=WARN"},
		{http.StatusServiceUnavailable, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			out.Reset()
			status = tt.status
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/medicine/alternatives?name=dolo", nil))

			logs := out.String()
			if !strings.Contains(logs, tt.level) {
				t.Errorf("Expected %s, got %q", tt.level, logs)
			}
			if !strings.Contains(logs, "path=/medicine/alternatives") || !strings.Contains(logs, `query="name=dolo"`) {
				t.Errorf("Expected path and query attributes, got %q", logs)
			}
			if strings.Contains(logs, "request_id=unknown") {
				t.Errorf("Expected request id from chi middleware, got %q", logs)
			}
			if !strings.Contains(logs, "bytes_written=2") {
				t.Errorf("Expected bytes_written=2, got %q", logs)
			}
		})
	}
}
