package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultMaxFileSize is used when no size limit is configured
const DefaultMaxFileSize int64 = 100 * 1024 * 1024

// RotatingFile is an io.Writer that starts a new file every ISO week, and
// a numbered sibling when the current file outgrows maxFileSize.
// Files older than the retention period are removed once a day.
type RotatingFile struct {
	dir         string
	prefix      string
	retention   time.Duration
	maxFileSize int64

	mu      sync.Mutex
	file    *os.File
	week    string
	size    int64
	cancel  context.CancelFunc
	stopped chan struct{}
}

// OpenRotatingFile creates dir if needed, opens the file for the current
// week and starts the retention sweeper.
func OpenRotatingFile(dir, prefix string, retentionWeeks int, maxFileSize int64) (*RotatingFile, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if prefix == "" {
		prefix = "app"
	}
	if retentionWeeks <= 0 {
		retentionWeeks = 4
	}
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	rf := &RotatingFile{
		dir:         dir,
		prefix:      prefix,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		cancel:      cancel,
		stopped:     make(chan struct{}),
	}

	rf.mu.Lock()
	err := rf.rotate(weekKey(time.Now()), false)
	rf.mu.Unlock()
	if err != nil {
		cancel()
		return nil, err
	}

	go rf.sweep(ctx, 24*time.Hour)

	return rf, nil
}

// weekKey returns the ISO week in YYYY-Www form
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Write implements io.Writer
func (rf *RotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	week := weekKey(time.Now())
	switch {
	case rf.week != week:
		if err := rf.rotate(week, false); err != nil {
			return 0, err
		}
	case rf.size > 0 && rf.size+int64(len(p)) > rf.maxFileSize:
		if err := rf.rotate(week, true); err != nil {
			return 0, err
		}
	}

	if rf.file == nil {
		return 0, fmt.Errorf("no log file available")
	}

	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

// rotate switches to the file for week; caller holds mu
func (rf *RotatingFile) rotate(week string, full bool) error {
	if rf.file != nil {
		_ = rf.file.Close()
		rf.file = nil
	}

	name := rf.pickFile(week, full)
	path := filepath.Join(rf.dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}

	rf.file = file
	rf.week = week
	rf.size = 0
	if info, err := file.Stat(); err == nil {
		rf.size = info.Size()
	}
	return nil
}

// pickFile returns the base name to append to. The plain weekly file is
// preferred; once it is full, numbered files <prefix>-<week>_NN.log follow.
func (rf *RotatingFile) pickFile(week string, full bool) string {
	base := fmt.Sprintf("%s-%s.log", rf.prefix, week)
	if !full {
		info, err := os.Stat(filepath.Join(rf.dir, base))
		if err != nil || info.Size() < rf.maxFileSize {
			return base
		}
	}

	highest, size := rf.lastNumbered(week)
	if highest > 0 && !full && size < rf.maxFileSize {
		return fmt.Sprintf("%s-%s_%02d.log", rf.prefix, week, highest)
	}
	return fmt.Sprintf("%s-%s_%02d.log", rf.prefix, week, highest+1)
}

// lastNumbered finds the highest numbered file of week and its size
func (rf *RotatingFile) lastNumbered(week string) (int, int64) {
	pattern := filepath.Join(rf.dir, fmt.Sprintf("%s-%s_??.log", rf.prefix, week))
	matches, _ := filepath.Glob(pattern)

	re := regexp.MustCompile(`_(\d{2})\.log$`)
	highest := 0
	var size int64
	for _, match := range matches {
		m := re.FindStringSubmatch(match)
		if len(m) < 2 {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		if num <= highest {
			continue
		}
		highest = num
		size = 0
		if info, err := os.Stat(match); err == nil {
			size = info.Size()
		}
	}
	return highest, size
}

func (rf *RotatingFile) sweep(ctx context.Context, every time.Duration) {
	defer close(rf.stopped)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := rf.removeExpired(time.Now()); err != nil {
				fmt.Fprintf(os.Stderr, "log cleanup failed: %v\n", err)
			}
		}
	}
}

// removeExpired deletes this logger's files last modified before
// now minus the retention period and reports how many went away.
func (rf *RotatingFile) removeExpired(now time.Time) (int, error) {
	entries, err := os.ReadDir(rf.dir)
	if err != nil {
		return 0, fmt.Errorf("read log directory: %w", err)
	}

	cutoff := now.Add(-rf.retention)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, rf.prefix+"-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if os.Remove(filepath.Join(rf.dir, name)) == nil {
			removed++
		}
	}
	return removed, nil
}

// Close stops the sweeper and closes the current file
func (rf *RotatingFile) Close() error {
	rf.cancel()
	select {
	case <-rf.stopped:
	case <-time.After(time.Second):
	}

	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.file == nil {
		return nil
	}
	err := rf.file.Close()
	rf.file = nil
	return err
}
