// Package scheduler runs the periodic store probe that feeds /health and
// the medicine_store_up gauge.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/kairomed/medicine-info-api/interfaces"
	"github.com/kairomed/medicine-info-api/logging"
)

// StaleAfter is how long the store may stay unreachable before a warning
const StaleAfter = 5 * time.Minute

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler probes the store on a fixed interval
type Scheduler struct {
	checker   interfaces.HealthChecker
	interval  time.Duration
	scheduler *gocron.Scheduler
	startedAt time.Time
}

// NewScheduler creates a scheduler probing through checker every interval
func NewScheduler(checker interfaces.HealthChecker, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		checker:   checker,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start probes once synchronously, then schedules the recurring probe.
// A failing first probe is logged, not fatal: the API still serves AI
// answers and reports itself degraded.
func (s *Scheduler) Start() error {
	s.startedAt = time.Now()
	s.probe()

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(s.probe)
	if err != nil {
		logging.Error("Failed to schedule store probe", "error", err)
		return fmt.Errorf("failed to schedule store probe: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Store probe scheduled", "interval", s.interval.String())
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) probe() {
	if err := s.checker.Probe(context.Background()); err != nil {
		s.warnIfStale(time.Now())
	}
}

// warnIfStale logs when the store has not answered for StaleAfter. It
// reports whether the warning fired.
func (s *Scheduler) warnIfStale(now time.Time) bool {
	since := s.checker.LastSuccess()
	if since.IsZero() {
		since = s.startedAt
	}
	if now.Sub(since) <= StaleAfter {
		return false
	}
	logging.Warn("Medicine store unreachable for over 5 minutes",
		"last_success", since.Format(time.RFC3339),
		"down_for", now.Sub(since).Round(time.Second).String())
	return true
}
