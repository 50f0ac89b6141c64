// Package health tracks the reachability of the medicine store for the
// /health endpoint. Probes run in the background; HealthCheck only reads
// the cached outcome so a slow database never blocks the endpoint.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/kairomed/medicine-info-api/interfaces"
	"github.com/kairomed/medicine-info-api/logging"
	"github.com/kairomed/medicine-info-api/metrics"
)

// DefaultProbeTimeout bounds a single store ping
const DefaultProbeTimeout = 3 * time.Second

// Compile-time check to ensure Checker implements HealthChecker
var _ interfaces.HealthChecker = (*Checker)(nil)

// Pinger is the part of the store the checker needs
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker implements interfaces.HealthChecker
type Checker struct {
	store     Pinger
	service   string
	aiEnabled bool
	timeout   time.Duration

	mu          sync.RWMutex
	probed      bool
	up          bool
	lastCheck   time.Time
	lastSuccess time.Time
	lastErr     string
}

// NewHealthChecker creates a checker for store. aiEnabled is reported as is.
func NewHealthChecker(store Pinger, service string, aiEnabled bool) *Checker {
	return &Checker{
		store:     store,
		service:   service,
		aiEnabled: aiEnabled,
		timeout:   DefaultProbeTimeout,
	}
}

// Probe pings the store and records the outcome
func (c *Checker) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.store.Ping(ctx)
	now := time.Now()

	c.mu.Lock()
	wasUp, wasProbed := c.up, c.probed
	c.probed = true
	c.lastCheck = now
	c.up = err == nil
	if err == nil {
		c.lastSuccess = now
		c.lastErr = ""
	} else {
		c.lastErr = err.Error()
	}
	c.mu.Unlock()

	if err != nil {
		metrics.StoreUp.Set(0)
		if wasUp || !wasProbed {
			logging.Error("Medicine store is unreachable", "error", err)
		}
		return err
	}

	metrics.StoreUp.Set(1)
	if wasProbed && !wasUp {
		logging.Info("Medicine store is reachable again")
	}
	return nil
}

// HealthCheck reports "healthy" with 200 when the last probe succeeded and
// "degraded" with 503 otherwise, including before the first probe.
func (c *Checker) HealthCheck() (status string, details map[string]any, httpStatus int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	store := "down"
	status, httpStatus = "degraded", http.StatusServiceUnavailable
	if c.up {
		store = "up"
		status, httpStatus = "healthy", http.StatusOK
	}

	ai := "disabled"
	if c.aiEnabled {
		ai = "enabled"
	}

	details = map[string]any{
		"service":     c.service,
		"store":       store,
		"ai_fallback": ai,
		"last_check":  nil,
	}
	if c.probed {
		details["last_check"] = c.lastCheck.UTC().Format(time.RFC3339)
	}
	if c.lastErr != "" {
		details["store_error"] = c.lastErr
	}

	return status, details, httpStatus
}

// LastSuccess returns when the store last answered, zero if never
func (c *Checker) LastSuccess() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSuccess
}
