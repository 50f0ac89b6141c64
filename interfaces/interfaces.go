// Package interfaces defines core abstractions for the medicine info API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"time"

	"github.com/kairomed/medicine-info-api/medicine"
)

// MedicineStore defines the read-only contract of the medicine table.
// Implementations must wrap transport failures in medicine.ErrStoreUnavailable
// and report "no candidate" as a nil match with a nil error.
type MedicineStore interface {
	// FindBestMatch returns the single best fuzzy match for a normalized name
	FindBestMatch(ctx context.Context, query string) (*medicine.Match, error)

	// FindAlternatives returns records sharing at least one ingredient
	FindAlternatives(ctx context.Context, q medicine.AlternativesQuery) ([]medicine.Record, error)

	// Ping checks connectivity
	Ping(ctx context.Context) error
}

// TextGenerator sends one prompt to a generative text API and returns the
// raw completion.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// InfoFallback resolves a medicine that the store could not match.
type InfoFallback interface {
	Describe(ctx context.Context, name string) (medicine.InfoResult, error)
}

// MedicineService is the use-case layer consumed by the HTTP handlers.
type MedicineService interface {
	// Info resolves a medicine through the store, falling back to AI
	Info(ctx context.Context, name string) (medicine.InfoResult, error)

	// Alternatives lists medicines sharing salts with the matched one
	Alternatives(ctx context.Context, name string) ([]medicine.AlternativeItem, error)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns the cached status without touching the store
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// Probe refreshes the store status
	Probe(ctx context.Context) error

	// LastSuccess returns when the store last answered a probe
	LastSuccess() time.Time
}

// Scheduler defines the contract for background jobs.
type Scheduler interface {
	Start() error
	Stop()
}
