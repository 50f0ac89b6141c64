// Package service implements the two medicine use cases: describing a
// medicine (store first, AI second) and listing alternatives that share
// its salts.
package service

import (
	"context"
	"strings"

	"github.com/kairomed/medicine-info-api/interfaces"
	"github.com/kairomed/medicine-info-api/logging"
	"github.com/kairomed/medicine-info-api/medicine"
	"github.com/kairomed/medicine-info-api/metrics"
)

const (
	// DefaultSimilarityThreshold is the acceptance threshold used when none is configured
	DefaultSimilarityThreshold = medicine.DefaultSimilarityThreshold

	// AlternativesLimit caps the alternatives list
	AlternativesLimit = 5
)

// Compile-time check to ensure MedicineService implements the interface
var _ interfaces.MedicineService = (*MedicineService)(nil)

// MedicineService ties the store and the AI fallback together
type MedicineService struct {
	store     interfaces.MedicineStore
	fallback  interfaces.InfoFallback
	threshold float64
}

// NewMedicineService creates the service with injected dependencies
func NewMedicineService(store interfaces.MedicineStore, fallback interfaces.InfoFallback, threshold float64) *MedicineService {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &MedicineService{
		store:     store,
		fallback:  fallback,
		threshold: threshold,
	}
}

// Info returns the stored record for name when the fuzzy match is
// confident, and asks the AI fallback otherwise.
func (s *MedicineService) Info(ctx context.Context, name string) (medicine.InfoResult, error) {
	match, err := s.lookup(ctx, "info", name)
	if err != nil {
		return medicine.InfoResult{}, err
	}

	if match != nil {
		return match.Record.ToInfoResult(), nil
	}

	raw := strings.TrimSpace(name)
	logging.Info("No confident store match, using AI fallback", "medicine", raw)
	return s.fallback.Describe(ctx, raw)
}

// Alternatives returns up to AlternativesLimit records sharing at least one
// salt with the best match for name. An unknown medicine yields an empty
// list, never an error.
func (s *MedicineService) Alternatives(ctx context.Context, name string) ([]medicine.AlternativeItem, error) {
	alternatives := []medicine.AlternativeItem{}

	match, err := s.lookup(ctx, "alternatives", name)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return alternatives, nil
	}

	base := match.Record
	ingredients := medicine.ExtractIngredients(base.Composition)
	if len(ingredients) == 0 {
		logging.Debug("Base medicine has no usable composition", "medicine_name", base.MedicineName)
		return alternatives, nil
	}

	records, err := s.store.FindAlternatives(ctx, medicine.AlternativesQuery{
		ExcludeName: base.MedicineName,
		Ingredients: ingredients,
		Limit:       AlternativesLimit,
	})
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		if record.MedicineName == base.MedicineName {
			continue
		}
		alternatives = append(alternatives, record.ToAlternative())
		if len(alternatives) == AlternativesLimit {
			break
		}
	}

	logging.Debug("Alternatives resolved",
		"medicine_name", base.MedicineName,
		"ingredients", ingredients,
		"count", len(alternatives))

	return alternatives, nil
}

// lookup normalizes name and applies the acceptance threshold. A nil match
// with a nil error means "no confident match".
func (s *MedicineService) lookup(ctx context.Context, endpoint, name string) (*medicine.Match, error) {
	query := medicine.CleanName(name)
	if query == "" {
		metrics.LookupTotal.WithLabelValues(endpoint, "miss").Inc()
		return nil, nil
	}

	match, err := s.store.FindBestMatch(ctx, query)
	if err != nil {
		metrics.LookupTotal.WithLabelValues(endpoint, "error").Inc()
		logging.Error("Medicine store lookup failed", "query", query, "error", err)
		return nil, err
	}

	switch {
	case match == nil:
		metrics.LookupTotal.WithLabelValues(endpoint, "miss").Inc()
		return nil, nil
	case match.Similarity <= s.threshold:
		metrics.LookupTotal.WithLabelValues(endpoint, "below_threshold").Inc()
		logging.Debug("Fuzzy match below threshold",
			"query", query,
			"candidate", match.Record.MedicineName,
			"similarity", match.Similarity,
			"threshold", s.threshold)
		return nil, nil
	}

	metrics.LookupTotal.WithLabelValues(endpoint, "hit").Inc()
	return match, nil
}
