package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/kairomed/medicine-info-api/ai"
	"github.com/kairomed/medicine-info-api/medicine"
)

type fakeStore struct {
	match    *medicine.Match
	matchErr error
	records  []medicine.Record
	altErr   error

	queries  []string
	altQuery *medicine.AlternativesQuery
}

func (s *fakeStore) FindBestMatch(_ context.Context, query string) (*medicine.Match, error) {
	s.queries = append(s.queries, query)
	return s.match, s.matchErr
}

func (s *fakeStore) FindAlternatives(_ context.Context, q medicine.AlternativesQuery) ([]medicine.Record, error) {
	s.altQuery = &q
	return s.records, s.altErr
}

func (s *fakeStore) Ping(context.Context) error { return nil }

type fakeGenerator struct {
	text  string
	calls int
}

func (g *fakeGenerator) Generate(context.Context, string) (string, error) {
	g.calls++
	return g.text, nil
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func paracetamolMatch(similarity float64) *medicine.Match {
	return &medicine.Match{
		Record: medicine.Record{
			MedicineName: "Paracetamol 500mg Tablet",
			UseCase:      "Fever, mild pain",
			Composition:  "Paracetamol + Caffeine",
			SideEffects:  "Nausea",
			ImageURL:     strPtr("https://img.example/para.png"),
			Manufacturer: strPtr("GSK"),
			Reviews: medicine.Reviews{
				Excellent: floatPtr(55),
				Average:   floatPtr(30),
				Poor:      floatPtr(15),
			},
		},
		Similarity: similarity,
	}
}

func TestInfoStoreHit(t *testing.T) {
	store := &fakeStore{match: paracetamolMatch(0.8)}
	gen := &fakeGenerator{}
	svc := NewMedicineService(store, ai.NewFallback(gen, 0, ai.PolicyDegrade), 0.2)

	result, err := svc.Info(context.Background(), "Paracetamol 500 mg")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !reflect.DeepEqual(store.queries, []string{"paracetamol"}) {
		t.Errorf("Expected normalized query [paracetamol], got %v", store.queries)
	}
	if result.UseCase != "Fever, mild pain" || result.Composition != "Paracetamol + Caffeine" || result.SideEffects != "Nausea" {
		t.Errorf("Expected record fields verbatim, got %+v", result)
	}
	if result.Manufacturer == nil || *result.Manufacturer != "GSK" {
		t.Errorf("Expected manufacturer GSK, got %v", result.Manufacturer)
	}
	if result.Reviews == nil || *result.Reviews.Excellent != 55 || *result.Reviews.Average != 30 || *result.Reviews.Poor != 15 {
		t.Errorf("Expected reviews 55/30/15, got %+v", result.Reviews)
	}
	if result.Source != medicine.SourceDatabase {
		t.Errorf("Expected database source, got %s", result.Source)
	}
	if gen.calls != 0 {
		t.Errorf("Expected no AI call on a store hit, got %d", gen.calls)
	}
}

func TestInfoFallsBackToAI(t *testing.T) {
	tests := []struct {
		name  string
		match *medicine.Match
	}{
		{"no rows", nil},
		{"below threshold", paracetamolMatch(0.15)},
		{"exactly threshold", paracetamolMatch(0.2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{match: tt.match}
			gen := &fakeGenerator{text: "I could not find this medicine."}
			svc := NewMedicineService(store, ai.NewFallback(gen, 0, ai.PolicyDegrade), 0.2)

			result, err := svc.Info(context.Background(), "xyzabc123")
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if gen.calls != 1 {
				t.Errorf("Expected exactly one AI call, got %d", gen.calls)
			}
			if result.UseCase != medicine.NotFound || result.Composition != medicine.NotFound || result.SideEffects != medicine.NotFound {
				t.Errorf("Expected sentinel fields, got %+v", result)
			}
			if result.Source != medicine.SourceAI {
				t.Errorf("Expected ai source, got %s", result.Source)
			}
		})
	}
}

func TestInfoMissingAICredential(t *testing.T) {
	fallback := ai.NewFallback(nil, 0, ai.PolicyDegrade)

	hit := NewMedicineService(&fakeStore{match: paracetamolMatch(0.9)}, fallback, 0.2)
	if _, err := hit.Info(context.Background(), "paracetamol"); err != nil {
		t.Errorf("Expected store hit to succeed without AI key, got %v", err)
	}

	miss := NewMedicineService(&fakeStore{}, fallback, 0.2)
	_, err := miss.Info(context.Background(), "xyzabc123")
	if !errors.Is(err, medicine.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration on miss, got %v", err)
	}
}

func TestInfoStoreErrorIsNotAMiss(t *testing.T) {
	store := &fakeStore{matchErr: fmt.Errorf("%w: connection reset", medicine.ErrStoreUnavailable)}
	gen := &fakeGenerator{text: "Use Case: x"}
	svc := NewMedicineService(store, ai.NewFallback(gen, 0, ai.PolicyDegrade), 0.2)

	_, err := svc.Info(context.Background(), "paracetamol")
	if !errors.Is(err, medicine.ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable, got %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("Expected no AI call when the store fails, got %d", gen.calls)
	}
}

func TestInfoEmptyNormalizedNameSkipsStore(t *testing.T) {
	store := &fakeStore{match: paracetamolMatch(0.9)}
	gen := &fakeGenerator{text: "Use Case: Unknown dosage"}
	svc := NewMedicineService(store, ai.NewFallback(gen, 0, ai.PolicyDegrade), 0.2)

	if _, err := svc.Info(context.Background(), "500mg"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(store.queries) != 0 {
		t.Errorf("Expected store to be skipped, got queries %v", store.queries)
	}
	if gen.calls != 1 {
		t.Errorf("Expected AI fallback, got %d calls", gen.calls)
	}
}

func TestAlternatives(t *testing.T) {
	store := &fakeStore{
		match: paracetamolMatch(0.7),
		records: []medicine.Record{
			{MedicineName: "Crocin Pain Relief", Composition: "Paracetamol + Caffeine", Reviews: medicine.Reviews{Excellent: floatPtr(60)}},
			{MedicineName: "Paracetamol 500mg Tablet", Composition: "Paracetamol + Caffeine"},
			{MedicineName: "Calpol", Composition: "Paracetamol"},
		},
	}
	svc := NewMedicineService(store, ai.NewFallback(nil, 0, ai.PolicyDegrade), 0.2)

	items, err := svc.Alternatives(context.Background(), "paracetamol")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if store.altQuery == nil {
		t.Fatal("Expected an alternatives query")
	}
	if !reflect.DeepEqual(store.altQuery.Ingredients, []string{"paracetamol", "caffeine"}) {
		t.Errorf("Expected ingredients [paracetamol caffeine], got %v", store.altQuery.Ingredients)
	}
	if store.altQuery.ExcludeName != "Paracetamol 500mg Tablet" {
		t.Errorf("Expected base name excluded, got %s", store.altQuery.ExcludeName)
	}
	if store.altQuery.Limit != AlternativesLimit {
		t.Errorf("Expected limit %d, got %d", AlternativesLimit, store.altQuery.Limit)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 alternatives, got %d", len(items))
	}
	if items[0].MedicineName != "Crocin Pain Relief" || items[1].MedicineName != "Calpol" {
		t.Errorf("Unexpected alternatives order: %+v", items)
	}
	if items[1].Reviews.Excellent != nil {
		t.Errorf("Expected null excellent review, got %v", *items[1].Reviews.Excellent)
	}
}

func TestAlternativesCappedAtLimit(t *testing.T) {
	records := make([]medicine.Record, 0, 8)
	for i := 0; i < 8; i++ {
		records = append(records, medicine.Record{MedicineName: fmt.Sprintf("Alt %d", i)})
	}
	store := &fakeStore{match: paracetamolMatch(0.7), records: records}
	svc := NewMedicineService(store, ai.NewFallback(nil, 0, ai.PolicyDegrade), 0.2)

	items, err := svc.Alternatives(context.Background(), "paracetamol")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(items) != AlternativesLimit {
		t.Errorf("Expected %d alternatives, got %d", AlternativesLimit, len(items))
	}
}

func TestAlternativesEmptyCases(t *testing.T) {
	noComposition := paracetamolMatch(0.7)
	noComposition.Record.Composition = " (10mg) + "

	tests := []struct {
		name  string
		store *fakeStore
		input string
	}{
		{"no base match", &fakeStore{}, "xyzabc123"},
		{"below threshold", &fakeStore{match: paracetamolMatch(0.1)}, "pcm"},
		{"no ingredients", &fakeStore{match: noComposition}, "paracetamol"},
		{"blank after normalizing", &fakeStore{match: paracetamolMatch(0.9)}, "!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMedicineService(tt.store, ai.NewFallback(nil, 0, ai.PolicyDegrade), 0.2)

			items, err := svc.Alternatives(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if items == nil {
				t.Fatal("Expected empty non-nil list, got nil")
			}
			if len(items) != 0 {
				t.Errorf("Expected no alternatives, got %+v", items)
			}
			if tt.store.altQuery != nil {
				t.Errorf("Expected no alternatives query, got %+v", tt.store.altQuery)
			}
		})
	}
}

func TestAlternativesStoreError(t *testing.T) {
	store := &fakeStore{
		match:  paracetamolMatch(0.7),
		altErr: fmt.Errorf("%w: timeout", medicine.ErrStoreUnavailable),
	}
	svc := NewMedicineService(store, ai.NewFallback(nil, 0, ai.PolicyDegrade), 0.2)

	_, err := svc.Alternatives(context.Background(), "paracetamol")
	if !errors.Is(err, medicine.ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable, got %v", err)
	}
}

func TestNewMedicineServiceDefaultThreshold(t *testing.T) {
	svc := NewMedicineService(&fakeStore{}, ai.NewFallback(nil, 0, ai.PolicyDegrade), 0)
	if svc.threshold != DefaultSimilarityThreshold {
		t.Errorf("Expected default threshold %v, got %v", DefaultSimilarityThreshold, svc.threshold)
	}
}
