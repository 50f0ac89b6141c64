// Package medicine holds the domain types of the medicine info API together
// with the pure helpers that operate on them: name normalization and
// composition splitting.
package medicine

// NotFound is the placeholder returned for any field that could not be resolved.
const NotFound = "Information not found"

// DefaultSimilarityThreshold is the minimum trigram similarity for a store
// match to be trusted. Equal or lower scores count as no match.
const DefaultSimilarityThreshold = 0.2

// Result sources
const (
	SourceDatabase = "database"
	SourceAI       = "ai"
)

// Reviews holds the three review buckets of a medicine. Any bucket may be
// unknown, in which case it is serialized as null.
type Reviews struct {
	Excellent *float64 `json:"excellent"`
	Average   *float64 `json:"average"`
	Poor      *float64 `json:"poor"`
}

// Record is a row of the medicine table.
type Record struct {
	MedicineName string
	UseCase      string
	Composition  string
	SideEffects  string
	ImageURL     *string
	Manufacturer *string
	Reviews      Reviews
}

// Match is the best fuzzy candidate for a query with its trigram similarity.
type Match struct {
	Record     Record
	Similarity float64
}

// InfoResult is the response of the info endpoint, coming either from the
// store or from the AI fallback.
type InfoResult struct {
	UseCase      string   `json:"use_case"`
	Composition  string   `json:"composition"`
	SideEffects  string   `json:"side_effects"`
	ImageURL     *string  `json:"image_url,omitempty"`
	Manufacturer *string  `json:"manufacturer,omitempty"`
	Reviews      *Reviews `json:"reviews,omitempty"`
	Source       string   `json:"source"`
}

// AlternativeItem is one entry of the alternatives list. Reviews is always
// present so clients can rely on the three keys.
type AlternativeItem struct {
	MedicineName string  `json:"medicine_name"`
	Composition  string  `json:"composition"`
	UseCase      string  `json:"use_case"`
	SideEffects  string  `json:"side_effects"`
	ImageURL     *string `json:"image_url,omitempty"`
	Manufacturer *string `json:"manufacturer,omitempty"`
	Reviews      Reviews `json:"reviews"`
}

// AlternativesQuery describes the secondary search for records sharing salts.
type AlternativesQuery struct {
	ExcludeName string
	Ingredients []string
	Limit       int
}

// Fields is the structured output of parsing free AI text.
type Fields struct {
	UseCase     string
	Composition string
	SideEffects string
}

// ToInfoResult projects a stored record onto the info response. Stored
// columns are returned verbatim, empty ones included.
func (r Record) ToInfoResult() InfoResult {
	reviews := r.Reviews
	return InfoResult{
		UseCase:      r.UseCase,
		Composition:  r.Composition,
		SideEffects:  r.SideEffects,
		ImageURL:     r.ImageURL,
		Manufacturer: r.Manufacturer,
		Reviews:      &reviews,
		Source:       SourceDatabase,
	}
}

// ToAlternative projects a stored record onto an alternatives entry.
func (r Record) ToAlternative() AlternativeItem {
	return AlternativeItem{
		MedicineName: r.MedicineName,
		Composition:  r.Composition,
		UseCase:      r.UseCase,
		SideEffects:  r.SideEffects,
		ImageURL:     r.ImageURL,
		Manufacturer: r.Manufacturer,
		Reviews:      r.Reviews,
	}
}

// ToInfoResult turns parsed AI fields into an info response.
func (f Fields) ToInfoResult() InfoResult {
	return InfoResult{
		UseCase:     orNotFound(f.UseCase),
		Composition: orNotFound(f.Composition),
		SideEffects: orNotFound(f.SideEffects),
		Source:      SourceAI,
	}
}

func orNotFound(s string) string {
	if s == "" {
		return NotFound
	}
	return s
}
