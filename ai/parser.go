package ai

import (
	"strings"

	"github.com/kairomed/medicine-info-api/medicine"
)

type field int

const (
	fieldNone field = iota
	fieldUseCase
	fieldComposition
	fieldSideEffects
)

// Label prefixes recognised per field, compared in lowercase
var labelPrefixes = []struct {
	prefix string
	field  field
}{
	{"use case", fieldUseCase},
	{"uses", fieldUseCase},
	{"composition", fieldComposition},
	{"ingredients", fieldComposition},
	{"side effect", fieldSideEffects},
}

// Phrases the model uses when it does not know a medicine
var unknownPhrases = []string{
	"unknown",
	"not recognized",
	"not recognised",
	"not a recognized",
	"no information",
	"not aware of",
	"not familiar with",
	"i don't know",
	"i do not know",
}

// ParseResponse extracts the three labelled fields from a completion.
// Lines look like "Use Case: ..."; labels are matched case-insensitively,
// markdown emphasis and bullets are ignored, the last occurrence of a label
// wins and unmatched fields are reported as medicine.NotFound.
func ParseResponse(text string) medicine.Fields {
	var parsed medicine.Fields

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		value = cleanValue(value)
		if value == "" {
			continue
		}

		switch classify(key) {
		case fieldUseCase:
			parsed.UseCase = value
		case fieldComposition:
			parsed.Composition = value
		case fieldSideEffects:
			parsed.SideEffects = value
		}
	}

	if parsed.UseCase == "" {
		parsed.UseCase = medicine.NotFound
	}
	if parsed.Composition == "" {
		parsed.Composition = medicine.NotFound
	}
	if parsed.SideEffects == "" {
		parsed.SideEffects = medicine.NotFound
	}
	return parsed
}

// LooksUnknown reports whether the model admitted it does not know the medicine
func LooksUnknown(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range unknownPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func classify(key string) field {
	key = strings.ToLower(strings.Trim(key, " \t*_#->•`0123456789."))
	for _, label := range labelPrefixes {
		if strings.HasPrefix(key, label.prefix) {
			return label.field
		}
	}
	return fieldNone
}

func cleanValue(value string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(value), "*_`"))
}
