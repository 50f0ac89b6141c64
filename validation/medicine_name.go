// Package validation checks user supplied medicine names before they reach
// the store or the AI provider.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength is the longest accepted name, in characters, after trimming
const MaxNameLength = 100

// ErrInvalidName is wrapped by every rejection so handlers can map it to 400
var ErrInvalidName = errors.New("invalid medicine name")

// ValidateMedicineName returns the trimmed name, or an error wrapping
// ErrInvalidName explaining why it was rejected.
func ValidateMedicineName(input string) (string, error) {
	name := strings.TrimSpace(input)
	if name == "" {
		return "", fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}

	if !utf8.ValidString(name) {
		return "", fmt.Errorf("%w: name must be valid UTF-8", ErrInvalidName)
	}

	if n := utf8.RuneCountInString(name); n > MaxNameLength {
		return "", fmt.Errorf("%w: name too long: maximum %d characters, got %d", ErrInvalidName, MaxNameLength, n)
	}

	// Tabs and newlines are whitespace the normalizer collapses
	for _, r := range name {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return "", fmt.Errorf("%w: name contains control characters", ErrInvalidName)
		}
	}

	return name, nil
}
