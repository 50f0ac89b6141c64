package medicine

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Compiled once, reused by every request
var (
	dosageRegex     = regexp.MustCompile(`\b\d+\s*mg\b`)
	nonAlnumRegex   = regexp.MustCompile(`[^a-z0-9 ]`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// CleanName normalizes a user supplied medicine name before fuzzy search.
// Accents are folded to their base letter, dosage tokens such as "500 mg"
// are dropped, and anything outside [a-z0-9 ] is removed.
func CleanName(name string) string {
	n := strings.ToLower(foldDiacritics(name))
	n = dosageRegex.ReplaceAllString(n, "")
	n = nonAlnumRegex.ReplaceAllString(n, "")

	// Stripping can expose a new dosage token ("500-mg" becomes "500mg"),
	// so repeat until stable to keep CleanName idempotent.
	for {
		next := nonAlnumRegex.ReplaceAllString(dosageRegex.ReplaceAllString(n, ""), "")
		if next == n {
			break
		}
		n = next
	}

	n = whitespaceRegex.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

// foldDiacritics maps "é" to "e", "ü" to "u" and so on. A transformer chain
// keeps state, so a fresh one is built per call.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
