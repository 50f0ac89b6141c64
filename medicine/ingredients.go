package medicine

import "strings"

// ExtractIngredients splits a composition such as
// "Paracetamol (500mg) + Caffeine (30mg)" into lowercase salt names.
// Strength annotations in parentheses are dropped, and so are empty and
// repeated entries.
func ExtractIngredients(composition string) []string {
	parts := strings.FieldsFunc(composition, func(r rune) bool {
		return r == '+' || r == ','
	})

	ingredients := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		if idx := strings.Index(part, "("); idx != -1 {
			part = part[:idx]
		}
		salt := strings.TrimSpace(strings.ToLower(part))
		if salt == "" {
			continue
		}
		if _, dup := seen[salt]; dup {
			continue
		}
		seen[salt] = struct{}{}
		ingredients = append(ingredients, salt)
	}
	return ingredients
}
