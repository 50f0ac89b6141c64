package medicine

import (
	"reflect"
	"testing"
)

func TestExtractIngredients(t *testing.T) {
	tests := []struct {
		name        string
		composition string
		expected    []string
	}{
		{"plus separated", "Paracetamol + Caffeine", []string{"paracetamol", "caffeine"}},
		{"strength annotations", "Paracetamol (500mg) + Caffeine (30mg)", []string{"paracetamol", "caffeine"}},
		{"comma separated", "Amoxycillin (500mg), Clavulanic Acid (125mg)", []string{"amoxycillin", "clavulanic acid"}},
		{"mixed separators", "A (1mg)+B, C", []string{"a", "b", "c"}},
		{"duplicates removed", "Paracetamol + paracetamol (650mg)", []string{"paracetamol"}},
		{"empty pieces dropped", " + (10mg) , ", []string{}},
		{"empty composition", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractIngredients(tt.composition)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ExtractIngredients(%q) = %#v, expected %#v", tt.composition, got, tt.expected)
			}
		})
	}
}
