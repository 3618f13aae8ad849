// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import "testing"

func TestNameMatcherSame(t *testing.T) {
	m := NewNameMatcher()

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "Alice Smith", "Alice Smith", true},
		{"case insensitive", "alice smith", "Alice Smith", true},
		{"reversed comma order", "Smith, Alice", "Alice Smith", true},
		{"initial vs full", "A. Smith", "Alice Smith", true},
		{"initial no dot", "A Smith", "Alice Smith", true},
		{"prefix given name", "Tim Cook", "Timothy Cook", true},
		{"diacritics folded", "Kenji Ōta", "Kenji Ota", true},
		{"fullwidth folded", "Ｋｅｎ Ｔａｎａｋａ", "Ken Tanaka", true},
		{"different surname", "Alice Smith", "Alice Jones", false},
		{"different given", "Alice Smith", "Robert Smith", false},
		{"empty name", "", "Alice Smith", false},
		{"middle name compatible", "Alice Smith", "Alice M. Smith", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Same(tt.a, tt.b); got != tt.want {
				t.Errorf("Same(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// Same must be symmetric.
			if got := m.Same(tt.b, tt.a); got != tt.want {
				t.Errorf("Same(%q, %q) = %v, want %v (asymmetric)", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestNameMatcherSurname(t *testing.T) {
	m := NewNameMatcher()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"first last", "Alice Smith", "smith"},
		{"comma order", "Smith, Alice", "smith"},
		{"single token", "Smith", "smith"},
		{"diacritics", "Kenji Ōta", "ota"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Surname(tt.input); got != tt.want {
				t.Errorf("Surname(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestContainsAuthor(t *testing.T) {
	m := NewNameMatcher()
	authors := []string{"Alice Smith", "Kenji Ota"}

	if !ContainsAuthor(m, authors, "A. Smith") {
		t.Error("ContainsAuthor should match initial variant")
	}
	if ContainsAuthor(m, authors, "Robert Jones") {
		t.Error("ContainsAuthor should not match unrelated name")
	}
}

func TestSharesSurname(t *testing.T) {
	m := NewNameMatcher()

	if !SharesSurname(m, []string{"Alice Smith", "Kenji Ota"}, []string{"R. Smith"}) {
		t.Error("SharesSurname should match on smith")
	}
	if SharesSurname(m, []string{"Alice Smith"}, []string{"Kenji Ota"}) {
		t.Error("SharesSurname should not match disjoint lists")
	}
	if SharesSurname(m, nil, []string{"Alice Smith"}) {
		t.Error("SharesSurname with empty list should be false")
	}
}
