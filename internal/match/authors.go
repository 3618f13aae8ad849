// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Matcher decides whether two author display names refer to the same person.
// The matching policy sits behind an interface so merge and cleanup logic can
// be tested independently of it, and stricter policies can be swapped in.
type Matcher interface {
	// Same reports whether a and b name the same author.
	Same(a, b string) bool

	// Surname returns the folded surname token of a display name.
	Surname(name string) string
}

// NameMatcher is the default Matcher. It folds diacritics and character
// width, parses "Last, First" and "First Last" orders, requires an exact
// surname match, and accepts initial or prefix matches on given names, so
// "A. Smith", "Alice Smith", and "Smith, Alice" all match each other.
type NameMatcher struct{}

// NewNameMatcher returns the default author-name matcher.
func NewNameMatcher() *NameMatcher { return &NameMatcher{} }

// foldTransformer strips diacritic marks and normalizes full-width forms so
// romanizations like "Ōta" and "Ota" or "Ｔａｎａｋａ" and "Tanaka" compare equal.
var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	width.Fold,
	norm.NFC,
)

// fold lowercases and de-accents a name for comparison.
func fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// parsedName is a display name split into given and surname parts.
type parsedName struct {
	given   string
	surname string
}

// parseName splits a folded display name. "last, first" order wins when a
// comma is present; otherwise the final token is the surname. CJK names
// without separators are treated as a bare surname.
func parseName(name string) parsedName {
	name = fold(name)

	if i := strings.IndexAny(name, ",、"); i >= 0 {
		return parsedName{
			surname: strings.TrimSpace(name[:i]),
			given:   strings.TrimSpace(name[i+1:]),
		}
	}

	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return parsedName{}
	case 1:
		return parsedName{surname: fields[0]}
	default:
		return parsedName{
			given:   strings.Join(fields[:len(fields)-1], " "),
			surname: fields[len(fields)-1],
		}
	}
}

// Same implements Matcher.
func (m *NameMatcher) Same(a, b string) bool {
	pa, pb := parseName(a), parseName(b)
	if pa.surname == "" || pb.surname == "" {
		return false
	}
	if pa.surname != pb.surname {
		return false
	}
	return givenCompatible(pa.given, pb.given)
}

// Surname implements Matcher.
func (m *NameMatcher) Surname(name string) string {
	return parseName(name).surname
}

// givenCompatible reports whether two given-name strings could belong to the
// same person: either may be empty, an initial of the other, or a prefix of
// the other ("a." vs "alice", "tim" vs "timothy c").
func givenCompatible(a, b string) bool {
	if a == "" || b == "" {
		return true
	}
	a = strings.TrimRight(a, ".")
	b = strings.TrimRight(b, ".")
	if strings.HasPrefix(a, b) || strings.HasPrefix(b, a) {
		return true
	}
	// Initial-style given names ("a. m." vs "alice"): first letters must agree.
	ra, rb := []rune(a), []rune(b)
	if len(ra) <= 2 || len(rb) <= 2 {
		return ra[0] == rb[0]
	}
	return false
}

// ContainsAuthor reports whether name matches any entry of authors.
func ContainsAuthor(m Matcher, authors []string, name string) bool {
	for _, a := range authors {
		if m.Same(a, name) {
			return true
		}
	}
	return false
}

// SharesSurname reports whether any surname appears in both author lists.
// Enrichment uses this as the second acceptance gate on search candidates.
func SharesSurname(m Matcher, a, b []string) bool {
	surnames := make(map[string]bool, len(a))
	for _, name := range a {
		if s := m.Surname(name); s != "" {
			surnames[s] = true
		}
	}
	for _, name := range b {
		if surnames[m.Surname(name)] {
			return true
		}
	}
	return false
}
