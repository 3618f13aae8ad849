// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package content

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shibata-lab/labpipe/pkg/types"
)

// maxTitleWords bounds how many title words contribute to a slug.
const maxTitleWords = 4

// MakeID derives a stable slug from year, first author, and title fragments,
// e.g. "2021-yamada-neural-coding-in-rats".
func MakeID(p *types.Publication) string {
	var parts []string

	if p.Year > 0 {
		parts = append(parts, fmt.Sprintf("%d", p.Year))
	}

	if len(p.Authors) > 0 {
		if fields := strings.Fields(slugify(surnameFragment(p.Authors[0]))); len(fields) > 0 {
			parts = append(parts, fields...)
		}
	}

	words := strings.Fields(slugify(p.Title))
	if len(words) > maxTitleWords {
		words = words[:maxTitleWords]
	}
	parts = append(parts, words...)

	id := strings.Join(parts, "-")
	if id == "" {
		id = "untitled"
	}
	return id
}

// UniqueID enforces ID uniqueness at creation time by suffixing collisions
// with an incrementing counter: base, base-2, base-3, ...
func (s *Store) UniqueID(base string) string {
	if !s.Exists(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !s.Exists(candidate) {
			return candidate
		}
	}
}

// surnameFragment extracts the surname portion of a display name:
// "Last, First" keeps the part before the comma, otherwise the last
// space-separated token. CJK names without spaces are used whole.
func surnameFragment(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexAny(name, ",、"); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}
	return fields[len(fields)-1]
}

// slugify lowercases and reduces a string to hyphen-separated ASCII-ish
// word characters. Non-letter runs collapse into single separators; CJK
// letters are kept as-is so Japanese-only records still get a usable slug.
func slugify(s string) string {
	var b strings.Builder
	lastSep := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSep = false
		case !lastSep:
			b.WriteRune(' ')
			lastSep = true
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
