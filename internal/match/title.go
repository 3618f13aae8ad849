// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match implements identity resolution for publication records:
// normalized title keys, duplicate grouping, word-overlap similarity, and
// author-name matching.
package match

import (
	"strings"
	"unicode"

	"github.com/shibata-lab/labpipe/pkg/types"
)

// KeyPrefixLen bounds the normalized title key. One constant everywhere;
// callers that need a different bound use TitleKeyN.
const KeyPrefixLen = 30

// strippedRunes is the fixed set of quote, bracket, and space characters
// removed during normalization, covering both Latin and Japanese variants.
const strippedRunes = "「」『』【】〈〉《》（）()[]{}\"'’‘”“・：:;，,。．.、!?！？　 \t"

// NormalizeTitle lowercases a title and strips quote/bracket/space
// characters. When a 「…」 pair is present the inner text is extracted first
// (legacy citations wrap the real title in those brackets). The result is
// lossy by design: it is an approximate identity key, not a display value.
func NormalizeTitle(title string) string {
	if inner, ok := innerBracketText(title); ok {
		title = inner
	}

	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if strings.ContainsRune(strippedRunes, r) || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TitleKey returns the bounded normalized key used for identity comparison.
func TitleKey(title string) string {
	return TitleKeyN(title, KeyPrefixLen)
}

// TitleKeyN truncates the normalized title to a prefix of n runes.
func TitleKeyN(title string, n int) string {
	norm := []rune(NormalizeTitle(title))
	if len(norm) > n {
		norm = norm[:n]
	}
	return string(norm)
}

// SameTitle reports whether two titles describe the same publication: one
// bounded key must be a substring of the other. This is a heuristic, not an
// equivalence relation — short unrelated titles sharing a prefix collide,
// and titles differing past the truncation point do not.
func SameTitle(a, b string) bool {
	ka, kb := TitleKey(a), TitleKey(b)
	if ka == "" || kb == "" {
		return false
	}
	return strings.Contains(ka, kb) || strings.Contains(kb, ka)
}

// innerBracketText extracts the text inside the first 「…」 pair.
func innerBracketText(s string) (string, bool) {
	start := strings.Index(s, "「")
	if start < 0 {
		return "", false
	}
	rest := s[start+len("「"):]
	end := strings.Index(rest, "」")
	if end < 0 {
		return "", false
	}
	inner := rest[:end]
	if inner == "" {
		return "", false
	}
	return inner, true
}

// GroupByTitle partitions records into duplicate groups by title identity.
// Iteration order is preserved: each record joins the first matching group.
func GroupByTitle(pubs []*types.Publication) [][]*types.Publication {
	var groups [][]*types.Publication
	for _, p := range pubs {
		placed := false
		for i, g := range groups {
			if SameTitle(p.Title, g[0].Title) {
				groups[i] = append(groups[i], p)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []*types.Publication{p})
		}
	}
	return groups
}

// DuplicateGroups returns only groups containing more than one record.
func DuplicateGroups(pubs []*types.Publication) [][]*types.Publication {
	var dups [][]*types.Publication
	for _, g := range GroupByTitle(pubs) {
		if len(g) > 1 {
			dups = append(dups, g)
		}
	}
	return dups
}

// WordOverlap computes Jaccard similarity between the word sets of two
// titles. Used to verify title-search candidates during enrichment.
func WordOverlap(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	intersection := 0
	for w := range wa {
		if wb[w] {
			intersection++
		}
	}
	union := len(wa) + len(wb) - intersection
	return float64(intersection) / float64(union)
}

// wordSet lowercases a string and returns its set of alphanumeric words.
func wordSet(s string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
