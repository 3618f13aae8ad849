// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest turns raw scraped citation strings into structured
// publication records, via regex field extraction or a locally hosted LLM.
package ingest

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shibata-lab/labpipe/pkg/types"
)

// Parser extracts a structured record from one raw citation line. fallback
// is the publication type of the scraped page section, used when the parser
// cannot determine a more specific type.
type Parser interface {
	Parse(ctx context.Context, raw string, fallback types.PublicationType) (*types.Publication, error)
}

// Field extraction patterns for Latin-script and Japanese citation lines.
var (
	doiRe = regexp.MustCompile(`(?i)(?:doi:\s*|https?://(?:dx\.)?doi\.org/)(10\.\d{4,9}/[^\s,;]+)|\b(10\.\d{4,9}/[^\s,;]+)`)

	urlRe = regexp.MustCompile(`https?://[^\s]+`)

	yearRe = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

	pagesRe = regexp.MustCompile(`(?:pp?\.\s*)?\b(\d+)\s*[-–—]\s*(\d+)\b`)

	// volIssueRe matches "12(3)" style volume(issue) markers.
	volIssueRe = regexp.MustCompile(`\b(\d+)\s*\(\s*(\d+)\s*\)`)

	volRe   = regexp.MustCompile(`(?i)\bvol\.?\s*(\d+)`)
	issueRe = regexp.MustCompile(`(?i)\bno\.?\s*(\d+)`)

	// quotedTitleRe matches a double-quoted title, straight or curly quotes.
	quotedTitleRe = regexp.MustCompile(`["“]([^"”]+)["”]`)

	// jaTitleRe matches a Japanese bracketed title.
	jaTitleRe = regexp.MustCompile(`「([^」]+)」`)
)

// conferenceMarkers identify venue strings that name a conference rather
// than a journal.
var conferenceMarkers = []string{
	"proc.", "proceedings", "conference", "conf.", "symposium", "workshop",
	"meeting", "国際会議", "研究会", "大会", "シンポジウム",
}

// RegexParser extracts citation fields with regular expressions. It never
// fails outright: missing mandatory fields are recorded on the record's
// error list and the record is still emitted, flagged invalid, so downstream
// stages can filter.
type RegexParser struct{}

// Parse implements Parser.
func (RegexParser) Parse(_ context.Context, raw string, fallback types.PublicationType) (*types.Publication, error) {
	p := &types.Publication{Type: fallback, Lang: detectLang(raw)}

	rest := raw

	if m := doiRe.FindStringSubmatch(rest); m != nil {
		if m[1] != "" {
			p.DOI = strings.TrimRight(m[1], ".")
		} else {
			p.DOI = strings.TrimRight(m[2], ".")
		}
	}
	if m := urlRe.FindString(rest); m != "" && !strings.Contains(m, "doi.org") {
		p.URL = strings.TrimRight(m, ".,")
	}
	if m := yearRe.FindStringSubmatch(rest); m != nil {
		p.Year, _ = strconv.Atoi(m[1])
	}

	title, titleStart, titleEnd := extractTitle(rest)
	p.Title = title

	if m := volIssueRe.FindStringSubmatch(rest); m != nil {
		p.Volume, p.Issue = m[1], m[2]
	} else {
		if m := volRe.FindStringSubmatch(rest); m != nil {
			p.Volume = m[1]
		}
		if m := issueRe.FindStringSubmatch(rest); m != nil {
			p.Issue = m[1]
		}
	}
	if m := pagesRe.FindStringSubmatch(rest); m != nil {
		p.Pages = m[1] + "-" + m[2]
	}

	if titleStart >= 0 {
		p.Authors = parseAuthorList(rest[:titleStart])
		venue := extractVenue(rest[titleEnd:])
		if venue != "" {
			if isConferenceVenue(venue) {
				p.Conference = venue
				if fallback == types.TypeJournal {
					p.Type = types.TypeConference
				}
			} else {
				p.Journal = venue
			}
		}
	}

	if p.Title == "" {
		p.Errors = append(p.Errors, "no title found")
	}
	if len(p.Authors) == 0 {
		p.Errors = append(p.Errors, "no authors found")
	}

	return p, nil
}

// extractTitle finds the title and its byte offsets in the raw line. Quoted
// and 「」-bracketed titles win; otherwise the second comma- or
// period-delimited segment is assumed to be the title.
func extractTitle(raw string) (title string, start, end int) {
	if m := jaTitleRe.FindStringSubmatchIndex(raw); m != nil {
		return strings.TrimSpace(raw[m[2]:m[3]]), m[0], m[1]
	}
	if m := quotedTitleRe.FindStringSubmatchIndex(raw); m != nil {
		return strings.TrimSpace(raw[m[2]:m[3]]), m[0], m[1]
	}

	segments := splitSegments(raw)
	if len(segments) < 2 {
		return "", -1, -1
	}
	seg := segments[1]
	start = strings.Index(raw, seg)
	return strings.TrimSpace(seg), start, start + len(seg)
}

// splitSegments splits a citation line on period-space and Japanese comma
// boundaries, protecting single-letter initials from false splits.
func splitSegments(raw string) []string {
	protected := regexp.MustCompile(`\b([A-Z])\.`).ReplaceAllString(raw, "${1}\x00")
	var parts []string
	for _, seg := range regexp.MustCompile(`\.\s+|。|，\s*`).Split(protected, -1) {
		seg = strings.ReplaceAll(seg, "\x00", ".")
		seg = strings.TrimSpace(seg)
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return parts
}

// parseAuthorList splits the author block preceding the title into display
// names. Handles Latin separators (comma, "and", "&") and Japanese ones
// (、 and ・).
func parseAuthorList(block string) []string {
	block = strings.TrimRight(strings.TrimSpace(block), ",:：.")
	if block == "" {
		return nil
	}

	block = strings.ReplaceAll(block, " and ", ",")
	block = strings.ReplaceAll(block, " & ", ",")

	var authors []string
	for _, name := range strings.FieldsFunc(block, func(r rune) bool {
		return r == ',' || r == '、' || r == '・' || r == ';'
	}) {
		name = strings.TrimSpace(name)
		if name == "" || yearRe.MatchString(name) {
			continue
		}
		authors = append(authors, name)
	}
	return authors
}

// extractVenue takes the text after the title and returns the venue segment:
// everything up to the first numeric marker (volume, pages, year).
func extractVenue(after string) string {
	after = strings.TrimLeft(after, " ,.、。：:")

	cut := len(after)
	for _, re := range []*regexp.Regexp{volIssueRe, pagesRe, volRe, yearRe} {
		if loc := re.FindStringIndex(after); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	venue := strings.Trim(after[:cut], " ,.、。：:()")
	if urlRe.MatchString(venue) || doiRe.MatchString(venue) {
		return ""
	}
	return venue
}

// isConferenceVenue reports whether a venue string names a conference.
func isConferenceVenue(venue string) bool {
	lower := strings.ToLower(venue)
	for _, marker := range conferenceMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// detectLang tags the citation language: "ja" when any CJK or kana
// codepoint is present, "en" otherwise. The tagging is mutually exclusive.
func detectLang(s string) string {
	for _, r := range s {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return "ja"
		}
	}
	return "en"
}
