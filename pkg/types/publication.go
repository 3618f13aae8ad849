// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data structures for the labpipe content
// pipeline: publication records, embedding entries, and stage configuration.
package types

// PublicationType classifies a publication record.
type PublicationType string

const (
	TypeJournal      PublicationType = "journal"
	TypeConference   PublicationType = "conference"
	TypeBook         PublicationType = "book"
	TypeReview       PublicationType = "review"
	TypePresentation PublicationType = "presentation"
	TypePoster       PublicationType = "poster"
	TypeThesis       PublicationType = "thesis"
	TypeMedia        PublicationType = "media"
	TypeAward        PublicationType = "award"
	TypeGrant        PublicationType = "grant"
	TypeReport       PublicationType = "report"
	TypePatent       PublicationType = "patent"
)

// ValidTypes is the set of accepted PublicationType values.
var ValidTypes = map[PublicationType]bool{
	TypeJournal:      true,
	TypeConference:   true,
	TypeBook:         true,
	TypeReview:       true,
	TypePresentation: true,
	TypePoster:       true,
	TypeThesis:       true,
	TypeMedia:        true,
	TypeAward:        true,
	TypeGrant:        true,
	TypeReport:       true,
	TypePatent:       true,
}

// Publication is a single bibliographic record, persisted as one YAML file
// under content/publications/.
type Publication struct {
	// ID is a stable slug derived from year, first author, and title
	// fragments. Unique within the store; collisions get a numeric suffix.
	ID string `json:"id" yaml:"id"`

	// Title is free text, English or Japanese.
	Title string `json:"title" yaml:"title"`

	// Lang tags the title language: "en" or "ja".
	Lang string `json:"lang,omitempty" yaml:"lang,omitempty"`

	// Authors lists display names in citation order. Order is significant:
	// a merge preserves the surviving record's order and appends unseen names.
	Authors []string `json:"authors" yaml:"authors"`

	Year       int             `json:"year,omitempty" yaml:"year,omitempty"`
	Journal    string          `json:"journal,omitempty" yaml:"journal,omitempty"`
	Conference string          `json:"conference,omitempty" yaml:"conference,omitempty"`
	Volume     string          `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue      string          `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages      string          `json:"pages,omitempty" yaml:"pages,omitempty"`
	DOI        string          `json:"doi,omitempty" yaml:"doi,omitempty"`
	URL        string          `json:"url,omitempty" yaml:"url,omitempty"`
	Awards     []string        `json:"awards,omitempty" yaml:"awards,omitempty"`
	Tags       []string        `json:"tags,omitempty" yaml:"tags,omitempty"`
	Type       PublicationType `json:"type" yaml:"type"`

	// Abstract is fetched post-hoc from external bibliographic sources.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Errors records parse failures inline. A record with errors is still
	// emitted so downstream stages can filter it out.
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Valid reports whether the record parsed cleanly.
func (p *Publication) Valid() bool {
	return len(p.Errors) == 0
}

// HasVenue reports whether the record names a journal or conference.
func (p *Publication) HasVenue() bool {
	return p.Journal != "" || p.Conference != ""
}
