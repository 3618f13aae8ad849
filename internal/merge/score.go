// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge selects the best record of a duplicate group and folds the
// others into it. The completeness score is the sole tie-break: it ranks how
// filled-in a record is, is monotonic in fields present, and is recomputed on
// demand, never stored.
package merge

import "github.com/shibata-lab/labpipe/pkg/types"

// Completeness weights. Hand-tuned; the absolute values only matter relative
// to each other.
const (
	weightPerAuthor  = 10
	weightAward      = 50
	weightDOI        = 30
	weightConference = 20
	weightJournal    = 15
	weightPages      = 10
	weightTypedOther = 10
	weightYear       = 5
)

// Score returns the completeness score of a record.
func Score(p *types.Publication) int {
	score := weightPerAuthor * len(p.Authors)
	if len(p.Awards) > 0 {
		score += weightAward
	}
	if p.DOI != "" {
		score += weightDOI
	}
	if p.Conference != "" {
		score += weightConference
	}
	if p.Journal != "" {
		score += weightJournal
	}
	if p.Pages != "" {
		score += weightPages
	}
	if p.Type != types.TypeAward {
		score += weightTypedOther
	}
	if p.Year > 0 {
		score += weightYear
	}
	return score
}
