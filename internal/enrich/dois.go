// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"io"

	"github.com/shibata-lab/labpipe/internal/content"
	"github.com/shibata-lab/labpipe/internal/match"
	"github.com/shibata-lab/labpipe/pkg/types"
)

// DOIFinder resolves missing DOIs by title search. A candidate is accepted
// only when its title overlaps the record's past the configured threshold
// AND the two share at least one author surname; anything weaker is left
// unset for manual review.
type DOIFinder struct {
	Crossref *CrossrefClient
	Matcher  match.Matcher
	Cache    *Cache
	Config   types.EnrichConfig
}

// Find looks up a DOI for one record. It returns the DOI and whether a
// candidate passed verification.
func (f *DOIFinder) Find(ctx context.Context, pub *types.Publication) (string, bool, error) {
	cacheKey := "doi:" + match.TitleKey(pub.Title)

	if f.Cache != nil {
		if value, ok, err := f.Cache.Get(ctx, cacheKey); err != nil {
			return "", false, err
		} else if ok {
			return value, value != "", nil
		}
	}

	yearFrom, yearTo := 0, 0
	if pub.Year > 0 {
		yearFrom = pub.Year - f.Config.YearWindow
		yearTo = pub.Year + f.Config.YearWindow
	}

	candidates, err := f.Crossref.SearchTitle(ctx, pub.Title, yearFrom, yearTo, f.Config)
	if err != nil {
		return "", false, err
	}

	doi := ""
	if len(candidates) > 0 && f.verify(pub, candidates[0]) {
		doi = candidates[0].DOI
	}

	if f.Cache != nil {
		if err := f.Cache.Put(ctx, cacheKey, doi); err != nil {
			return "", false, err
		}
	}
	return doi, doi != "", nil
}

// verify applies the two acceptance gates to the top candidate.
func (f *DOIFinder) verify(pub *types.Publication, cand Candidate) bool {
	threshold := f.Config.OverlapThreshold
	if threshold <= 0 {
		threshold = 0.7
	}
	if match.WordOverlap(pub.Title, cand.Title) < threshold {
		return false
	}
	return match.SharesSurname(f.Matcher, pub.Authors, cand.Authors)
}

// FindAll backfills DOIs across the store for records that lack one. limit
// bounds how many lookups are attempted (0 = unlimited); dryRun reports
// matches without writing. API failures are logged and skipped — the record
// stays as it was.
func FindAll(ctx context.Context, store *content.Store, finder *DOIFinder, limit int, dryRun bool, w io.Writer) (Summary, error) {
	pubs, err := store.LoadAll()
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, pub := range pubs {
		if pub.DOI != "" || !pub.Valid() {
			continue
		}
		if limit > 0 && summary.Attempted() >= limit {
			break
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		doi, ok, err := finder.Find(ctx, pub)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", pub.ID, err)
			summary.Failed++
			continue
		}
		if !ok {
			fmt.Fprintf(w, "no match %s\n", pub.ID)
			summary.Unmatched++
			continue
		}

		fmt.Fprintf(w, "found   %s -> %s\n", pub.ID, doi)
		summary.Enriched++
		if dryRun {
			continue
		}

		pub.DOI = doi
		if err := store.Save(pub); err != nil {
			return summary, err
		}
	}

	fmt.Fprintf(w, "\nenriched: %d, no match: %d, failed: %d\n",
		summary.Enriched, summary.Unmatched, summary.Failed)
	return summary, nil
}

// Summary holds counts from an enrichment run.
type Summary struct {
	Enriched  int
	Unmatched int
	Failed    int
}

// Attempted returns the number of lookups performed.
func (s Summary) Attempted() int {
	return s.Enriched + s.Unmatched + s.Failed
}
