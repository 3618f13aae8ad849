// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/shibata-lab/labpipe/internal/content"
	"github.com/shibata-lab/labpipe/internal/match"
	"github.com/shibata-lab/labpipe/pkg/types"
)

// Result is the outcome of merging one duplicate group.
type Result struct {
	// Merged is the surviving record with fields folded in from the group.
	Merged *types.Publication

	// Deleted lists the IDs of the records folded away.
	Deleted []string
}

// MergeGroup folds a duplicate group into one record. The group is sorted by
// completeness score descending (stable, so original iteration order breaks
// ties); the top record seeds the output, keeping its author order. Authors
// and awards are unioned across the group, DOI and pages are backfilled from
// any member, and generic "award" records carrying a venue are reclassified.
func MergeGroup(group []*types.Publication, m match.Matcher) Result {
	sorted := make([]*types.Publication, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Score(sorted[i]) > Score(sorted[j])
	})

	top := *sorted[0]
	merged := &top
	merged.Authors = append([]string(nil), sorted[0].Authors...)
	merged.Awards = append([]string(nil), sorted[0].Awards...)

	var deleted []string
	for _, other := range sorted[1:] {
		deleted = append(deleted, other.ID)

		for _, a := range other.Authors {
			if !match.ContainsAuthor(m, merged.Authors, a) {
				merged.Authors = append(merged.Authors, a)
			}
		}
		for _, award := range other.Awards {
			if !containsString(merged.Awards, award) {
				merged.Awards = append(merged.Awards, award)
			}
		}

		if merged.DOI == "" && other.DOI != "" {
			merged.DOI = other.DOI
		}
		if merged.Pages == "" && other.Pages != "" {
			merged.Pages = other.Pages
		}
	}

	Reclassify(merged)
	return Result{Merged: merged, Deleted: deleted}
}

// Reclassify fixes records filed under the generic "award" bucket that
// actually name a venue: a conference implies a presentation, a journal
// implies a journal article. It reports whether the type changed.
func Reclassify(p *types.Publication) bool {
	if p.Type != types.TypeAward {
		return false
	}
	switch {
	case p.Conference != "":
		p.Type = types.TypePresentation
		return true
	case p.Journal != "":
		p.Type = types.TypeJournal
		return true
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Summary holds counts from a dedup run.
type Summary struct {
	Groups  int
	Merged  int
	Deleted int
}

// DedupAll groups every record in the store by title identity and merges each
// duplicate group, writing the survivor and deleting the rest. With dryRun
// the write/delete step is skipped; everything else still runs so the report
// is accurate. Deletion is irreversible.
func DedupAll(ctx context.Context, store *content.Store, m match.Matcher, dryRun bool, w io.Writer) (Summary, error) {
	pubs, err := store.LoadAll()
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, group := range match.DuplicateGroups(pubs) {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		summary.Groups++
		res := MergeGroup(group, m)

		fmt.Fprintf(w, "merge %s <- %v\n", res.Merged.ID, res.Deleted)
		if dryRun {
			continue
		}

		if err := store.Save(res.Merged); err != nil {
			return summary, err
		}
		for _, id := range res.Deleted {
			if err := store.Delete(id); err != nil {
				return summary, err
			}
			summary.Deleted++
		}
		summary.Merged++
	}

	if dryRun {
		fmt.Fprintf(w, "\n%d duplicate group(s) found (dry run, nothing written)\n", summary.Groups)
	} else {
		fmt.Fprintf(w, "\n%d group(s) merged, %d record(s) deleted\n", summary.Merged, summary.Deleted)
	}
	return summary, nil
}

// Report writes a duplicate-detection report without mutating the store.
// Each group lists its members with their completeness scores, best first.
func Report(store *content.Store, w io.Writer) error {
	pubs, err := store.LoadAll()
	if err != nil {
		return err
	}

	groups := match.DuplicateGroups(pubs)
	if len(groups) == 0 {
		fmt.Fprintln(w, "No duplicates found.")
		return nil
	}

	for i, group := range groups {
		sorted := make([]*types.Publication, len(group))
		copy(sorted, group)
		sort.SliceStable(sorted, func(a, b int) bool {
			return Score(sorted[a]) > Score(sorted[b])
		})

		fmt.Fprintf(w, "group %d: %q\n", i+1, sorted[0].Title)
		for _, p := range sorted {
			fmt.Fprintf(w, "  %-40s score=%d\n", p.ID, Score(p))
		}
	}
	fmt.Fprintf(w, "\n%d duplicate group(s)\n", len(groups))
	return nil
}
