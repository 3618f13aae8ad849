// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cleanup holds the maintenance operations that mutate records in
// place: author-name canonicalization and category verification.
package cleanup

import (
	"context"
	"fmt"
	"io"

	"github.com/shibata-lab/labpipe/internal/content"
	"github.com/shibata-lab/labpipe/internal/match"
	"github.com/shibata-lab/labpipe/internal/merge"
)

// Summary holds counts from a cleanup run.
type Summary struct {
	Updated int
	Skipped int
}

// Authors canonicalizes author display names across the whole store. Names
// the Matcher judges equivalent (romanization variants, initials, reversed
// order) are rewritten to one canonical form: the longest variant seen,
// which tends to be the most complete spelling. dryRun reports the rewrites
// without saving.
func Authors(ctx context.Context, store *content.Store, m match.Matcher, dryRun bool, w io.Writer) (Summary, error) {
	pubs, err := store.LoadAll()
	if err != nil {
		return Summary{}, err
	}

	// First pass: pick a canonical form per equivalence group. Groups are
	// formed greedily in record order, so the policy is deterministic.
	var canonical []string
	for _, pub := range pubs {
		for _, name := range pub.Authors {
			found := false
			for i, c := range canonical {
				if m.Same(c, name) {
					if len(name) > len(c) {
						canonical[i] = name
					}
					found = true
					break
				}
			}
			if !found {
				canonical = append(canonical, name)
			}
		}
	}

	resolve := func(name string) string {
		for _, c := range canonical {
			if m.Same(c, name) {
				return c
			}
		}
		return name
	}

	var summary Summary
	for _, pub := range pubs {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		changed := false
		for i, name := range pub.Authors {
			if resolved := resolve(name); resolved != name {
				fmt.Fprintf(w, "rename  %s: %q -> %q\n", pub.ID, name, resolved)
				pub.Authors[i] = resolved
				changed = true
			}
		}

		if !changed {
			summary.Skipped++
			continue
		}
		summary.Updated++
		if dryRun {
			continue
		}
		if err := store.Save(pub); err != nil {
			return summary, err
		}
	}

	fmt.Fprintf(w, "\nupdated: %d, unchanged: %d\n", summary.Updated, summary.Skipped)
	return summary, nil
}

// Categories reclassifies records filed under the generic "award" bucket
// that actually carry a venue. With fix unset it only reports candidates.
func Categories(ctx context.Context, store *content.Store, fix bool, w io.Writer) (Summary, error) {
	pubs, err := store.LoadAll()
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, pub := range pubs {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		before := pub.Type
		if !merge.Reclassify(pub) {
			summary.Skipped++
			continue
		}

		fmt.Fprintf(w, "reclassify %s: %s -> %s\n", pub.ID, before, pub.Type)
		summary.Updated++
		if !fix {
			continue
		}
		if err := store.Save(pub); err != nil {
			return summary, err
		}
	}

	if fix {
		fmt.Fprintf(w, "\nreclassified: %d\n", summary.Updated)
	} else {
		fmt.Fprintf(w, "\n%d record(s) would be reclassified (use --fix to apply)\n", summary.Updated)
	}
	return summary, nil
}
