// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/shibata-lab/labpipe/internal/enrich"
	"github.com/shibata-lab/labpipe/internal/match"
	"github.com/shibata-lab/labpipe/pkg/types"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Backfill records with metadata from bibliographic APIs",
}

var enrichDOIsCmd = &cobra.Command{
	Use:   "dois",
	Short: "Find missing DOIs via Crossref title search",
	Long: `Enrich dois searches Crossref by title for every valid record lacking a
DOI. A candidate is accepted only when its title word overlap clears the
configured threshold and the candidate shares an author surname with the
record; anything weaker is left for manual review.`,
	RunE: runEnrichDOIs,
}

var enrichAbstractsCmd = &cobra.Command{
	Use:   "abstracts",
	Short: "Fetch abstracts for records that have a DOI",
	Long: `Enrich abstracts walks a provider chain (OpenAlex, Semantic Scholar,
Crossref, PubMed) for every record that has a DOI but no abstract, taking
the first non-empty result. Lookups are cached per run, including misses.`,
	RunE: runEnrichAbstracts,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
	enrichCmd.AddCommand(enrichDOIsCmd)
	enrichCmd.AddCommand(enrichAbstractsCmd)

	for _, c := range []*cobra.Command{enrichDOIsCmd, enrichAbstractsCmd} {
		c.Flags().Int("limit", 0, "max lookups this run (0 = unlimited)")
		c.Flags().Bool("dry-run", false, "report results without writing")
		c.Flags().Duration("delay", 0, "min interval between API requests (default from config)")
		c.Flags().String("cache", "", "lookup cache database path (default from config)")
	}
	enrichDOIsCmd.Flags().Float64("overlap", 0, "min title word overlap to accept a DOI (default 0.7)")
	enrichDOIsCmd.Flags().Int("year-window", 0, "widen the publication-year search filter by N years (default 1)")
}

// openEnrichCache opens the lookup cache when a path is configured. A nil
// cache disables caching.
func openEnrichCache(cmd *cobra.Command, cfg types.EnrichConfig) (*enrich.Cache, error) {
	path := cfg.CacheFile
	if flagPath, _ := cmd.Flags().GetString("cache"); flagPath != "" {
		path = flagPath
	}
	if path == "" {
		return nil, nil
	}
	return enrich.OpenCache(path)
}

func runEnrichDOIs(cmd *cobra.Command, args []string) error {
	store, err := contentStore(cmd)
	if err != nil {
		return err
	}

	cfg := enrichConfig(cmd)
	if overlap, _ := cmd.Flags().GetFloat64("overlap"); overlap > 0 {
		cfg.OverlapThreshold = overlap
	}
	if window, _ := cmd.Flags().GetInt("year-window"); window > 0 {
		cfg.YearWindow = window
	}

	cache, err := openEnrichCache(cmd, cfg)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	limiter := rate.NewLimiter(rate.Every(cfg.RequestDelay), 1)
	finder := &enrich.DOIFinder{
		Crossref: &enrich.CrossrefClient{
			Client:  &http.Client{Timeout: cfg.Timeout},
			Mailto:  cfg.CrossrefMailto,
			Limiter: limiter,
		},
		Matcher: match.NewNameMatcher(),
		Cache:   cache,
		Config:  cfg,
	}

	limit, _ := cmd.Flags().GetInt("limit")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	summary, err := enrich.FindAll(cmd.Context(), store, finder, limit, dryRun, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d lookup(s) failed", summary.Failed)
	}
	return nil
}

func runEnrichAbstracts(cmd *cobra.Command, args []string) error {
	store, err := contentStore(cmd)
	if err != nil {
		return err
	}

	cfg := enrichConfig(cmd)
	cache, err := openEnrichCache(cmd, cfg)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	limiter := rate.NewLimiter(rate.Every(cfg.RequestDelay), 1)
	crossref := &enrich.CrossrefClient{
		Client: &http.Client{Timeout: cfg.Timeout},
		Mailto: cfg.CrossrefMailto,
	}
	chain := enrich.NewChain(crossref, cfg, limiter, cache)

	limit, _ := cmd.Flags().GetInt("limit")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	_, err = enrich.EnrichAbstracts(cmd.Context(), store, chain, limit, dryRun, os.Stdout)
	return err
}
