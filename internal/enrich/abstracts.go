// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/time/rate"

	"github.com/shibata-lab/labpipe/internal/content"
	"github.com/shibata-lab/labpipe/pkg/types"
)

// AbstractProvider fetches an abstract for a known DOI. Each implementation
// handles one upstream API and its response shape.
type AbstractProvider interface {
	Name() string
	Abstract(ctx context.Context, doi string) (string, error)
}

// Chain walks an ordered sequence of providers and returns the first
// non-empty abstract. Provider failures are swallowed and logged — the next
// provider is simply tried; a provider is never retried within a lookup.
type Chain struct {
	Providers []AbstractProvider

	// Limiter paces the serialized provider calls; nil disables pacing.
	Limiter *rate.Limiter

	// Cache holds run-scoped lookup results, including negative ones.
	Cache *Cache
}

// Lookup resolves an abstract for doi. It returns the abstract text and the
// name of the provider that supplied it; both empty when nothing was found.
func (c *Chain) Lookup(ctx context.Context, doi string, w io.Writer) (string, string, error) {
	cacheKey := "abstract:" + doi

	if c.Cache != nil {
		if value, ok, err := c.Cache.Get(ctx, cacheKey); err != nil {
			return "", "", err
		} else if ok {
			return value, "cache", nil
		}
	}

	abstract, source := "", ""
	for _, provider := range c.Providers {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return "", "", err
			}
		}

		text, err := provider.Abstract(ctx, doi)
		if err != nil {
			fmt.Fprintf(w, "warning: %s failed for %s: %v\n", provider.Name(), doi, err)
			continue
		}
		if text != "" {
			abstract, source = text, provider.Name()
			break
		}
	}

	if c.Cache != nil {
		if err := c.Cache.Put(ctx, cacheKey, abstract); err != nil {
			return "", "", err
		}
	}
	return abstract, source, nil
}

// EnrichAbstracts backfills abstracts across the store for records that have
// a DOI but no abstract yet. limit bounds the number of lookups
// (0 = unlimited); dryRun reports without writing.
func EnrichAbstracts(ctx context.Context, store *content.Store, chain *Chain, limit int, dryRun bool, w io.Writer) (Summary, error) {
	pubs, err := store.LoadAll()
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, pub := range pubs {
		if pub.DOI == "" || pub.Abstract != "" {
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

		abstract, source, err := chain.Lookup(ctx, pub.DOI, w)
		if err != nil {
			return summary, err
		}
		if abstract == "" {
			fmt.Fprintf(w, "no abstract %s\n", pub.ID)
			summary.Unmatched++
			continue
		}

		fmt.Fprintf(w, "fetched %s (%s)\n", pub.ID, source)
		summary.Enriched++
		if dryRun {
			continue
		}

		pub.Abstract = abstract
		if err := store.Save(pub); err != nil {
			return summary, err
		}
	}

	fmt.Fprintf(w, "\nenriched: %d, no abstract: %d, failed: %d\n",
		summary.Enriched, summary.Unmatched, summary.Failed)
	return summary, nil
}

// NewChain assembles the standard provider order from the enrichment config:
// OpenAlex, then Semantic Scholar, then Crossref, then PubMed. The order is
// fixed; providers with missing credentials still participate (the public
// endpoints allow anonymous access at lower quotas).
func NewChain(crossref *CrossrefClient, cfg types.EnrichConfig, limiter *rate.Limiter, cache *Cache) *Chain {
	httpCfg := cfg.HTTPConfig
	client := crossref.Client
	return &Chain{
		Providers: []AbstractProvider{
			&OpenAlexProvider{Client: client, Email: cfg.OpenAlexEmail, Config: httpCfg},
			&SemanticScholarProvider{Client: client, APIKey: cfg.SemanticScholarAPIKey, Config: httpCfg},
			&crossrefAbstractProvider{client: crossref, cfg: cfg},
			&PubMedProvider{Client: client, APIKey: cfg.NCBIAPIKey, Config: httpCfg},
		},
		Limiter: limiter,
		Cache:   cache,
	}
}

// crossrefAbstractProvider adapts CrossrefClient to the AbstractProvider
// interface. Crossref embeds JATS markup in its abstract field, which is
// stripped before use.
type crossrefAbstractProvider struct {
	client *CrossrefClient
	cfg    types.EnrichConfig
}

func (p *crossrefAbstractProvider) Name() string { return "crossref" }

func (p *crossrefAbstractProvider) Abstract(ctx context.Context, doi string) (string, error) {
	work, err := p.client.Work(ctx, doi, p.cfg)
	if err != nil {
		return "", err
	}
	return StripJATS(work.Abstract), nil
}
