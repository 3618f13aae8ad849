// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"io"
	"path/filepath"
	"testing"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := OpenCache(filepath.Join(t.TempDir(), "lookups.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCacheMissThenHit(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, "doi:something"); err != nil || ok {
		t.Fatalf("Get on empty cache = ok=%v err=%v, want miss", ok, err)
	}

	if err := cache.Put(ctx, "doi:something", "10.1234/abc"); err != nil {
		t.Fatal(err)
	}
	value, ok, err := cache.Get(ctx, "doi:something")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || value != "10.1234/abc" {
		t.Errorf("Get = %q, %v", value, ok)
	}
}

func TestCacheNegativeResult(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	// An empty value is a recorded miss, distinct from a cache miss.
	if err := cache.Put(ctx, "abstract:10.1/x", ""); err != nil {
		t.Fatal(err)
	}
	value, ok, err := cache.Get(ctx, "abstract:10.1/x")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || value != "" {
		t.Errorf("Get = %q, %v; want present with empty value", value, ok)
	}
}

func TestCacheUpsert(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	if err := cache.Put(ctx, "k", "old"); err != nil {
		t.Fatal(err)
	}
	if err := cache.Put(ctx, "k", "new"); err != nil {
		t.Fatal(err)
	}
	value, _, err := cache.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if value != "new" {
		t.Errorf("Get = %q, want the replacement value", value)
	}
}

func TestChainUsesCache(t *testing.T) {
	cache := newTestCache(t)
	provider := &fakeProvider{name: "fake", abstract: "cached once"}
	chain := &Chain{Providers: []AbstractProvider{provider}, Cache: cache}

	ctx := context.Background()
	if _, _, err := chain.Lookup(ctx, "10.1/x", io.Discard); err != nil {
		t.Fatal(err)
	}
	abstract, source, err := chain.Lookup(ctx, "10.1/x", io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if abstract != "cached once" || source != "cache" {
		t.Errorf("second Lookup = %q from %q, want cache hit", abstract, source)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}
