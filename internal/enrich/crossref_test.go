// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shibata-lab/labpipe/internal/content"
	"github.com/shibata-lab/labpipe/internal/match"
	"github.com/shibata-lab/labpipe/pkg/types"
)

// crossrefStub serves a canned works response and swaps the API base for the
// test's lifetime.
func crossrefStub(t *testing.T, handler http.HandlerFunc) *CrossrefClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	old := crossrefAPIBase
	crossrefAPIBase = srv.URL
	t.Cleanup(func() { crossrefAPIBase = old })

	return &CrossrefClient{Client: srv.Client()}
}

func worksResponse(items string) string {
	return fmt.Sprintf(`{"message": {"items": [%s]}}`, items)
}

func TestSearchTitleParsesCandidates(t *testing.T) {
	client := crossrefStub(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query.title"); got != "Neural Coding in Rats" {
			t.Errorf("query.title = %q", got)
		}
		if got := r.URL.Query().Get("filter"); got != "from-pub-date:2020-01-01,until-pub-date:2022-12-31" {
			t.Errorf("filter = %q", got)
		}
		fmt.Fprint(w, worksResponse(`{
			"DOI": "10.1234/abc",
			"title": ["Neural Coding in Rats"],
			"author": [{"given": "Alice", "family": "Smith"}],
			"issued": {"date-parts": [[2021, 6]]}
		}`))
	})

	cands, err := client.SearchTitle(context.Background(), "Neural Coding in Rats", 2020, 2022, types.EnrichConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 {
		t.Fatalf("candidates = %d, want 1", len(cands))
	}
	c := cands[0]
	if c.DOI != "10.1234/abc" || c.Title != "Neural Coding in Rats" || c.Year != 2021 {
		t.Errorf("candidate = %+v", c)
	}
	if len(c.Authors) != 1 || c.Authors[0] != "Alice Smith" {
		t.Errorf("Authors = %v", c.Authors)
	}
}

func TestSearchTitleEmptyQuery(t *testing.T) {
	client := &CrossrefClient{Client: http.DefaultClient}
	if _, err := client.SearchTitle(context.Background(), "  ", 0, 0, types.EnrichConfig{}); err == nil {
		t.Error("empty title should fail without a request")
	}
}

func TestStripJATS(t *testing.T) {
	in := `<jats:p>We study <jats:italic>neural</jats:italic> coding.</jats:p>`
	want := "We study neural coding."
	if got := StripJATS(in); got != want {
		t.Errorf("StripJATS = %q, want %q", got, want)
	}
}

func TestDOIFinderAcceptsStrongMatch(t *testing.T) {
	// Candidate title differs by one word out of eight (~80% overlap).
	client := crossrefStub(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, worksResponse(`{
			"DOI": "10.1234/abc",
			"title": ["Deep neural coding of freely moving rats recorded"],
			"author": [{"given": "Alice", "family": "Smith"}],
			"issued": {"date-parts": [[2021]]}
		}`))
	})

	finder := &DOIFinder{
		Crossref: client,
		Matcher:  match.NewNameMatcher(),
		Config:   types.EnrichConfig{OverlapThreshold: 0.7, YearWindow: 1},
	}

	pub := &types.Publication{
		Title:   "Deep neural coding of freely moving rats observed",
		Authors: []string{"A. Smith", "Kenji Ota"},
		Year:    2021,
		Type:    types.TypeJournal,
	}

	doi, ok, err := finder.Find(context.Background(), pub)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || doi != "10.1234/abc" {
		t.Errorf("Find = %q, %v; want the candidate accepted", doi, ok)
	}
}

func TestDOIFinderRejectsWeakOverlap(t *testing.T) {
	// Half the words shared: overlap ~0.5, below the 0.7 gate.
	client := crossrefStub(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, worksResponse(`{
			"DOI": "10.1234/other",
			"title": ["Neural coding of mice behavior"],
			"author": [{"given": "Alice", "family": "Smith"}]
		}`))
	})

	finder := &DOIFinder{
		Crossref: client,
		Matcher:  match.NewNameMatcher(),
		Config:   types.EnrichConfig{OverlapThreshold: 0.7},
	}

	pub := &types.Publication{
		Title:   "Neural coding of rats",
		Authors: []string{"Alice Smith"},
		Type:    types.TypeJournal,
	}

	_, ok, err := finder.Find(context.Background(), pub)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("weak title overlap should be rejected despite matching author")
	}
}

func TestDOIFinderRejectsWithoutSharedSurname(t *testing.T) {
	client := crossrefStub(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, worksResponse(`{
			"DOI": "10.1234/abc",
			"title": ["Neural coding in freely moving rats"],
			"author": [{"given": "Robert", "family": "Jones"}]
		}`))
	})

	finder := &DOIFinder{
		Crossref: client,
		Matcher:  match.NewNameMatcher(),
		Config:   types.EnrichConfig{OverlapThreshold: 0.7},
	}

	pub := &types.Publication{
		Title:   "Neural coding in freely moving rats",
		Authors: []string{"Alice Smith"},
		Type:    types.TypeJournal,
	}

	_, ok, err := finder.Find(context.Background(), pub)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("identical title without a shared surname should be rejected")
	}
}

func TestFindAllSkipsRecordsWithDOI(t *testing.T) {
	var calls int
	client := crossrefStub(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, worksResponse(``))
	})

	store, err := content.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []*types.Publication{
		{ID: "has-doi", Title: "Already Enriched Work", Authors: []string{"Alice Smith"}, DOI: "10.9/x", Type: types.TypeJournal},
		{ID: "invalid", Title: "Broken", Type: types.TypeJournal, Errors: []string{"no authors found"}},
		{ID: "needs-doi", Title: "Needs A Lookup Badly", Authors: []string{"Alice Smith"}, Type: types.TypeJournal},
	} {
		if err := store.Save(p); err != nil {
			t.Fatal(err)
		}
	}

	finder := &DOIFinder{Crossref: client, Matcher: match.NewNameMatcher(), Config: types.EnrichConfig{OverlapThreshold: 0.7}}

	var out bytes.Buffer
	summary, err := FindAll(context.Background(), store, finder, 0, false, &out)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("API calls = %d, want 1 (only the DOI-less valid record)", calls)
	}
	if summary.Unmatched != 1 || summary.Enriched != 0 {
		t.Errorf("summary = %+v", summary)
	}
}
