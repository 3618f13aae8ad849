// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/time/rate"

	"github.com/shibata-lab/labpipe/internal/httputil"
	"github.com/shibata-lab/labpipe/pkg/types"
)

// crossrefAPIBase is the Crossref works endpoint. Declared as a var so tests
// can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// CrossrefClient queries the Crossref REST API for DOI metadata and
// title-search candidates.
type CrossrefClient struct {
	Client *http.Client
	// Mailto is sent as the mailto parameter for polite pool access.
	Mailto string
	// Limiter paces requests; nil disables pacing.
	Limiter *rate.Limiter
}

// Candidate is one title-search result with the fields needed for
// verification.
type Candidate struct {
	DOI     string
	Title   string
	Authors []string
	Year    int
}

// SearchTitle queries Crossref by free-text title, optionally constrained to
// a publication-year window, and returns ranked candidates.
func (c *CrossrefClient) SearchTitle(ctx context.Context, title string, yearFrom, yearTo int, cfg types.EnrichConfig) ([]Candidate, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("empty title query")
	}

	params := url.Values{
		"query.title": {title},
		"rows":        {"5"},
	}

	var filters []string
	if yearFrom > 0 {
		filters = append(filters, fmt.Sprintf("from-pub-date:%d-01-01", yearFrom))
	}
	if yearTo > 0 {
		filters = append(filters, fmt.Sprintf("until-pub-date:%d-12-31", yearTo))
	}
	if len(filters) > 0 {
		params.Set("filter", strings.Join(filters, ","))
	}
	if c.Mailto != "" {
		params.Set("mailto", c.Mailto)
	}

	var body crossrefResponse
	if err := c.getJSON(ctx, crossrefAPIBase+"?"+params.Encode(), cfg, &body); err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, item := range body.Message.Items {
		candidates = append(candidates, toCandidate(item))
	}
	return candidates, nil
}

// Work fetches the metadata record for a known DOI.
func (c *CrossrefClient) Work(ctx context.Context, doi string, cfg types.EnrichConfig) (*crossrefWork, error) {
	reqURL := crossrefAPIBase + "/" + url.PathEscape(doi)
	if c.Mailto != "" {
		reqURL += "?mailto=" + url.QueryEscape(c.Mailto)
	}

	var body crossrefWorkResponse
	if err := c.getJSON(ctx, reqURL, cfg, &body); err != nil {
		return nil, err
	}
	return &body.Message, nil
}

// getJSON performs a paced GET and decodes the JSON response.
func (c *CrossrefClient) getJSON(ctx context.Context, reqURL string, cfg types.EnrichConfig, out any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return fmt.Errorf("Crossref API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Crossref API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing Crossref response: %w", err)
	}
	return nil
}

// toCandidate flattens a Crossref work into a Candidate.
func toCandidate(w crossrefWork) Candidate {
	cand := Candidate{DOI: w.DOI}
	if len(w.Title) > 0 {
		cand.Title = w.Title[0]
	}
	for _, a := range w.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name != "" {
			cand.Authors = append(cand.Authors, name)
		}
	}
	cand.Year = w.year()
	return cand
}

// jatsTagRe matches JATS/XML markup embedded in Crossref abstract fields.
var jatsTagRe = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

// StripJATS removes markup tags from a Crossref abstract and collapses the
// remaining whitespace.
func StripJATS(abstract string) string {
	stripped := jatsTagRe.ReplaceAllString(abstract, " ")
	return strings.Join(strings.Fields(stripped), " ")
}

// Crossref API JSON structures.
type crossrefResponse struct {
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	Items []crossrefWork `json:"items"`
}

type crossrefWorkResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	DOI            string            `json:"DOI"`
	Title          []string          `json:"title"`
	Author         []crossrefAuthor  `json:"author"`
	ContainerTitle []string          `json:"container-title"`
	Volume         string            `json:"volume"`
	Issue          string            `json:"issue"`
	Page           string            `json:"page"`
	Abstract       string            `json:"abstract"`
	Issued         crossrefDateParts `json:"issued"`
	PublishedPrint crossrefDateParts `json:"published-print"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDateParts struct {
	DateParts [][]int `json:"date-parts"`
}

// year returns the publication year from issued or published-print parts.
func (w crossrefWork) year() int {
	for _, parts := range [][][]int{w.Issued.DateParts, w.PublishedPrint.DateParts} {
		if len(parts) > 0 && len(parts[0]) > 0 {
			return parts[0][0]
		}
	}
	return 0
}
