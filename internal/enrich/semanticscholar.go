// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shibata-lab/labpipe/internal/httputil"
	"github.com/shibata-lab/labpipe/pkg/types"
)

// semanticAPIBase is the Semantic Scholar graph endpoint. Declared as a var
// so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper"

// SemanticScholarProvider fetches abstracts from the Semantic Scholar graph
// API, keyed directly by DOI.
type SemanticScholarProvider struct {
	Client *http.Client
	APIKey string
	Config types.HTTPConfig
}

// Name returns the provider identifier.
func (p *SemanticScholarProvider) Name() string { return "semantic_scholar" }

// Abstract implements AbstractProvider.
func (p *SemanticScholarProvider) Abstract(ctx context.Context, doi string) (string, error) {
	reqURL := semanticAPIBase + "/DOI:" + url.PathEscape(doi) + "?fields=abstract"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.Config.UserAgent)
	if p.APIKey != "" {
		req.Header.Set("x-api-key", p.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return "", fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var paper semanticPaper
	if err := json.NewDecoder(resp.Body).Decode(&paper); err != nil {
		return "", fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return paper.Abstract, nil
}

// semanticPaper is the subset of the paper record we consume.
type semanticPaper struct {
	PaperID  string `json:"paperId"`
	Abstract string `json:"abstract"`
}
