// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shibata-lab/labpipe/internal/httputil"
	"github.com/shibata-lab/labpipe/pkg/types"
)

// PubMed E-utilities endpoints. Declared as vars so tests can substitute
// httptest servers.
var (
	pubmedESearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedEFetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// PubMedProvider fetches abstracts from PubMed. The E-utilities are not
// keyed by DOI, so the lookup is two-step: esearch resolves the DOI to a
// PMID, then efetch returns the article XML with the abstract text.
type PubMedProvider struct {
	Client *http.Client
	APIKey string
	Config types.HTTPConfig
}

// Name returns the provider identifier.
func (p *PubMedProvider) Name() string { return "pubmed" }

// Abstract implements AbstractProvider.
func (p *PubMedProvider) Abstract(ctx context.Context, doi string) (string, error) {
	pmid, err := p.resolvePMID(ctx, doi)
	if err != nil {
		return "", err
	}
	if pmid == "" {
		return "", nil
	}
	return p.fetchAbstract(ctx, pmid)
}

// resolvePMID searches PubMed for the DOI and returns the first PMID.
func (p *PubMedProvider) resolvePMID(ctx context.Context, doi string) (string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {doi + "[doi]"},
		"retmode": {"json"},
	}
	if p.APIKey != "" {
		params.Set("api_key", p.APIKey)
	}

	body, err := p.get(ctx, pubmedESearchBase+"?"+params.Encode())
	if err != nil {
		return "", err
	}
	defer body.Close()

	var result eSearchResponse
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return "", fmt.Errorf("parsing esearch response: %w", err)
	}
	if len(result.ESearchResult.IDList) == 0 {
		return "", nil
	}
	return result.ESearchResult.IDList[0], nil
}

// fetchAbstract retrieves the article XML for a PMID and joins its abstract
// sections, prefixing labeled sections ("METHODS: ...") the way PubMed
// renders structured abstracts.
func (p *PubMedProvider) fetchAbstract(ctx context.Context, pmid string) (string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {pmid},
		"retmode": {"xml"},
	}
	if p.APIKey != "" {
		params.Set("api_key", p.APIKey)
	}

	body, err := p.get(ctx, pubmedEFetchBase+"?"+params.Encode())
	if err != nil {
		return "", err
	}
	defer body.Close()

	var articles pubmedArticleSet
	if err := xml.NewDecoder(body).Decode(&articles); err != nil {
		return "", fmt.Errorf("parsing efetch response: %w", err)
	}
	if len(articles.Articles) == 0 {
		return "", nil
	}

	var parts []string
	for _, t := range articles.Articles[0].MedlineCitation.Article.Abstract.Texts {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		if t.Label != "" {
			text = t.Label + ": " + text
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " "), nil
}

func (p *PubMedProvider) get(ctx context.Context, reqURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.Config.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("PubMed API request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("PubMed API returned HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// PubMed E-utilities response structures.
type eSearchResponse struct {
	ESearchResult eSearchResult `json:"esearchresult"`
}

type eSearchResult struct {
	IDList []string `json:"idlist"`
}

type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	MedlineCitation medlineCitation `xml:"MedlineCitation"`
}

type medlineCitation struct {
	Article pubmedArticleBody `xml:"Article"`
}

type pubmedArticleBody struct {
	Abstract pubmedAbstract `xml:"Abstract"`
}

type pubmedAbstract struct {
	Texts []pubmedAbstractText `xml:"AbstractText"`
}

type pubmedAbstractText struct {
	Label string `xml:"Label,attr"`
	Text  string `xml:",chardata"`
}
