// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/shibata-lab/labpipe/pkg/types"
)

const (
	// DefaultOllamaURL is the default local inference endpoint.
	DefaultOllamaURL = "http://localhost:11434"

	apiPathGenerate = "/api/generate"
)

// citationPrompt instructs the model to emit one JSON object per the
// citation schema. The model is told not to invent fields.
const citationPrompt = `Parse the following citation into a single JSON object with these keys:
authors (array of strings), title (string), journal (string), conference (string),
volume (string), issue (string), pages (string), year (number), doi (string),
type (one of: journal, conference, book, review, presentation, poster, thesis,
media, award, grant, report, patent).
Leave unknown fields empty. Output only the JSON object, no commentary.

Citation:
%s`

// thinkTagRe strips "thinking" delimiter tags some models wrap around their
// response.
var thinkTagRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// LLMParser parses citations through the local Ollama endpoint.
type LLMParser struct {
	baseURL    string
	model      string
	maxRetries int
	client     *http.Client
}

// NewLLMParser builds a parser from the ingest configuration.
func NewLLMParser(cfg types.IngestConfig) *LLMParser {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &LLMParser{
		baseURL:    baseURL,
		model:      cfg.Model,
		maxRetries: maxRetries,
		client:     &http.Client{Timeout: 120 * time.Second},
	}
}

// ollamaGenerateRequest is the request body for the Ollama generate API.
type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ollamaGenerateResponse is the non-streaming generate response.
type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// llmCitation is the JSON object the model is asked to produce.
type llmCitation struct {
	Authors    []string `json:"authors"`
	Title      string   `json:"title"`
	Journal    string   `json:"journal"`
	Conference string   `json:"conference"`
	Volume     string   `json:"volume"`
	Issue      string   `json:"issue"`
	Pages      string   `json:"pages"`
	Year       int      `json:"year"`
	DOI        string   `json:"doi"`
	Type       string   `json:"type"`
}

// backoffBase controls the base duration for retry backoff. Tests override
// this to avoid real sleeps.
var backoffBase = time.Second

// Parse implements Parser. Transient endpoint failures are retried with
// exponential backoff; a response that still contains no JSON object after
// retries yields a record flagged invalid rather than an error, matching the
// regex parser's contract.
func (p *LLMParser) Parse(ctx context.Context, raw string, fallback types.PublicationType) (*types.Publication, error) {
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := p.generate(ctx, fmt.Sprintf(citationPrompt, raw))
		if err != nil {
			lastErr = err
			continue
		}
		return p.convert(resp, raw, fallback), nil
	}
	return nil, fmt.Errorf("after %d retries: %w", p.maxRetries, lastErr)
}

// generate posts a prompt to the Ollama generate endpoint and returns the
// raw response text.
func (p *LLMParser) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+apiPathGenerate, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return out.Response, nil
}

// convert extracts the JSON object from the model response and maps it onto
// a publication record. Parse failures land on the record's error list.
func (p *LLMParser) convert(response, raw string, fallback types.PublicationType) *types.Publication {
	pub := &types.Publication{Type: fallback, Lang: detectLang(raw)}

	obj, ok := extractJSONObject(response)
	if !ok {
		pub.Errors = append(pub.Errors, "no JSON object in model response")
		return pub
	}

	var c llmCitation
	if err := json.Unmarshal([]byte(obj), &c); err != nil {
		pub.Errors = append(pub.Errors, fmt.Sprintf("malformed model JSON: %v", err))
		return pub
	}

	pub.Authors = c.Authors
	pub.Title = strings.TrimSpace(c.Title)
	pub.Journal = strings.TrimSpace(c.Journal)
	pub.Conference = strings.TrimSpace(c.Conference)
	pub.Volume = c.Volume
	pub.Issue = c.Issue
	pub.Pages = c.Pages
	pub.Year = c.Year
	pub.DOI = strings.TrimPrefix(strings.TrimSpace(c.DOI), "https://doi.org/")

	if t := types.PublicationType(c.Type); types.ValidTypes[t] {
		pub.Type = t
	}

	if pub.Title == "" {
		pub.Errors = append(pub.Errors, "no title found")
	}
	if len(pub.Authors) == 0 {
		pub.Errors = append(pub.Errors, "no authors found")
	}
	return pub
}

// extractJSONObject strips thinking tags and returns the outermost {...}
// span of the response.
func extractJSONObject(response string) (string, bool) {
	cleaned := thinkTagRe.ReplaceAllString(response, "")
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return cleaned[start : end+1], true
}
