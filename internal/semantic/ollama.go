// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package semantic computes text embeddings for publication records via the
// local Ollama endpoint and assigns topic labels by cosine similarity
// against embeddings of hand-written topic descriptions.
package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shibata-lab/labpipe/pkg/types"
)

const (
	// DefaultModel is the default embedding model.
	DefaultModel = "mxbai-embed-large"

	// DefaultDimensions is the expected output dimension for mxbai-embed-large.
	DefaultDimensions = 1024

	apiPathEmbeddings = "/api/embeddings"
	apiPathTags       = "/api/tags"
)

// Embedder generates embeddings through the Ollama embeddings API.
type Embedder struct {
	baseURL    string
	model      string
	dimensions int
	client     *http.Client
}

// NewEmbedder builds an Embedder from the embed configuration.
func NewEmbedder(cfg types.EmbedConfig) *Embedder {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Embedder{
		baseURL:    baseURL,
		model:      model,
		dimensions: dims,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

// Dimensions returns the expected vector dimension.
func (e *Embedder) Dimensions() int { return e.dimensions }

// Embed generates an embedding for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(embedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+apiPathEmbeddings, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Embedding) != e.dimensions {
		return nil, fmt.Errorf("unexpected embedding dimensions: got %d, want %d", len(result.Embedding), e.dimensions)
	}
	return result.Embedding, nil
}

// IsAvailable checks that Ollama is running and reachable.
func (e *Embedder) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+apiPathTags, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama is not running: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}
