// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EmbeddingEntry pairs a publication ID with its precomputed text embedding.
// The embeddings file is a JSON array of these entries, loaded wholesale by
// the offline classifiers and by the website's in-browser search.
type EmbeddingEntry struct {
	ID        string    `json:"id"`
	Embedding []float64 `json:"embedding"`
}
