// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semantic

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/shibata-lab/labpipe/internal/content"
	"github.com/shibata-lab/labpipe/pkg/types"
)

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1; zero for mismatched or empty inputs.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0 {
		return 0
	}
	return dot / denominator
}

// Summary holds counts from an embedding run.
type Summary struct {
	Embedded int
	Skipped  int
	Failed   int
}

// Total returns the number of records processed.
func (s Summary) Total() int {
	return s.Embedded + s.Skipped + s.Failed
}

// embedText is the text embedded for a record: the title, plus the abstract
// when present. Invalid records are excluded from the index entirely.
func embedText(p *types.Publication) string {
	if p.Abstract == "" {
		return p.Title
	}
	return p.Title + "\n\n" + p.Abstract
}

// BuildIndex computes embeddings for every valid record and writes the index
// file. Records already present in the index are skipped unless force is
// set; entries whose records are gone are dropped. delay paces the
// serialized Ollama calls.
func BuildIndex(ctx context.Context, store *content.Store, embedder *Embedder, delay time.Duration, force bool, w io.Writer) (Summary, error) {
	pubs, err := store.LoadAll()
	if err != nil {
		return Summary{}, err
	}

	existing := map[string][]float64{}
	if !force {
		entries, err := store.LoadEmbeddings()
		if err != nil {
			return Summary{}, err
		}
		for _, e := range entries {
			existing[e.ID] = e.Embedding
		}
	}

	var summary Summary
	var entries []types.EmbeddingEntry

	for _, pub := range pubs {
		if !pub.Valid() || strings.TrimSpace(pub.Title) == "" {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if vec, ok := existing[pub.ID]; ok {
			entries = append(entries, types.EmbeddingEntry{ID: pub.ID, Embedding: vec})
			summary.Skipped++
			continue
		}

		if delay > 0 && summary.Embedded > 0 {
			time.Sleep(delay)
		}

		vec, err := embedder.Embed(ctx, embedText(pub))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", pub.ID, err)
			summary.Failed++
			continue
		}

		entries = append(entries, types.EmbeddingEntry{ID: pub.ID, Embedding: vec})
		fmt.Fprintf(w, "embedded %s\n", pub.ID)
		summary.Embedded++
	}

	if err := store.SaveEmbeddings(entries); err != nil {
		return summary, err
	}

	fmt.Fprintf(w, "\nembedded: %d, skipped: %d, failed: %d\n",
		summary.Embedded, summary.Skipped, summary.Failed)
	return summary, nil
}
