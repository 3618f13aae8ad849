// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semantic

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/shibata-lab/labpipe/internal/content"
)

// Topic is one assignable label: a category ("model", "technique",
// "domain"), the tag written onto matching records, and the hand-written
// description strings whose embeddings act as the topic's centroids. There
// is no training step.
type Topic struct {
	Category string   `yaml:"category"`
	Label    string   `yaml:"label"`
	Prompts  []string `yaml:"prompts"`
}

// topicsFile is the on-disk shape of the topics configuration.
type topicsFile struct {
	Topics []Topic `yaml:"topics"`
}

// LoadTopics reads the topic definitions from a YAML file.
func LoadTopics(path string) ([]Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topics file: %w", err)
	}
	var tf topicsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing topics file: %w", err)
	}
	if len(tf.Topics) == 0 {
		return nil, fmt.Errorf("topics file %s defines no topics", path)
	}
	return tf.Topics, nil
}

// centroid is a topic with its prompt embeddings resolved.
type centroid struct {
	topic      Topic
	embeddings [][]float64
}

// similarity returns the best cosine score across the topic's prompts.
func (c centroid) similarity(vec []float64) float64 {
	best := -1.0
	for _, e := range c.embeddings {
		if s := CosineSimilarity(vec, e); s > best {
			best = s
		}
	}
	return best
}

// Classifier assigns topic labels by nearest centroid.
type Classifier struct {
	// Threshold is the minimum similarity for any assignment.
	Threshold float64

	// Gap is the maximum distance from the best score for a runner-up
	// topic to be included as a second label.
	Gap float64

	centroids []centroid
}

// NewClassifier embeds every topic prompt up front and returns a ready
// classifier.
func NewClassifier(ctx context.Context, embedder *Embedder, topics []Topic, threshold, gap float64) (*Classifier, error) {
	if threshold <= 0 {
		threshold = 0.5
	}
	if gap <= 0 {
		gap = 0.05
	}

	c := &Classifier{Threshold: threshold, Gap: gap}
	for _, t := range topics {
		cen := centroid{topic: t}
		for _, prompt := range t.Prompts {
			vec, err := embedder.Embed(ctx, prompt)
			if err != nil {
				return nil, fmt.Errorf("embedding topic prompt for %s: %w", t.Label, err)
			}
			cen.embeddings = append(cen.embeddings, vec)
		}
		if len(cen.embeddings) == 0 {
			return nil, fmt.Errorf("topic %s has no prompts", t.Label)
		}
		c.centroids = append(c.centroids, cen)
	}
	return c, nil
}

// Assign returns the labels for one record embedding: the best-scoring topic
// when it clears the threshold, plus the runner-up when its score is within
// the gap of the best.
func (c *Classifier) Assign(vec []float64) []string {
	type scored struct {
		label string
		score float64
	}
	scores := make([]scored, 0, len(c.centroids))
	for _, cen := range c.centroids {
		scores = append(scores, scored{label: cen.topic.Label, score: cen.similarity(vec)})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if len(scores) == 0 || scores[0].score < c.Threshold {
		return nil
	}

	labels := []string{scores[0].label}
	if len(scores) > 1 && scores[0].score-scores[1].score <= c.Gap && scores[1].score >= c.Threshold {
		labels = append(labels, scores[1].label)
	}
	return labels
}

// ClassifyAll assigns topic tags to every record present in the embeddings
// index. Existing tags are replaced, not appended — the classifier owns the
// tag field. dryRun reports assignments without writing.
func ClassifyAll(ctx context.Context, store *content.Store, classifier *Classifier, dryRun bool, w io.Writer) (Summary, error) {
	entries, err := store.LoadEmbeddings()
	if err != nil {
		return Summary{}, err
	}
	if len(entries) == 0 {
		return Summary{}, fmt.Errorf("embeddings index is empty: run embed first")
	}

	var summary Summary
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		labels := classifier.Assign(entry.Embedding)
		if len(labels) == 0 {
			fmt.Fprintf(w, "unlabeled %s\n", entry.ID)
			summary.Skipped++
			continue
		}

		fmt.Fprintf(w, "labeled %s -> %v\n", entry.ID, labels)
		summary.Embedded++
		if dryRun {
			continue
		}

		pub, err := store.Load(entry.ID)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.ID, err)
			summary.Failed++
			continue
		}
		pub.Tags = labels
		if err := store.Save(pub); err != nil {
			return summary, err
		}
	}

	fmt.Fprintf(w, "\nlabeled: %d, unlabeled: %d, failed: %d\n",
		summary.Embedded, summary.Skipped, summary.Failed)
	return summary, nil
}
