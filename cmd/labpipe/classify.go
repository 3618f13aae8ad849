// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shibata-lab/labpipe/internal/semantic"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Assign topic tags to records from their embeddings",
	Long: `Classify reads the embeddings index, embeds the hand-written topic
prompts from the topics file, and tags each record with its nearest topic
by cosine similarity. The best topic must clear the similarity threshold;
a runner-up within the gap is added as a second tag. Existing tags are
replaced. Run "labpipe embed" first.`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().String("topics", "", "topics YAML file (default topics.yaml)")
	classifyCmd.Flags().Float64("threshold", 0, "min similarity for any assignment (default 0.5)")
	classifyCmd.Flags().Float64("gap", 0, "max distance from best score for a second tag (default 0.05)")
	classifyCmd.Flags().String("model", "", "Ollama embedding model (must match the index)")
	classifyCmd.Flags().Bool("dry-run", false, "report assignments without writing")
}

func runClassify(cmd *cobra.Command, args []string) error {
	store, err := contentStore(cmd)
	if err != nil {
		return err
	}

	cfg := classifyConfig(cmd)
	topics, err := semantic.LoadTopics(cfg.TopicsFile)
	if err != nil {
		return err
	}

	embedder := semantic.NewEmbedder(embedConfig(cmd))
	if err := embedder.IsAvailable(cmd.Context()); err != nil {
		return err
	}

	classifier, err := semantic.NewClassifier(cmd.Context(), embedder, topics, cfg.Threshold, cfg.Gap)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	_, err = semantic.ClassifyAll(cmd.Context(), store, classifier, dryRun, os.Stdout)
	return err
}
