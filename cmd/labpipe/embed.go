// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shibata-lab/labpipe/internal/semantic"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Compute text embeddings for the content store",
	Long: `Embed generates an embedding per valid record (title plus abstract when
present) through a local Ollama endpoint and writes the index file next to
the content store. Records already in the index are skipped unless --force
is set; index entries whose records are gone are dropped.`,
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().String("model", "", "Ollama embedding model (default mxbai-embed-large)")
	embedCmd.Flags().Bool("force", false, "re-embed records already in the index")
	embedCmd.Flags().Duration("delay", 0, "pause between Ollama calls (default from config)")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	store, err := contentStore(cmd)
	if err != nil {
		return err
	}

	cfg := embedConfig(cmd)
	embedder := semantic.NewEmbedder(cfg)
	if err := embedder.IsAvailable(cmd.Context()); err != nil {
		return err
	}

	if delay, _ := cmd.Flags().GetDuration("delay"); delay > 0 {
		cfg.RequestDelay = delay
	}
	force, _ := cmd.Flags().GetBool("force")

	summary, err := semantic.BuildIndex(cmd.Context(), store, embedder, cfg.RequestDelay, force, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d record(s) failed to embed", summary.Failed)
	}
	return nil
}
