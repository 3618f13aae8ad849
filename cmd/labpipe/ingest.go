// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shibata-lab/labpipe/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [batch files...]",
	Short: "Parse scraped citation batches into publication records",
	Long: `Ingest reads batch JSON files produced by the scraping scripts and writes
one YAML record per citation into the content store. The default parser is
regex-based and fully offline; --llm routes each citation through a local
Ollama model instead, which handles messy citations at the cost of speed.

Completed batches are recorded in a checkpoint file so an interrupted run
can be resumed; --force reprocesses batches regardless.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().Bool("llm", false, "parse citations with a local Ollama model instead of regexes")
	ingestCmd.Flags().String("model", "", "Ollama model for --llm (default from config)")
	ingestCmd.Flags().String("ollama-url", "", "Ollama endpoint for --llm (default http://localhost:11434)")
	ingestCmd.Flags().Int("limit", 0, "max citations to parse this run (0 = unlimited)")
	ingestCmd.Flags().Bool("force", false, "reprocess batches already marked complete")
	ingestCmd.Flags().Duration("delay", 0, "pause between parser calls (default from config)")
	ingestCmd.Flags().String("checkpoint", "", "checkpoint file path (default from config)")
	ingestCmd.Flags().String("lang", "", "force the language tag on ingested records (en or ja)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	store, err := contentStore(cmd)
	if err != nil {
		return err
	}

	cfg := ingestConfig(cmd)
	if url, _ := cmd.Flags().GetString("ollama-url"); url != "" {
		cfg.BaseURL = url
	}
	if cp, _ := cmd.Flags().GetString("checkpoint"); cp != "" {
		cfg.CheckpointFile = cp
	}

	var parser ingest.Parser = &ingest.RegexParser{}
	delay := time.Duration(0)
	if useLLM, _ := cmd.Flags().GetBool("llm"); useLLM {
		parser = ingest.NewLLMParser(cfg)
		delay = cfg.RequestDelay
	}
	if d, _ := cmd.Flags().GetDuration("delay"); d > 0 {
		delay = d
	}

	limit, _ := cmd.Flags().GetInt("limit")
	force, _ := cmd.Flags().GetBool("force")
	lang, _ := cmd.Flags().GetString("lang")

	runner := &ingest.Runner{
		Store:          store,
		Parser:         parser,
		Delay:          delay,
		CheckpointFile: cfg.CheckpointFile,
		Lang:           lang,
	}

	summary, err := runner.Run(cmd.Context(), args, limit, force, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d citation(s) failed to parse", summary.Failed)
	}
	return nil
}
