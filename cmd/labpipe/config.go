// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shibata-lab/labpipe/internal/content"
	"github.com/shibata-lab/labpipe/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "labpipe/0.1"
)

// contentStore opens the content store at the configured root. The
// --content-dir flag wins over the config file.
func contentStore(cmd *cobra.Command) (*content.Store, error) {
	dir, _ := cmd.Flags().GetString("content-dir")
	if dir == "" {
		dir = viper.GetString("content.dir")
	}
	return content.NewStore(dir)
}

// enrichConfig assembles the enrichment configuration from config file,
// secrets, and flags.
func enrichConfig(cmd *cobra.Command) types.EnrichConfig {
	cfg := types.EnrichConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
		RequestDelay:          viper.GetDuration("enrich.request_delay"),
		OverlapThreshold:      viper.GetFloat64("enrich.overlap_threshold"),
		YearWindow:            viper.GetInt("enrich.year_window"),
		CrossrefMailto:        secretDefault("crossref-mailto", viper.GetString("enrich.crossref_mailto")),
		OpenAlexEmail:         secretDefault("openalex-email", viper.GetString("enrich.openalex_email")),
		SemanticScholarAPIKey: secretDefault("semantic-scholar-api-key", viper.GetString("enrich.semantic_scholar_api_key")),
		NCBIAPIKey:            secretDefault("ncbi-api-key", viper.GetString("enrich.ncbi_api_key")),
		CacheFile:             viper.GetString("enrich.cache_file"),
	}

	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = time.Second
	}
	if cfg.OverlapThreshold <= 0 {
		cfg.OverlapThreshold = 0.7
	}
	if cfg.YearWindow <= 0 {
		cfg.YearWindow = 1
	}
	if delay, _ := cmd.Flags().GetDuration("delay"); delay > 0 {
		cfg.RequestDelay = delay
	}
	return cfg
}

// ingestConfig assembles the ingestion configuration.
func ingestConfig(cmd *cobra.Command) types.IngestConfig {
	cfg := types.IngestConfig{
		OllamaConfig: types.OllamaConfig{
			BaseURL:    viper.GetString("ingest.base_url"),
			Model:      viper.GetString("ingest.model"),
			MaxRetries: viper.GetInt("ingest.max_retries"),
		},
		RequestDelay:   viper.GetDuration("ingest.request_delay"),
		CheckpointFile: viper.GetString("ingest.checkpoint_file"),
	}

	if cfg.Model == "" {
		cfg.Model = "qwen2.5:14b"
	}
	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = 500 * time.Millisecond
	}
	if cfg.CheckpointFile == "" {
		cfg.CheckpointFile = ".labpipe-progress.json"
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Model = model
	}
	return cfg
}

// embedConfig assembles the embedding configuration.
func embedConfig(cmd *cobra.Command) types.EmbedConfig {
	cfg := types.EmbedConfig{
		OllamaConfig: types.OllamaConfig{
			BaseURL: viper.GetString("embed.base_url"),
			Model:   viper.GetString("embed.model"),
		},
		Dimensions:   viper.GetInt("embed.dimensions"),
		RequestDelay: viper.GetDuration("embed.request_delay"),
	}

	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = 100 * time.Millisecond
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Model = model
	}
	return cfg
}

// classifyConfig assembles the classification configuration.
func classifyConfig(cmd *cobra.Command) types.ClassifyConfig {
	cfg := types.ClassifyConfig{
		TopicsFile: viper.GetString("classify.topics_file"),
		Threshold:  viper.GetFloat64("classify.threshold"),
		Gap:        viper.GetFloat64("classify.gap"),
	}

	if cfg.TopicsFile == "" {
		cfg.TopicsFile = "topics.yaml"
	}
	if threshold, _ := cmd.Flags().GetFloat64("threshold"); threshold > 0 {
		cfg.Threshold = threshold
	}
	if gap, _ := cmd.Flags().GetFloat64("gap"); gap > 0 {
		cfg.Gap = gap
	}
	if topics, _ := cmd.Flags().GetString("topics"); topics != "" {
		cfg.TopicsFile = topics
	}
	return cfg
}
