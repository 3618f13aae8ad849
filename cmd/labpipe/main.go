// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the labpipe CLI, the offline content
// pipeline behind the lab website: ingestion, deduplication, enrichment,
// embeddings, and topic classification over the YAML content store.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shibata-lab/labpipe/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when non-empty, otherwise the named secret.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the labpipe CLI.
var rootCmd = &cobra.Command{
	Use:   "labpipe",
	Short: "Content pipeline for the lab website",
	Long: `labpipe maintains the publication content store the lab website is built
from. Each pipeline stage is a subcommand: ingest parses scraped citation
batches into records, dedup reconciles duplicates, enrich backfills DOIs and
abstracts from bibliographic APIs, embed computes text embeddings via a local
Ollama endpoint, and classify assigns topic labels.

Every stage is a one-shot batch job over content/publications/; there is no
live service.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; a missing file is not an error.
		godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./labpipe.yaml or ~/.config/labpipe/config.yaml)")
	rootCmd.PersistentFlags().String("content-dir", "", "content root directory (default: ./content)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("labpipe")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "labpipe"))
		}
	}

	viper.SetDefault("content.dir", "content")

	viper.SetEnvPrefix("LABPIPE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
