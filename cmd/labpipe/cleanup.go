// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shibata-lab/labpipe/internal/cleanup"
	"github.com/shibata-lab/labpipe/internal/match"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Maintenance passes over the content store",
}

var cleanupAuthorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "Canonicalize author name variants across all records",
	Long: `Cleanup authors finds author names that are the same person under
different spellings (romanization variants, initials, reversed order) and
rewrites every occurrence to the longest variant seen.`,
	RunE: runCleanupAuthors,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.AddCommand(cleanupAuthorsCmd)

	cleanupAuthorsCmd.Flags().Bool("dry-run", false, "report renames without writing")
}

func runCleanupAuthors(cmd *cobra.Command, args []string) error {
	store, err := contentStore(cmd)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	_, err = cleanup.Authors(cmd.Context(), store, match.NewNameMatcher(), dryRun, os.Stdout)
	return err
}
