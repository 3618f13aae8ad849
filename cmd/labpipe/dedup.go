// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shibata-lab/labpipe/internal/match"
	"github.com/shibata-lab/labpipe/internal/merge"
)

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Merge duplicate publication records",
	Long: `Dedup groups records whose normalized titles match and folds each group
into its most complete member. Authors and awards are unioned, DOIs and page
ranges backfilled, and the losing records deleted. Deletion is irreversible;
run with --dry-run (or run "labpipe report" first) to preview.`,
	RunE: runDedup,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report duplicate groups without modifying anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := contentStore(cmd)
		if err != nil {
			return err
		}
		return merge.Report(store, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(dedupCmd)
	rootCmd.AddCommand(reportCmd)

	dedupCmd.Flags().Bool("dry-run", false, "report merges without writing or deleting")
}

func runDedup(cmd *cobra.Command, args []string) error {
	store, err := contentStore(cmd)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	_, err = merge.DedupAll(cmd.Context(), store, match.NewNameMatcher(), dryRun, os.Stdout)
	return err
}
