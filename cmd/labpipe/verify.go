// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shibata-lab/labpipe/internal/cleanup"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Consistency checks over the content store",
}

var verifyCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Find award records that actually name a venue",
	Long: `Verify categories lists records filed under the generic "award" type that
carry a conference or journal, which means they belong in a publication
category instead. Without --fix nothing is written.`,
	RunE: runVerifyCategories,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.AddCommand(verifyCategoriesCmd)

	verifyCategoriesCmd.Flags().Bool("fix", false, "apply the reclassifications")
}

func runVerifyCategories(cmd *cobra.Command, args []string) error {
	store, err := contentStore(cmd)
	if err != nil {
		return err
	}

	fix, _ := cmd.Flags().GetBool("fix")
	_, err = cleanup.Categories(cmd.Context(), store, fix, os.Stdout)
	return err
}
