package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dappstore.GO/service/importer"
)

var (
	importFile   string
	importBatch  int
	importToken  string
	importOrg    string
	importListed bool
	importDryRun bool
)

var importCmd = &cobra.Command{
	Use:   "dapps:import",
	Short: "Submit dApps from a CSV file as batch registry changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("open CSV: %w", err)
		}
		defer f.Close()

		res, err := importer.ImportDApps(f, importer.Options{BatchSize: importBatch, Listed: importListed})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "Warning: %s\n", w)
		}
		fmt.Fprintf(out, "Parsed %d dApps (%d rows, %d skipped)\n", len(res.DApps), res.TotalRows, res.Skipped)
		if importDryRun || len(res.DApps) == 0 {
			return nil
		}

		token := importToken
		if token == "" {
			token = os.Getenv("GITHUB_TOKEN")
		}
		if token == "" {
			return fmt.Errorf("a GitHub token is required (--token or GITHUB_TOKEN)")
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		sub, err := a.Identity.Identify(cmd.Context(), token)
		if err != nil {
			return err
		}
		sub.AccessToken = token
		sub.Org = strings.TrimSpace(importOrg)

		for i, batch := range res.Batches(importBatch) {
			r, err := a.Workflow.AddDApps(cmd.Context(), sub, batch)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i+1, err)
			}
			fmt.Fprintf(out, "Batch %d: %s\n  %s\n", i+1, r.CommitMessage, r.CompareURL)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Path to CSV file (required)")
	importCmd.Flags().IntVarP(&importBatch, "batch", "b", importer.DefaultBatchSize, "dApps per submission")
	importCmd.Flags().StringVar(&importToken, "token", "", "GitHub access token (default $GITHUB_TOKEN)")
	importCmd.Flags().StringVar(&importOrg, "org", "", "Fork into this organization instead of the user account")
	importCmd.Flags().BoolVar(&importListed, "listed", false, "Mark imported dApps as listed")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and report without submitting")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
