package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/make-ready-tech/oppintel/internal/model"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run a scraper against its external source",
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

// printSummary writes the run summary as indented JSON, the shape operators
// diff between runs.
func printSummary(summary *model.RunSummary) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
