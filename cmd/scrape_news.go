package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var newsLimit int

var scrapeNewsCmd = &cobra.Command{
	Use:   "news",
	Short: "Scrape contract announcements from defense.gov",
	Long: `Discovers recent contract announcement articles, extracts each award
paragraph into structured fields, and upserts the results keyed on contract
number. Announcements without a contract number are reported but not stored.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if newsLimit > 0 {
			cfg.News.ArticleLimit = newsLimit
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		summary, err := newNewsPipeline(st).Run(ctx)
		if err != nil {
			return err
		}
		return printSummary(summary)
	},
}

func init() {
	scrapeNewsCmd.Flags().IntVar(&newsLimit, "limit", 0, "max articles to visit (default from config)")
	scrapeCmd.AddCommand(scrapeNewsCmd)
}
