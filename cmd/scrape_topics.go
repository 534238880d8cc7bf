package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/make-ready-tech/oppintel/internal/model"
	"github.com/make-ready-tech/oppintel/internal/pipeline"
)

var (
	topicsMode string
	topicsFrom string
	topicsTo   string
)

var scrapeTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Scrape SBIR/STTR topics from the DSIP portal",
	Long: `Collects topics from the DSIP search endpoint, enriches each with its
detail and Q&A payloads, and upserts them into the opportunity store.

Quick mode scans for topics whose proposal window is open or upcoming.
Historical mode collects everything inside --from/--to.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		params := pipeline.TopicsParams{Mode: model.RunMode(topicsMode)}
		var err error
		if params.From, err = parseDateFlag(topicsFrom); err != nil {
			return err
		}
		if params.To, err = parseDateFlag(topicsTo); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		p, err := newTopicsPipeline(st)
		if err != nil {
			return err
		}

		summary, err := p.Run(ctx, params)
		if err != nil {
			return err
		}
		return printSummary(summary)
	},
}

func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "invalid date %q, want YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}

func init() {
	scrapeTopicsCmd.Flags().StringVar(&topicsMode, "mode", "quick", "collection mode: quick or historical")
	scrapeTopicsCmd.Flags().StringVar(&topicsFrom, "from", "", "start of date range (YYYY-MM-DD, historical mode)")
	scrapeTopicsCmd.Flags().StringVar(&topicsTo, "to", "", "end of date range (YYYY-MM-DD, historical mode)")
	scrapeCmd.AddCommand(scrapeTopicsCmd)
}
