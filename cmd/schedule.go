package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/make-ready-tech/oppintel/internal/model"
	"github.com/make-ready-tech/oppintel/internal/pipeline"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the scrapers on a cron schedule",
	Long: `Starts a long-lived process that runs the quick topics scrape and the
news scrape on the configured cron specs. Stops cleanly on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		topics, err := newTopicsPipeline(st)
		if err != nil {
			return err
		}
		newsPipe := newNewsPipeline(st)

		log := zap.L()
		c := cron.New()

		if _, err := c.AddFunc(cfg.Schedule.TopicsSpec, func() {
			runScheduled(ctx, "topics", func(ctx context.Context) (*model.RunSummary, error) {
				return topics.Run(ctx, pipeline.TopicsParams{Mode: model.ModeQuick})
			})
		}); err != nil {
			return eris.Wrapf(err, "bad topics cron spec %q", cfg.Schedule.TopicsSpec)
		}

		if _, err := c.AddFunc(cfg.Schedule.NewsSpec, func() {
			runScheduled(ctx, "news", newsPipe.Run)
		}); err != nil {
			return eris.Wrapf(err, "bad news cron spec %q", cfg.Schedule.NewsSpec)
		}

		log.Info("scheduler starting",
			zap.String("topics_spec", cfg.Schedule.TopicsSpec),
			zap.String("news_spec", cfg.Schedule.NewsSpec),
		)
		c.Start()

		<-ctx.Done()
		log.Info("scheduler stopping")
		// Wait for any in-flight scheduled job to finish.
		<-c.Stop().Done()
		return nil
	},
}

func runScheduled(ctx context.Context, name string, run func(context.Context) (*model.RunSummary, error)) {
	log := zap.L().With(zap.String("scheduled", name))
	summary, err := run(ctx)
	if err != nil {
		log.Error("scheduled run failed", zap.Error(err))
		return
	}
	log.Info("scheduled run finished",
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("upsert_failed", summary.UpsertFailed),
		zap.Duration("elapsed", summary.Elapsed),
	)
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
