package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/make-ready-tech/oppintel/internal/collect"
	"github.com/make-ready-tech/oppintel/internal/enrich"
	"github.com/make-ready-tech/oppintel/internal/fetcher"
	"github.com/make-ready-tech/oppintel/internal/news"
	"github.com/make-ready-tech/oppintel/internal/pipeline"
	"github.com/make-ready-tech/oppintel/internal/portal"
	"github.com/make-ready-tech/oppintel/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	return st, nil
}

func newHTTPClient() *fetcher.Client {
	return fetcher.New(fetcher.Options{
		UserAgent:    cfg.HTTP.UserAgent,
		Timeout:      time.Duration(cfg.HTTP.TimeoutSecs) * time.Second,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
}

func newTopicsPipeline(st store.Store) (*pipeline.Topics, error) {
	policy, err := collect.PolicyFor(cfg.Collector, pipeline.SourceTopics)
	if err != nil {
		return nil, err
	}

	httpClient := newHTTPClient()
	session := portal.NewSession(httpClient, cfg.Portal)
	client := portal.NewClient(session, cfg.Portal)
	enricher := enrich.New(client, cfg.Detail.Concurrency, time.Duration(cfg.Detail.DelayMS)*time.Millisecond)

	return pipeline.NewTopics(session, client, enricher, st, policy, cfg.Collector.QuickEmptyPageThreshold, client.PDFDownloadURL), nil
}

func newNewsPipeline(st store.Store) *pipeline.News {
	client := news.NewClient(newHTTPClient(), cfg.News)
	return pipeline.NewNews(client, st, cfg.News.ArticleLimit, time.Duration(cfg.News.DelayMS)*time.Millisecond)
}
