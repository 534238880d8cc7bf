package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/make-ready-tech/oppintel/internal/extract"
	"github.com/make-ready-tech/oppintel/internal/mapper"
	"github.com/make-ready-tech/oppintel/internal/model"
	"github.com/make-ready-tech/oppintel/internal/store"
)

// ArticleSource discovers and fetches contract announcement articles.
// Implemented by news.Client.
type ArticleSource interface {
	ListArticles(ctx context.Context, limit int) ([]string, error)
	FetchArticle(ctx context.Context, articleURL string) (*html.Node, error)
}

// News runs the defense.gov contract announcements scraper: article
// discovery, paragraph segmentation, regex extraction, and per-record upsert
// keyed on the contract number.
type News struct {
	client ArticleSource
	store  store.Store
	limit  int
	delay  time.Duration
	sleep  func(context.Context, time.Duration)
}

// NewNews assembles the news pipeline. limit caps how many articles one run
// visits; delay spaces article fetches out.
func NewNews(client ArticleSource, st store.Store, limit int, delay time.Duration) *News {
	if limit <= 0 {
		limit = 10
	}
	return &News{client: client, store: st, limit: limit, delay: delay, sleep: sleepCtx}
}

// Run executes one news run. Articles that fail to fetch or parse are skipped
// with a warning; announcements without a contract number are counted but
// never written, since they have no stable identity to merge on.
func (p *News) Run(ctx context.Context) (*model.RunSummary, error) {
	log := zap.L().With(zap.String("scraper", SourceNews))

	run, err := p.store.CreateRun(ctx, SourceNews, "")
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	start := time.Now()
	trail := &model.Trail{}
	summary := &model.RunSummary{Scraper: SourceNews}

	log.Info("pipeline: news run starting", zap.String("run_id", run.ID))
	trail.Logf("news run %s starting (article limit %d)", run.ID, p.limit)

	urls, err := p.client.ListArticles(ctx, p.limit)
	if err != nil {
		trail.Warnf("article listing failed: %v", err)
		summary.Warnings = trail.Warnings()
		summary.Elapsed = time.Since(start)
		finishRun(ctx, p.store, run.ID, model.RunStatusFailed, summary, trail, err.Error())
		return summary, nil
	}
	trail.Logf("discovered %d articles", len(urls))

	for i, articleURL := range urls {
		if ctx.Err() != nil {
			trail.Warnf("run cancelled with %d articles unvisited", len(urls)-i)
			break
		}
		if i > 0 {
			p.sleep(ctx, p.delay)
		}
		p.scrapeArticle(ctx, articleURL, summary, trail)
	}

	summary.Warnings = trail.Warnings()
	summary.Elapsed = time.Since(start)

	status := model.RunStatusComplete
	var errMsg string
	if ctx.Err() != nil {
		status = model.RunStatusFailed
		errMsg = ctx.Err().Error()
	}
	trail.Logf("news run finished: %d announcements extracted, %d created, %d updated, %d upsert failures",
		summary.Extracted, summary.Created, summary.Updated, summary.UpsertFailed)
	log.Info("pipeline: news run finished",
		zap.String("run_id", run.ID),
		zap.Int("extracted", summary.Extracted),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Duration("elapsed", summary.Elapsed),
	)
	finishRun(ctx, p.store, run.ID, status, summary, trail, errMsg)
	return summary, nil
}

func (p *News) scrapeArticle(ctx context.Context, articleURL string, summary *model.RunSummary, trail *model.Trail) {
	doc, err := p.client.FetchArticle(ctx, articleURL)
	if err != nil {
		trail.Warnf("fetch %s failed: %v", articleURL, err)
		return
	}

	article := extract.ParseArticle(doc, articleURL)
	summary.Collected++
	trail.Logf("article %d: %d contract announcements", article.ID, len(article.Paragraphs))

	for _, para := range article.Paragraphs {
		ec := extract.Contract(para.Text, para.ServiceBranch)
		summary.Extracted++
		if ec.ContractNumber == "" {
			// No stable identity to merge on; surfaced in the trail so a
			// pattern regression is visible without a record count drop.
			trail.Logf("article %d: announcement for %q has no contract number, skipped", article.ID, ec.VendorName)
			continue
		}
		if ctx.Err() != nil {
			return
		}
		outcome, upErr := p.store.Upsert(ctx, model.Contribution{
			Source:     SourceNews,
			NaturalKey: ec.ContractNumber,
			Fields:     mapper.News(ec, article.URL, article.PublishedDate),
			RawData: map[string]any{
				"paragraph":   para.Text,
				"article_url": article.URL,
			},
			Quality:   ec.Confidence,
			SourceURL: article.URL,
		})
		if upErr != nil {
			summary.UpsertFailed++
			summary.FailedKeys = append(summary.FailedKeys, ec.ContractNumber)
			trail.Warnf("upsert %s failed: %v", ec.ContractNumber, upErr)
			continue
		}
		switch outcome {
		case model.OutcomeCreated:
			summary.Created++
		case model.OutcomeUpdated:
			summary.Updated++
		}
	}
}
