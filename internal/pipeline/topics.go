package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/make-ready-tech/oppintel/internal/collect"
	"github.com/make-ready-tech/oppintel/internal/mapper"
	"github.com/make-ready-tech/oppintel/internal/model"
	"github.com/make-ready-tech/oppintel/internal/portal"
	"github.com/make-ready-tech/oppintel/internal/resilience"
	"github.com/make-ready-tech/oppintel/internal/store"
)

// Bootstrapper warms up a browsing session before data calls. Implemented by
// portal.Session.
type Bootstrapper interface {
	Bootstrap(ctx context.Context, trail *model.Trail)
}

// TopicEnricher fetches detail and Q&A payloads for collected topics.
// Implemented by enrich.Enricher.
type TopicEnricher interface {
	Enrich(ctx context.Context, topics []model.RawTopic, trail *model.Trail) []model.DetailedTopic
}

// TopicsParams selects what a topics run collects. Historical runs require a
// date range; quick runs ignore one.
type TopicsParams struct {
	Mode model.RunMode
	From time.Time
	To   time.Time
}

// Topics runs the DSIP topics scraper end to end: bootstrap, paginated
// collection, detail enrichment, field mapping, and per-record upsert.
type Topics struct {
	session  Bootstrapper
	source   collect.PageSource
	enricher TopicEnricher
	store    store.Store
	policy   collect.StopPolicy
	// quickEmptyPages widens the consecutive-empty-page threshold in quick
	// mode: live topics are scattered thinly among closed ones, so the
	// default threshold would stop far too early.
	quickEmptyPages int
	pdfURL          func(topicID string) string
}

// NewTopics assembles the topics pipeline from its stages.
func NewTopics(session Bootstrapper, source collect.PageSource, enricher TopicEnricher, st store.Store, policy collect.StopPolicy, quickEmptyPages int, pdfURL func(string) string) *Topics {
	if pdfURL == nil {
		pdfURL = func(string) string { return "" }
	}
	return &Topics{
		session:         session,
		source:          source,
		enricher:        enricher,
		store:           st,
		policy:          policy,
		quickEmptyPages: quickEmptyPages,
		pdfURL:          pdfURL,
	}
}

// plan validates params and resolves the filter and stop policy for the run.
// It performs no network activity: a bad date range must fail before the
// first request against a rate-limited portal.
func (p *Topics) plan(params TopicsParams) (collect.Filter, collect.StopPolicy, error) {
	policy := p.policy
	switch params.Mode {
	case model.ModeQuick, "":
		if p.quickEmptyPages > 0 {
			policy.MaxConsecutiveEmptyPages = p.quickEmptyPages
		}
		return collect.LiveFilter(), policy, nil
	case model.ModeHistorical:
		if params.From.IsZero() || params.To.IsZero() {
			return collect.Filter{}, policy, resilience.Classed(eris.New("pipeline: historical mode requires a from/to date range"), resilience.ClassConfig)
		}
		if params.To.Before(params.From) {
			return collect.Filter{}, policy, resilience.Classed(eris.Errorf("pipeline: date range ends (%s) before it starts (%s)", params.To.Format("2006-01-02"), params.From.Format("2006-01-02")), resilience.ClassConfig)
		}
		return collect.RangeFilter(params.From, params.To), policy, nil
	default:
		return collect.Filter{}, policy, resilience.Classed(eris.Errorf("pipeline: unknown mode %q", params.Mode), resilience.ClassConfig)
	}
}

// Run executes one topics run. It returns an error only for configuration
// problems or an unavailable store; everything downstream is recovered
// locally and reported in the summary.
func (p *Topics) Run(ctx context.Context, params TopicsParams) (*model.RunSummary, error) {
	if params.Mode == "" {
		params.Mode = model.ModeQuick
	}
	log := zap.L().With(zap.String("scraper", SourceTopics), zap.String("mode", string(params.Mode)))

	filter, policy, err := p.plan(params)
	if err != nil {
		return nil, err
	}

	run, err := p.store.CreateRun(ctx, SourceTopics, params.Mode)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	start := time.Now()
	trail := &model.Trail{}
	summary := &model.RunSummary{Scraper: SourceTopics, Mode: params.Mode}

	log.Info("pipeline: topics run starting", zap.String("run_id", run.ID))
	trail.Logf("topics run %s starting (%s mode)", run.ID, params.Mode)

	p.session.Bootstrap(ctx, trail)

	collector := collect.New(p.source, policy, portal.SortModifiedDesc)
	topics := collector.Collect(ctx, filter, trail)
	summary.Collected = len(topics)
	trail.Logf("collected %d matching topics", len(topics))

	detailed := p.enricher.Enrich(ctx, topics, trail)
	for _, dt := range detailed {
		if dt.DetailIncomplete {
			summary.EnrichFailed++
		} else {
			summary.Enriched++
		}
	}

	for i, dt := range detailed {
		if ctx.Err() != nil {
			trail.Warnf("run cancelled with %d records unpersisted", len(detailed)-i)
			break
		}
		outcome, upErr := p.store.Upsert(ctx, p.contribution(dt))
		if upErr != nil {
			summary.UpsertFailed++
			summary.FailedKeys = append(summary.FailedKeys, dt.TopicCode)
			trail.Warnf("upsert %s failed: %v", dt.TopicCode, upErr)
			continue
		}
		switch outcome {
		case model.OutcomeCreated:
			summary.Created++
		case model.OutcomeUpdated:
			summary.Updated++
		}
	}

	summary.Warnings = trail.Warnings()
	summary.Elapsed = time.Since(start)

	status := model.RunStatusComplete
	var errMsg string
	if ctx.Err() != nil {
		status = model.RunStatusFailed
		errMsg = ctx.Err().Error()
	}
	trail.Logf("topics run finished: %d collected, %d created, %d updated, %d upsert failures",
		summary.Collected, summary.Created, summary.Updated, summary.UpsertFailed)
	log.Info("pipeline: topics run finished",
		zap.String("run_id", run.ID),
		zap.Int("collected", summary.Collected),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("upsert_failed", summary.UpsertFailed),
		zap.Duration("elapsed", summary.Elapsed),
	)
	finishRun(ctx, p.store, run.ID, status, summary, trail, errMsg)
	return summary, nil
}

// contribution turns an enriched topic into a provenance-tagged write. An
// incomplete record is still offered, at a reduced quality score, so summary
// fields land even when the detail endpoint misbehaved.
func (p *Topics) contribution(dt model.DetailedTopic) model.Contribution {
	quality := 1.0
	if dt.DetailIncomplete {
		quality = 0.6
	}
	return model.Contribution{
		Source:     SourceTopics,
		NaturalKey: dt.TopicCode,
		Fields:     mapper.Topic(dt, p.pdfURL(dt.TopicID)),
		RawData:    rawPayload(dt.RawTopic),
		Quality:    quality,
		SourceURL:  p.pdfURL(dt.TopicID),
	}
}

// rawPayload preserves the source record verbatim for auditability.
func rawPayload(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}
