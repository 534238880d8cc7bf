// Package enrich upgrades summary records to detailed ones by fetching each
// record's secondary payloads. Per-record failures are isolated: a record
// whose detail fetch fails is carried forward with what it has rather than
// dropped, so one flaky endpoint cannot sink a whole run.
package enrich

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/make-ready-tech/oppintel/internal/model"
)

// DetailSource fetches the per-record payloads. Implemented by portal.Client.
type DetailSource interface {
	TopicDetail(ctx context.Context, topicID string) (*model.TopicDetail, error)
	TopicQA(ctx context.Context, topicID string) (json.RawMessage, error)
}

// Enricher runs the detail-fetch stage over a batch of summary records.
type Enricher struct {
	src         DetailSource
	concurrency int
	delay       time.Duration
	sleep       func(context.Context, time.Duration)
}

// New creates an Enricher fetching through src with at most concurrency
// in-flight records and the given pause after each record's fetches.
func New(src DetailSource, concurrency int, delay time.Duration) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{src: src, concurrency: concurrency, delay: delay, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Enrich fetches the detail payload for every record, and the Q&A payload
// for records that report published questions. The result always has one
// entry per input, in input order; records whose fetches failed have
// DetailIncomplete set and keep their summary fields.
func (e *Enricher) Enrich(ctx context.Context, topics []model.RawTopic, trail *model.Trail) []model.DetailedTopic {
	log := zap.L().With(zap.String("component", "enricher"))

	out := make([]model.DetailedTopic, len(topics))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, t := range topics {
		out[i] = model.DetailedTopic{RawTopic: t}
		g.Go(func() error {
			e.enrichOne(gctx, &out[i], trail, log)
			e.sleep(gctx, e.delay)
			return nil
		})
	}
	// Workers never return errors; per-record failures are recorded on the
	// record itself.
	_ = g.Wait()

	incomplete := 0
	for i := range out {
		if out[i].DetailIncomplete {
			incomplete++
		}
	}
	trail.Logf("enriched %d records (%d incomplete)", len(out), incomplete)
	return out
}

func (e *Enricher) enrichOne(ctx context.Context, dt *model.DetailedTopic, trail *model.Trail, log *zap.Logger) {
	if err := ctx.Err(); err != nil {
		dt.DetailIncomplete = true
		return
	}

	detail, err := e.src.TopicDetail(ctx, dt.TopicID)
	if err != nil {
		dt.DetailIncomplete = true
		trail.Warnf("detail fetch failed for %s, keeping summary fields: %v", dt.TopicCode, err)
		log.Warn("detail fetch failed", zap.String("topic", dt.TopicCode), zap.Error(err))
		return
	}
	dt.Detail = detail

	if dt.QuestionCount <= 0 && dt.PublishedQuestionCount <= 0 {
		return
	}
	qa, err := e.src.TopicQA(ctx, dt.TopicID)
	if err != nil {
		// The Q&A payload is supplementary; its absence does not mark the
		// record incomplete.
		trail.Warnf("q&a fetch failed for %s: %v", dt.TopicCode, err)
		log.Warn("q&a fetch failed", zap.String("topic", dt.TopicCode), zap.Error(err))
		return
	}
	dt.QA = qa
}
