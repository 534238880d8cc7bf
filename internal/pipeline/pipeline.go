// Package pipeline wires the acquisition stages into complete scraper runs:
// session bootstrap, paginated collection, detail enrichment, field mapping,
// and the provenance-aware upsert. Each run is persisted with its log trail
// and always ends with a structured summary, even when every record failed.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/make-ready-tech/oppintel/internal/model"
	"github.com/make-ready-tech/oppintel/internal/store"
)

// Source names as recorded in opportunity provenance.
const (
	SourceTopics = "dsip"
	SourceNews   = "defense_gov"
)

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

// finishRun persists the run outcome. Persistence of the record itself is
// best-effort: a store failure here must not mask the run's summary.
func finishRun(ctx context.Context, st store.Store, runID string, status model.RunStatus, summary *model.RunSummary, trail *model.Trail, errMsg string) {
	if runID == "" {
		return
	}
	// A cancelled run still records its outcome.
	ctx = context.WithoutCancel(ctx)
	if err := st.CompleteRun(ctx, runID, status, summary, trail.Lines(), errMsg); err != nil {
		zap.L().Warn("pipeline: failed to persist run outcome",
			zap.String("run_id", runID),
			zap.Error(err),
		)
	}
}
