// Package store persists canonical opportunities with field-level provenance
// and the run log. Two implementations share the Merge semantics: Postgres
// for deployments, SQLite for local runs and development.
package store

import (
	"context"

	"github.com/make-ready-tech/oppintel/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Scraper string          `json:"scraper,omitempty"`
	Status  model.RunStatus `json:"status,omitempty"`
	Limit   int             `json:"limit,omitempty"`
	Offset  int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the acquisition pipeline.
type Store interface {
	// Opportunities
	Upsert(ctx context.Context, c model.Contribution) (model.UpsertOutcome, error)
	GetOpportunity(ctx context.Context, naturalKey string) (*model.Opportunity, error)

	// Runs
	CreateRun(ctx context.Context, scraper string, mode model.RunMode) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, summary *model.RunSummary, logs []string, errMsg string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
