package model

import (
	"fmt"
	"sync"
	"time"
)

// RunStatus represents the current state of a scraper run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunMode selects the collection strategy for the topics scraper.
type RunMode string

const (
	ModeQuick      RunMode = "quick"
	ModeHistorical RunMode = "historical"
)

// RunSummary is the structured result of a scraper run. It is always
// produced, even when everything failed: zero counts plus the log trail,
// never a bare error.
type RunSummary struct {
	Scraper      string        `json:"scraper"`
	Mode         RunMode       `json:"mode,omitempty"`
	Collected    int           `json:"collected"`
	Enriched     int           `json:"enriched"`
	EnrichFailed int           `json:"enrich_failed"`
	Extracted    int           `json:"extracted"`
	Created      int           `json:"created"`
	Updated      int           `json:"updated"`
	UpsertFailed int           `json:"upsert_failed"`
	FailedKeys   []string      `json:"failed_keys,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
}

// Run is one persisted scraper run with its log trail.
type Run struct {
	ID          string      `json:"id"`
	Scraper     string      `json:"scraper"`
	Mode        RunMode     `json:"mode,omitempty"`
	Status      RunStatus   `json:"status"`
	Summary     *RunSummary `json:"summary,omitempty"`
	Logs        []string    `json:"logs,omitempty"`
	Error       string      `json:"error,omitempty"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// Trail accumulates the human-readable log lines and warnings for a run.
// Operators have no other way to audit scraper behavior against a hostile
// source, so every pipeline stage appends here as it works.
type Trail struct {
	mu       sync.Mutex
	lines    []string
	warnings []string
}

// Logf appends a formatted line to the trail.
func (t *Trail) Logf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, fmt.Sprintf("%s %s", time.Now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...)))
}

// Warnf appends a formatted warning, which also appears in the trail.
func (t *Trail) Warnf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	t.warnings = append(t.warnings, msg)
	t.lines = append(t.lines, fmt.Sprintf("%s WARN %s", time.Now().UTC().Format(time.RFC3339), msg))
}

// Lines returns a copy of the accumulated log lines.
func (t *Trail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Warnings returns a copy of the accumulated warnings.
func (t *Trail) Warnings() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.warnings))
	copy(out, t.warnings)
	return out
}
