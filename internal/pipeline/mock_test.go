package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/make-ready-tech/oppintel/internal/model"
	"github.com/make-ready-tech/oppintel/internal/portal"
	"github.com/make-ready-tech/oppintel/internal/store"
)

type fakeSession struct {
	bootstrapped int
}

func (s *fakeSession) Bootstrap(_ context.Context, trail *model.Trail) {
	s.bootstrapped++
	trail.Logf("session warmed")
}

// fakePageSource serves pre-canned pages; requests past the end get empty
// pages, like a portal that keeps accepting page indexes forever.
type fakePageSource struct {
	mu      sync.Mutex
	pages   [][]model.RawTopic
	fetches int
}

func (s *fakePageSource) SearchPage(_ context.Context, _ string, page, _ int) (*portal.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	if page >= len(s.pages) {
		return &portal.Page{}, nil
	}
	return &portal.Page{Topics: s.pages[page], Total: -1}, nil
}

func (s *fakePageSource) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

// fakeEnricher passes topics through, marking the codes in incomplete as
// enrichment failures.
type fakeEnricher struct {
	incomplete map[string]bool
	calls      int
}

func (e *fakeEnricher) Enrich(_ context.Context, topics []model.RawTopic, _ *model.Trail) []model.DetailedTopic {
	e.calls++
	out := make([]model.DetailedTopic, len(topics))
	for i, t := range topics {
		out[i] = model.DetailedTopic{RawTopic: t}
		if e.incomplete[t.TopicCode] {
			out[i].DetailIncomplete = true
		} else {
			out[i].Detail = &model.TopicDetail{Objective: "objective for " + t.TopicCode}
		}
	}
	return out
}

type completedRun struct {
	runID   string
	status  model.RunStatus
	summary *model.RunSummary
	logs    []string
	errMsg  string
}

// fakeStore satisfies store.Store in memory, with per-key upsert failures.
type fakeStore struct {
	mu        sync.Mutex
	contribs  []model.Contribution
	existing  map[string]bool
	failKeys  map[string]bool
	createErr error
	runSeq    int
	runs      []model.Run
	completed []completedRun
}

var _ store.Store = (*fakeStore)(nil)

func (s *fakeStore) Upsert(_ context.Context, c model.Contribution) (model.UpsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failKeys[c.NaturalKey] {
		return "", fmt.Errorf("store: write rejected for %s", c.NaturalKey)
	}
	s.contribs = append(s.contribs, c)
	if s.existing[c.NaturalKey] {
		return model.OutcomeUpdated, nil
	}
	if s.existing == nil {
		s.existing = map[string]bool{}
	}
	s.existing[c.NaturalKey] = true
	return model.OutcomeCreated, nil
}

func (s *fakeStore) GetOpportunity(context.Context, string) (*model.Opportunity, error) {
	return nil, nil
}

func (s *fakeStore) CreateRun(_ context.Context, scraper string, mode model.RunMode) (*model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.runSeq++
	run := model.Run{
		ID:        fmt.Sprintf("run-%d", s.runSeq),
		Scraper:   scraper,
		Mode:      mode,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	s.runs = append(s.runs, run)
	return &run, nil
}

func (s *fakeStore) CompleteRun(_ context.Context, runID string, status model.RunStatus, summary *model.RunSummary, logs []string, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, completedRun{runID: runID, status: status, summary: summary, logs: logs, errMsg: errMsg})
	return nil
}

func (s *fakeStore) GetRun(context.Context, string) (*model.Run, error) { return nil, nil }

func (s *fakeStore) ListRuns(context.Context, store.RunFilter) ([]model.Run, error) {
	return nil, nil
}

func (s *fakeStore) Migrate(context.Context) error { return nil }
func (s *fakeStore) Close() error                  { return nil }

func (s *fakeStore) contributionFor(key string) (model.Contribution, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.contribs {
		if c.NaturalKey == key {
			return c, true
		}
	}
	return model.Contribution{}, false
}

// fakeArticleSource serves article HTML by URL.
type fakeArticleSource struct {
	urls      []string
	listErr   error
	bodies    map[string]string
	failFetch map[string]bool
	fetched   []string
}

func (s *fakeArticleSource) ListArticles(_ context.Context, limit int) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if limit > 0 && limit < len(s.urls) {
		return s.urls[:limit], nil
	}
	return s.urls, nil
}

func (s *fakeArticleSource) FetchArticle(_ context.Context, articleURL string) (*html.Node, error) {
	s.fetched = append(s.fetched, articleURL)
	if s.failFetch[articleURL] {
		return nil, fmt.Errorf("fetch: 503 from %s", articleURL)
	}
	return html.Parse(strings.NewReader(s.bodies[articleURL]))
}
