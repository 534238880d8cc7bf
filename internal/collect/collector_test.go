package collect

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/make-ready-tech/oppintel/internal/model"
	"github.com/make-ready-tech/oppintel/internal/portal"
)

// fakeSource serves pre-built pages and records how many were requested.
type fakeSource struct {
	pages   [](*portal.Page)
	failAt  int // page index to fail at; -1 = never
	fetched int
}

func (f *fakeSource) SearchPage(ctx context.Context, sortBy string, page, size int) (*portal.Page, error) {
	f.fetched++
	if f.failAt >= 0 && page == f.failAt {
		return nil, eris.New("http 503 from portal")
	}
	if page < len(f.pages) {
		return f.pages[page], nil
	}
	return &portal.Page{}, nil
}

func openTopic(code string, modified time.Time) model.RawTopic {
	return model.RawTopic{
		TopicCode:      code,
		Status:         model.StatusOpen,
		ModifiedDateMS: modified.UnixMilli(),
	}
}

func closedTopic(code string, modified time.Time) model.RawTopic {
	t := openTopic(code, modified)
	t.Status = model.StatusClosed
	return t
}

func fullPage(topics ...model.RawTopic) *portal.Page {
	// Pad to the test page size of 2 so the short-page rule does not fire.
	for len(topics) < 2 {
		topics = append(topics, closedTopic("PAD-"+time.Now().Format("150405.000"), time.Now()))
	}
	return &portal.Page{Topics: topics}
}

func testPolicy() StopPolicy {
	return StopPolicy{PageSize: 2, MaxPages: 100, MaxConsecutiveEmptyPages: 3}
}

func TestCollectStopsOnConsecutiveEmptyPages(t *testing.T) {
	now := time.Now().UTC()
	src := &fakeSource{failAt: -1}
	// Page 0 has a match, then only closed topics forever.
	src.pages = []*portal.Page{fullPage(openTopic("A24-001", now))}
	for range 10 {
		src.pages = append(src.pages, fullPage(closedTopic("X", now), closedTopic("Y", now)))
	}

	var trail model.Trail
	got := New(src, testPolicy(), portal.SortModifiedDesc).Collect(context.Background(), LiveFilter(), &trail)

	require.Len(t, got, 1)
	assert.Equal(t, "A24-001", got[0].TopicCode)
	// 1 matching page + 3 empty pages, then stop.
	assert.Equal(t, 4, src.fetched)
}

func TestCollectTerminatesWithinEmptyThresholdOnNoMatches(t *testing.T) {
	now := time.Now().UTC()
	src := &fakeSource{failAt: -1}
	for range 50 {
		src.pages = append(src.pages, fullPage(closedTopic("X", now), closedTopic("Y", now)))
	}

	var trail model.Trail
	got := New(src, testPolicy(), portal.SortModifiedDesc).Collect(context.Background(), LiveFilter(), &trail)

	assert.Empty(t, got)
	assert.Equal(t, 3, src.fetched, "zero matching pages must terminate within the empty-page threshold")
}

func TestCollectSafetyBound(t *testing.T) {
	now := time.Now().UTC()
	src := &fakeSource{failAt: -1}
	// Every page matches, so only the safety bound can stop the run.
	for range 200 {
		src.pages = append(src.pages, fullPage(openTopic("A", now), openTopic("B", now)))
	}

	policy := testPolicy()
	policy.MaxPages = 5

	var trail model.Trail
	got := New(src, policy, portal.SortModifiedDesc).Collect(context.Background(), LiveFilter(), &trail)

	assert.Equal(t, 5, src.fetched)
	assert.Len(t, got, 10)
	require.NotEmpty(t, trail.Warnings())
	assert.Contains(t, trail.Warnings()[0], "safety bound")
}

func TestCollectPartialResultsOnPageFailure(t *testing.T) {
	now := time.Now().UTC()
	src := &fakeSource{failAt: 2}
	src.pages = []*portal.Page{
		fullPage(openTopic("A", now), openTopic("B", now)),
		fullPage(openTopic("C", now), openTopic("D", now)),
	}

	var trail model.Trail
	got := New(src, testPolicy(), portal.SortModifiedDesc).Collect(context.Background(), LiveFilter(), &trail)

	assert.Len(t, got, 4, "records collected before the failure must be returned")
	require.NotEmpty(t, trail.Warnings())
	assert.Contains(t, trail.Warnings()[0], "fetch failed")
}

func TestCollectShortPageIsFinal(t *testing.T) {
	now := time.Now().UTC()
	src := &fakeSource{failAt: -1}
	src.pages = []*portal.Page{
		fullPage(openTopic("A", now), openTopic("B", now)),
		{Topics: []model.RawTopic{openTopic("C", now)}}, // short page
		fullPage(openTopic("NEVER", now)),
	}

	var trail model.Trail
	got := New(src, testPolicy(), portal.SortModifiedDesc).Collect(context.Background(), LiveFilter(), &trail)

	assert.Len(t, got, 3)
	assert.Equal(t, 2, src.fetched)
}

func TestCollectAllOlderShortCircuit(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	inRange := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	older := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	mk := func(code string, mod time.Time) model.RawTopic {
		t := openTopic(code, mod)
		t.CloseDateMS = mod.UnixMilli()
		return t
	}

	src := &fakeSource{failAt: -1}
	src.pages = []*portal.Page{
		{Topics: []model.RawTopic{mk("A", inRange), mk("B", inRange)}},
		{Topics: []model.RawTopic{mk("OLD1", older), mk("OLD2", older)}},
		{Topics: []model.RawTopic{mk("NEVER", inRange), mk("NEVER2", inRange)}},
	}

	var trail model.Trail
	got := New(src, testPolicy(), portal.SortModifiedDesc).Collect(context.Background(), RangeFilter(from, to), &trail)

	assert.Len(t, got, 2)
	assert.Equal(t, 2, src.fetched, "a fully-older page must end a date-sorted run")
}

func TestCollectAllOlderIgnoredWithoutSortedOrder(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	older := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	src := &fakeSource{failAt: -1}
	for range 10 {
		src.pages = append(src.pages, fullPage(openTopic("OLD", older), openTopic("OLD2", older)))
	}

	var trail model.Trail
	// Unverifiable sort order: short-circuit must not fire, the empty-page
	// counter stops the run instead.
	got := New(src, testPolicy(), "relevance").Collect(context.Background(), RangeFilter(from, to), &trail)

	assert.Empty(t, got)
	assert.Equal(t, 3, src.fetched)
}

func TestCollectCancelledBetweenPages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{failAt: -1}
	var trail model.Trail
	got := New(src, testPolicy(), portal.SortModifiedDesc).Collect(ctx, LiveFilter(), &trail)

	assert.Empty(t, got)
	assert.Zero(t, src.fetched)
	require.NotEmpty(t, trail.Warnings())
	assert.Contains(t, trail.Warnings()[0], "cancelled")
}
