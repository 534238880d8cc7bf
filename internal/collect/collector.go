package collect

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/make-ready-tech/oppintel/internal/model"
	"github.com/make-ready-tech/oppintel/internal/portal"
)

// PageSource fetches one page of search results. Implemented by
// portal.Client; tests substitute fakes.
type PageSource interface {
	SearchPage(ctx context.Context, sortBy string, page, size int) (*portal.Page, error)
}

// Collector walks a portal's paginated search endpoint, applying a Filter
// and stopping on the policy's heuristics. Each page is an independent
// network call; no server-side cursor is assumed to survive across runs.
type Collector struct {
	src    PageSource
	policy StopPolicy
	sortBy string
	sleep  func(context.Context, time.Duration)
}

// New creates a Collector over src with the given stop policy and sort order.
func New(src PageSource, policy StopPolicy, sortBy string) *Collector {
	return &Collector{src: src, policy: policy, sortBy: sortBy, sleep: sleepCtx}
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

// Collect pages through the search endpoint in increasing page index and
// returns every record matching the filter, in page order.
//
// Stop conditions, in the order they are checked:
//   - run cancellation between pages (partial results returned);
//   - MaxPages safety bound (the API's total counts are not trustworthy, so
//     this is the only hard termination guarantee);
//   - a page-fetch failure, which ends the run with partial results and a
//     warning rather than an error;
//   - MaxConsecutiveEmptyPages pages in a row with zero matching records,
//     the primary stop signal;
//   - when sorted newest-first against a date-bounded filter, an entire page
//     older than the lower bound (later pages can only be older still);
//   - a page shorter than the requested page size, treated as the last page.
func (c *Collector) Collect(ctx context.Context, filter Filter, trail *model.Trail) []model.RawTopic {
	log := zap.L().With(zap.String("component", "collector"))

	var collected []model.RawTopic
	consecutiveEmpty := 0
	delay := time.Duration(c.policy.PageDelayMS) * time.Millisecond

	for page := 0; page < c.policy.MaxPages; page++ {
		select {
		case <-ctx.Done():
			trail.Warnf("collection cancelled at page %d, returning %d records", page, len(collected))
			return collected
		default:
		}

		p, err := c.src.SearchPage(ctx, c.sortBy, page, c.policy.PageSize)
		if err != nil {
			// Partial results are preferred over total failure.
			trail.Warnf("page %d fetch failed, keeping %d records collected so far: %v", page, len(collected), err)
			log.Warn("page fetch failed", zap.Int("page", page), zap.Error(err))
			return collected
		}

		if page == 0 {
			trail.Logf("portal reports %d total topics (advisory only)", p.Total)
		}

		matched := 0
		for _, t := range p.Topics {
			if filter.Matches(t) {
				collected = append(collected, t)
				matched++
			}
		}

		if matched == 0 {
			consecutiveEmpty++
			trail.Logf("page %d: no matching records (%d/%d empty pages)", page, consecutiveEmpty, c.policy.MaxConsecutiveEmptyPages)
			if consecutiveEmpty >= c.policy.MaxConsecutiveEmptyPages {
				trail.Logf("stopping: %d consecutive pages without a match", consecutiveEmpty)
				return collected
			}
		} else {
			consecutiveEmpty = 0
			trail.Logf("page %d: %d matching records (total %d)", page, matched, len(collected))
		}

		if c.sortBy == portal.SortModifiedDesc && filter.DateBounded() && c.pageAllOlder(p, filter.From) {
			trail.Logf("stopping: entire page %d predates the requested range", page)
			return collected
		}

		if len(p.Topics) < c.policy.PageSize {
			trail.Logf("stopping: page %d returned %d of %d requested, treating as final page", page, len(p.Topics), c.policy.PageSize)
			return collected
		}

		c.sleep(ctx, delay)
	}

	trail.Warnf("stopping: reached safety bound of %d pages", c.policy.MaxPages)
	return collected
}

// pageAllOlder reports whether every record on the page was modified before
// the lower date bound. Only meaningful when the sort order is newest-first;
// an empty page never short-circuits (it feeds the empty-page counter
// instead).
func (c *Collector) pageAllOlder(p *portal.Page, from time.Time) bool {
	if len(p.Topics) == 0 {
		return false
	}
	for _, t := range p.Topics {
		if t.ModifiedDateMS <= 0 {
			// Sort order cannot be verified for this record; degrade
			// gracefully and keep paging.
			return false
		}
		if !time.UnixMilli(t.ModifiedDateMS).UTC().Before(from) {
			return false
		}
	}
	return true
}
