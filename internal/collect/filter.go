package collect

import (
	"time"

	"github.com/make-ready-tech/oppintel/internal/model"
)

// Filter selects which summary records a collector run keeps.
type Filter struct {
	// Statuses restricts to the given statuses; empty accepts any.
	Statuses []model.TopicStatus
	// From/To bound the record date window; zero values leave it open.
	From time.Time
	To   time.Time
}

// LiveFilter matches topics whose proposal window is open or upcoming.
func LiveFilter() Filter {
	return Filter{Statuses: []model.TopicStatus{model.StatusActive, model.StatusOpen, model.StatusPreRelease}}
}

// RangeFilter matches topics whose date falls inside [from, to].
func RangeFilter(from, to time.Time) Filter {
	return Filter{From: from, To: to}
}

// DateBounded reports whether the filter carries a lower date bound, which
// is what the sorted-order short-circuit needs.
func (f Filter) DateBounded() bool {
	return !f.From.IsZero()
}

// recordDate picks the best available date for a topic: close date, then
// open date, then modified date. Portals are inconsistent about which of
// these is populated.
func recordDate(t model.RawTopic) time.Time {
	switch {
	case t.CloseDateMS > 0:
		return time.UnixMilli(t.CloseDateMS).UTC()
	case t.OpenDateMS > 0:
		return time.UnixMilli(t.OpenDateMS).UTC()
	case t.ModifiedDateMS > 0:
		return time.UnixMilli(t.ModifiedDateMS).UTC()
	default:
		return time.Time{}
	}
}

// Matches reports whether a topic passes the status and date criteria.
func (f Filter) Matches(t model.RawTopic) bool {
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if t.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	if f.From.IsZero() && f.To.IsZero() {
		return true
	}

	d := recordDate(t)
	if d.IsZero() {
		return false
	}
	if !f.From.IsZero() && d.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && d.After(f.To) {
		return false
	}
	return true
}
