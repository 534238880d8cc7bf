package collect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/make-ready-tech/oppintel/internal/model"
)

func TestLiveFilterStatuses(t *testing.T) {
	f := LiveFilter()

	assert.True(t, f.Matches(model.RawTopic{Status: model.StatusOpen}))
	assert.True(t, f.Matches(model.RawTopic{Status: model.StatusPreRelease}))
	assert.True(t, f.Matches(model.RawTopic{Status: model.StatusActive}))
	assert.False(t, f.Matches(model.RawTopic{Status: model.StatusClosed}))
	assert.False(t, f.Matches(model.RawTopic{Status: model.StatusUnknown}))
}

func TestRangeFilterDatePriority(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	f := RangeFilter(from, to)

	inside := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC).UnixMilli()
	outside := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

	// Close date wins over the other dates when present.
	assert.True(t, f.Matches(model.RawTopic{CloseDateMS: inside, OpenDateMS: outside, ModifiedDateMS: outside}))
	assert.False(t, f.Matches(model.RawTopic{CloseDateMS: outside, OpenDateMS: inside}))

	// Fall back to open date, then modified date.
	assert.True(t, f.Matches(model.RawTopic{OpenDateMS: inside}))
	assert.True(t, f.Matches(model.RawTopic{ModifiedDateMS: inside}))

	// A record with no usable date cannot satisfy a bounded filter.
	assert.False(t, f.Matches(model.RawTopic{}))

	// Bounds are inclusive.
	assert.True(t, f.Matches(model.RawTopic{CloseDateMS: from.UnixMilli()}))
	assert.True(t, f.Matches(model.RawTopic{CloseDateMS: to.UnixMilli()}))
}

func TestUnboundedFilterMatchesDatelessRecords(t *testing.T) {
	f := Filter{}
	assert.True(t, f.Matches(model.RawTopic{}))
	assert.False(t, f.DateBounded())
	assert.True(t, RangeFilter(time.Now(), time.Time{}).DateBounded())
}
