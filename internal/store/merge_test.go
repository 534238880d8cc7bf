package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/make-ready-tech/oppintel/internal/model"
)

var t0 = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

func dsipContribution() model.Contribution {
	return model.Contribution{
		Source:     "dsip",
		NaturalKey: "AF254-D1001",
		Fields: model.FieldMap{
			"title":     "Sensor Fusion",
			"status":    "Open",
			"objective": "Fuse sensors.",
		},
		RawData: map[string]any{"topicCode": "AF254-D1001"},
		Quality: 1.0,
	}
}

func TestMergeCreatesFromNothing(t *testing.T) {
	o := Merge(nil, dsipContribution(), t0)

	assert.Equal(t, "AF254-D1001", o.NaturalKey)
	assert.Equal(t, []string{"dsip"}, o.Sources)
	assert.Equal(t, "dsip", o.LastSource)
	assert.Equal(t, t0, o.FirstSeenAt)
	assert.Equal(t, t0, o.LastUpdatedAt)
	for field := range o.Fields {
		assert.Equal(t, "dsip", o.FieldSources[field], field)
	}
	assert.Equal(t, 1.0, o.SourceQualityScores["dsip"])
	assert.Contains(t, o.SourceData, "dsip")
}

func TestMergeLastWriterWinsPerField(t *testing.T) {
	o := Merge(nil, dsipContribution(), t0)

	t1 := t0.Add(time.Hour)
	second := model.Contribution{
		Source:     "defense_gov",
		NaturalKey: "AF254-D1001",
		Fields: model.FieldMap{
			"status":       "Closed",
			"award_amount": 4_200_000.0,
		},
		Quality: 0.85,
	}
	o2 := Merge(o, second, t1)

	// Offered fields move to the new source.
	assert.Equal(t, "Closed", o2.Fields["status"])
	assert.Equal(t, "defense_gov", o2.FieldSources["status"])
	assert.Equal(t, 4_200_000.0, o2.Fields["award_amount"])

	// Fields the new source did not offer stay owned by the old one.
	assert.Equal(t, "Sensor Fusion", o2.Fields["title"])
	assert.Equal(t, "dsip", o2.FieldSources["title"])
	assert.Equal(t, "Fuse sensors.", o2.Fields["objective"])

	assert.ElementsMatch(t, []string{"dsip", "defense_gov"}, o2.Sources)
	assert.Equal(t, "defense_gov", o2.LastSource)
	assert.Equal(t, t0, o2.FirstSeenAt, "first sighting never moves")
	assert.Equal(t, t1, o2.LastUpdatedAt)
}

func TestMergePreservesOtherSourcesAudit(t *testing.T) {
	o := Merge(nil, dsipContribution(), t0)
	o2 := Merge(o, model.Contribution{
		Source:     "defense_gov",
		NaturalKey: "AF254-D1001",
		Fields:     model.FieldMap{"vendor_name": "Acme"},
		RawData:    map[string]any{"paragraph": "Acme..."},
		Quality:    0.7,
	}, t0.Add(time.Hour))

	require.Contains(t, o2.SourceData, "dsip")
	assert.Equal(t, "AF254-D1001", o2.SourceData["dsip"]["topicCode"], "prior audit data survives")
	assert.Equal(t, 1.0, o2.SourceQualityScores["dsip"])
	assert.Equal(t, 0.7, o2.SourceQualityScores["defense_gov"])
}

func TestMergeSameSourceIsIdempotentOnSets(t *testing.T) {
	c := dsipContribution()
	o := Merge(nil, c, t0)
	o2 := Merge(o, c, t0.Add(time.Minute))
	o3 := Merge(o2, c, t0.Add(2*time.Minute))

	assert.Equal(t, []string{"dsip"}, o3.Sources, "repeated sightings never duplicate the source")
	assert.Equal(t, o.Fields, o3.Fields)
	assert.Len(t, o3.SourceQualityScores, 1)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	c := dsipContribution()
	o := Merge(nil, c, t0)

	before := o.Fields.Clone()
	_ = Merge(o, model.Contribution{
		Source:     "defense_gov",
		NaturalKey: "AF254-D1001",
		Fields:     model.FieldMap{"status": "Closed"},
	}, t0.Add(time.Hour))

	assert.Equal(t, before, o.Fields, "merge must not mutate the existing record")
	assert.Equal(t, []string{"dsip"}, o.Sources)
	assert.Equal(t, "dsip", o.FieldSources["status"])
}

func TestMergeSourcesSupersetOfFieldSources(t *testing.T) {
	o := Merge(nil, dsipContribution(), t0)
	o = Merge(o, model.Contribution{
		Source:     "defense_gov",
		NaturalKey: "AF254-D1001",
		Fields:     model.FieldMap{"vendor_name": "Acme"},
	}, t0.Add(time.Hour))

	seen := map[string]bool{}
	for _, s := range o.Sources {
		seen[s] = true
	}
	for field, src := range o.FieldSources {
		assert.True(t, seen[src], "field %s owned by unlisted source %s", field, src)
	}
}
