package store

import (
	"time"

	"github.com/make-ready-tech/oppintel/internal/model"
)

// Merge folds a contribution into an existing opportunity and returns the
// result. It is a pure function: the stores own locking and persistence,
// this owns the provenance semantics, and tests exercise it without a
// database.
//
// The rules:
//   - sources becomes the union of the existing set and the contributor;
//   - every offered field overwrites the stored value and takes ownership in
//     field_sources (last writer wins per field, not per record — a source
//     that does not offer a field leaves another source's value untouched);
//   - source_data and source_quality_scores replace only the contributor's
//     own entry, preserving every other source's prior contribution verbatim.
func Merge(existing *model.Opportunity, c model.Contribution, now time.Time) *model.Opportunity {
	if existing == nil {
		o := &model.Opportunity{
			NaturalKey:          c.NaturalKey,
			Fields:              c.Fields.Clone(),
			Sources:             []string{c.Source},
			FieldSources:        make(map[string]string, len(c.Fields)),
			SourceData:          map[string]map[string]any{},
			SourceQualityScores: map[string]float64{c.Source: c.Quality},
			LastSource:          c.Source,
			FirstSeenAt:         now,
			LastUpdatedAt:       now,
		}
		for field := range c.Fields {
			o.FieldSources[field] = c.Source
		}
		if c.RawData != nil {
			o.SourceData[c.Source] = c.RawData
		}
		return o
	}

	o := &model.Opportunity{
		NaturalKey:          existing.NaturalKey,
		Fields:              existing.Fields.Clone(),
		Sources:             append([]string(nil), existing.Sources...),
		FieldSources:        make(map[string]string, len(existing.FieldSources)+len(c.Fields)),
		SourceData:          make(map[string]map[string]any, len(existing.SourceData)+1),
		SourceQualityScores: make(map[string]float64, len(existing.SourceQualityScores)+1),
		LastSource:          c.Source,
		FirstSeenAt:         existing.FirstSeenAt,
		LastUpdatedAt:       now,
	}
	for field, src := range existing.FieldSources {
		o.FieldSources[field] = src
	}
	for src, data := range existing.SourceData {
		o.SourceData[src] = data
	}
	for src, q := range existing.SourceQualityScores {
		o.SourceQualityScores[src] = q
	}

	if !o.HasSource(c.Source) {
		o.Sources = append(o.Sources, c.Source)
	}

	for field, value := range c.Fields {
		o.Fields[field] = value
		o.FieldSources[field] = c.Source
	}

	if c.RawData != nil {
		o.SourceData[c.Source] = c.RawData
	}
	o.SourceQualityScores[c.Source] = c.Quality

	return o
}
