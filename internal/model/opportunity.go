package model

import "time"

// FieldMap holds canonical field values keyed by column name. A mapper emits
// only the fields its source actually offers; empty extraction misses never
// appear, so a merge cannot clobber a richer source with nothing.
type FieldMap map[string]any

// Clone returns a shallow copy of the map.
func (f FieldMap) Clone() FieldMap {
	out := make(FieldMap, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Contribution is one source's offer for a single logical opportunity.
type Contribution struct {
	Source     string         `json:"source"`
	NaturalKey string         `json:"natural_key"`
	Fields     FieldMap       `json:"fields"`
	RawData    map[string]any `json:"raw_data,omitempty"`
	Quality    float64        `json:"quality"`
	SourceURL  string         `json:"source_url,omitempty"`
}

// Opportunity is the persisted canonical record. It is uniquely identified
// by NaturalKey and carries field-level provenance so independent sources can
// each own different fields without clobbering one another.
type Opportunity struct {
	NaturalKey string   `json:"natural_key"`
	Fields     FieldMap `json:"fields"`

	Sources             []string                  `json:"sources"`
	FieldSources        map[string]string         `json:"field_sources"`
	SourceData          map[string]map[string]any `json:"source_data"`
	SourceQualityScores map[string]float64        `json:"source_quality_scores"`
	LastSource          string                    `json:"last_source"`

	FirstSeenAt   time.Time `json:"first_seen_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// HasSource reports whether the given source has ever contributed.
func (o *Opportunity) HasSource(source string) bool {
	for _, s := range o.Sources {
		if s == source {
			return true
		}
	}
	return false
}

// UpsertOutcome reports whether an upsert created or updated a record.
type UpsertOutcome string

const (
	OutcomeCreated UpsertOutcome = "created"
	OutcomeUpdated UpsertOutcome = "updated"
)
