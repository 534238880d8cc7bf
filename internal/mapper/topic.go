package mapper

import (
	"strings"

	"github.com/make-ready-tech/oppintel/internal/model"
)

// Assumed award ceilings by phase, used only when a topic's program is
// recognized and no scraped figure exists. Emitted under *_assumed keys with
// a funding_basis marker so downstream consumers can tell them from real
// numbers.
const (
	assumedPhase1Award = 250_000
	assumedPhase2Award = 2_000_000
)

// Topic maps an enriched portal record to canonical fields. Only fields the
// record actually offers appear in the map; a later source that offers a
// field overwrites it, one that does not leaves it alone.
func Topic(dt model.DetailedTopic, pdfURL string) model.FieldMap {
	f := model.FieldMap{}

	put := func(key, val string) {
		if strings.TrimSpace(val) != "" {
			f[key] = val
		}
	}

	put("topic_number", dt.TopicCode)
	put("topic_id", dt.TopicID)
	put("title", dt.Title)
	if dt.Title != "" {
		f["short_title"] = truncate(dt.Title, 50)
	}

	put("component", dt.Component)
	put("component_full_name", ExpandComponent(dt.Component))
	put("command", dt.Command)
	put("program", dt.Program)
	put("program_type", ProgramType(dt.Program))

	put("solicitation_title", dt.SolicitationTitle)
	put("solicitation_number", dt.SolicitationNumber)
	put("cycle_name", dt.CycleName)
	if dt.ReleaseNumber > 0 {
		f["release_number"] = dt.ReleaseNumber
	}

	put("status", dt.RawStatus)

	putDates(f, "open_date", dt.OpenDateMS)
	putDates(f, "close_date", dt.CloseDateMS)
	putDates(f, "modified_date", dt.ModifiedDateMS)
	if d := DurationDays(dt.OpenDateMS, dt.CloseDateMS); d >= 0 {
		f["duration_days"] = d
	}

	f["total_questions"] = dt.QuestionCount
	f["published_questions"] = dt.PublishedQuestionCount
	f["has_qa"] = dt.QuestionCount > 0
	if len(dt.QA) > 0 {
		f["qa_content"] = string(dt.QA)
	}

	put("pdf_url", pdfURL)

	if dt.Detail != nil {
		d := dt.Detail
		put("objective", StripTags(d.Objective))
		put("description", StripTags(d.Description))
		put("phase1_description", StripTags(d.Phase1Description))
		put("phase2_description", StripTags(d.Phase2Description))
		put("phase3_dual_use", StripTags(d.Phase3Description))

		if len(d.TechnologyAreas) > 0 {
			f["technology_areas"] = strings.Join(d.TechnologyAreas, ", ")
			f["technology_area_count"] = len(d.TechnologyAreas)
		}
		if len(d.Keywords) > 0 {
			f["keywords"] = strings.Join(d.Keywords, ", ")
			f["keyword_count"] = len(d.Keywords)
		}
		f["itar_controlled"] = d.ITAR

		if ProgramType(dt.Program) != "" {
			if d.Phase1Description != "" {
				f["phase1_award_assumed"] = assumedPhase1Award
			}
			if d.Phase2Description != "" {
				f["phase2_award_assumed"] = assumedPhase2Award
			}
			if d.Phase1Description != "" || d.Phase2Description != "" {
				f["funding_basis"] = "assumed"
			}
		}
	}

	if dt.DetailIncomplete {
		f["detail_incomplete"] = true
	}

	return f
}

// putDates writes the display/ISO date pair for an epoch-millis value under
// key and key_iso.
func putDates(f model.FieldMap, key string, ms int64) {
	display, iso := EpochDates(ms)
	if display == "" {
		return
	}
	f[key] = display
	f[key+"_iso"] = iso
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
