// Package mapper translates scraped shapes into the canonical field schema.
// Every coercion here is total: unparseable input becomes an absent value,
// never a fabricated default, so a canonical field is either real data or
// missing. The one deliberate exception is assumed phase funding, which is
// kept under separate *_assumed keys so it can never masquerade as a scraped
// figure.
package mapper

import (
	"regexp"
	"strings"
	"time"
)

// ToBool interprets yes/no-like strings. The second return reports whether
// the input was recognizable at all.
func ToBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return true, true
	case "no", "n", "false", "0", "":
		return false, s != ""
	default:
		return false, false
	}
}

// EpochDates renders an epoch-milliseconds timestamp as the two canonical
// date fields: a display date (MM/DD/YYYY) and a sortable ISO timestamp.
// Consumers that render use the former; consumers that order use the latter.
// Non-positive input yields empty strings.
func EpochDates(ms int64) (display, iso string) {
	if ms <= 0 {
		return "", ""
	}
	t := time.UnixMilli(ms).UTC()
	return t.Format("01/02/2006"), t.Format(time.RFC3339)
}

// SplitCount counts the non-empty segments of a delimiter-joined string.
func SplitCount(s, sep string) int {
	n := 0
	for _, part := range strings.Split(s, sep) {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n
}

// DurationDays returns the whole days between two epoch-millisecond
// timestamps, or -1 when either is missing.
func DurationDays(startMS, endMS int64) int {
	if startMS <= 0 || endMS <= 0 {
		return -1
	}
	return int((endMS - startMS) / (1000 * 60 * 60 * 24))
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// StripTags removes HTML tags from scraped rich-text fields.
func StripTags(s string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(s, ""))
}

// componentNames expands the component abbreviations the portal uses.
var componentNames = map[string]string{
	"ARMY":       "United States Army",
	"NAVY":       "United States Navy",
	"AIRFORCE":   "United States Air Force",
	"SPACEFORCE": "United States Space Force",
	"DARPA":      "Defense Advanced Research Projects Agency",
	"DHA":        "Defense Health Agency",
	"SOCOM":      "Special Operations Command",
	"MDA":        "Missile Defense Agency",
}

// ExpandComponent returns the full component name for a portal abbreviation,
// or the input unchanged when the abbreviation is unknown.
func ExpandComponent(component string) string {
	if full, ok := componentNames[strings.ToUpper(component)]; ok {
		return full
	}
	return component
}

// ProgramType classifies a program string as SBIR, STTR or empty.
func ProgramType(program string) string {
	up := strings.ToUpper(program)
	switch {
	case strings.Contains(up, "STTR"):
		return "STTR"
	case strings.Contains(up, "SBIR"):
		return "SBIR"
	default:
		return ""
	}
}
