package extract

import (
	"regexp"
	"strings"
	"time"
)

var naicsRe = regexp.MustCompile(`(?i:NAICS\s+(?:code\s+)?)(\d{6})`)

func naicsCode(text string) string {
	if m := naicsRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// The contracting activity is announced in a handful of stock phrasings;
// tried best-first.
var activityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[Tt]he\s+contracting\s+activity\s+is\s+([^.()]+?)(?:\s+\(|\.)`),
	regexp.MustCompile(`([^,]+,\s+[^,]+),\s+is\s+the\s+contracting\s+activity`),
	regexp.MustCompile(`\(([^)]+)\s+is\s+the\s+contracting\s+activity\)`),
	regexp.MustCompile(`(?i:(?:contracting activity is|awarded by)\s+)([^.]+)`),
}

func contractingActivity(text string) string {
	for _, re := range activityPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// branchMentions is checked in order; the first substring hit wins. "Air
// Force" must be looked for before "Force" ever would be, and the list only
// holds unambiguous names.
var branchMentions = []string{
	"Marine Corps",
	"Space Force",
	"Air Force",
	"Army",
	"Navy",
}

func serviceBranch(text, header string) string {
	if header != "" {
		return header
	}
	for _, b := range branchMentions {
		if strings.Contains(text, b) {
			return b
		}
	}
	return ""
}

var completionRe = regexp.MustCompile(`(?i:(?:expected to be completed|completion date|work is expected)\s+(?:by\s+)?)([A-Z][a-z]+\s+\d{4})`)

func completionDate(text string) *time.Time {
	m := completionRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	t, err := time.Parse("January 2006", m[1])
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
