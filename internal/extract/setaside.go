package extract

import (
	"regexp"

	"github.com/make-ready-tech/oppintel/internal/model"
)

var setAsideRe = regexp.MustCompile(`(?i)set-aside|set aside`)

// Ordered most-specific-first: "total small business set-aside" also
// contains "small business set-aside", so the generic entries come last.
var setAsidePatterns = []struct {
	re  *regexp.Regexp
	typ model.SetAsideType
}{
	{regexp.MustCompile(`(?i)8\(a\)\s+(?:sole\s+source|set-?aside|business development)`), model.SetAside8A},
	{regexp.MustCompile(`(?i)HUBZone\s+set-?aside`), model.SetAsideHUBZone},
	{regexp.MustCompile(`(?i)service-disabled\s+veteran-owned\s+small\s+business|SDVOSB`), model.SetAsideSDVOSB},
	{regexp.MustCompile(`(?i)economically\s+disadvantaged\s+woman-owned|EDWOSB`), model.SetAsideEDWOSB},
	{regexp.MustCompile(`(?i)woman-owned\s+small\s+business|WOSB`), model.SetAsideWOSB},
	{regexp.MustCompile(`(?i)total\s+small\s+business\s+set-?aside`), model.SetAsideTotalSmall},
	{regexp.MustCompile(`(?i)small\s+business\s+set-?aside`), model.SetAsideSmallBiz},
}

func setAside(text string) (bool, model.SetAsideType) {
	if !setAsideRe.MatchString(text) {
		return false, ""
	}
	for _, p := range setAsidePatterns {
		if p.re.MatchString(text) {
			return true, p.typ
		}
	}
	// A set-aside with no recognizable category still counts.
	return true, model.SetAsideSmallBiz
}
