package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/make-ready-tech/oppintel/internal/model"
)

var (
	notCompetedRe = regexp.MustCompile(`(?i)contract was not competed|not competitively procured|sole-source|sole source`)
	fullOpenRe    = regexp.MustCompile(`(?i)full and open`)

	// Statute citations ("10 U.S.C. 3204(a)(1)") contain internal periods, so
	// the statute-shaped pattern runs before the generic stop-at-punctuation
	// one, which would truncate at "U".
	authorityStatuteRe = regexp.MustCompile(`(?i)authority of\s+(\d+\s+U\.S\.C\.\s+[0-9a-z()]+)`)
	authorityGenericRe = regexp.MustCompile(`(?i)authority of\s+([^,.]+)`)

	justificationRe = regexp.MustCompile(`(?i)as implemented by\s+([^,.]+)`)
	offersRe        = regexp.MustCompile(`(?i)(\w+)\s+offers?\s+received`)
)

var offerWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

func competition(text string) model.CompetitionInfo {
	var info model.CompetitionInfo

	switch {
	case notCompetedRe.MatchString(text):
		f := false
		info.IsCompeted = &f
		info.CompetitionType = "sole source"

		if m := authorityStatuteRe.FindStringSubmatch(text); m != nil {
			info.NonCompeteAuthority = strings.TrimSpace(m[1])
		} else if m := authorityGenericRe.FindStringSubmatch(text); m != nil {
			info.NonCompeteAuthority = strings.TrimSpace(m[1])
		}

		if m := justificationRe.FindStringSubmatch(text); m != nil {
			info.NonCompeteJustification = strings.TrimSpace(m[1])
		}

	case fullOpenRe.MatchString(text):
		t := true
		info.IsCompeted = &t
		info.CompetitionType = "full and open"
	}

	if m := offersRe.FindStringSubmatch(text); m != nil {
		word := strings.ToLower(m[1])
		if n, ok := offerWords[word]; ok {
			info.NumberOfOffers = n
		} else if n, err := strconv.Atoi(word); err == nil {
			info.NumberOfOffers = n
		}
	}

	return info
}
