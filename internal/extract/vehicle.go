package extract

import "regexp"

// Contract vehicle vocabulary. Announcements hyphenate these consistently,
// so exact word-boundary matches are reliable.
var vehiclePatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"firm-fixed-price", regexp.MustCompile(`(?i)\bfirm-fixed-price\b`)},
	{"cost-plus-fixed-fee", regexp.MustCompile(`(?i)\bcost-plus-fixed-fee\b`)},
	{"cost-plus-incentive-fee", regexp.MustCompile(`(?i)\bcost-plus-incentive-fee\b`)},
	{"fixed-price-incentive-fee", regexp.MustCompile(`(?i)\bfixed-price-incentive-fee\b`)},
	{"cost-reimbursable", regexp.MustCompile(`(?i)\bcost-reimbursable\b`)},
	{"cost-only", regexp.MustCompile(`(?i)\bcost-only\b`)},
	{"time-and-materials", regexp.MustCompile(`(?i)\btime-and-materials\b`)},
}

var (
	idiqRe          = regexp.MustCompile(`(?i)indefinite-delivery/indefinite-quantity|IDIQ`)
	multipleAwardRe = regexp.MustCompile(`(?i)multiple award`)
	hybridRe        = regexp.MustCompile(`(?i)hybrid`)
)

func contractTypes(text string) (types []string, isIDIQ, isMultipleAward, isHybrid bool) {
	for _, p := range vehiclePatterns {
		if p.re.MatchString(text) {
			types = append(types, p.name)
		}
	}

	if idiqRe.MatchString(text) {
		types = append(types, "IDIQ")
		isIDIQ = true
	}

	isMultipleAward = multipleAwardRe.MatchString(text)

	// More than two vehicle types in one award means the announcement calls
	// it a hybrid in all but name.
	isHybrid = hybridRe.MatchString(text) || len(types) > 2

	return types, isIDIQ, isMultipleAward, isHybrid
}
