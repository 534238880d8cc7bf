package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// The worded form must be tried before the plain form: "$1.5 million" also
// matches a bare dollar pattern as "$1", which would silently record the
// wrong order of magnitude.
var (
	amountWordedRe = regexp.MustCompile(`(?i)\$(\d+(?:\.\d+)?)\s*(million|billion)`)
	amountPlainRe  = regexp.MustCompile(`\$(\d{1,3}(?:,\d{3})+)`)
)

func awardAmount(text string) (*float64, string) {
	if m := amountWordedRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			switch strings.ToLower(m[2]) {
			case "billion":
				n *= 1_000_000_000
			case "million":
				n *= 1_000_000
			}
			return &n, m[0]
		}
	}

	if m := amountPlainRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err == nil {
			return &n, m[0]
		}
	}

	return nil, ""
}
