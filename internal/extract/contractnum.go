package extract

import (
	"regexp"
	"strings"
)

// DoD contract numbers look like N00024-25-D-0150 or W912DY-24-C-0001: a
// letter, five alphanumerics (Army office codes mix letters into the digits),
// then dashed segments. Parenthesized and "contract ..." forms are more
// trustworthy than a bare token, so they are tried first.
var contractNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\(([A-Z][A-Z0-9]{5}[A-Z0-9-]{4,})\)`),
	regexp.MustCompile(`(?i:contract\s+(?:number\s+)?)([A-Z][A-Z0-9]{5}[A-Z0-9-]{4,})\b`),
	regexp.MustCompile(`\b([A-Z][A-Z0-9]{5}[A-Z0-9-]{4,})\b`),
}

const minContractNumberLen = 10

func contractNumber(text string) string {
	for _, re := range contractNumberPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			c := m[1]
			// The alphanumeric head also matches long all-caps words
			// (HEADQUARTERS, ANNOUNCEMENT); a real number carries digits.
			if len(c) >= minContractNumberLen && strings.ContainsAny(c, "0123456789") {
				return c
			}
		}
	}
	return ""
}
