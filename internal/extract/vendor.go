package extract

import (
	"regexp"
	"strings"

	"github.com/make-ready-tech/oppintel/internal/model"
)

var (
	// The vendor name leads the paragraph, up to the first comma, asterisk
	// (the small-business marker) or opening paren.
	vendorNameRe = regexp.MustCompile(`^([^,(*]+)`)

	// "Company,* City, State (..." — the asterisk is optional and states can
	// be multi-word ("New Hampshire").
	vendorLocationRe = regexp.MustCompile(`,\s*\*?\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*),\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)

	smallBusinessRe = regexp.MustCompile(`(?i)small business`)
)

func vendorName(text string) string {
	m := vendorNameRe.FindStringSubmatch(text)
	if m == nil {
		return model.UnknownVendor
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return model.UnknownVendor
	}
	return name
}

func vendorLocation(text string) (city, state string) {
	m := vendorLocationRe.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}
