// Package extract turns the unstructured prose of contract award
// announcements into typed records. Every pattern here is best-effort: a
// miss leaves the field empty and lowers the record's confidence score, it
// never fails the record. Announcements are written by humans for humans, so
// the patterns are layered most-specific-first and the caller gets whatever
// subset matched.
package extract

import (
	"strings"

	"github.com/make-ready-tech/oppintel/internal/model"
)

// Contract parses one announcement paragraph into an ExtractedContract.
// branchHeader is the service-branch section header the paragraph appeared
// under, if any; it takes priority over in-paragraph branch mentions.
func Contract(paragraph, branchHeader string) model.ExtractedContract {
	text := strings.TrimSpace(paragraph)

	ec := model.ExtractedContract{
		RawParagraph: text,
		VendorName:   vendorName(text),
	}
	ec.VendorCity, ec.VendorState = vendorLocation(text)
	if ec.VendorCity != "" && ec.VendorState != "" {
		ec.VendorLocation = ec.VendorCity + ", " + ec.VendorState
	}

	ec.AwardAmount, ec.AwardAmountText = awardAmount(text)
	ec.ContractNumber = contractNumber(text)

	ec.ContractTypes, ec.IsIDIQ, ec.IsMultipleAward, ec.IsHybridContract = contractTypes(text)
	ec.Competition = competition(text)
	ec.Modification = modification(text)
	ec.IsSmallBusinessSetAside, ec.SetAside = setAside(text)
	ec.IsSmallBusiness = smallBusinessRe.MatchString(text)

	ec.NAICSCode = naicsCode(text)
	ec.ContractingActivity = contractingActivity(text)
	ec.ServiceBranch = serviceBranch(text, branchHeader)
	ec.CompletionDate = completionDate(text)

	ec.Confidence = confidence(ec)
	return ec
}

// confidence computes the additive parsing-confidence heuristic: a base
// value plus a fixed increment per extracted field group, clamped to [0,1].
// The weights live here and nowhere else so they can be retuned without
// touching extraction.
func confidence(ec model.ExtractedContract) float64 {
	c := 0.5
	if ec.VendorName != model.UnknownVendor {
		c += 0.1
	}
	if ec.VendorLocation != "" {
		c += 0.1
	}
	if ec.AwardAmount != nil {
		c += 0.15
	}
	if ec.ContractNumber != "" {
		c += 0.1
	}
	if ec.ContractingActivity != "" {
		c += 0.05
	}
	if len(ec.ContractTypes) > 0 {
		c += 0.05
	}
	if c > 1.0 {
		c = 1.0
	}
	if c < 0.0 {
		c = 0.0
	}
	return c
}
