package mapper

import (
	"strings"
	"time"

	"github.com/make-ready-tech/oppintel/internal/model"
)

// News maps an extracted contract announcement to canonical fields. The
// vendor sentinel is deliberately not offered: writing "Unknown Vendor" into
// the store could clobber a real vendor name contributed by another source.
func News(ec model.ExtractedContract, articleURL string, publishedDate time.Time) model.FieldMap {
	f := model.FieldMap{}

	put := func(key, val string) {
		if strings.TrimSpace(val) != "" {
			f[key] = val
		}
	}

	if ec.VendorName != "" && ec.VendorName != model.UnknownVendor {
		f["vendor_name"] = ec.VendorName
	}
	put("vendor_city", ec.VendorCity)
	put("vendor_state", ec.VendorState)
	put("vendor_location", ec.VendorLocation)

	if ec.AwardAmount != nil {
		f["award_amount"] = *ec.AwardAmount
		put("award_amount_text", ec.AwardAmountText)
	}

	put("contract_number", ec.ContractNumber)

	if len(ec.ContractTypes) > 0 {
		f["contract_types"] = strings.Join(ec.ContractTypes, ", ")
	}
	if ec.IsIDIQ {
		f["is_idiq"] = true
	}
	if ec.IsMultipleAward {
		f["is_multiple_award"] = true
	}
	if ec.IsHybridContract {
		f["is_hybrid_contract"] = true
	}

	if ec.Competition.IsCompeted != nil {
		f["is_competed"] = *ec.Competition.IsCompeted
	}
	put("competition_type", ec.Competition.CompetitionType)
	if ec.Competition.NumberOfOffers > 0 {
		f["number_of_offers"] = ec.Competition.NumberOfOffers
	}
	put("non_compete_authority", ec.Competition.NonCompeteAuthority)
	put("non_compete_justification", ec.Competition.NonCompeteJustification)

	if ec.Modification.IsModification {
		f["is_modification"] = true
		put("modification_number", ec.Modification.ModificationNumber)
		put("base_contract_number", ec.Modification.BaseContractNumber)
		put("modification_type", ec.Modification.ModificationType)
		if ec.Modification.IsOptionExercise {
			f["is_option_exercise"] = true
		}
	}

	if ec.IsSmallBusiness {
		f["is_small_business"] = true
	}
	if ec.IsSmallBusinessSetAside {
		f["is_small_business_set_aside"] = true
		put("set_aside_type", string(ec.SetAside))
	}

	put("naics_code", ec.NAICSCode)
	put("contracting_activity", ec.ContractingActivity)
	put("service_branch", ec.ServiceBranch)

	if ec.CompletionDate != nil {
		f["completion_date"] = ec.CompletionDate.Format("01/02/2006")
		f["completion_date_iso"] = ec.CompletionDate.Format(time.RFC3339)
	}

	put("raw_paragraph", ec.RawParagraph)
	f["parsing_confidence"] = ec.Confidence

	put("article_url", articleURL)
	if !publishedDate.IsZero() {
		f["announced_date"] = publishedDate.Format("01/02/2006")
		f["announced_date_iso"] = publishedDate.Format(time.RFC3339)
	}

	return f
}
