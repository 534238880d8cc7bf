package model

import "time"

// UnknownVendor is the sentinel vendor name used when extraction finds no
// vendor at all. Downstream consumers must treat it as "needs review",
// never as a real vendor.
const UnknownVendor = "Unknown Vendor"

// SetAsideType is a government contracting preference category.
type SetAsideType string

const (
	SetAside8A         SetAsideType = "8(a) Business Development"
	SetAsideHUBZone    SetAsideType = "HUBZone"
	SetAsideSDVOSB     SetAsideType = "Service-Disabled Veteran-Owned Small Business (SDVOSB)"
	SetAsideWOSB       SetAsideType = "Woman-Owned Small Business (WOSB)"
	SetAsideEDWOSB     SetAsideType = "Economically Disadvantaged Woman-Owned Small Business (EDWOSB)"
	SetAsideTotalSmall SetAsideType = "Total Small Business Set-Aside"
	SetAsideSmallBiz   SetAsideType = "Small Business Set-Aside"
)

// CompetitionInfo describes how (or whether) an award was competed.
type CompetitionInfo struct {
	IsCompeted              *bool  `json:"is_competed"`
	CompetitionType         string `json:"competition_type,omitempty"`
	NumberOfOffers          int    `json:"number_of_offers,omitempty"`
	NonCompeteAuthority     string `json:"non_compete_authority,omitempty"`
	NonCompeteJustification string `json:"non_compete_justification,omitempty"`
}

// ModificationInfo links a modification announcement to its base contract.
type ModificationInfo struct {
	IsModification     bool   `json:"is_modification"`
	ModificationNumber string `json:"modification_number,omitempty"`
	BaseContractNumber string `json:"base_contract_number,omitempty"`
	IsOptionExercise   bool   `json:"is_option_exercise"`
	ModificationType   string `json:"modification_type,omitempty"`
}

// ExtractedContract is the product of text extraction on one announcement
// paragraph. Absent fields are zero values; Confidence records how much of
// the paragraph was understood, in [0,1]. It is a diagnostic, not a gate.
type ExtractedContract struct {
	VendorName     string `json:"vendor_name"`
	VendorCity     string `json:"vendor_city,omitempty"`
	VendorState    string `json:"vendor_state,omitempty"`
	VendorLocation string `json:"vendor_location,omitempty"`

	AwardAmount     *float64 `json:"award_amount,omitempty"`
	AwardAmountText string   `json:"award_amount_text,omitempty"`

	ContractNumber string `json:"contract_number,omitempty"`

	ContractTypes    []string `json:"contract_types,omitempty"`
	IsIDIQ           bool     `json:"is_idiq"`
	IsMultipleAward  bool     `json:"is_multiple_award"`
	IsHybridContract bool     `json:"is_hybrid_contract"`

	Competition  CompetitionInfo  `json:"competition"`
	Modification ModificationInfo `json:"modification"`

	IsSmallBusiness         bool         `json:"is_small_business"`
	IsSmallBusinessSetAside bool         `json:"is_small_business_set_aside"`
	SetAside                SetAsideType `json:"set_aside_type,omitempty"`

	NAICSCode           string     `json:"naics_code,omitempty"`
	ContractingActivity string     `json:"contracting_activity,omitempty"`
	ServiceBranch       string     `json:"service_branch,omitempty"`
	CompletionDate      *time.Time `json:"completion_date,omitempty"`

	RawParagraph string  `json:"raw_paragraph"`
	Confidence   float64 `json:"parsing_confidence"`
}
