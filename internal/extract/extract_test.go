package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/make-ready-tech/oppintel/internal/model"
)

func TestContractEndToEnd(t *testing.T) {
	paragraph := "Acme Robotics Inc., Austin, Texas, was awarded a $4.2 million " +
		"firm-fixed-price contract (W912DY-24-C-0001) for autonomous ground vehicles. " +
		"This was a sole-source award under the authority of 10 U.S.C. 3204(a)(1). " +
		"Work will be performed in Austin, Texas, and is expected to be completed by June 2026. " +
		"U.S. Army Contracting Command, Redstone Arsenal, Alabama, is the contracting activity."

	ec := Contract(paragraph, "Army")

	assert.Equal(t, "Acme Robotics Inc.", ec.VendorName)
	assert.Equal(t, "Austin", ec.VendorCity)
	assert.Equal(t, "Texas", ec.VendorState)
	require.NotNil(t, ec.AwardAmount)
	assert.InDelta(t, 4_200_000, *ec.AwardAmount, 0.1)
	assert.Equal(t, []string{"firm-fixed-price"}, ec.ContractTypes)
	assert.Equal(t, "W912DY-24-C-0001", ec.ContractNumber)
	require.NotNil(t, ec.Competition.IsCompeted)
	assert.False(t, *ec.Competition.IsCompeted)
	assert.Equal(t, "sole source", ec.Competition.CompetitionType)
	assert.Equal(t, "Army", ec.ServiceBranch)
	assert.GreaterOrEqual(t, ec.Confidence, 0.9)
	assert.LessOrEqual(t, ec.Confidence, 1.0)
}

func TestAmountWordedFormWinsOverPlainPrefix(t *testing.T) {
	amount, text := awardAmount("the company was awarded a $1.5 million contract")
	require.NotNil(t, amount)
	assert.InDelta(t, 1_500_000, *amount, 0.1)
	assert.Equal(t, "$1.5 million", text)
}

func TestAmountForms(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"a $2 billion award", 2_000_000_000},
		{"valued at $7,327,563", 7_327_563},
		{"roughly $950,000 obligated", 950_000},
	}
	for _, tc := range cases {
		amount, _ := awardAmount(tc.in)
		require.NotNil(t, amount, tc.in)
		assert.InDelta(t, tc.want, *amount, 0.1, tc.in)
	}

	amount, text := awardAmount("no figure disclosed")
	assert.Nil(t, amount)
	assert.Empty(t, text)
}

func TestSoleSourceAuthorityWithStatuteCitation(t *testing.T) {
	text := "This contract was not competed and was awarded under the " +
		"authority of 10 U.S.C. 3204(a)(1), as implemented by Federal Acquisition Regulation 6302-1, " +
		"only one responsible source."

	info := competition(text)

	require.NotNil(t, info.IsCompeted)
	assert.False(t, *info.IsCompeted)
	assert.Equal(t, "sole source", info.CompetitionType)
	assert.Equal(t, "10 U.S.C. 3204(a)(1)", info.NonCompeteAuthority)
	assert.Equal(t, "Federal Acquisition Regulation 6302-1", info.NonCompeteJustification)
}

func TestCompetitionFullAndOpenWithOffers(t *testing.T) {
	info := competition("This contract was competitively procured via full and open competition, with three offers received.")

	require.NotNil(t, info.IsCompeted)
	assert.True(t, *info.IsCompeted)
	assert.Equal(t, "full and open", info.CompetitionType)
	assert.Equal(t, 3, info.NumberOfOffers)
}

func TestCompetitionNumericOffers(t *testing.T) {
	info := competition("with 12 offers received")
	assert.Equal(t, 12, info.NumberOfOffers)
	assert.Nil(t, info.IsCompeted, "offer count alone does not decide competition")
}

func TestContractNumberPrefersParenthesized(t *testing.T) {
	text := "awarded contract N0002425D0150X against solicitation (N00024-25-D-0150)"
	assert.Equal(t, "N00024-25-D-0150", contractNumber(text))
}

func TestContractNumberMinimumLength(t *testing.T) {
	assert.Empty(t, contractNumber("short token (W91234) only"))
	assert.Equal(t, "W912PL-24-C-0001", contractNumber("awarded W912PL-24-C-0001 today"))
}

func TestContractNumberArmyOfficeCodes(t *testing.T) {
	// Army office codes mix letters into the six-character head.
	assert.Equal(t, "W912DY-24-C-0001",
		contractNumber("a firm-fixed-price contract (W912DY-24-C-0001) for vehicles"))
	assert.Equal(t, "W912DY-24-C-0001",
		contractNumber("under contract W912DY-24-C-0001 with the command"))
	assert.Equal(t, "FA8675-25-D-0042",
		contractNumber("modification to FA8675-25-D-0042 exercised"))
}

func TestContractNumberIgnoresAllCapsWords(t *testing.T) {
	assert.Empty(t, contractNumber("the HEADQUARTERS ANNOUNCEMENT listed no award identifier"))
}

func TestContractTypesAndHybrid(t *testing.T) {
	types, idiq, multi, hybrid := contractTypes(
		"a firm-fixed-price, cost-plus-fixed-fee, time-and-materials hybrid indefinite-delivery/indefinite-quantity multiple award contract")

	assert.Contains(t, types, "firm-fixed-price")
	assert.Contains(t, types, "cost-plus-fixed-fee")
	assert.Contains(t, types, "time-and-materials")
	assert.Contains(t, types, "IDIQ")
	assert.True(t, idiq)
	assert.True(t, multi)
	assert.True(t, hybrid)
}

func TestHybridInferredFromTypeCount(t *testing.T) {
	_, _, _, hybrid := contractTypes("a firm-fixed-price, cost-plus-fixed-fee, cost-reimbursable contract")
	assert.True(t, hybrid, "more than two vehicle types implies hybrid")

	_, _, _, hybrid = contractTypes("a firm-fixed-price contract")
	assert.False(t, hybrid)
}

func TestSetAsidePriority(t *testing.T) {
	cases := []struct {
		in   string
		want model.SetAsideType
	}{
		{"an 8(a) sole source set-aside award", model.SetAside8A},
		{"a HUBZone set-aside procurement", model.SetAsideHUBZone},
		{"a service-disabled veteran-owned small business set-aside", model.SetAsideSDVOSB},
		{"an economically disadvantaged woman-owned small business set-aside", model.SetAsideEDWOSB},
		{"a woman-owned small business set-aside", model.SetAsideWOSB},
		{"a total small business set-aside acquisition", model.SetAsideTotalSmall},
		{"a small business set-aside acquisition", model.SetAsideSmallBiz},
	}
	for _, tc := range cases {
		ok, typ := setAside(tc.in)
		assert.True(t, ok, tc.in)
		assert.Equal(t, tc.want, typ, tc.in)
	}

	ok, typ := setAside("competitively procured with no preference program")
	assert.False(t, ok)
	assert.Empty(t, typ)

	ok, typ = setAside("this acquisition was a set-aside")
	assert.True(t, ok)
	assert.Equal(t, model.SetAsideSmallBiz, typ, "uncategorized set-asides default to the generic type")
}

func TestModificationLinkage(t *testing.T) {
	text := "Boeing Co., St. Louis, Missouri, is awarded a $25,000,000 modification (P00012) " +
		"to previously awarded firm-fixed-price contract (N00019-22-C-0014) to exercise options " +
		"for additional aircraft."

	info := modification(text)

	assert.True(t, info.IsModification)
	assert.Equal(t, "P00012", info.ModificationNumber)
	assert.Equal(t, "N00019-22-C-0014", info.BaseContractNumber)
	assert.True(t, info.IsOptionExercise)
	assert.Equal(t, "option exercise", info.ModificationType)
}

func TestModificationAbsent(t *testing.T) {
	info := modification("a fresh award with no changes to prior work")
	assert.False(t, info.IsModification)
	assert.Empty(t, info.ModificationType)
}

func TestNAICSCode(t *testing.T) {
	assert.Equal(t, "541715", naicsCode("performed under NAICS code 541715"))
	assert.Equal(t, "336411", naicsCode("NAICS 336411 applies"))
	assert.Empty(t, naicsCode("NAICS 1234 is too short"))
}

func TestContractingActivityPhrasings(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"The contracting activity is Naval Sea Systems Command.", "Naval Sea Systems Command"},
		{"Army Contracting Command, Aberdeen Proving Ground, is the contracting activity", "Army Contracting Command, Aberdeen Proving Ground"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, contractingActivity(tc.in), tc.in)
	}
	assert.Empty(t, contractingActivity("no activity named here"))
}

func TestServiceBranchHeaderWins(t *testing.T) {
	assert.Equal(t, "Navy", serviceBranch("the Army depot will receive deliveries", "Navy"))
	assert.Equal(t, "Air Force", serviceBranch("work for the Air Force at Hill Air Force Base", ""))
	assert.Empty(t, serviceBranch("no branch mentioned", ""))
}

func TestVendorNameFallsBackToSentinel(t *testing.T) {
	assert.Equal(t, model.UnknownVendor, vendorName(",, nothing leading"))
	assert.Equal(t, "Raytheon Co.", vendorName("Raytheon Co., Tewksbury, Massachusetts, is awarded..."))
}

func TestVendorLocationMultiWordState(t *testing.T) {
	city, state := vendorLocation("General Dynamics, Groton, New Hampshire (N00024-25-C-0001)")
	assert.Equal(t, "Groton", city)
	assert.Equal(t, "New Hampshire", state)
}

func TestSmallBusinessAsteriskLocation(t *testing.T) {
	city, state := vendorLocation("Tiny Widgets LLC,* Dayton, Ohio, was awarded")
	assert.Equal(t, "Dayton", city)
	assert.Equal(t, "Ohio", state)
}

func TestConfidenceBounds(t *testing.T) {
	// A paragraph matching nothing keeps the base score.
	ec := Contract("gibberish with no extractable fields at all", "")
	assert.GreaterOrEqual(t, ec.Confidence, 0.0)
	assert.LessOrEqual(t, ec.Confidence, 1.0)

	// Unknown vendor earns no vendor increment.
	ec2 := Contract(",, leading commas", "")
	assert.Equal(t, model.UnknownVendor, ec2.VendorName)
	assert.InDelta(t, 0.5, ec2.Confidence, 0.001)
}

func TestCompletionDate(t *testing.T) {
	d := completionDate("work is expected to be completed by June 2026")
	require.NotNil(t, d)
	assert.Equal(t, 2026, d.Year())

	assert.Nil(t, completionDate("no date in sight"))
}
