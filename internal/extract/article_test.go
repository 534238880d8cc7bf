package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const sampleArticle = `<!DOCTYPE html>
<html><head><title>Contracts For April 2, 2025</title></head>
<body>
<h1 class="maintitle">Contracts For April 2, 2025</h1>
<div class="body">
<p>NAVY</p>
<p>General Dynamics Electric Boat Corp., Groton, Connecticut, is awarded a $9.5 million
cost-plus-fixed-fee contract (N00024-25-C-2100) for submarine maintenance support services.
Work will be performed in Groton, Connecticut, and is expected to be completed by March 2027.
The Naval Sea Systems Command, Washington, D.C., is the contracting activity.</p>
<p>ARMY</p>
<p>Acme Robotics Inc., Austin, Texas, was awarded a $4.2 million firm-fixed-price contract
(W912DY-24-C-0001) for autonomous ground vehicles. Work is expected to be completed by June 2026.
U.S. Army Contracting Command, Redstone Arsenal, Alabama, is the contracting activity.</p>
<p>For more information, visit our website.</p>
</div>
</body></html>`

func parseDoc(t *testing.T, raw string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(raw))
	require.NoError(t, err)
	return doc
}

func TestParseArticle(t *testing.T) {
	doc := parseDoc(t, sampleArticle)

	a := ParseArticle(doc, "https://www.defense.gov/News/Contracts/Contract/Article/4123456/")

	assert.Equal(t, 4123456, a.ID)
	assert.Equal(t, "Contracts For April 2, 2025", a.Title)
	assert.Equal(t, 2025, a.PublishedDate.Year())
	assert.Equal(t, "April", a.PublishedDate.Month().String())

	require.Len(t, a.Paragraphs, 2, "boilerplate and headers must be filtered out")
	assert.Equal(t, "Navy", a.Paragraphs[0].ServiceBranch)
	assert.Contains(t, a.Paragraphs[0].Text, "General Dynamics Electric Boat Corp.")
	assert.Equal(t, "Army", a.Paragraphs[1].ServiceBranch)
	assert.Contains(t, a.Paragraphs[1].Text, "Acme Robotics Inc.")
}

func TestParseArticleBranchHeaderFlowsIntoExtraction(t *testing.T) {
	doc := parseDoc(t, sampleArticle)
	a := ParseArticle(doc, "https://www.defense.gov/News/Contracts/Contract/Article/4123456/")
	require.Len(t, a.Paragraphs, 2)

	ec := Contract(a.Paragraphs[0].Text, a.Paragraphs[0].ServiceBranch)

	assert.Equal(t, "Navy", ec.ServiceBranch)
	assert.Equal(t, "General Dynamics Electric Boat Corp.", ec.VendorName)
	assert.Equal(t, "N00024-25-C-2100", ec.ContractNumber)
	require.NotNil(t, ec.AwardAmount)
	assert.InDelta(t, 9_500_000, *ec.AwardAmount, 0.1)
}

func TestParseArticleNoAnnouncements(t *testing.T) {
	doc := parseDoc(t, `<html><body><h1>Press Release</h1><p>Nothing of note today.</p></body></html>`)

	a := ParseArticle(doc, "https://www.defense.gov/News/Releases/Release/Article/99/")

	assert.Equal(t, 99, a.ID)
	assert.Empty(t, a.Paragraphs)
	assert.True(t, a.PublishedDate.IsZero(), "non-contract titles carry no parseable date")
}

func TestParseArticleNormalizesWhitespace(t *testing.T) {
	raw := `<html><body><p>NAVY</p><p>Huntington Ingalls Industries Inc.,
	Newport News,   Virginia, is awarded a $100,000,000 modification to previously awarded
	contract (N00024-20-C-4300) for aircraft carrier    refueling and complex overhaul.
	The Naval Sea Systems Command, Washington, D.C., is the contracting activity.</p></body></html>`

	a := ParseArticle(parseDoc(t, raw), "https://example.mil/Article/1/")

	require.Len(t, a.Paragraphs, 1)
	assert.NotContains(t, a.Paragraphs[0].Text, "\n")
	assert.NotContains(t, a.Paragraphs[0].Text, "  ")
}
