package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// ContractParagraph is one announcement paragraph from an article, tagged
// with the service-branch section header it appeared under.
type ContractParagraph struct {
	Text          string
	ServiceBranch string
}

// Article is a parsed contract-announcement page.
type Article struct {
	ID            int
	URL           string
	Title         string
	PublishedDate time.Time
	Paragraphs    []ContractParagraph
}

var (
	articleIDRe = regexp.MustCompile(`Article/(\d+)`)

	// Section headers are short all-caps paragraphs naming a branch or agency.
	branchHeaderRe = regexp.MustCompile(`(?i)^(NAVY|AIR FORCE|ARMY|MARINE CORPS|SPACE FORCE|DEFENSE LOGISTICS AGENCY|DEFENSE ADVANCED RESEARCH PROJECTS AGENCY|U\.S\. SPECIAL OPERATIONS COMMAND|MISSILE DEFENSE AGENCY|DEFENSE INFORMATION SYSTEMS AGENCY)$`)

	// Announcement titles carry the award date: "Contracts For April 2, 2025".
	titleDateRe = regexp.MustCompile(`(?i)Contracts\s+For\s+([A-Z][a-z]+\.?\s+\d{1,2},\s+\d{4})`)

	// Indicators that a paragraph is an award announcement rather than
	// boilerplate.
	indicatorLocation = regexp.MustCompile(`[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*,\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*,\s+[A-Z][a-z]+`)
	indicatorDollars  = regexp.MustCompile(`\$[\d,]+|million|billion`)
	indicatorKeywords = regexp.MustCompile(`(?i)\b(contract|awarded|being awarded|modification|procurement|delivery)\b`)
	indicatorNumber   = regexp.MustCompile(`[A-Z][A-Z0-9]{5}[A-Z0-9-]*\d[A-Z0-9-]*`)
)

// Paragraphs shorter than this are headers or boilerplate, never awards.
const minAnnouncementLen = 100

// ParseArticle walks an article page and returns its title, date and the
// paragraphs that look like contract announcements. A paragraph qualifies
// when at least three of four signals are present: a "City, State" location,
// a dollar figure, award vocabulary, and a contract-number-shaped token.
func ParseArticle(doc *html.Node, url string) *Article {
	a := &Article{URL: url}

	if m := articleIDRe.FindStringSubmatch(url); m != nil {
		a.ID, _ = strconv.Atoi(m[1])
	}

	a.Title = firstText(doc, "h1")
	if a.Title == "" {
		a.Title = firstText(doc, "title")
	}
	a.PublishedDate = titleDate(a.Title)

	currentBranch := ""
	for _, p := range elementTexts(doc, "p") {
		text := norm.NFKC.String(strings.TrimSpace(p))
		text = strings.Join(strings.Fields(text), " ")

		// Branch headers are shorter than the minimum announcement length,
		// so they are recognized before it applies.
		if m := branchHeaderRe.FindStringSubmatch(text); m != nil {
			currentBranch = canonicalBranch(m[1])
			continue
		}
		if len(text) < minAnnouncementLen {
			continue
		}
		if !isAnnouncement(text) {
			continue
		}
		a.Paragraphs = append(a.Paragraphs, ContractParagraph{Text: text, ServiceBranch: currentBranch})
	}

	return a
}

func isAnnouncement(text string) bool {
	n := 0
	for _, re := range []*regexp.Regexp{indicatorLocation, indicatorDollars, indicatorKeywords, indicatorNumber} {
		if re.MatchString(text) {
			n++
		}
	}
	return n >= 3
}

func canonicalBranch(raw string) string {
	upper := strings.ToUpper(raw)
	titles := map[string]string{
		"NAVY":         "Navy",
		"AIR FORCE":    "Air Force",
		"ARMY":         "Army",
		"MARINE CORPS": "Marine Corps",
		"SPACE FORCE":  "Space Force",
	}
	if t, ok := titles[upper]; ok {
		return t
	}
	// Agency names get plain title casing.
	return cases.Title(language.AmericanEnglish).String(strings.ToLower(raw))
}

func titleDate(title string) time.Time {
	m := titleDateRe.FindStringSubmatch(title)
	if m == nil {
		return time.Time{}
	}
	raw := strings.ReplaceAll(m[1], ".", "")
	for _, layout := range []string{"January 2, 2006", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// firstText returns the flattened text of the first element with the given
// tag name.
func firstText(doc *html.Node, tag string) string {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == tag {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if found == nil {
		return ""
	}
	return strings.TrimSpace(flatten(found))
}

// elementTexts returns the flattened text of every element with the given
// tag name, in document order.
func elementTexts(doc *html.Node, tag string) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, flatten(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func flatten(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
