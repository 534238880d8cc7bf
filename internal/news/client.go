// Package news fetches contract-award announcement articles from the
// defense.gov news site. The site serves plain HTML; discovery walks the
// Contracts listing page for article links and each article is fetched and
// parsed independently.
package news

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/make-ready-tech/oppintel/internal/config"
	"github.com/make-ready-tech/oppintel/internal/fetcher"
)

const defaultListingPath = "/News/Contracts/"

// Client discovers and fetches announcement articles.
type Client struct {
	http    *fetcher.Client
	baseURL string
	listing string
	timeout time.Duration
}

// NewClient builds a news client over the shared fetcher.
func NewClient(http *fetcher.Client, cfg config.NewsConfig) *Client {
	listing := cfg.ListingPath
	if listing == "" {
		listing = defaultListingPath
	}
	return &Client{
		http:    http,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		listing: listing,
		timeout: 30 * time.Second,
	}
}

// Contract announcement articles live under /Article/<id>/; other listing
// links (galleries, navigation) do not.
var articleLinkRe = regexp.MustCompile(`/Article/\d+/?$`)

// ListArticles fetches the Contracts listing page and returns up to limit
// absolute article URLs in page order, de-duplicated.
func (c *Client) ListArticles(ctx context.Context, limit int) ([]string, error) {
	body, err := c.http.Get(ctx, c.baseURL+c.listing, c.timeout)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var urls []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if limit > 0 && len(urls) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := attr(n, "href"); href != "" && articleLinkRe.MatchString(href) {
				abs := c.absolute(href)
				if abs != "" && !seen[abs] {
					seen[abs] = true
					urls = append(urls, abs)
				}
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)

	return urls, nil
}

// FetchArticle retrieves one article page as a parsed document.
func (c *Client) FetchArticle(ctx context.Context, articleURL string) (*html.Node, error) {
	body, err := c.http.Get(ctx, articleURL, c.timeout)
	if err != nil {
		return nil, err
	}
	return html.Parse(strings.NewReader(string(body)))
}

func (c *Client) absolute(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
