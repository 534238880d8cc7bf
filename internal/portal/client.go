package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/make-ready-tech/oppintel/internal/config"
	"github.com/make-ready-tech/oppintel/internal/model"
)

// SortModifiedDesc requests results newest-modified first. It is the only
// sort order the collector's whole-page-older short-circuit may rely on.
const SortModifiedDesc = "modifiedDate,desc"

// searchParams mirrors the serialized filter object the search endpoint
// expects. Fields the pipeline never restricts stay null/empty so the portal
// returns everything and filtering happens client-side.
type searchParams struct {
	SearchText              *string  `json:"searchText"`
	Components              *string  `json:"components"`
	ProgramYear             *string  `json:"programYear"`
	SolicitationCycleNames  *string  `json:"solicitationCycleNames"`
	ReleaseNumbers          []string `json:"releaseNumbers"`
	TopicReleaseStatus      []string `json:"topicReleaseStatus"`
	ModernizationPriorities []string `json:"modernizationPriorities"`
	SortBy                  string   `json:"sortBy"`
	TechnologyAreaIDs       []string `json:"technologyAreaIds"`
	Component               *string  `json:"component"`
	Program                 *string  `json:"program"`
}

// searchResponse is a page of the portal's search results. The reported
// total is not trustworthy and is used for logging only.
type searchResponse struct {
	Data  []json.RawMessage `json:"data"`
	Total int               `json:"total"`
}

// Page is one fetched page of raw topics.
type Page struct {
	Topics []model.RawTopic
	Total  int
}

// Client calls the topics portal's public API through a warmed-up session.
type Client struct {
	session *Session
	cfg     config.PortalConfig
}

// NewClient wraps a session in a typed API client.
func NewClient(session *Session, cfg config.PortalConfig) *Client {
	return &Client{session: session, cfg: cfg}
}

// SearchPage fetches one page of topic summaries with the given sort order.
func (c *Client) SearchPage(ctx context.Context, sortBy string, page, size int) (*Page, error) {
	params := searchParams{
		SortBy:                  sortBy,
		ReleaseNumbers:          []string{},
		TopicReleaseStatus:      []string{},
		ModernizationPriorities: []string{},
		TechnologyAreaIDs:       []string{},
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return nil, eris.Wrap(err, "portal: marshal search params")
	}

	searchURL := fmt.Sprintf("%s/topics/api/public/topics/search?searchParam=%s&size=%d&page=%d",
		c.cfg.BaseURL, url.QueryEscape(string(encoded)), size, page)

	var resp searchResponse
	timeout := time.Duration(c.cfg.SearchTimeoutSecs) * time.Second
	if err := c.session.Client().GetJSON(ctx, searchURL, timeout, &resp); err != nil {
		return nil, eris.Wrapf(err, "portal: search page %d", page)
	}

	topics := make([]model.RawTopic, 0, len(resp.Data))
	for _, raw := range resp.Data {
		var t model.RawTopic
		if err := json.Unmarshal(raw, &t); err != nil {
			// One malformed item is a parse miss, not a page failure.
			continue
		}
		t.Status = model.ParseTopicStatus(t.RawStatus)
		topics = append(topics, t)
	}

	return &Page{Topics: topics, Total: resp.Total}, nil
}

// TopicDetail fetches the detail payload for one topic.
func (c *Client) TopicDetail(ctx context.Context, topicID string) (*model.TopicDetail, error) {
	detailURL := fmt.Sprintf("%s/topics/api/public/topics/%s", c.cfg.BaseURL, url.PathEscape(topicID))

	var detail model.TopicDetail
	timeout := time.Duration(c.cfg.DetailTimeoutSecs) * time.Second
	if err := c.session.Client().GetJSON(ctx, detailURL, timeout, &detail); err != nil {
		return nil, eris.Wrapf(err, "portal: detail for topic %s", topicID)
	}
	return &detail, nil
}

// TopicQA fetches the published Q&A payload for one topic, preserved
// verbatim for the canonical record.
func (c *Client) TopicQA(ctx context.Context, topicID string) (json.RawMessage, error) {
	qaURL := fmt.Sprintf("%s/topics/api/public/topics/%s/questions", c.cfg.BaseURL, url.PathEscape(topicID))

	var qa json.RawMessage
	timeout := time.Duration(c.cfg.DetailTimeoutSecs) * time.Second
	if err := c.session.Client().GetJSON(ctx, qaURL, timeout, &qa); err != nil {
		return nil, eris.Wrapf(err, "portal: q&a for topic %s", topicID)
	}
	return qa, nil
}

// PDFDownloadURL returns the public PDF download link for a topic.
func (c *Client) PDFDownloadURL(topicID string) string {
	return fmt.Sprintf("%s/topics/api/public/topics/%s/download/PDF", c.cfg.BaseURL, url.PathEscape(topicID))
}
