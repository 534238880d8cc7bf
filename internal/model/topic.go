package model

import "encoding/json"

// TopicStatus is the lifecycle status a portal reports for a topic.
type TopicStatus string

const (
	StatusOpen       TopicStatus = "Open"
	StatusClosed     TopicStatus = "Closed"
	StatusPreRelease TopicStatus = "Pre-Release"
	StatusActive     TopicStatus = "Active"
	StatusUnknown    TopicStatus = "Unknown"
)

// ParseTopicStatus normalizes a raw status string from the portal.
func ParseTopicStatus(s string) TopicStatus {
	switch s {
	case "Open":
		return StatusOpen
	case "Closed":
		return StatusClosed
	case "Pre-Release", "PreRelease":
		return StatusPreRelease
	case "Active":
		return StatusActive
	default:
		return StatusUnknown
	}
}

// IsLive reports whether the status means the proposal window is (or will be) open.
func (s TopicStatus) IsLive() bool {
	return s == StatusOpen || s == StatusPreRelease || s == StatusActive
}

// RawTopic is one item from the portal's paginated search endpoint.
// Timestamps are epoch milliseconds as delivered by the API.
type RawTopic struct {
	TopicID                string      `json:"topicId"`
	TopicCode              string      `json:"topicCode"`
	Title                  string      `json:"topicTitle"`
	Status                 TopicStatus `json:"-"`
	RawStatus              string      `json:"topicStatus"`
	Component              string      `json:"component"`
	Command                string      `json:"command"`
	Program                string      `json:"program"`
	CycleName              string      `json:"cycleName"`
	SolicitationTitle      string      `json:"solicitationTitle"`
	SolicitationNumber     string      `json:"solicitationNumber"`
	ReleaseNumber          int         `json:"releaseNumber"`
	OpenDateMS             int64       `json:"topicStartDate"`
	CloseDateMS            int64       `json:"topicEndDate"`
	ModifiedDateMS         int64       `json:"modifiedDate"`
	QuestionCount          int         `json:"topicQuestionCount"`
	PublishedQuestionCount int         `json:"noOfPublishedQuestions"`
}

// TopicDetail is the secondary payload fetched per topic.
type TopicDetail struct {
	Objective         string   `json:"objective"`
	Description       string   `json:"description"`
	Phase1Description string   `json:"phase1Description"`
	Phase2Description string   `json:"phase2Description"`
	Phase3Description string   `json:"phase3Description"`
	TechnologyAreas   []string `json:"technologyAreas"`
	Keywords          []string `json:"keywords"`
	ITAR              bool     `json:"itar"`
	PDFURL            string   `json:"pdfUrl,omitempty"`
}

// DetailedTopic is a RawTopic enriched with its detail and Q&A payloads.
// Enrichment failure never discards the summary fields: Detail stays nil and
// DetailIncomplete is set so downstream consumers can flag the record.
type DetailedTopic struct {
	RawTopic
	Detail           *TopicDetail
	QA               json.RawMessage
	DetailIncomplete bool
}
