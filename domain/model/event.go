package model

import "time"

const (
	EventContentCreated      = "content.created"
	EventContentScraped      = "content.scraped"
	EventContentScrapeFailed = "content.scrape_failed"
	EventSharePublished      = "share.published"
)

// PipelineEvent is emitted at pipeline state transitions.
type PipelineEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ContentID  int64     `json:"content_id,omitempty"`
	UserID     *int64    `json:"user_id,omitempty"`
	Platform   string    `json:"platform,omitempty"`
	Title      string    `json:"title,omitempty"`
	URL        string    `json:"url,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DigestItem is one entry of the new-content digest
type DigestItem struct {
	ID          int64
	Title       string
	URL         string
	Description string
	ImageURL    string
	PromoteURL  string
}
