package model

import "time"

const (
	PlaceholderTitle      = "Processing..."
	FeedPlaceholderPrefix = "Processing: "
	FailedTitlePrefix     = "Failed: "
	UntitledTitle         = "Untitled"
	NotAvailable          = "Not available"
)

// ContentItem is a single ingested URL and its enrichment state.
type ContentItem struct {
	ID            int64     `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	ScrapedBody   *string   `json:"scraped_body,omitempty"`
	Excerpt       *string   `json:"excerpt,omitempty"`
	AuthorCopy    *string   `json:"author_copy,omitempty"`
	ImageURL      *string   `json:"image_url,omitempty"`
	PublishDate   time.Time `json:"publish_date"`
	Context       *string   `json:"context,omitempty"`
	CampaignTag   *string   `json:"campaign_tag,omitempty"`
	SubmittedByID *int64    `json:"submitted_by_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsPlaceholder reports whether the title is still one of the pre-scrape placeholders.
func (c *ContentItem) IsPlaceholder() bool {
	if c.Title == PlaceholderTitle {
		return true
	}
	return len(c.Title) >= len(FeedPlaceholderPrefix) && c.Title[:len(FeedPlaceholderPrefix)] == FeedPlaceholderPrefix
}

// FetchedPage is the text form of a page returned by the page fetcher.
type FetchedPage struct {
	URL     string
	Title   string
	Text    string
	OGImage string
}

// FeedEntry is one candidate entry read from a feed document.
type FeedEntry struct {
	Title       string
	Link        string
	Description string
}

// FeedDocument is a parsed feed. Malformed is set when entries were recovered from a broken document.
type FeedDocument struct {
	URL          string
	Entries      []FeedEntry
	Malformed    bool
	MalformedErr error
	NotModified  bool
}
