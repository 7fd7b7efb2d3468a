package dto

// SubmitContentRequest is the manual submission payload.
type SubmitContentRequest struct {
	URL         string  `json:"url" binding:"required"`
	Context     *string `json:"context"`
	CampaignTag *string `json:"utm_campaign"`
	AuthorCopy  *string `json:"copy"`
	Notify      *bool   `json:"notify"`
}

type UpdateCopyRequest struct {
	AuthorCopy  string  `json:"copy" binding:"required"`
	CampaignTag *string `json:"utm_campaign"`
}

type PublishRequest struct {
	ContentID int64  `json:"content_id" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

type PublishResponse struct {
	ContentID int64  `json:"content_id"`
	Platform  string `json:"platform"`
	PostID    string `json:"post_id"`
	PostURL   string `json:"post_url"`
	ShareID   int64  `json:"share_id"`
}

type ValidateRequest struct {
	Text string `json:"text"`
}

type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Length   int      `json:"length"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type PollResult struct {
	NewItems int `json:"new_items"`
}

type ProcessResult struct {
	Processed int `json:"processed"`
}
