package model

import "time"

const (
	ScrapeJobQueued         = "queued"
	ScrapeJobRunning        = "running"
	ScrapeJobRetryScheduled = "retry_scheduled"
	ScrapeJobSucceeded      = "succeeded"
	ScrapeJobFailed         = "failed"
)

// ScrapeJob is the retryable unit of work that enriches one ContentItem.
// Attempts counts finished attempts, so the attempt in flight has index Attempts.
type ScrapeJob struct {
	ID              int64     `json:"id"`
	ContentID       int64     `json:"content_id"`
	URL             string    `json:"url"`
	NotifyRecipient *string   `json:"notify_recipient,omitempty"`
	Status          string    `json:"status"`
	Attempts        int       `json:"attempts"`
	RunAt           time.Time `json:"run_at"`
	LastError       *string   `json:"last_error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ScrapeOutcome is the result of one attempt of a ScrapeJob.
type ScrapeOutcome struct {
	Status     string
	RetryDelay time.Duration
	Err        error
	Title      string
}
