package repository

import (
	"context"
	"time"

	"ai-promoter/domain/model"
)

// IFeedSource fetches and parses one feed document.
type IFeedSource interface {
	Fetch(ctx context.Context, feedURL string) (*model.FeedDocument, error)
}

// IPageFetcher returns the readable text of a page.
type IPageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*model.FetchedPage, error)
}

// IContentExtractor asks the LLM for structured metadata. raw is the model output as received.
type IContentExtractor interface {
	Extract(ctx context.Context, text string) (info *model.ExtractedContent, raw string, err error)
}

// INotifier delivers a direct message to a chat user.
type INotifier interface {
	Notify(ctx context.Context, recipient, message string) error
}

// IDigestPoster posts a chunk of the new-content digest to a channel.
type IDigestPoster interface {
	PostDigest(ctx context.Context, channel string, items []model.DigestItem, part, total int) error
}

// IOAuthProvider is the platform's OAuth capability.
type IOAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*model.TokenGrant, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenGrant, error)
	Revoke(ctx context.Context, accessToken string) error
	UserID(ctx context.Context, accessToken string) (string, error)
}

// IPlatformPoster sends a post to the platform on behalf of authorID.
type IPlatformPoster interface {
	Post(ctx context.Context, accessToken, authorID, text string) (*model.PostReceipt, error)
}

// IEventPublisher forwards pipeline events to an external bus.
type IEventPublisher interface {
	PublishEvent(ctx context.Context, evt model.PipelineEvent) error
}

// ILock is a best-effort distributed lock for scheduled jobs.
type ILock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// IDigestMarker remembers when the last digest ran.
type IDigestMarker interface {
	LastRun(ctx context.Context) (time.Time, bool, error)
	SetLastRun(ctx context.Context, at time.Time) error
}
