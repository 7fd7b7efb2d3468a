package repository

import (
	"context"
	"time"

	"ai-promoter/domain/model"
)

// IContent persists ContentItem rows. Create returns an apperror.Duplicate error when the url already exists.
type IContent interface {
	Create(ctx context.Context, item *model.ContentItem) error
	GetByID(ctx context.Context, id int64) (*model.ContentItem, error)
	ExistsByURL(ctx context.Context, url string) (bool, error)
	// SaveScrapeResult writes the merged scrape fields of item in a single transaction.
	SaveScrapeResult(ctx context.Context, item *model.ContentItem) error
	UpdateTitle(ctx context.Context, id int64, title string) error
	UpdateCopy(ctx context.Context, id int64, copy string, campaignTag *string) error
	ListCreatedSince(ctx context.Context, since time.Time) ([]*model.ContentItem, error)
	Delete(ctx context.Context, id int64) error
}

// IShare persists Share rows and their aggregates.
type IShare interface {
	Create(ctx context.Context, share *model.Share) error
	CountByContent(ctx context.Context, contentID int64) (int64, error)
	PlatformCounts(ctx context.Context, contentID int64) ([]model.PlatformShareCount, error)
}

// IScrapeJob is the persistent scrape queue.
type IScrapeJob interface {
	Enqueue(ctx context.Context, job *model.ScrapeJob) error
	// ClaimDue atomically moves up to limit due jobs to running and returns them.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*model.ScrapeJob, error)
	// Claim moves one job to running if it is due. It returns apperror.NotFound otherwise.
	Claim(ctx context.Context, id int64, now time.Time) (*model.ScrapeJob, error)
	ScheduleRetry(ctx context.Context, id int64, attempts int, runAt time.Time, errMsg string) error
	MarkSucceeded(ctx context.Context, id int64, attempts int) error
	MarkFailed(ctx context.Context, id int64, attempts int, errMsg string) error
}

// IExtractionArchive keeps raw LLM responses for later inspection.
type IExtractionArchive interface {
	Save(ctx context.Context, contentID int64, url, raw string) error
}
