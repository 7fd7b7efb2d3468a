package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"
)

const (
	maxTitleLen       = 250
	truncatedTitleLen = 247
)

type IFeedPoller interface {
	Poll(ctx context.Context) (int, error)
}

type FeedPoller struct {
	feeds   []string
	source  repository.IFeedSource
	content repository.IContent
	jobs    repository.IScrapeJob
	events  IEventSink
}

func NewFeedPoller(feeds []string, source repository.IFeedSource, content repository.IContent, jobs repository.IScrapeJob, events IEventSink) IFeedPoller {
	return &FeedPoller{feeds: feeds, source: source, content: content, jobs: jobs, events: sinkOrNoop(events)}
}

// Poll fetches every configured feed once and returns how many new items were created. Failures of a
// single feed or entry are logged and skipped.
func (p *FeedPoller) Poll(ctx context.Context) (int, error) {
	created := 0
	for _, feedURL := range uniqueFeeds(p.feeds) {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		created += p.pollFeed(ctx, feedURL)
	}
	logger.GetLogger().WithField("new_items", created).Info("Feed poll finished")
	return created, nil
}

func (p *FeedPoller) pollFeed(ctx context.Context, feedURL string) int {
	lg := logger.GetLogger().WithField("feed_url", feedURL)
	doc, err := p.source.Fetch(ctx, feedURL)
	if err != nil {
		lg.WithField("error", err).Error("Failed to fetch feed")
		return 0
	}
	if doc.NotModified {
		lg.Debug("Feed not modified")
		return 0
	}
	if doc.Malformed {
		lg.WithField("error", doc.MalformedErr).WithField("entries", len(doc.Entries)).Warn("Feed is malformed, processing recovered entries")
	}

	created := 0
	for _, entry := range doc.Entries {
		if p.submitEntry(ctx, feedURL, entry) {
			created++
		}
	}
	return created
}

func (p *FeedPoller) submitEntry(ctx context.Context, feedURL string, entry model.FeedEntry) bool {
	lg := logger.GetLogger().WithField("feed_url", feedURL)
	link := strings.TrimSpace(entry.Link)
	if link == "" {
		lg.WithField("title", entry.Title).Warn("Feed entry has no link, skipping")
		return false
	}
	exists, err := p.content.ExistsByURL(ctx, link)
	if err != nil {
		lg.WithField("url", link).WithField("error", err).Error("Failed to check existing content")
		return false
	}
	if exists {
		return false
	}

	title := strings.TrimSpace(entry.Title)
	if title == "" {
		title = link
	}
	item := &model.ContentItem{
		URL:   link,
		Title: model.FeedPlaceholderPrefix + TruncateTitle(title),
	}
	job, err := createAndEnqueue(p.content, p.jobs, nil).Run(ctx, item)
	if apperror.Is(err, apperror.Duplicate) {
		// another submitter won the insert race
		lg.WithField("url", link).Debug("Feed entry already stored, skipping")
		return false
	}
	if err != nil {
		lg.WithField("url", link).WithField("step", FailedStep(err)).WithField("error", err).Error("Failed to submit feed entry")
		return false
	}
	lg.WithField("content_id", job.ContentID).WithField("job_id", job.ID).Info("Queued feed entry for scraping")
	p.events.Emit(ctx, model.PipelineEvent{Type: model.EventContentCreated, ContentID: item.ID, Title: item.Title, URL: item.URL})
	return true
}

// createAndEnqueue persists a new item and queues its scrape job.
func createAndEnqueue(content repository.IContent, jobs repository.IScrapeJob, recipient *string) Step[*model.ContentItem, *model.ScrapeJob] {
	create := Step[*model.ContentItem, *model.ContentItem]{
		Name: "create_content",
		Run: func(ctx context.Context, item *model.ContentItem) (*model.ContentItem, error) {
			return item, content.Create(ctx, item)
		},
	}
	enqueue := Step[*model.ContentItem, *model.ScrapeJob]{
		Name: "enqueue_scrape",
		Run: func(ctx context.Context, item *model.ContentItem) (*model.ScrapeJob, error) {
			job := &model.ScrapeJob{ContentID: item.ID, URL: item.URL, NotifyRecipient: recipient}
			return job, jobs.Enqueue(ctx, job)
		},
	}
	return Then(create, enqueue)
}

// TruncateTitle keeps titles within 250 characters, cutting longer ones to 247 plus "...".
func TruncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= maxTitleLen {
		return title
	}
	runes := []rune(title)
	return string(runes[:truncatedTitleLen]) + "..."
}

func uniqueFeeds(feeds []string) []string {
	seen := make(map[string]struct{}, len(feeds))
	out := make([]string, 0, len(feeds))
	for _, f := range feeds {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
