package usecase

import (
	"context"
	"fmt"
	"time"

	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"
)

type IDigest interface {
	Run(ctx context.Context) (int, error)
}

type DigestConfig struct {
	Enabled   bool
	Channel   string
	ChunkSize int
	Lookback  time.Duration
	BaseURL   string
}

type Digest struct {
	content repository.IContent
	poster  repository.IDigestPoster
	marker  repository.IDigestMarker
	cfg     DigestConfig
	now     func() time.Time
}

func NewDigest(content repository.IContent, poster repository.IDigestPoster, marker repository.IDigestMarker, cfg DigestConfig) IDigest {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 15
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 24 * time.Hour
	}
	return &Digest{content: content, poster: poster, marker: marker, cfg: cfg, now: func() time.Time { return time.Now().UTC() }}
}

// Run posts every item created since the last run to the channel and returns how many were posted.
// The marker only advances when every chunk was delivered.
func (d *Digest) Run(ctx context.Context) (int, error) {
	lg := logger.GetLogger()
	if !d.cfg.Enabled || d.cfg.Channel == "" {
		lg.Debug("Slack digest disabled, skipping")
		return 0, nil
	}
	now := d.now()
	since, ok, err := d.marker.LastRun(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		since = now.Add(-d.cfg.Lookback)
	}
	items, err := d.content.ListCreatedSince(ctx, since)
	if err != nil {
		return 0, err
	}

	digest := make([]model.DigestItem, 0, len(items))
	for _, item := range items {
		digest = append(digest, d.digestItem(item))
	}
	chunks := chunkDigest(digest, d.cfg.ChunkSize)
	for i, chunk := range chunks {
		if err := d.poster.PostDigest(ctx, d.cfg.Channel, chunk, i+1, len(chunks)); err != nil {
			return 0, fmt.Errorf("posting digest part %d/%d: %w", i+1, len(chunks), err)
		}
	}
	if err := d.marker.SetLastRun(ctx, now); err != nil {
		lg.WithField("error", err).Warn("Failed to store digest marker")
	}
	lg.WithField("items", len(digest)).WithField("parts", len(chunks)).Info("Content digest posted")
	return len(digest), nil
}

func (d *Digest) digestItem(item *model.ContentItem) model.DigestItem {
	di := model.DigestItem{
		ID:         item.ID,
		Title:      item.Title,
		URL:        item.URL,
		PromoteURL: fmt.Sprintf("%s/?promote=%d", d.cfg.BaseURL, item.ID),
	}
	if item.Excerpt != nil {
		di.Description = *item.Excerpt
	}
	if item.ImageURL != nil {
		di.ImageURL = *item.ImageURL
	}
	return di
}

func chunkDigest(items []model.DigestItem, size int) [][]model.DigestItem {
	var chunks [][]model.DigestItem
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
