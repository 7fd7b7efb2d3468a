package usecase

import (
	"strings"
	"time"

	"ai-promoter/domain/model"
)

// usable reports whether an extracted value should replace the stored one.
func usable(v *string) bool {
	if v == nil {
		return false
	}
	s := strings.TrimSpace(*v)
	return s != "" && !strings.EqualFold(s, model.NotAvailable)
}

// MergeExtraction returns a copy of item updated from one scrape. Extracted values that are null, empty or
// "Not available" keep the stored value. The fetched text always replaces ScrapedBody. A nil info only
// updates ScrapedBody.
func MergeExtraction(item *model.ContentItem, page *model.FetchedPage, info *model.ExtractedContent, now time.Time) *model.ContentItem {
	merged := *item
	body := page.Text
	merged.ScrapedBody = &body
	merged.UpdatedAt = now
	if info == nil {
		return &merged
	}

	switch {
	case usable(info.Title):
		merged.Title = strings.TrimSpace(*info.Title)
	case merged.Title == "" || merged.IsPlaceholder():
		merged.Title = model.UntitledTitle
		if t := strings.TrimSpace(page.Title); t != "" {
			merged.Title = t
		}
	}
	merged.Title = TruncateTitle(merged.Title)

	if usable(info.Description) {
		d := strings.TrimSpace(*info.Description)
		merged.Excerpt = &d
	} else if merged.Excerpt == nil {
		empty := ""
		merged.Excerpt = &empty
	}

	image := info.ImageURL.First()
	if page.OGImage != "" {
		image = page.OGImage
	}
	if usable(&image) {
		merged.ImageURL = &image
	}

	if usable(info.PublishDate) {
		merged.PublishDate = ParsePublishDate(*info.PublishDate, now)
	} else if merged.PublishDate.IsZero() {
		merged.PublishDate = now
	}
	return &merged
}
