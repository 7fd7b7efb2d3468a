package usecase

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var publishDateLayouts = []string{
	"January 2, 2006",
	"2006-01-02",
	"Jan 2, 2006",
	time.RFC3339,
	"02 Jan 2006",
}

// ParsePublishDate tries the known layouts in order, then a lenient parse. It falls back to now.
func ParsePublishDate(value string, now time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return now
	}
	for _, layout := range publishDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := dateparse.ParseAny(value); err == nil {
		return t
	}
	return now
}
