package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePublishDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"March 5, 2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"Mar 5, 2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-03-05T08:30:00Z", time.Date(2024, 3, 5, 8, 30, 0, 0, time.UTC)},
		{"05 Mar 2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"", now},
		{"sometime last spring", now},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ParsePublishDate(tt.in, now)), "got %v", ParsePublishDate(tt.in, now))
		})
	}
}

func TestParsePublishDate_LenientFallback(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	got := ParsePublishDate("2024/03/05", now)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 5, got.Day())
}
