package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"ai-promoter/domain/apperror"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_ThroughWrapping(t *testing.T) {
	base := apperror.New(apperror.PermissionError, "publish", "forbidden")
	wrapped := fmt.Errorf("posting: %w", base)

	assert.Equal(t, apperror.PermissionError, apperror.KindOf(wrapped))
	assert.True(t, apperror.Is(wrapped, apperror.PermissionError))
	assert.False(t, apperror.Is(wrapped, apperror.PlatformError))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, apperror.Unknown, apperror.KindOf(errors.New("boom")))
	assert.False(t, apperror.Is(nil, apperror.Unknown))
}

func TestError_Message(t *testing.T) {
	cause := errors.New("connection reset")
	err := apperror.Wrapf(apperror.FetchError, "scrape.fetch", cause, "GET %s", "https://x.com/a")

	assert.Equal(t, "scrape.fetch: fetch_error: GET https://x.com/a: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
}
