package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-promoter/domain/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Blog</title>
<item><title>First post</title><link>https://blog.example/first</link><description>one</description></item>
<item><title></title><link>https://blog.example/untitled</link></item>
</channel></rss>`

func TestSource_FetchValidFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(validRSS))
	}))
	defer srv.Close()

	src, err := NewSource(5*time.Second, 8, "test-agent")
	require.NoError(t, err)

	doc, err := src.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, doc.Malformed)
	require.Len(t, doc.Entries, 2)
	assert.Equal(t, "First post", doc.Entries[0].Title)
	assert.Equal(t, "https://blog.example/first", doc.Entries[0].Link)
	assert.Equal(t, "", doc.Entries[1].Title)
}

func TestSource_ConditionalGet(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(validRSS))
	}))
	defer srv.Close()

	src, err := NewSource(5*time.Second, 8, "test-agent")
	require.NoError(t, err)

	first, err := src.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, first.Entries, 2)

	second, err := src.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, second.NotModified)
	assert.Empty(t, second.Entries)
	assert.Equal(t, 2, calls)
}

func TestSource_HTTPErrorIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src, err := NewSource(5*time.Second, 8, "test-agent")
	require.NoError(t, err)

	_, err = src.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.FetchError))
}

func TestRecoverEntries(t *testing.T) {
	body := []byte(`junk before root <item><title>One</title><link>https://a.example/1</link></item>
<entry><title>Two</title><link rel="alternate" href="https://a.example/2"/><summary>s</summary></entry>
<item><title>Three</title><guid>https://a.example/3</guid></item>`)

	entries := recoverEntries(body)
	require.Len(t, entries, 3)
	assert.Equal(t, "One", entries[0].Title)
	assert.Equal(t, "https://a.example/1", entries[0].Link)
	assert.Equal(t, "https://a.example/2", entries[1].Link)
	assert.Equal(t, "s", entries[1].Description)
	assert.Equal(t, "https://a.example/3", entries[2].Link)
}
