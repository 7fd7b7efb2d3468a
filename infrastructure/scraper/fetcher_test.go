package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-promoter/domain/apperror"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const articleHTML = `<!DOCTYPE html><html><head>
<title>Fallback title</title>
<meta property="og:title" content="Shipping faster with queues">
<meta property="og:image" content="https://img.example/cover.png">
</head><body>
<nav>Home | About</nav>
<article>
<h1>Shipping faster with queues</h1>
<p>Queues decouple producers from consumers. This paragraph is long enough to look like real prose for the extractor to keep.</p>
<p>Retries with exponential backoff keep transient failures from becoming outages. Another sentence adds more substance here.</p>
<script>alert(1)</script>
</article>
</body></html>`

func newTestFetcher() *Fetcher {
	f := NewFetcher(5*time.Second, 100, "test-agent").(*Fetcher)
	f.limiter = rate.NewLimiter(rate.Inf, 1)
	return f
}

func TestFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	page, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Shipping faster with queues", page.Title)
	assert.Equal(t, "https://img.example/cover.png", page.OGImage)
	assert.Contains(t, page.Text, "Queues decouple producers")
	assert.NotContains(t, page.Text, "alert(1)")
}

func TestFetcher_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.FetchError))
}

func TestFetcher_EmptyPageIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>x</title></head><body>   </body></html>`))
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.FetchError))
}

func TestMetaContent_NameFallback(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><head><meta name="og:image" content=" https://img.example/a.png "></head></html>`))
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/a.png", metaContent(doc, "og:image"))
}
