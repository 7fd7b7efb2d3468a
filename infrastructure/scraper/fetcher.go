package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/jaytaylor/html2text"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/time/rate"
)

const maxPageBytes = 5 << 20

var blankLines = regexp.MustCompile(`\n{3,}`)

// Fetcher downloads a page and reduces it to readable text.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	sanitizer *bluemonday.Policy
	userAgent string
}

func NewFetcher(timeout time.Duration, requestsPerSecond float64, userAgent string) repository.IPageFetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		sanitizer: bluemonday.UGCPolicy(),
		userAgent: userAgent,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*model.FetchedPage, error) {
	const op = "scraper.fetch"
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, apperror.Wrap(apperror.FetchError, op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, apperror.Wrap(apperror.FetchError, op, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperror.Wrapf(apperror.FetchError, op, err, "fetching %s", pageURL)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperror.New(apperror.FetchError, op, fmt.Sprintf("HTTP error: %d fetching %s", resp.StatusCode, pageURL))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, apperror.Wrapf(apperror.FetchError, op, err, "reading %s", pageURL)
	}

	page := &model.FetchedPage{URL: pageURL}
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
		page.OGImage = metaContent(doc, "og:image")
		page.Title = metaContent(doc, "og:title")
		if page.Title == "" {
			page.Title = strings.TrimSpace(doc.Find("title").First().Text())
		}
		page.Text = f.readableText(body, doc)
	}
	if page.Text == "" {
		return nil, apperror.New(apperror.FetchError, op, fmt.Sprintf("no readable text at %s", pageURL))
	}
	return page, nil
}

// readableText prefers the readability article and falls back to the whole body text.
func (f *Fetcher) readableText(body []byte, doc *goquery.Document) string {
	article, err := readability.FromReader(bytes.NewReader(body), nil)
	if err == nil && strings.TrimSpace(article.Content) != "" {
		text, err := htmlToText(f.sanitizer.Sanitize(article.Content))
		if err == nil && text != "" {
			return text
		}
		logger.GetLogger().WithError(err).Debug("html2text failed on article content")
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Find("body").Text()), " ")
}

func htmlToText(htmlContent string) (string, error) {
	plain, err := html2text.FromString(htmlContent, html2text.Options{PrettyTables: false})
	if err != nil {
		return "", err
	}
	plain = strings.TrimSpace(plain)
	return blankLines.ReplaceAllString(plain, "\n\n"), nil
}

func metaContent(doc *goquery.Document, property string) string {
	sel := doc.Find(fmt.Sprintf(`meta[property="%s"], meta[name="%s"]`, property, property)).First()
	v, _ := sel.Attr("content")
	return strings.TrimSpace(v)
}
