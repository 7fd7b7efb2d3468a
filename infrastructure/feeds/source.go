package feeds

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"
)

const maxFeedBytes = 10 << 20

// validator is the conditional GET state of one feed URL.
type validator struct {
	etag         string
	lastModified string
}

// Source fetches RSS/Atom documents with conditional requests.
type Source struct {
	client     *http.Client
	parser     *gofeed.Parser
	validators *lru.Cache[string, validator]
	userAgent  string
}

func NewSource(timeout time.Duration, cacheSize int, userAgent string) (repository.IFeedSource, error) {
	validators, err := lru.New[string, validator](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Source{
		client:     &http.Client{Timeout: timeout},
		parser:     gofeed.NewParser(),
		validators: validators,
		userAgent:  userAgent,
	}, nil
}

func (s *Source) Fetch(ctx context.Context, feedURL string) (*model.FeedDocument, error) {
	const op = "feeds.fetch"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, apperror.Wrap(apperror.FetchError, op, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")
	if v, ok := s.validators.Get(feedURL); ok {
		if v.etag != "" {
			req.Header.Set("If-None-Match", v.etag)
		}
		if v.lastModified != "" {
			req.Header.Set("If-Modified-Since", v.lastModified)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperror.Wrapf(apperror.FetchError, op, err, "fetching %s", feedURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return &model.FeedDocument{URL: feedURL, NotModified: true}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperror.New(apperror.FetchError, op, fmt.Sprintf("HTTP error: %d fetching %s", resp.StatusCode, feedURL))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, apperror.Wrapf(apperror.FetchError, op, err, "reading %s", feedURL)
	}
	s.validators.Add(feedURL, validator{etag: resp.Header.Get("ETag"), lastModified: resp.Header.Get("Last-Modified")})

	doc := &model.FeedDocument{URL: feedURL}
	feed, err := s.parser.Parse(bytes.NewReader(body))
	if err != nil {
		logger.GetLogger().WithField("feed", feedURL).WithError(err).Warn("Feed is malformed, recovering entries")
		doc.Malformed = true
		doc.MalformedErr = err
		doc.Entries = recoverEntries(body)
		return doc, nil
	}
	for _, item := range feed.Items {
		doc.Entries = append(doc.Entries, model.FeedEntry{
			Title:       strings.TrimSpace(item.Title),
			Link:        strings.TrimSpace(item.Link),
			Description: item.Description,
		})
	}
	return doc, nil
}

// recoverEntries scrapes item/entry elements out of a document the feed parser rejected.
// The HTML parser treats <link> as a void element, so an RSS link ends up as the following text node.
func recoverEntries(body []byte) []model.FeedEntry {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	var entries []model.FeedEntry
	doc.Find("item, entry").Each(func(_ int, s *goquery.Selection) {
		link := ""
		s.Find("link").EachWithBreak(func(_ int, l *goquery.Selection) bool {
			if href, ok := l.Attr("href"); ok && strings.TrimSpace(href) != "" {
				link = strings.TrimSpace(href)
				return false
			}
			if n := l.Get(0).NextSibling; n != nil && n.Type == html.TextNode {
				link = strings.TrimSpace(n.Data)
			}
			return link == ""
		})
		if link == "" {
			if guid := strings.TrimSpace(s.Find("guid").First().Text()); strings.HasPrefix(guid, "http") {
				link = guid
			}
		}
		entries = append(entries, model.FeedEntry{
			Title:       strings.TrimSpace(s.Find("title").First().Text()),
			Link:        link,
			Description: strings.TrimSpace(s.Find("description, summary").First().Text()),
		})
	})
	return entries
}
