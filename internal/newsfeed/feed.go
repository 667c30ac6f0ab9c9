// Package newsfeed serves the price board news list from an RSS or Atom feed
// instead of the backend news endpoints.
package newsfeed

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/newthinker/finboard/internal/core"
	"go.uber.org/zap"
)

// Source reads a feed and numbers its entries from 1 in feed order.
// A fetched feed is reused for ttl so list ids stay valid for detail lookups.
type Source struct {
	url    string
	ttl    time.Duration
	parser *gofeed.Parser
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	items     []core.NewsItem
	fetchedAt time.Time
}

// New creates a feed source. A zero ttl refetches on every call.
func New(url string, ttl time.Duration, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		url:    url,
		ttl:    ttl,
		parser: gofeed.NewParser(),
		logger: logger,
		now:    time.Now,
	}
}

// News returns every feed entry.
func (s *Source) News(ctx context.Context) ([]core.NewsItem, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.NewsItem, len(items))
	copy(out, items)
	return out, nil
}

// NewsByID returns the entry numbered id.
func (s *Source) NewsByID(ctx context.Context, id int64) (*core.NewsItem, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if id < 1 || id > int64(len(items)) {
		return nil, core.WrapError(core.ErrNotFound, fmt.Errorf("news %d", id))
	}
	item := items[id-1]
	return &item, nil
}

func (s *Source) load(ctx context.Context) ([]core.NewsItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.items != nil && s.ttl > 0 && s.now().Sub(s.fetchedAt) < s.ttl {
		return s.items, nil
	}

	feed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		s.logger.Warn("feed fetch failed", zap.String("url", s.url), zap.Error(err))
		return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("parse feed %s: %w", s.url, err))
	}

	items := make([]core.NewsItem, 0, len(feed.Items))
	for i, entry := range feed.Items {
		id := int64(i + 1)
		items = append(items, core.NewsItem{
			ID:        &id,
			Title:     strings.TrimSpace(entry.Title),
			Published: published(entry),
			Content:   content(entry),
			Link:      entry.Link,
		})
	}

	s.items = items
	s.fetchedAt = s.now()
	s.logger.Debug("feed loaded", zap.String("url", s.url), zap.Int("items", len(items)))
	return items, nil
}

func published(entry *gofeed.Item) string {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC().Format(time.RFC3339)
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.UTC().Format(time.RFC3339)
	}
	return entry.Published
}

func content(entry *gofeed.Item) string {
	if entry.Content != "" {
		return cleanHTML(entry.Content)
	}
	return cleanHTML(entry.Description)
}

// cleanHTML strips markup from feed bodies.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
