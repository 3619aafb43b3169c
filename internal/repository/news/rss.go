package news

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"

	"github.com/pep299/daily-news-digest/internal/model"
)

const maxExcerptRunes = 200

// RSS reads headlines from the feed configured on the topic.
type RSS struct {
	httpClient *http.Client
	userAgent  string
	policy     *bluemonday.Policy
}

// NewRSS creates a new RSS source
func NewRSS() *RSS {
	return &RSS{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent: "daily-news-digest/1.0",
		policy:    bluemonday.StrictPolicy(),
	}
}

func (r *RSS) Fetch(ctx context.Context, topic model.Topic) ([]model.NewsItem, error) {
	if topic.FeedURL == "" {
		return nil, errors.New("no feed URL configured for topic " + topic.Key)
	}

	fp := gofeed.NewParser()
	fp.Client = r.httpClient
	fp.UserAgent = r.userAgent

	feed, err := fp.ParseURLWithContext(topic.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", topic.FeedURL, err)
	}

	items := make([]model.NewsItem, 0, len(feed.Items))
	for _, item := range uniqueItems(feed.Items) {
		body := item.Description
		if body == "" {
			body = item.Content
		}
		items = append(items, model.NewsItem{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Content: r.excerpt(body),
		})
	}
	return limit(items, topic.Limit), nil
}

// uniqueItems removes duplicate items based on GUID or link
func uniqueItems(items []*gofeed.Item) []*gofeed.Item {
	keyed := lo.Filter(items, func(item *gofeed.Item, _ int) bool {
		return item != nil && itemKey(item) != ""
	})
	return lo.UniqBy(keyed, itemKey)
}

func itemKey(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	return item.Link
}

// excerpt strips markup and cuts the text to a short plain excerpt
func (r *RSS) excerpt(s string) string {
	text := html.UnescapeString(r.policy.Sanitize(s))
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > maxExcerptRunes {
		return string(runes[:maxExcerptRunes]) + "…"
	}
	return text
}
