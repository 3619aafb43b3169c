package news

import (
	"context"

	"github.com/pep299/daily-news-digest/internal/model"
)

// Source produces headlines for a topic.
type Source interface {
	Fetch(ctx context.Context, topic model.Topic) ([]model.NewsItem, error)
}

// limit truncates items to the topic limit (non-positive means unlimited)
func limit(items []model.NewsItem, n int) []model.NewsItem {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
