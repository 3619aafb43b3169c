package mocks

import (
	"context"
	"fmt"

	"github.com/pep299/daily-news-digest/internal/model"
)

// Mock news source keyed by topic
type MockNewsSource struct {
	Items  map[string][]model.NewsItem
	Errors map[string]error
	Topics []model.Topic
}

func (m *MockNewsSource) Fetch(ctx context.Context, topic model.Topic) ([]model.NewsItem, error) {
	m.Topics = append(m.Topics, topic)

	if err := m.Errors[topic.Key]; err != nil {
		return nil, err
	}
	items, ok := m.Items[topic.Key]
	if !ok {
		return nil, fmt.Errorf("no items for topic %s", topic.Key)
	}
	return items, nil
}
