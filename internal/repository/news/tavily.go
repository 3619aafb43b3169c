package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pep299/daily-news-digest/internal/model"
)

// Tavily searches headlines through the Tavily search API.
type Tavily struct {
	apiKey string
	client *resty.Client
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	Topic      string `json:"topic"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// NewTavily creates a Tavily source
func NewTavily(apiKey, baseURL string) *Tavily {
	return &Tavily{
		apiKey: apiKey,
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(15 * time.Second).
			SetHeader("Content-Type", "application/json"),
	}
}

func (t *Tavily) Fetch(ctx context.Context, topic model.Topic) ([]model.NewsItem, error) {
	if t.apiKey == "" {
		return nil, errors.New("TAVILY_API_KEY is not set")
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(tavilyRequest{
			APIKey:     t.apiKey,
			Query:      topic.Query,
			Topic:      "news",
			MaxResults: topic.Limit,
		}).
		Post("/search")
	if err != nil {
		return nil, fmt.Errorf("sending search request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var result tavilyResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	items := make([]model.NewsItem, 0, len(result.Results))
	for _, r := range result.Results {
		items = append(items, model.NewsItem{
			Title:   strings.TrimSpace(r.Title),
			URL:     r.URL,
			Content: strings.TrimSpace(r.Content),
		})
	}
	return limit(items, topic.Limit), nil
}
