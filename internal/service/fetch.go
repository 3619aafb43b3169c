package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pep299/daily-news-digest/internal/model"
	"github.com/pep299/daily-news-digest/internal/repository/news"
)

// Fetcher collects headlines for the two digest topics.
type Fetcher struct {
	source  news.Source
	general model.Topic
	domain  model.Topic
	logger  zerolog.Logger
}

// NewFetcher builds a fetcher over source. Feed URLs are only read by the RSS source.
func NewFetcher(source news.Source, generalFeedURL, domainFeedURL string, logger zerolog.Logger) *Fetcher {
	general := model.Topics[model.TopicGeneral]
	general.FeedURL = generalFeedURL
	domain := model.Topics[model.TopicDomain]
	domain.FeedURL = domainFeedURL

	return &Fetcher{
		source:  source,
		general: general,
		domain:  domain,
		logger:  logger,
	}
}

func (f *Fetcher) FetchGeneral(ctx context.Context) []model.NewsItem {
	f.logger.Info().Msg("📰 步骤1：搜索全球热点新闻...")
	return f.fetch(ctx, f.general)
}

func (f *Fetcher) FetchDomain(ctx context.Context) []model.NewsItem {
	f.logger.Info().Msg("🤖 步骤2：搜索AI行业动态...")
	return f.fetch(ctx, f.domain)
}

// fetch never fails; source errors degrade to an empty list
func (f *Fetcher) fetch(ctx context.Context, topic model.Topic) []model.NewsItem {
	items, err := f.source.Fetch(ctx, topic)
	if err != nil {
		f.logger.Error().Err(err).Str("topic", topic.Key).Msgf("❌ 搜索%s时出错", topic.Name)
		return []model.NewsItem{}
	}
	if items == nil {
		items = []model.NewsItem{}
	}

	f.logger.Info().Msgf("✅ 获取到 %d 条%s", len(items), topic.Name)
	return items
}
