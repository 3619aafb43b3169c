package application

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/pep299/daily-news-digest/internal/infrastructure"
	"github.com/pep299/daily-news-digest/internal/model"
	"github.com/pep299/daily-news-digest/internal/repository"
	"github.com/pep299/daily-news-digest/internal/repository/news"
	"github.com/pep299/daily-news-digest/internal/repository/notify"
	"github.com/pep299/daily-news-digest/internal/service"
)

// Application holds the wired digest pipeline for one configuration
type Application struct {
	Config  *infrastructure.Config
	Logger  zerolog.Logger
	Channel model.Channel
	Digest  *service.Digest
}

// New creates a new application instance with all dependencies
func New(cfg *infrastructure.Config, logger zerolog.Logger, out io.Writer) *Application {
	channel := infrastructure.SelectChannel(cfg)

	// Create repositories
	source := newSource(cfg)
	llm := repository.NewChatClient(cfg.DeepSeekAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	senders := map[model.Channel]notify.Sender{
		model.ChannelWeChat:   notify.NewWeChat(cfg.WeChat, logger),
		model.ChannelEmail:    notify.NewEmail(cfg.Email, logger),
		model.ChannelPushPlus: notify.NewPushPlus(cfg.PushPlus, logger),
	}

	// Create services
	fetcher := service.NewFetcher(source, cfg.GeneralRSSURL, cfg.DomainRSSURL, logger)
	summarizer := service.NewSummarizer(llm, logger)
	dispatcher := service.NewDispatcher(senders)
	digest := service.NewDigest(channel, fetcher, summarizer, dispatcher, logger, out)

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Channel: channel,
		Digest:  digest,
	}
}

func newSource(cfg *infrastructure.Config) news.Source {
	switch cfg.NewsSource {
	case infrastructure.NewsSourceTavily:
		return news.NewTavily(cfg.TavilyAPIKey, cfg.TavilyBaseURL)
	case infrastructure.NewsSourceRSS:
		return news.NewRSS()
	default:
		return news.NewMock()
	}
}
