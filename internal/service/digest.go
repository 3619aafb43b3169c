package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pep299/daily-news-digest/internal/model"
	"github.com/pep299/daily-news-digest/internal/repository/notify"
)

// ErrNoChannel is returned when no delivery channel is fully configured.
var ErrNoChannel = errors.New("no delivery channel configured")

var rule = strings.Repeat("-", 50)

// Report describes one finished run.
type Report struct {
	Channel      model.Channel `json:"channel"`
	GeneralCount int           `json:"general_count"`
	DomainCount  int           `json:"domain_count"`
	Summary      string        `json:"summary"`
	Delivery     notify.Result `json:"delivery"`
}

// Digest runs the fetch, summarize, deliver pipeline once per call.
type Digest struct {
	channel    model.Channel
	fetcher    *Fetcher
	summarizer *Summarizer
	dispatcher *Dispatcher
	logger     zerolog.Logger
	out        io.Writer
}

func NewDigest(
	channel model.Channel,
	fetcher *Fetcher,
	summarizer *Summarizer,
	dispatcher *Dispatcher,
	logger zerolog.Logger,
	out io.Writer,
) *Digest {
	if out == nil {
		out = io.Discard
	}
	return &Digest{
		channel:    channel,
		fetcher:    fetcher,
		summarizer: summarizer,
		dispatcher: dispatcher,
		logger:     logger,
		out:        out,
	}
}

// Run executes one digest. A failed delivery is reported in the returned
// Report, not as an error; the only error is ErrNoChannel (or a canceled context).
func (d *Digest) Run(ctx context.Context) (*Report, error) {
	if d.channel == model.ChannelNone || d.channel == "" {
		d.logger.Error().Msg("❌ 程序终止：请先配置推送方式")
		return nil, ErrNoChannel
	}
	d.logger.Info().Str("channel", string(d.channel)).Msgf("✅ 检测到%s配置", d.channel.DisplayName())

	general := d.fetcher.FetchGeneral(ctx)
	domain := d.fetcher.FetchDomain(ctx)

	summary := d.summarizer.Summarize(ctx, general, domain)

	fmt.Fprintln(d.out, "\n📄 新闻简报内容：")
	fmt.Fprintln(d.out, rule)
	fmt.Fprintln(d.out, summary)
	fmt.Fprintln(d.out, rule)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("digest canceled before delivery: %w", err)
	}

	result := d.dispatcher.Dispatch(ctx, d.channel, summary)
	if result.OK {
		d.logger.Info().Msg("🎉 程序执行完成！")
		d.logger.Info().Msg("📱 " + deliveryHint(d.channel))
	} else {
		d.logger.Warn().Str("reason", result.Message).Msg("⚠️  消息推送失败，但新闻内容已生成。请检查配置或网络连接。")
	}

	return &Report{
		Channel:      d.channel,
		GeneralCount: len(general),
		DomainCount:  len(domain),
		Summary:      summary,
		Delivery:     result,
	}, nil
}

func deliveryHint(channel model.Channel) string {
	if channel == model.ChannelEmail {
		return "请查看邮件，微信会收到提醒"
	}
	return "请查看微信消息"
}
