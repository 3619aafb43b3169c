package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/pep299/daily-news-digest/internal/infrastructure"
)

const logBodyRunes = 500

// PushPlus sends the summary through the PushPlus gateway.
type PushPlus struct {
	cfg    infrastructure.PushPlusConfig
	client *resty.Client
	logger zerolog.Logger
	now    func() time.Time
}

type pushPlusRequest struct {
	Token   string `json:"token"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Topic   string `json:"topic"`
}

type pushPlusResponse struct {
	Code *int   `json:"code"`
	Msg  string `json:"msg"`
}

// NewPushPlus creates a PushPlus sender
func NewPushPlus(cfg infrastructure.PushPlusConfig, logger zerolog.Logger) *PushPlus {
	return &PushPlus{
		cfg:    cfg,
		client: resty.New().SetTimeout(30 * time.Second),
		logger: logger,
		now:    time.Now,
	}
}

func (p *PushPlus) Send(ctx context.Context, summary string) Result {
	p.logger.Info().Msg("📱 通过Pushplus推送到微信...")

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(pushPlusRequest{
			Token:   p.cfg.Token,
			Title:   Title(p.now()),
			Content: summary,
			Topic:   "",
		}).
		Post(p.cfg.URL)
	if err != nil {
		p.logger.Error().Err(err).Msg("❌ 发送微信消息时出错")
		return failure(fmt.Sprintf("发送微信消息时出错：%v", err))
	}

	p.logger.Info().Msgf("📨 响应状态码：%d", resp.StatusCode())
	p.logger.Info().Msgf("📨 响应内容：%s", truncateRunes(resp.String(), logBodyRunes))

	if resp.StatusCode() != http.StatusOK {
		p.logger.Error().Int("status", resp.StatusCode()).Msg("❌ 请求失败")
		return failure(fmt.Sprintf("请求失败，状态码：%d", resp.StatusCode()))
	}

	var result pushPlusResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		p.logger.Error().Msg("❌ 响应不是有效的JSON格式")
		return failure("响应不是有效的JSON格式")
	}

	if result.Code == nil || *result.Code != http.StatusOK {
		msg := orUnknown(result.Msg)
		p.logger.Error().Str("msg", msg).Msg("❌ 微信推送失败")
		return failure("微信推送失败：" + msg)
	}

	p.logger.Info().Msg("✅ 微信推送成功！")
	return success("Pushplus 推送成功，请查看微信消息")
}
