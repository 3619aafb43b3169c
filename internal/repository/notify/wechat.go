package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/pep299/daily-news-digest/internal/infrastructure"
)

const (
	templateColor  = "#173177"
	remarkColor    = "#666666"
	defaultKeyword = "全球热点 + AI动态"
	remarkPreview  = 200
)

// WeChat sends the summary as a WeChat test account template message.
type WeChat struct {
	cfg    infrastructure.WeChatConfig
	client *resty.Client
	logger zerolog.Logger
	now    func() time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ErrMsg      string `json:"errmsg"`
}

// TemplateField is one value slot of a template message
type TemplateField struct {
	Value string `json:"value"`
	Color string `json:"color"`
}

// TemplateMessage is the template send payload
type TemplateMessage struct {
	ToUser     string                   `json:"touser"`
	TemplateID string                   `json:"template_id"`
	URL        string                   `json:"url"`
	Data       map[string]TemplateField `json:"data"`
}

type sendResponse struct {
	ErrCode *int   `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// NewWeChat creates a WeChat template message sender
func NewWeChat(cfg infrastructure.WeChatConfig, logger zerolog.Logger) *WeChat {
	return &WeChat{
		cfg: cfg,
		client: resty.New().
			SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
			SetTimeout(10 * time.Second),
		logger: logger,
		now:    time.Now,
	}
}

func (w *WeChat) Send(ctx context.Context, summary string) Result {
	w.logger.Info().Msg("📱 通过微信测试号推送...")

	w.logger.Info().Msg("🔐 获取微信 access_token...")
	token, err := w.accessToken(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("❌ 获取 access_token 失败")
		return failure(fmt.Sprintf("获取 access_token 失败：%v", err))
	}
	w.logger.Info().Msg("✅ 成功获取 access_token")

	w.logger.Info().Msg("📤 发送模板消息...")
	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", token).
		SetHeader("Content-Type", "application/json").
		SetBody(w.BuildMessage(summary)).
		Post("/cgi-bin/message/template/send")
	if err != nil {
		w.logger.Error().Err(err).Msg("❌ 网络请求错误")
		return failure(fmt.Sprintf("网络请求错误：%v", err))
	}

	var result sendResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		w.logger.Error().Err(err).Int("status", resp.StatusCode()).Msg("❌ 发送微信消息时出错")
		return failure(fmt.Sprintf("解析微信响应失败：%v", err))
	}

	if result.ErrCode == nil || *result.ErrCode != 0 {
		msg := orUnknown(result.ErrMsg)
		w.logger.Error().Str("errmsg", msg).Msg("❌ 微信推送失败")
		return failure("微信推送失败：" + msg)
	}

	w.logger.Info().Msg("✅ 微信推送成功！")
	return success("微信推送成功，请查看微信消息")
}

// accessToken exchanges the app credentials for a short-lived access token
func (w *WeChat) accessToken(ctx context.Context) (string, error) {
	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"grant_type": "client_credential",
			"appid":      w.cfg.AppID,
			"secret":     w.cfg.AppSecret,
		}).
		Get("/cgi-bin/token")
	if err != nil {
		return "", fmt.Errorf("requesting token: %w", err)
	}

	var token tokenResponse
	if err := json.Unmarshal(resp.Body(), &token); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", errors.New(orUnknown(token.ErrMsg))
	}
	return token.AccessToken, nil
}

// BuildMessage fills the template slots from the summary
func (w *WeChat) BuildMessage(summary string) TemplateMessage {
	keyword1, keyword2 := ExtractKeywords(summary)
	if keyword1 == "" {
		keyword1 = defaultKeyword
	}
	if keyword2 == "" {
		keyword2 = dateStamp(w.now())
	}

	return TemplateMessage{
		ToUser:     w.cfg.OpenID,
		TemplateID: w.cfg.TemplateID,
		URL:        "",
		Data: map[string]TemplateField{
			"first":    {Value: "📰 今日新闻简报已生成", Color: templateColor},
			"keyword1": {Value: keyword1, Color: templateColor},
			"keyword2": {Value: keyword2, Color: templateColor},
			"remark": {
				Value: "\n点击查看完整新闻简报\n\n" + truncateRunes(summary, remarkPreview) + "...",
				Color: remarkColor,
			},
		},
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "未知错误"
	}
	return s
}
