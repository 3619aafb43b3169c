package infrastructure

import (
	"strings"

	"github.com/pep299/daily-news-digest/internal/model"
)

// SelectChannel picks the delivery channel in fixed priority order:
// WeChat template message, then email, then PushPlus.
func SelectChannel(cfg *Config) model.Channel {
	if cfg == nil {
		return model.ChannelNone
	}
	switch {
	case cfg.WeChat.Complete():
		return model.ChannelWeChat
	case cfg.Email.Complete():
		return model.ChannelEmail
	case cfg.PushPlus.Complete():
		return model.ChannelPushPlus
	default:
		return model.ChannelNone
	}
}

// SetupGuide returns the instructions printed when no channel is configured.
func SetupGuide() string {
	var b strings.Builder
	b.WriteString("❌ 错误：未配置任何推送方式！\n")
	b.WriteString("\n请选择以下任一方式配置：\n")
	b.WriteString("\n方式1：微信测试号（推荐，直接推送到微信）\n")
	b.WriteString("在 .env 文件中添加：\n")
	b.WriteString("  WECHAT_APP_ID=wx1234567890abcdef\n")
	b.WriteString("  WECHAT_APP_SECRET=your-app-secret\n")
	b.WriteString("  WECHAT_OPENID=o7Vb-jgGGds123456789\n")
	b.WriteString("  WECHAT_TEMPLATE_ID=your-template-id\n")
	b.WriteString("\n方式2：邮件推送\n")
	b.WriteString("在 .env 文件中添加：\n")
	b.WriteString("  EMAIL_SMTP_SERVER=smtp.qq.com\n")
	b.WriteString("  EMAIL_USERNAME=你的邮箱@qq.com\n")
	b.WriteString("  EMAIL_PASSWORD=你的邮箱授权码\n")
	b.WriteString("  EMAIL_TO=接收推送的邮箱\n")
	b.WriteString("\n方式3：Pushplus\n")
	b.WriteString("  PUSHPLUS_TOKEN=your-pushplus-token\n")
	return b.String()
}
