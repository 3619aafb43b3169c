package model

// Channel is the delivery mechanism chosen for a run.
type Channel string

const (
	ChannelNone     Channel = "none"
	ChannelWeChat   Channel = "wechat"
	ChannelEmail    Channel = "email"
	ChannelPushPlus Channel = "pushplus"
)

// DisplayName returns the human readable name used in console output.
func (c Channel) DisplayName() string {
	switch c {
	case ChannelWeChat:
		return "微信测试号"
	case ChannelEmail:
		return "邮件推送"
	case ChannelPushPlus:
		return "Pushplus"
	default:
		return "未配置"
	}
}
