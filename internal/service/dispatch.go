package service

import (
	"context"

	"github.com/pep299/daily-news-digest/internal/model"
	"github.com/pep299/daily-news-digest/internal/repository/notify"
)

// Dispatcher routes a summary to the sender registered for a channel.
type Dispatcher struct {
	senders map[model.Channel]notify.Sender
}

func NewDispatcher(senders map[model.Channel]notify.Sender) *Dispatcher {
	if senders == nil {
		senders = map[model.Channel]notify.Sender{}
	}
	return &Dispatcher{senders: senders}
}

func (d *Dispatcher) Dispatch(ctx context.Context, channel model.Channel, summary string) notify.Result {
	sender, ok := d.senders[channel]
	if !ok {
		return notify.Result{OK: false, Message: "未注册的推送方式：" + string(channel)}
	}
	return sender.Send(ctx, summary)
}
