package notify

import (
	"context"
	"time"
)

// Sender delivers a finished summary through one channel.
// Send never panics or returns an error; failures come back as a Result.
type Sender interface {
	Send(ctx context.Context, summary string) Result
}

// Result is the outcome of one delivery attempt
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func success(message string) Result {
	return Result{OK: true, Message: message}
}

func failure(message string) Result {
	return Result{OK: false, Message: message}
}

// dateStamp formats the subject/title date used by every channel
func dateStamp(t time.Time) string {
	return t.Format("2006-01-02")
}

// Title is the date-stamped headline shared by email and push channels
func Title(t time.Time) string {
	return "📰 每日新闻简报 - " + dateStamp(t)
}

// truncateRunes cuts s to at most n characters
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
