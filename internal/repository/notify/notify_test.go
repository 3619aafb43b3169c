package notify

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pep299/daily-news-digest/internal/infrastructure"
)

var fixedNow = func() time.Time { return time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC) }

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		summary  string
		keyword1 string
		keyword2 string
	}{
		{
			name:     "plain lines",
			summary:  "first line\nsecond line\nthird line",
			keyword1: "first line",
			keyword2: "second line",
		},
		{
			name:     "skips blanks rules and bullets",
			summary:  "\n   \n---\n**bold**\n* item\nheadline\n\n### 今日关注焦点\nrest",
			keyword1: "headline",
			keyword2: "今日关注焦点",
		},
		{
			name:     "header loses marker",
			summary:  "title\n### Section ### Two",
			keyword1: "title",
			keyword2: "Section  Two",
		},
		{
			name:     "bare header marker is skipped",
			summary:  "title\n###\nnext",
			keyword1: "title",
			keyword2: "next",
		},
		{
			name:     "single line",
			summary:  "only",
			keyword1: "only",
			keyword2: "",
		},
		{
			name:     "empty",
			summary:  "",
			keyword1: "",
			keyword2: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k1, k2 := ExtractKeywords(tt.summary)
			assert.Equal(t, tt.keyword1, k1)
			assert.Equal(t, tt.keyword2, k2)
		})
	}
}

func TestExtractKeywordsBoundsLength(t *testing.T) {
	inputs := []string{
		strings.Repeat("长", 100) + "\n" + strings.Repeat("x", 100),
		"### " + strings.Repeat("标题", 50) + "\n### " + strings.Repeat("标题", 50),
		strings.Repeat("📰", 40) + "\n" + strings.Repeat("🤖", 40),
		strings.Repeat("a", MaxKeywordRunes) + "\n" + strings.Repeat("b", MaxKeywordRunes+1),
	}

	for _, input := range inputs {
		k1, k2 := ExtractKeywords(input)
		assert.LessOrEqual(t, utf8.RuneCountInString(k1), MaxKeywordRunes)
		assert.LessOrEqual(t, utf8.RuneCountInString(k2), MaxKeywordRunes)
		assert.True(t, utf8.ValidString(k1))
		assert.True(t, utf8.ValidString(k2))
	}
}

func newTestWeChat(baseURL string, logger zerolog.Logger) *WeChat {
	w := NewWeChat(infrastructure.WeChatConfig{
		AppID:      "wx-app",
		AppSecret:  "wx-secret",
		OpenID:     "open-id",
		TemplateID: "tpl-id",
		BaseURL:    baseURL,
	}, logger)
	w.now = fixedNow
	return w
}

func TestWeChatSend(t *testing.T) {
	var payload TemplateMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/cgi-bin/token":
			assert.Equal(t, "GET", r.Method)
			assert.Equal(t, "client_credential", r.URL.Query().Get("grant_type"))
			assert.Equal(t, "wx-app", r.URL.Query().Get("appid"))
			assert.Equal(t, "wx-secret", r.URL.Query().Get("secret"))
			fmt.Fprint(w, `{"access_token": "tok-123", "expires_in": 7200}`)
		case "/cgi-bin/message/template/send":
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "tok-123", r.URL.Query().Get("access_token"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			fmt.Fprint(w, `{"errcode": 0, "errmsg": "ok"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	summary := strings.Repeat("今天的新闻非常多而且非常长", 5) + "\n### 今日关注焦点与趋势分析报告摘要\n" + strings.Repeat("正文", 200)
	result := newTestWeChat(server.URL, zerolog.Nop()).Send(context.Background(), summary)

	require.True(t, result.OK, result.Message)
	assert.Equal(t, "open-id", payload.ToUser)
	assert.Equal(t, "tpl-id", payload.TemplateID)
	assert.Equal(t, "📰 今日新闻简报已生成", payload.Data["first"].Value)
	assert.Equal(t, "#173177", payload.Data["keyword1"].Color)
	assert.Equal(t, MaxKeywordRunes, utf8.RuneCountInString(payload.Data["keyword1"].Value))
	assert.Equal(t, "今日关注焦点与趋势分析报告摘要", payload.Data["keyword2"].Value)
	assert.True(t, strings.HasPrefix(payload.Data["remark"].Value, "\n点击查看完整新闻简报\n\n"))
	assert.True(t, strings.HasSuffix(payload.Data["remark"].Value, "..."))
	assert.Equal(t, "#666666", payload.Data["remark"].Color)
}

func TestWeChatBuildMessageDefaults(t *testing.T) {
	msg := newTestWeChat("http://unused", zerolog.Nop()).BuildMessage("")

	assert.Equal(t, "全球热点 + AI动态", msg.Data["keyword1"].Value)
	assert.Equal(t, "2025-03-14", msg.Data["keyword2"].Value)
	assert.Equal(t, "\n点击查看完整新闻简报\n\n...", msg.Data["remark"].Value)
}

func TestWeChatBuildMessageRemarkPreview(t *testing.T) {
	summary := strings.Repeat("字", 500)
	msg := newTestWeChat("http://unused", zerolog.Nop()).BuildMessage(summary)

	remark := strings.TrimPrefix(msg.Data["remark"].Value, "\n点击查看完整新闻简报\n\n")
	assert.Equal(t, strings.Repeat("字", 200)+"...", remark)
}

func TestWeChatSendFailures(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		send     string
		contains string
	}{
		{name: "token rejected", token: `{"errcode": 40013, "errmsg": "invalid appid"}`, contains: "invalid appid"},
		{name: "token without message", token: `{}`, contains: "未知错误"},
		{name: "send rejected", token: `{"access_token": "t"}`, send: `{"errcode": 40037, "errmsg": "invalid template_id"}`, contains: "invalid template_id"},
		{name: "send missing errcode", token: `{"access_token": "t"}`, send: `{"errmsg": "weird"}`, contains: "weird"},
		{name: "send not json", token: `{"access_token": "t"}`, send: `<html>`, contains: "解析微信响应失败"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/cgi-bin/token" {
					fmt.Fprint(w, tt.token)
					return
				}
				fmt.Fprint(w, tt.send)
			}))
			defer server.Close()

			result := newTestWeChat(server.URL, zerolog.Nop()).Send(context.Background(), "summary")
			assert.False(t, result.OK)
			assert.Contains(t, result.Message, tt.contains)
		})
	}
}

func TestWeChatSendNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	result := newTestWeChat(server.URL, zerolog.Nop()).Send(context.Background(), "summary")
	assert.False(t, result.OK)
}

func newTestPushPlus(url string, logger zerolog.Logger) *PushPlus {
	p := NewPushPlus(infrastructure.PushPlusConfig{Token: "pp-token", URL: url}, logger)
	p.now = fixedNow
	return p
}

func TestPushPlusSend(t *testing.T) {
	var received pushPlusRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code": 200, "msg": "请求成功", "data": "abc"}`)
	}))
	defer server.Close()

	var logs bytes.Buffer
	result := newTestPushPlus(server.URL, zerolog.New(&logs)).Send(context.Background(), "full summary body")

	require.True(t, result.OK, result.Message)
	assert.Equal(t, "pp-token", received.Token)
	assert.Equal(t, "📰 每日新闻简报 - 2025-03-14", received.Title)
	assert.Equal(t, "full summary body", received.Content)
	assert.Contains(t, logs.String(), "200")
}

func TestPushPlusSendFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		contains string
	}{
		{name: "gateway error code", status: http.StatusOK, body: `{"code": 999, "msg": "token错误"}`, contains: "token错误"},
		{name: "missing code", status: http.StatusOK, body: `{"msg": "?"}`, contains: "微信推送失败"},
		{name: "not json", status: http.StatusOK, body: `<html>busy</html>`, contains: "JSON"},
		{name: "http error", status: http.StatusBadGateway, body: `{"code": 200}`, contains: "502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			result := newTestPushPlus(server.URL, zerolog.Nop()).Send(context.Background(), "summary")
			assert.False(t, result.OK)
			assert.Contains(t, result.Message, tt.contains)
		})
	}
}

// fakeSMTP speaks just enough SMTP for net/smtp over an in-memory pipe
type fakeSMTP struct {
	acceptAuth bool

	mu       sync.Mutex
	commands []string
	data     string
}

func (f *fakeSMTP) serve(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	reply := func(s string) { io.WriteString(conn, s+"\r\n") }

	reply("220 localhost ESMTP fake")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		f.mu.Lock()
		f.commands = append(f.commands, line)
		f.mu.Unlock()

		cmd := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(cmd, "EHLO"):
			reply("250-localhost")
			reply("250 AUTH PLAIN LOGIN")
		case strings.HasPrefix(cmd, "HELO"):
			reply("250 localhost")
		case strings.HasPrefix(cmd, "AUTH"):
			if f.acceptAuth {
				reply("235 2.7.0 Authentication successful")
			} else {
				reply("535 5.7.8 Error: authentication failed")
			}
		case line == "*":
			reply("501 5.5.2 canceled")
		case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
			reply("250 OK")
		case strings.HasPrefix(cmd, "DATA"):
			reply("354 End data with <CR><LF>.<CR><LF>")
			var body strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				body.WriteString(l)
			}
			f.mu.Lock()
			f.data = body.String()
			f.mu.Unlock()
			reply("250 OK queued")
		case strings.HasPrefix(cmd, "QUIT"):
			reply("221 bye")
			return
		default:
			reply("500 unknown command")
		}
	}
}

func newTestEmail(fake *fakeSMTP, logger zerolog.Logger) *Email {
	e := NewEmail(infrastructure.EmailConfig{
		SMTPServer: "localhost",
		SMTPPort:   465,
		Username:   "me@example.com",
		Password:   "secret",
		To:         "you@example.com",
		FromName:   "每日新闻推送",
	}, logger)
	e.now = fixedNow
	e.dial = func(ctx context.Context, addr string) (net.Conn, error) {
		client, server := net.Pipe()
		go fake.serve(server)
		return client, nil
	}
	return e
}

func TestEmailSend(t *testing.T) {
	fake := &fakeSMTP{acceptAuth: true}
	summary := "📰 每日新闻简报\n\n1. 标题\n   内容"

	result := newTestEmail(fake, zerolog.Nop()).Send(context.Background(), summary)
	require.True(t, result.OK, result.Message)

	fake.mu.Lock()
	defer fake.mu.Unlock()

	assert.Contains(t, fake.commands, "MAIL FROM:<me@example.com>")
	assert.Contains(t, fake.commands, "RCPT TO:<you@example.com>")

	msg, err := mail.ReadMessage(strings.NewReader(fake.data))
	require.NoError(t, err)

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "📰 每日新闻简报 - 2025-03-14", subject)
	assert.Equal(t, "text/plain; charset=UTF-8", msg.Header.Get("Content-Type"))

	from, err := mail.ParseAddress(msg.Header.Get("From"))
	require.NoError(t, err)
	assert.Equal(t, "每日新闻推送", from.Name)
	assert.Equal(t, "me@example.com", from.Address)

	raw, err := io.ReadAll(msg.Body)
	require.NoError(t, err)
	body, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(raw), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, summary, string(body))
}

func TestEmailSendInvalidCredentials(t *testing.T) {
	fake := &fakeSMTP{acceptAuth: false}
	var logs bytes.Buffer

	var result Result
	require.NotPanics(t, func() {
		result = newTestEmail(fake, zerolog.New(&logs)).Send(context.Background(), "summary")
	})

	assert.False(t, result.OK)
	assert.Contains(t, result.Message, "授权码")
	assert.Contains(t, result.Message, "app-specific password")
	assert.Contains(t, logs.String(), "授权码")
}

func TestEmailSendDialFailure(t *testing.T) {
	e := newTestEmail(&fakeSMTP{}, zerolog.Nop())
	e.dial = func(ctx context.Context, addr string) (net.Conn, error) {
		assert.Equal(t, "localhost:465", addr)
		return nil, errors.New("connection refused")
	}

	result := e.Send(context.Background(), "summary")
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, "connection refused")
	assert.NotContains(t, result.Message, "授权码")
}

func TestEmailBuildMessageInvalidRecipient(t *testing.T) {
	e := newTestEmail(&fakeSMTP{}, zerolog.Nop())
	e.cfg.To = "not an address"

	result := e.Send(context.Background(), "summary")
	assert.False(t, result.OK)
}
