package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/pep299/daily-news-digest/internal/infrastructure"
)

const smtpTimeout = 30 * time.Second

// AuthHint explains why a correct-looking mailbox password is rejected.
const AuthHint = "提示：QQ邮箱需要使用'授权码'（app-specific password）而不是登录密码。" +
	"获取方法：QQ邮箱 → 设置 → 账户 → 开启IMAP/SMTP服务 → 获取授权码"

// ErrAuthentication marks a rejected SMTP login
var ErrAuthentication = errors.New("smtp authentication failed")

type dialFunc func(ctx context.Context, addr string) (net.Conn, error)

// Email sends the summary over an implicit TLS SMTP session.
type Email struct {
	cfg    infrastructure.EmailConfig
	dial   dialFunc
	logger zerolog.Logger
	now    func() time.Time
}

// NewEmail creates an email sender
func NewEmail(cfg infrastructure.EmailConfig, logger zerolog.Logger) *Email {
	return &Email{
		cfg:    cfg,
		dial:   tlsDialer(cfg.SMTPServer),
		logger: logger,
		now:    time.Now,
	}
}

func tlsDialer(host string) dialFunc {
	return func(ctx context.Context, addr string) (net.Conn, error) {
		d := &tls.Dialer{
			NetDialer: &net.Dialer{Timeout: smtpTimeout},
			Config:    &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12},
		}
		return d.DialContext(ctx, "tcp", addr)
	}
}

func (e *Email) Send(ctx context.Context, summary string) Result {
	e.logger.Info().Msg("📧 通过邮件发送...")

	msg, err := e.BuildMessage(summary)
	if err != nil {
		e.logger.Error().Err(err).Msg("❌ 发送邮件时出错")
		return failure(fmt.Sprintf("发送邮件时出错：%v", err))
	}

	if err := e.deliver(ctx, msg); err != nil {
		if errors.Is(err, ErrAuthentication) {
			e.logger.Error().Err(err).Msg("❌ 邮箱登录失败：用户名或密码错误")
			e.logger.Warn().Msg("💡 " + AuthHint)
			return failure("邮箱登录失败：用户名或密码错误。" + AuthHint)
		}
		e.logger.Error().Err(err).Msg("❌ 发送邮件时出错")
		return failure(fmt.Sprintf("发送邮件时出错：%v", err))
	}

	e.logger.Info().Msg("✅ 邮件发送成功！")
	return success("邮件发送成功，请检查邮箱")
}

// deliver runs one SMTP session: connect, login, send, quit
func (e *Email) deliver(ctx context.Context, msg []byte) error {
	addr := net.JoinHostPort(e.cfg.SMTPServer, strconv.Itoa(e.cfg.SMTPPort))

	e.logger.Info().Msgf("📨 连接到邮件服务器：%s...", e.cfg.SMTPServer)
	conn, err := e.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	if err := conn.SetDeadline(time.Now().Add(smtpTimeout)); err != nil {
		conn.Close()
		return fmt.Errorf("setting deadline: %w", err)
	}

	c, err := smtp.NewClient(conn, e.cfg.SMTPServer)
	if err != nil {
		conn.Close()
		return fmt.Errorf("starting SMTP session: %w", err)
	}
	defer c.Close()

	e.logger.Info().Msgf("🔐 登录邮箱：%s...", e.cfg.Username)
	if err := c.Auth(smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.SMTPServer)); err != nil {
		var protoErr *textproto.Error
		if errors.As(err, &protoErr) && protoErr.Code >= 500 {
			return fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
		return fmt.Errorf("authenticating: %w", err)
	}

	e.logger.Info().Msgf("📤 发送邮件到：%s...", e.cfg.To)
	if err := c.Mail(e.cfg.Username); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := c.Rcpt(e.cfg.To); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing message: %w", err)
	}

	return c.Quit()
}

// BuildMessage renders the MIME message for the summary
func (e *Email) BuildMessage(summary string) ([]byte, error) {
	from := mail.Address{Name: e.cfg.FromName, Address: e.cfg.Username}
	to, err := mail.ParseAddress(e.cfg.To)
	if err != nil {
		return nil, fmt.Errorf("parsing recipient %q: %w", e.cfg.To, err)
	}

	now := e.now()
	var buf bytes.Buffer
	header := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
	}
	header("From", from.String())
	header("To", to.String())
	header("Subject", mime.BEncoding.Encode("UTF-8", Title(now)))
	header("Date", now.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	header("Content-Transfer-Encoding", "base64")
	buf.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString([]byte(summary))
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76] + "\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded + "\r\n")

	return buf.Bytes(), nil
}
