// Package mailer delivers listing announcements over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"sync"

	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Enabled reports whether enough is configured to reach a server.
func (c SMTPConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != "" && strings.TrimSpace(c.Port) != "" && strings.TrimSpace(c.From) != ""
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends one message per recipient in the background so a slow
// server never holds up the request that triggered the mail.
type SMTPMailer struct {
	cfg    SMTPConfig
	send   sendFunc
	logger *logging.Logger
	wg     sync.WaitGroup
}

func NewSMTPMailer(cfg SMTPConfig, logger *logging.Logger) *SMTPMailer {
	if logger == nil {
		logger = logging.Default()
	}
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail, logger: logger}
}

func (m *SMTPMailer) Send(ctx context.Context, msg usecase.MailMessage) error {
	recipients := make([]string, 0, len(msg.To))
	for _, to := range msg.To {
		if to = strings.TrimSpace(to); to != "" {
			recipients = append(recipients, to)
		}
	}
	if len(recipients) == 0 {
		return nil
	}
	if strings.ContainsAny(msg.Subject, "\r\n") {
		return fmt.Errorf("%w: subject must be a single line", usecase.ErrInvalidInput)
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	ctx = context.WithoutCancel(ctx)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for _, to := range recipients {
			if err := m.send(addr, auth, m.cfg.From, []string{to}, render(m.cfg.From, to, msg)); err != nil {
				m.logger.WarnContext(ctx, "smtp send failed", "to", to, "error", err)
			}
		}
	}()
	return nil
}

// Close waits for in-flight deliveries.
func (m *SMTPMailer) Close() {
	m.wg.Wait()
}

func render(from, to string, msg usecase.MailMessage) []byte {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("From: " + from + "\r\n")
	_, _ = buf.WriteString("To: " + to + "\r\n")
	_, _ = buf.WriteString("Subject: " + msg.Subject + "\r\n")
	_, _ = buf.WriteString("MIME-Version: 1.0\r\n")
	_, _ = buf.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	_, _ = buf.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return append([]byte(nil), buf.B...)
}

// LogMailer stands in when SMTP is not configured.
type LogMailer struct {
	logger *logging.Logger
}

func NewLogMailer(logger *logging.Logger) *LogMailer {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg usecase.MailMessage) error {
	m.logger.InfoContext(ctx, "mail delivery disabled, dropping message", "subject", msg.Subject, "recipients", len(msg.To))
	return nil
}
