// Package mailer sends transactional email over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/core"
)

// Config holds SMTP connection details.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP implements core.Mailer.
type SMTP struct {
	cfg    Config
	send   sendFunc
	logger *zap.Logger
}

var _ core.Mailer = (*SMTP)(nil)

// New validates cfg and returns an SMTP mailer.
func New(cfg Config, logger *zap.Logger) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host cannot be empty")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("sender email address cannot be empty")
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &SMTP{cfg: cfg, send: smtp.SendMail, logger: logger}, nil
}

// Send delivers a single message. HTML bodies are detected from their markup.
func (m *SMTP) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("recipient email address cannot be empty")
	}
	if subject == "" {
		return fmt.Errorf("email subject cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(m.cfg.From, to, subject, body)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		m.logger.Error("SMTP delivery failed", zap.String("addr", addr), zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}
	m.logger.Debug("Email sent", zap.String("subject", subject))
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	contentType := "text/plain; charset=UTF-8"
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<p>") {
		contentType = "text/html; charset=UTF-8"
	}
	return []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: %s\r\n"+
		"\r\n"+
		"%s\r\n", to, from, subject, contentType, body))
}
