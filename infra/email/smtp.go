// Package email delivers donor-facing mail over SMTP.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/impactlink/impactlink/pkg/config"
	"github.com/jordan-wright/email"
)

// SMTPSender implements the notification handler's EmailSender over SMTP.
type SMTPSender struct {
	cfg    *config.Email
	logger *slog.Logger
}

// NewSMTPSender creates an SMTPSender.
func NewSMTPSender(cfg *config.Email, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

// Send delivers one plain-text message. The context is consulted before
// dialing; the SMTP exchange itself is bounded by the library's dial
// timeout.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("sending email to %s: %w", to, err)
	}
	return nil
}

// NopSender discards mail. Used when email delivery is disabled.
type NopSender struct {
	logger *slog.Logger
}

// NewNopSender creates a NopSender.
func NewNopSender(logger *slog.Logger) *NopSender {
	return &NopSender{logger: logger}
}

// Send logs the message instead of delivering it.
func (s *NopSender) Send(_ context.Context, to, subject, _ string) error {
	s.logger.Info("email delivery disabled, dropping message", "to", to, "subject", subject)
	return nil
}
