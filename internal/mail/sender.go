// Package mail sends the finished report over SMTP.
package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Config holds the SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// To is a comma-separated recipient list.
	To string
}

// Enabled reports whether the transport is fully configured.
func (c Config) Enabled() bool {
	return c.Host != "" && c.Username != "" && c.Password != "" && c.From != "" && len(c.Recipients()) > 0
}

// Recipients splits the comma-separated To list.
func (c Config) Recipients() []string {
	var out []string
	for _, addr := range strings.Split(c.To, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// Sender delivers plain-text messages with file attachments.
type Sender struct {
	cfg    Config
	logger *zap.Logger
}

// NewSender creates a Sender.
func NewSender(cfg Config, logger *zap.Logger) *Sender {
	return &Sender{cfg: cfg, logger: logger}
}

// Send delivers one message. Port 465 uses implicit TLS; anything else uses
// STARTTLS, matching what most providers expect on 587.
func (s *Sender) Send(ctx context.Context, subject, body string, attachments []string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(s.cfg.Recipients()...); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	for _, path := range attachments {
		msg.AttachFile(path)
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
	}
	if s.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	s.logger.Info("report email sent",
		zap.Strings("to", s.cfg.Recipients()),
		zap.Int("attachments", len(attachments)),
	)
	return nil
}
