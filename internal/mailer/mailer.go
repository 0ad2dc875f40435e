// Package mailer provides outbound email delivery and the notification
// email templates.
//
// The notification engine only sees the Mailer interface; the stock
// implementation speaks plain SMTP. Delivery is fire-and-forget from the
// engine's point of view: a rejected send is the caller's to log, never
// to propagate.
package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"pinpoint.dev/pinpoint/internal/config"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends a single email. May fail per message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers via a configured SMTP relay.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer creates a mailer for the given SMTP settings.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send delivers one message. Honors context cancellation before the dial;
// an in-flight SMTP exchange runs to completion.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("message has no recipient")
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	body := buildMIME(m.cfg.From, msg)
	if err := smtp.SendMail(m.cfg.Addr(), auth, m.cfg.From, []string{msg.To}, body); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// Ping dials the relay and disconnects. Surfaces SMTP misconfiguration at
// startup; delivery does not depend on it.
func (m *SMTPMailer) Ping(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", m.cfg.Addr())
	if err != nil {
		return fmt.Errorf("smtp ping %s: %w", m.cfg.Addr(), err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp ping %s: %w", m.cfg.Addr(), err)
	}
	return client.Quit()
}

// buildMIME assembles a minimal HTML email.
func buildMIME(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// compile-time check
var _ Mailer = (*SMTPMailer)(nil)
