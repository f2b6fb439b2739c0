// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mail delivers transactional email such as one-time codes.

Senders:

  - SMTPSender: implicit-TLS SMTP (port 465) with a bounded deadline.
  - LogSender: development fallback that logs the envelope, and the body
    when explicitly asked to.

Delivery is a synchronous, best-effort call. Callers persist state before
sending, so a failed send never corrupts what was already written.
*/
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/taibuivan/famvault/internal/platform/ctxutil"
)

// ErrInvalidHeader is returned when a header value would break the message framing.
var ErrInvalidHeader = errors.New("mail: header contains line break")

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message or reports why it could not.
type Sender interface {
	Send(context context.Context, message Message) error
}

// # SMTP

// SMTPConfig holds the connection settings of an [SMTPSender].
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPSender sends mail over implicit TLS.
type SMTPSender struct {
	config SMTPConfig
}

// NewSMTPSender creates a new SMTPSender. An empty From falls back to Username.
func NewSMTPSender(config SMTPConfig) *SMTPSender {
	if config.From == "" {
		config.From = config.Username
	}
	return &SMTPSender{config: config}
}

// Send delivers message, giving up once the configured timeout or the
// context deadline passes, whichever comes first.
func (sender *SMTPSender) Send(context context.Context, message Message) error {
	payload, err := sender.compose(message)
	if err != nil {
		return err
	}

	if sender.config.Timeout > 0 {
		var cancel func()
		context, cancel = contextWithTimeout(context, sender.config.Timeout)
		defer cancel()
	}

	serverAddr := net.JoinHostPort(sender.config.Host, sender.config.Port)
	dialer := &tls.Dialer{Config: &tls.Config{ServerName: sender.config.Host, MinVersion: tls.VersionTLS12}}

	conn, err := dialer.DialContext(context, "tcp", serverAddr)
	if err != nil {
		return fmt.Errorf("mail: dial failed: %w", err)
	}
	defer conn.Close()

	if deadline, ok := context.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, sender.config.Host)
	if err != nil {
		return fmt.Errorf("mail: handshake failed: %w", err)
	}
	defer client.Close()

	if sender.config.Username != "" {
		auth := smtp.PlainAuth("", sender.config.Username, sender.config.Password, sender.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("mail: auth failed: %w", err)
		}
	}

	if err := client.Mail(sender.config.From); err != nil {
		return fmt.Errorf("mail: sender rejected: %w", err)
	}
	if err := client.Rcpt(message.To); err != nil {
		return fmt.Errorf("mail: recipient rejected: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("mail: data failed: %w", err)
	}
	if _, err := writer.Write(payload); err != nil {
		return fmt.Errorf("mail: write failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("mail: write failed: %w", err)
	}

	return client.Quit()
}

// compose renders the RFC 5322 headers and body.
func (sender *SMTPSender) compose(message Message) ([]byte, error) {
	for _, header := range []string{sender.config.From, message.To, message.Subject} {
		if strings.ContainsAny(header, "\r\n") {
			return nil, ErrInvalidHeader
		}
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "From: %s\r\n", sender.config.From)
	fmt.Fprintf(&builder, "To: %s\r\n", message.To)
	fmt.Fprintf(&builder, "Subject: %s\r\n", message.Subject)
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(message.HTML)

	return []byte(builder.String()), nil
}

// # Development

// LogSender records messages in the log instead of sending them.
//
// Only the recipient and subject are logged unless WithBody is switched on;
// bodies carry one-time codes.
type LogSender struct {
	logger   *slog.Logger
	withBody bool
}

// NewLogSender creates a new LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// WithBody makes the sender log message bodies too, so a local sign-up can be
// finished without SMTP. Never enable it in production.
func (sender *LogSender) WithBody(enabled bool) *LogSender {
	sender.withBody = enabled
	return sender
}

// Send implements [Sender].
func (sender *LogSender) Send(context context.Context, message Message) error {
	logger := sender.logger
	if logger == nil {
		logger = ctxutil.GetLogger(context)
	}
	attrs := []any{
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
	}
	if sender.withBody {
		attrs = append(attrs, slog.String("body", message.HTML))
	}
	logger.InfoContext(context, "mail_suppressed", attrs...)
	return nil
}
