// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package mailer sends transactional email.

[SendGrid] delivers through the SendGrid v3 API. [Log] writes the message to
the structured log instead, for development and tests.
*/
package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
)

// Message is a single outgoing email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, message Message) error
}

// # SendGrid

// SendGrid implements [Mailer] with the SendGrid API.
type SendGrid struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGrid creates a SendGrid mailer sending from the given address.
func NewSendGrid(apiKey, fromAddress string) *SendGrid {
	return &SendGrid{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("Souk Bazaar", fromAddress),
	}
}

// Send delivers message. Non-2xx API answers are errors.
func (sender *SendGrid) Send(ctx context.Context, message Message) error {
	if message.To == "" {
		return errors.New("mailer: recipient is empty")
	}

	email := mail.NewSingleEmail(
		sender.from,
		message.Subject,
		mail.NewEmail("", message.To),
		message.Text,
		fmt.Sprintf("<pre>%s</pre>", html.EscapeString(message.Text)),
	)

	response, err := sender.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("mailer: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("mailer: sendgrid rejected message: status=%d body=%s", response.StatusCode, response.Body)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "mail_sent",
		slog.Int("status", response.StatusCode),
		slog.String("subject", message.Subject),
	)
	return nil
}

// # Log

// Log implements [Mailer] by logging. It also keeps the messages it saw.
type Log struct {
	mu   sync.Mutex
	sent []Message
}

// NewLog creates a logging mailer.
func NewLog() *Log {
	return &Log{}
}

// Send logs message and records it.
func (sender *Log) Send(ctx context.Context, message Message) error {
	sender.mu.Lock()
	sender.sent = append(sender.sent, message)
	sender.mu.Unlock()

	ctxutil.GetLogger(ctx).InfoContext(ctx, "mail_logged",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("body", message.Text),
	)
	return nil
}

// Sent returns a copy of every recorded message.
func (sender *Log) Sent() []Message {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	out := make([]Message, len(sender.sent))
	copy(out, sender.sent)
	return out
}
