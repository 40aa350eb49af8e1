// Package notify sends customer notifications.
package notify

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/talkincode/toughcrm/config"
)

// Message is a plain text mail
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NopMailer drops every message, used when SMTP is disabled.
type NopMailer struct{}

func (NopMailer) Send(context.Context, Message) error { return nil }

// SMTPMailer sends through an SMTP relay with gomail
type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

var (
	_ Mailer = NopMailer{}
	_ Mailer = (*SMTPMailer)(nil)
)

// NewMailer returns an SMTPMailer when smtp is enabled and a NopMailer otherwise.
func NewMailer(cfg config.SmtpConfig) Mailer {
	if !cfg.Enable || cfg.Host == "" {
		return NopMailer{}
	}
	return &SMTPMailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Passwd),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	if err := m.dialer.DialAndSend(gm); err != nil {
		zap.L().Error("send mail failed",
			zap.String("to", msg.To),
			zap.Error(err),
			zap.String("namespace", "notify"))
		return errors.Wrapf(err, "send mail to %s", msg.To)
	}
	return nil
}

// OrderReminder builds the reminder sent for a pending order
func OrderReminder(email, name, orderID string) Message {
	if name == "" {
		name = "customer"
	}
	return Message{
		To:      email,
		Subject: fmt.Sprintf("Reminder for your order %s", orderID),
		Body: fmt.Sprintf("Dear %s,\n\nThis is a reminder about your order %s placed in the last week.\n"+
			"Reply to this mail if you have any question.\n", name, orderID),
	}
}
