package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talkincode/toughcrm/config"
)

func TestNewMailer(t *testing.T) {
	assert.IsType(t, NopMailer{}, NewMailer(config.SmtpConfig{}))
	assert.IsType(t, NopMailer{}, NewMailer(config.SmtpConfig{Enable: true}))
	assert.IsType(t, &SMTPMailer{}, NewMailer(config.SmtpConfig{Enable: true, Host: "smtp.example.com", Port: 25}))
	assert.NoError(t, NopMailer{}.Send(context.Background(), Message{To: "x@example.com"}))
}

func TestSMTPMailerCanceled(t *testing.T) {
	m := NewMailer(config.SmtpConfig{Enable: true, Host: "127.0.0.1", Port: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, Message{To: "x@example.com"}), context.Canceled)
}

func TestOrderReminder(t *testing.T) {
	msg := OrderReminder("alice@example.com", "Alice", "42")
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Contains(t, msg.Subject, "42")
	assert.Contains(t, msg.Body, "Dear Alice")

	assert.Contains(t, OrderReminder("bob@example.com", "", "7").Body, "Dear customer")
}
