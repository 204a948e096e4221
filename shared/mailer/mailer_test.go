package mailer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailer_NewMessage(t *testing.T) {
	m := NewMailer(Config{Host: "smtp.example.com", Port: 587, From: "identity@example.com"})

	msg := m.newMessage(Email{
		To:       []string{"alice@example.com"},
		Subject:  "Account locked",
		Body:     "plain",
		HTMLBody: "<p>html</p>",
	})

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "From: identity@example.com")
	assert.Contains(t, out, "To: alice@example.com")
	assert.Contains(t, out, "Subject: Account locked")
	assert.Contains(t, out, "text/html")
	assert.Contains(t, out, "text/plain")
}

func TestMailer_SendWithoutRecipients(t *testing.T) {
	m := NewMailer(Config{Host: "smtp.example.com", Port: 587})

	assert.ErrorIs(t, m.Send(Email{Subject: "x"}), ErrNoRecipients)
}

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{Host: "smtp.example.com"}.Enabled())
}
