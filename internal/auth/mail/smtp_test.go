package mail

import (
	"mime"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSMTPSender_Validation(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{From: "noreply@example.com"})
	require.Error(t, err, "host is required")

	_, err = NewSMTPSender(SMTPConfig{Host: "smtp.example.com", From: "not an address"})
	require.Error(t, err)

	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com", FromName: "devnet"})
	require.NoError(t, err)
	require.Equal(t, 587, s.cfg.Port)
	require.Equal(t, "devnet", s.from.Name)
}

func TestBuildMIME(t *testing.T) {
	from := mail.Address{Name: "devnet", Address: "noreply@example.com"}
	msg := Rendered{
		To:      "ada@example.com",
		Subject: "Réinitialiser",
		HTML:    "<p>hello</p>",
		Text:    "hello",
	}

	raw, err := buildMIME(from, msg, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	// Parse it back with the stdlib reader to make sure the headers are sane.
	parsed, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", parsed.Header.Get("To"))
	require.Contains(t, parsed.Header.Get("Content-Type"), "multipart/alternative")

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	require.Equal(t, "Réinitialiser", subject)

	body := string(raw)
	require.Contains(t, body, "text/plain; charset=utf-8")
	require.Contains(t, body, "text/html; charset=utf-8")
	require.Contains(t, body, "<p>hello</p>")
}
