package mail

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/samber/oops"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, msg Rendered) error
}

// SMTPConfig configures SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	StartTLS bool
	Timeout  time.Duration
}

// SMTPSender delivers mail through one SMTP connection per message.
type SMTPSender struct {
	cfg  SMTPConfig
	from mail.Address
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail: smtp host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	addr, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("mail: invalid from address %q: %w", cfg.From, err)
	}
	if cfg.FromName != "" {
		addr.Name = cfg.FromName
	}
	return &SMTPSender{cfg: cfg, from: *addr}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Rendered) error {
	errb := oops.In("mail").With("to", msg.To, "subject", msg.Subject)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errb.Wrapf(err, "dial %s", addr)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return errb.Wrapf(err, "smtp handshake")
	}
	defer c.Close()

	if s.cfg.StartTLS {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return errb.Wrapf(err, "starttls")
		}
	}
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return errb.Wrapf(err, "smtp auth")
		}
	}

	if err := c.Mail(s.from.Address); err != nil {
		return errb.Wrapf(err, "mail from")
	}
	if err := c.Rcpt(msg.To); err != nil {
		var tpErr *textproto.Error
		if errors.As(err, &tpErr) && tpErr.Code >= 500 {
			return &PermanentError{Err: errb.Wrapf(err, "rcpt to")}
		}
		return errb.Wrapf(err, "rcpt to")
	}
	w, err := c.Data()
	if err != nil {
		return errb.Wrapf(err, "data")
	}
	body, err := buildMIME(s.from, msg, time.Now())
	if err != nil {
		_ = w.Close()
		return errb.Wrap(err)
	}
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return errb.Wrapf(err, "write body")
	}
	if err := w.Close(); err != nil {
		return errb.Wrapf(err, "end data")
	}
	return c.Quit()
}

// buildMIME lays out a multipart/alternative message with text and html parts.
func buildMIME(from mail.Address, msg Rendered, now time.Time) ([]byte, error) {
	boundary, err := randomBoundary()
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }
	header("From", from.String())
	header("To", msg.To)
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `multipart/alternative; boundary="`+boundary+`"`)
	b.WriteString("\r\n")

	for _, part := range []struct{ ctype, body string }{
		{"text/plain", msg.Text},
		{"text/html", msg.HTML},
	} {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		fmt.Fprintf(&b, "Content-Type: %s; charset=utf-8\r\n", part.ctype)
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		qp := quotedprintable.NewWriter(&b)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes(), nil
}

func randomBoundary() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("mail: boundary: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}

// LogSender writes messages to the log instead of delivering them. It stands
// in when no SMTP host is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, msg Rendered) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "mail not delivered, no smtp host configured",
		"to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}
