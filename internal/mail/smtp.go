package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"nextstep-backend/internal/shared/metrics"
	"nextstep-backend/internal/shared/telemetry"
)

// sendTimeout bounds one SMTP delivery. smtp.SendMail has no deadline
// of its own; without this a hung server blocks the submit goroutine.
const sendTimeout = 10 * time.Second

// SMTPMailer sends mail through a single SMTP endpoint.
type SMTPMailer struct {
	addr     string
	from     string
	username string
	password string
	timeout  time.Duration

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTP constructs a mailer for the SMTP server at addr (host:port).
func NewSMTP(addr, from, username, password string) (*SMTPMailer, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, fmt.Errorf("smtp address is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	return &SMTPMailer{
		addr:     addr,
		from:     from,
		username: username,
		password: password,
		timeout:  sendTimeout,
		sendMail: smtp.SendMail,
	}, nil
}

// Send delivers a plain-text message to a single recipient. Delivery is
// bounded by the mailer's timeout and the caller's context; the
// transport goroutine is abandoned on expiry.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient is required")
	}

	var auth smtp.Auth
	if m.username != "" {
		host, _, err := net.SplitHostPort(m.addr)
		if err != nil {
			host = m.addr
		}
		auth = smtp.PlainAuth("", m.username, m.password, host)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	msg := buildMessage(m.from, to, subject, body)
	errCh := make(chan error, 1)
	go func() {
		errCh <- m.sendMail(m.addr, auth, m.from, []string{to}, msg)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			metrics.IncEmailFailed()
			telemetry.Warn("mail.send_failed", map[string]any{"to": to, "error": err.Error()})
			return fmt.Errorf("smtp send: %w", err)
		}
	case <-ctx.Done():
		metrics.IncEmailFailed()
		telemetry.Warn("mail.send_timeout", map[string]any{"to": to, "error": ctx.Err().Error()})
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}

	metrics.IncEmailSent()
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return []byte(sb.String())
}

var _ Mailer = (*SMTPMailer)(nil)
