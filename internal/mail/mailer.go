// Package mail delivers transactional email. Delivery is best-effort;
// callers treat failures as non-fatal.
package mail

import "context"

// Mailer sends a plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Noop discards all email. Used when SMTP is not configured.
type Noop struct{}

func (Noop) Send(ctx context.Context, to, subject, body string) error {
	return ctx.Err()
}

var _ Mailer = Noop{}
