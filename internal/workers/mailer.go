package workers

import (
	"context"

	"github.com/rs/zerolog"
)

// Mailer delivers rendered emails. Actual delivery (SMTP, SES, ...) is an
// external collaborator; the default implementation only records the send.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes outbound mail to the log instead of delivering it.
// Used in development and as the fallback when no provider is configured.
type LogMailer struct {
	Logger zerolog.Logger
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.Logger.Info().
		Str("to", to).
		Str("subject", subject).
		Int("body_bytes", len(body)).
		Msg("Outbound email")
	return nil
}
