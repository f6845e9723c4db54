package mailer

import (
	"context"

	"mflix-backend/internal/logging"
)

// LogMailer writes emails to the log instead of sending them. Used when no
// Resend API key is configured.
type LogMailer struct {
	logger *logging.Logger
}

func NewLogMailer(logger *logging.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendWelcome(ctx context.Context, to, name string) error {
	m.logger.Infow("welcome email (dev mode, not sent)", "to", to, "name", name)
	return nil
}
