package mailer

import (
	"context"
	"fmt"
	"html"

	"github.com/resend/resend-go/v2"

	"mflix-backend/internal/logging"
)

// emailSender is the part of the Resend client the mailer uses.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type ResendMailer struct {
	emails emailSender
	from   string
	logger *logging.Logger
}

func NewResendMailer(apiKey, from string, logger *logging.Logger) *ResendMailer {
	client := resend.NewClient(apiKey)
	return &ResendMailer{emails: client.Emails, from: from, logger: logger}
}

func (m *ResendMailer) SendWelcome(ctx context.Context, to, name string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: "Welcome to MFlix",
		Html:    welcomeHTML(name),
	}

	sent, err := m.emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	m.logger.Infow("welcome email sent", "to", to, "id", sent.Id)
	return nil
}

func welcomeHTML(name string) string {
	return fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
			<h2 style="color: #333;">Welcome to MFlix, %s!</h2>
			<p>Your account is ready. Sign in any time to keep track of the movies you love.</p>
			<p style="color: #aaa; font-size: 12px;">
				If you didn't create this account, you can safely ignore this email.
			</p>
		</div>
	`, html.EscapeString(name))
}
