package mailer

import "context"

// Mailer sends transactional emails to users.
// Implementations are expected to be best-effort; callers log failures.
type Mailer interface {
	SendWelcome(ctx context.Context, to, name string) error
}
