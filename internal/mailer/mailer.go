package mailer

import "context"

// Sender delivers transactional mail. Implementations must be safe for
// concurrent use; the feedback dispatcher calls Send from a worker pool.
type Sender interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}
