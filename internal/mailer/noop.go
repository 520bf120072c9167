package mailer

import (
	"context"

	"github.com/rs/zerolog/log"
)

// NoopSender logs sends without delivering anything. Used in development
// when no Resend API key is configured.
type NoopSender struct{}

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

func (s *NoopSender) Send(_ context.Context, to, subject, _, _ string) error {
	log.Info().Str("to", to).Str("subject", subject).Msg("noop mail send")
	return nil
}
