package email

import (
	"context"

	"github.com/rs/zerolog/log"
)

// noopService logs instead of sending, for local development and tests
type noopService struct{}

func NewNoopService() Service {
	return &noopService{}
}

func (s *noopService) SendPasswordResetOTP(_ context.Context, email string, code string) error {
	log.Info().Str("email", email).Str("code", code).Msg("noop email: password reset code")
	return nil
}

func (s *noopService) SendWelcome(_ context.Context, email string, name string) error {
	log.Info().Str("email", email).Str("name", name).Msg("noop email: welcome")
	return nil
}

func (s *noopService) SendCustom(_ context.Context, to string, subject string, _ string) error {
	log.Info().Str("to", to).Str("subject", subject).Msg("noop email: custom")
	return nil
}
