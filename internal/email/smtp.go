package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/medgrid/emr-admin/internal/config"
)

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendPasswordResetOTP(_ context.Context, email string, code string) error {
	body := fmt.Sprintf(
		"Your password reset code is %s.\n\nIt expires in 10 minutes. If you did not request a reset, ignore this message.",
		code,
	)
	return s.send(email, "Password reset code", body)
}

func (s *smtpService) SendWelcome(_ context.Context, email string, name string) error {
	body := fmt.Sprintf("Hi %s,\n\nYour account has been created. Sign in with this email address to get started.", name)
	return s.send(email, "Welcome", body)
}

func (s *smtpService) SendCustom(_ context.Context, to string, subject string, content string) error {
	return s.send(to, subject, content)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
