package email

import (
	"context"
)

type Service interface {
	SendPasswordResetOTP(ctx context.Context, email string, code string) error
	SendWelcome(ctx context.Context, email string, name string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}
