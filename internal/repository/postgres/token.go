package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medgrid/emr-admin/internal/repository"
)

type tokenRepository struct {
	BaseRepository
}

func NewTokenRepository(base BaseRepository) repository.TokenRepository {
	return &tokenRepository{base}
}

// StoreOTP keeps one live reset code per user; a new request replaces
// any earlier unused code.
func (r *tokenRepository) StoreOTP(ctx context.Context, userID uuid.UUID, code string, expiry time.Time) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO otp_tokens (id, user_id, code, expires_at, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (user_id) DO UPDATE
			SET code = $3, expires_at = $4, used_at = NULL, created_at = NOW()
		`
		_, err := tx.ExecContext(ctx, query, uuid.New(), userID, code, expiry)
		return err
	})
}

func (r *tokenRepository) ValidateOTP(ctx context.Context, userID uuid.UUID, code string) error {
	query := `
		SELECT COUNT(*)
		FROM otp_tokens
		WHERE user_id = $1
		AND code = $2
		AND expires_at > NOW()
		AND used_at IS NULL
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, code); err != nil {
		return fmt.Errorf("failed to validate code: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("invalid or expired code")
	}

	return nil
}

// ConsumeOTP marks the code used so it cannot be replayed.
func (r *tokenRepository) ConsumeOTP(ctx context.Context, userID uuid.UUID, code string) error {
	query := `
		UPDATE otp_tokens
		SET used_at = NOW()
		WHERE user_id = $1
		AND code = $2
		AND expires_at > NOW()
		AND used_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, userID, code)
	if err != nil {
		return fmt.Errorf("failed to consume code: %w", err)
	}

	return requireRowsAffected(result, "code")
}

func (r *tokenRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM otp_tokens
		WHERE expires_at < $1
	`

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired codes: %w", err)
	}

	return result.RowsAffected()
}
