package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medgrid/emr-admin/internal/repository"
)

// TokenCleanupWorker purges expired and consumed password reset codes
// on a fixed interval.
type TokenCleanupWorker struct {
	repo            repository.TokenRepository
	retention       time.Duration
	cleanupInterval time.Duration
}

func NewTokenCleanupWorker(repo repository.TokenRepository, retention, cleanupInterval time.Duration) *TokenCleanupWorker {
	return &TokenCleanupWorker{
		repo:            repo,
		retention:       retention,
		cleanupInterval: cleanupInterval,
	}
}

func (w *TokenCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.cleanup(ctx); err != nil {
				log.Error().Err(err).Msg("reset code cleanup failed")
			}
		}
	}
}

func (w *TokenCleanupWorker) cleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-w.retention)

	rows, err := w.repo.PurgeExpired(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge reset codes: %w", err)
	}

	if rows > 0 {
		log.Info().Int64("purged", rows).Time("cutoff", cutoff).Msg("purged expired reset codes")
	}
	return nil
}
