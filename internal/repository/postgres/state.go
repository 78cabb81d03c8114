package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/repository"
)

type stateRepository struct {
	BaseRepository
}

func NewStateRepository(base BaseRepository) repository.StateRepository {
	return &stateRepository{base}
}

func (r *stateRepository) Create(ctx context.Context, state *model.State) error {
	query := `
		INSERT INTO states (id, name, code, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	state.ID = uuid.New()
	state.CreatedAt = time.Now()
	state.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			state.ID,
			state.Name,
			state.Code,
			state.Active,
			state.CreatedAt,
			state.UpdatedAt,
		)
		return err
	})
}

func (r *stateRepository) Get(ctx context.Context, id uuid.UUID) (*model.State, error) {
	query := `
		SELECT * FROM states
		WHERE id = $1 AND deleted_at IS NULL
	`

	var state model.State
	if err := r.db.GetContext(ctx, &state, query, id); err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	return &state, nil
}

func (r *stateRepository) Update(ctx context.Context, state *model.State) error {
	query := `
		UPDATE states SET
			name = $1,
			code = $2,
			updated_at = $3
		WHERE id = $4 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, state.Name, state.Code, time.Now(), state.ID)
	if err != nil {
		return fmt.Errorf("failed to update state: %w", err)
	}

	return requireRowsAffected(result, "state")
}

func (r *stateRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `
		UPDATE states
		SET active = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("failed to set state active flag: %w", err)
	}

	return requireRowsAffected(result, "state")
}

func (r *stateRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE states
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}

	return requireRowsAffected(result, "state")
}

func (r *stateRepository) List(ctx context.Context) ([]*model.State, error) {
	query := `
		SELECT * FROM states
		WHERE deleted_at IS NULL
		ORDER BY name ASC
	`

	var states []*model.State
	if err := r.db.SelectContext(ctx, &states, query); err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}

	return states, nil
}
