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

type cityRepository struct {
	BaseRepository
}

func NewCityRepository(base BaseRepository) repository.CityRepository {
	return &cityRepository{base}
}

func (r *cityRepository) Create(ctx context.Context, city *model.City) error {
	query := `
		INSERT INTO cities (id, name, state_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	city.ID = uuid.New()
	city.CreatedAt = time.Now()
	city.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			city.ID,
			city.Name,
			city.StateID,
			city.Active,
			city.CreatedAt,
			city.UpdatedAt,
		)
		return err
	})
}

func (r *cityRepository) Get(ctx context.Context, id uuid.UUID) (*model.City, error) {
	query := `
		SELECT * FROM cities
		WHERE id = $1 AND deleted_at IS NULL
	`

	var city model.City
	if err := r.db.GetContext(ctx, &city, query, id); err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}

	return &city, nil
}

func (r *cityRepository) Update(ctx context.Context, city *model.City) error {
	query := `
		UPDATE cities SET
			name = $1,
			state_id = $2,
			updated_at = $3
		WHERE id = $4 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, city.Name, city.StateID, time.Now(), city.ID)
	if err != nil {
		return fmt.Errorf("failed to update city: %w", err)
	}

	return requireRowsAffected(result, "city")
}

func (r *cityRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `
		UPDATE cities
		SET active = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("failed to set city active flag: %w", err)
	}

	return requireRowsAffected(result, "city")
}

func (r *cityRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE cities
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete city: %w", err)
	}

	return requireRowsAffected(result, "city")
}

// List returns all cities, optionally scoped to a parent state
func (r *cityRepository) List(ctx context.Context, stateID *uuid.UUID) ([]*model.City, error) {
	query := `
		SELECT * FROM cities
		WHERE deleted_at IS NULL
	`
	args := []interface{}{}
	if stateID != nil {
		query += ` AND state_id = $1`
		args = append(args, *stateID)
	}
	query += ` ORDER BY name ASC`

	var cities []*model.City
	if err := r.db.SelectContext(ctx, &cities, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}

	return cities, nil
}
