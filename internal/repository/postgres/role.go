package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/repository"
)

type roleRepository struct {
	BaseRepository
}

func NewRoleRepository(base BaseRepository) repository.RoleRepository {
	return &roleRepository{base}
}

func (r *roleRepository) Get(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	query := `SELECT * FROM roles WHERE id = $1`

	var role model.Role
	if err := r.db.GetContext(ctx, &role, query, id); err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return &role, nil
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*model.Role, error) {
	query := `SELECT * FROM roles WHERE name = $1`

	var role model.Role
	if err := r.db.GetContext(ctx, &role, query, name); err != nil {
		return nil, fmt.Errorf("failed to get role by name: %w", err)
	}

	return &role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]*model.Role, error) {
	query := `SELECT * FROM roles ORDER BY name ASC`

	var roles []*model.Role
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return roles, nil
}
