package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medgrid/emr-admin/internal/model"
)

// All repository interfaces in one file
type (
	// UserRepository handles staff account records
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
		SetActive(ctx context.Context, id uuid.UUID, active bool) error
		SoftDelete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.User, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		SetActive(ctx context.Context, id uuid.UUID, active bool) error
		SoftDelete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	StateRepository interface {
		Create(ctx context.Context, state *model.State) error
		Get(ctx context.Context, id uuid.UUID) (*model.State, error)
		Update(ctx context.Context, state *model.State) error
		SetActive(ctx context.Context, id uuid.UUID, active bool) error
		SoftDelete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.State, error)
	}

	CityRepository interface {
		Create(ctx context.Context, city *model.City) error
		Get(ctx context.Context, id uuid.UUID) (*model.City, error)
		Update(ctx context.Context, city *model.City) error
		SetActive(ctx context.Context, id uuid.UUID, active bool) error
		SoftDelete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, stateID *uuid.UUID) ([]*model.City, error)
	}

	RoleRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Role, error)
		GetByName(ctx context.Context, name string) (*model.Role, error)
		List(ctx context.Context) ([]*model.Role, error)
	}

	// TokenRepository stores one-shot password reset codes
	TokenRepository interface {
		StoreOTP(ctx context.Context, userID uuid.UUID, code string, expiry time.Time) error
		ValidateOTP(ctx context.Context, userID uuid.UUID, code string) error
		ConsumeOTP(ctx context.Context, userID uuid.UUID, code string) error
		PurgeExpired(ctx context.Context, before time.Time) (int64, error)
	}
)
