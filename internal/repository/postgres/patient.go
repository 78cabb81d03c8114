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

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, name, email, phone, address, zip, state_id, city_id,
			active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			patient.ID,
			patient.Name,
			patient.Email,
			patient.Phone,
			patient.Address,
			patient.Zip,
			patient.StateID,
			patient.CityID,
			patient.Active,
			patient.CreatedAt,
			patient.UpdatedAt,
		)
		return err
	})
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT * FROM patients
		WHERE id = $1 AND deleted_at IS NULL
	`

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET
			name = $1,
			email = $2,
			phone = $3,
			address = $4,
			zip = $5,
			state_id = $6,
			city_id = $7,
			updated_at = $8
		WHERE id = $9 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		patient.Name,
		patient.Email,
		patient.Phone,
		patient.Address,
		patient.Zip,
		patient.StateID,
		patient.CityID,
		time.Now(),
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	return requireRowsAffected(result, "patient")
}

func (r *patientRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `
		UPDATE patients
		SET active = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("failed to set patient active flag: %w", err)
	}

	return requireRowsAffected(result, "patient")
}

func (r *patientRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE patients
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	return requireRowsAffected(result, "patient")
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	query := `
		SELECT * FROM patients
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	return patients, nil
}
