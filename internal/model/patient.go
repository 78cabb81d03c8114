package model

import (
	"github.com/google/uuid"
)

// Patient represents one patient record in the registry
type Patient struct {
	Base
	Name    string     `json:"name" db:"name"`
	Email   *string    `json:"email" db:"email"`
	Phone   *string    `json:"phone" db:"phone"`
	Address *string    `json:"address" db:"address"`
	Zip     *string    `json:"zip" db:"zip"`
	StateID *uuid.UUID `json:"state_id" db:"state_id"`
	CityID  *uuid.UUID `json:"city_id" db:"city_id"`
	Active  bool       `json:"active" db:"active"`
}

// CreatePatientRequest represents patient creation parameters
type CreatePatientRequest struct {
	Name    string  `json:"name" binding:"required"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone" binding:"omitempty,phone"`
	Address *string `json:"address"`
	Zip     *string `json:"zip" binding:"omitempty,zip"`
	StateID *string `json:"state_id" binding:"omitempty,uuid"`
	CityID  *string `json:"city_id" binding:"omitempty,uuid"`
}

// PatchPatientRequest carries one PATCH action against the patients
// collection
type PatchPatientRequest struct {
	Action  string  `json:"action" binding:"required"`
	ID      string  `json:"id" binding:"required,uuid"`
	Name    *string `json:"name"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone" binding:"omitempty,phone"`
	Address *string `json:"address"`
	Zip     *string `json:"zip" binding:"omitempty,zip"`
	StateID *string `json:"state_id" binding:"omitempty,uuid"`
	CityID  *string `json:"city_id" binding:"omitempty,uuid"`
}

// PatientFilters represents the field-level constraints for the
// patients table
type PatientFilters struct {
	Phone   string `form:"phone"`
	Zip     string `form:"zip"`
	StateID string `form:"state"`
	CityID  string `form:"city"`
	Status  string `form:"status"`
}
