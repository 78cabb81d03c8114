package model

import (
	"github.com/google/uuid"
)

// State is a reference entity used for id-to-label resolution in
// filters, sorts and table cells
type State struct {
	Base
	Name   string `json:"name" db:"name"`
	Code   string `json:"code" db:"code"`
	Active bool   `json:"active" db:"active"`
}

// City is scoped by its parent State
type City struct {
	Base
	Name    string    `json:"name" db:"name"`
	StateID uuid.UUID `json:"state_id" db:"state_id"`
	Active  bool      `json:"active" db:"active"`
}

type CreateStateRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required,state_code"`
}

type PatchStateRequest struct {
	Action string  `json:"action" binding:"required"`
	ID     string  `json:"id" binding:"required,uuid"`
	Name   *string `json:"name"`
	Code   *string `json:"code" binding:"omitempty,state_code"`
}

type CreateCityRequest struct {
	Name    string `json:"name" binding:"required"`
	StateID string `json:"state_id" binding:"required,uuid"`
}

type PatchCityRequest struct {
	Action  string  `json:"action" binding:"required"`
	ID      string  `json:"id" binding:"required,uuid"`
	Name    *string `json:"name"`
	StateID *string `json:"state_id" binding:"omitempty,uuid"`
}

// StateFilters represents the field-level constraints for the states table
type StateFilters struct {
	Status string `form:"status"`
}

// CityFilters represents the field-level constraints for the cities table
type CityFilters struct {
	StateID string `form:"state"`
	Status  string `form:"status"`
}
