package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all records
type Base struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ListQuery carries the table query parameters every collection
// endpoint accepts: a free-text search term, the single active sort
// column and direction, and the page window.
type ListQuery struct {
	Search   string `form:"search"`
	Sort     string `form:"sort"`
	Dir      string `form:"dir"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// Patch actions form a closed set; anything else is an explicit client
// error, never a silent no-op.
const (
	ActionEdit          = "edit"
	ActionToggleActive  = "toggle_active"
	ActionSoftDelete    = "soft_delete"
	ActionResetPassword = "reset_password"
)

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}
