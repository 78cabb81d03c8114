package model

import "github.com/google/uuid"

// SavedSearch is a named, persisted filter combination for one entity
// screen. No expiry; removable by id.
type SavedSearch struct {
	ID      uuid.UUID         `json:"id"`
	Name    string            `json:"name" binding:"required"`
	Filters map[string]string `json:"filters"`
}

// ColumnVisibility maps a column key to whether the column is shown.
// The "actions" column key is conventionally present and left visible.
type ColumnVisibility map[string]bool

// SessionProfile caches the signed-in user's display name and role
// label for optimistic sidebar rendering before the authoritative
// profile loads
type SessionProfile struct {
	Name string `json:"name"`
	Role string `json:"role"`
}
