package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Role names form a closed set. An unknown role is an explicit error
// state, never silently mapped to a default.
const (
	RoleAdmin  = "admin"
	RoleDoctor = "doctor"
	RoleNurse  = "nurse"
	RoleStaff  = "staff"
)

// Role is a reference entity resolved into user rows and filters
type Role struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

// MenuItem is one sidebar entry
type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Icon  string `json:"icon"`
}

// MenuSection groups sidebar entries under a heading
type MenuSection struct {
	Heading string     `json:"heading"`
	Items   []MenuItem `json:"items"`
}

// ErrUnknownRole reports a role name outside the closed set
type ErrUnknownRole struct {
	Name string
}

func (e *ErrUnknownRole) Error() string {
	return fmt.Sprintf("unknown role %q", e.Name)
}
