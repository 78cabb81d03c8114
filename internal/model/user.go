package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents a staff account that signs in to the admin screens
type User struct {
	Base
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	Phone        *string   `json:"phone" db:"phone"`
	Password     string    `json:"password,omitempty" db:"-"`
	PasswordHash string    `json:"-" db:"password_hash"`
	RoleID       uuid.UUID `json:"role_id" db:"role_id"`
	Active       bool      `json:"active" db:"active"`

	FailedLoginAttempts int        `json:"-" db:"failed_login_attempts"`
	LockedUntil         *time.Time `json:"-" db:"locked_until"`
	LastLoginAt         *time.Time `json:"last_login_at" db:"last_login_at"`
}

// CreateUserRequest represents user creation parameters
type CreateUserRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Name     string  `json:"name" binding:"required"`
	Phone    *string `json:"phone" binding:"omitempty,phone"`
	Password string  `json:"password" binding:"required,min=8"`
	RoleID   string  `json:"role_id" binding:"required,uuid"`
}

// PatchUserRequest carries one PATCH action against the users
// collection. Action is a closed set; fields beyond ID are read per
// action.
type PatchUserRequest struct {
	Action   string  `json:"action" binding:"required"`
	ID       string  `json:"id" binding:"required,uuid"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Name     *string `json:"name"`
	Phone    *string `json:"phone" binding:"omitempty,phone"`
	RoleID   *string `json:"role_id" binding:"omitempty,uuid"`
	Password *string `json:"password"`
}

// UserFilters represents the field-level constraints for the users table
type UserFilters struct {
	RoleID string `form:"role"`
	Phone  string `form:"phone"`
	Status string `form:"status"`
}
