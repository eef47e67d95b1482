package models

import "time"

// User roles. Every user carries exactly one.
const (
	RoleCashier = "cashier"
	RoleServer  = "server"
	RoleManager = "manager"
)

// User represents a staff account able to log into the POS.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     *string   `json:"full_name,omitempty" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsValidRole reports whether role is one of the known user roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleCashier, RoleServer, RoleManager:
		return true
	default:
		return false
	}
}
