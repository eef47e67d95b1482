package models

import "time"

// Absence is an employee leave request. Dates travel as YYYY-MM-DD strings
// and are stored as DATE columns.
type Absence struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	StartDate  string    `json:"start_date" db:"start_date" binding:"required"`
	EndDate    string    `json:"end_date" db:"end_date" binding:"required"`
	Reason     *string   `json:"reason,omitempty" db:"reason"`
	IsApproved bool      `json:"is_approved" db:"is_approved"`
	ApprovedBy *int64    `json:"approved_by,omitempty" db:"approved_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	User       *User     `json:"user,omitempty"`
}
