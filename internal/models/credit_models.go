package models

import "time"

// CreditClient is a customer permitted to defer payment against a running
// balance. TotalCredit is the amount currently owed; it may never exceed
// CreditLimit and never goes negative.
type CreditClient struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" binding:"required"`
	Email       *string   `json:"email,omitempty" db:"email"`
	Phone       *string   `json:"phone,omitempty" db:"phone"`
	TotalCredit float64   `json:"total_credit" db:"total_credit"`
	CreditLimit float64   `json:"credit_limit" db:"credit_limit"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
