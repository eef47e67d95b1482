package models

import "time"

// Shift types for a cashier session.
const (
	ShiftMorning = "morning"
	ShiftEvening = "evening"
)

// BarSession is a cashier's bounded working period. Sales are attributed to
// the session they were recorded under; totals are frozen when it ends.
type BarSession struct {
	ID               int64      `json:"id" db:"id"`
	UserID           int64      `json:"user_id" db:"user_id"`
	ShiftType        string     `json:"shift_type" db:"shift_type"`
	StartTime        time.Time  `json:"start_time" db:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty" db:"end_time"`
	TotalSales       float64    `json:"total_sales" db:"total_sales"`
	TransactionCount int        `json:"transaction_count" db:"transaction_count"`
	IsActive         bool       `json:"is_active" db:"is_active"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
	User             *User      `json:"user,omitempty"`
}

// SessionStats is a read-time aggregation snapshot for one session.
// It is computed from the payments table, never maintained as a counter.
type SessionStats struct {
	SessionID         int64   `json:"session_id"`
	TotalSales        float64 `json:"total_sales"`
	TransactionCount  int     `json:"transaction_count"`
	CashTotal         float64 `json:"cash_total"`
	MobileMoneyTotal  float64 `json:"mobile_money_total"`
	CreditTotal       float64 `json:"credit_total"`
	OccupiedTables    int     `json:"occupied_tables"`
	TotalTables       int     `json:"total_tables"`
	OutstandingCredit float64 `json:"outstanding_credit"`
}
