package models

import "time"

// Table statuses.
const (
	TableFree     = "free"
	TableOccupied = "occupied"
	TableReserved = "reserved"
)

// VenueTable is a physical table in the venue.
// Invariant: occupied implies CurrentOrderID points at a non-terminal order;
// free implies CurrentOrderID is cleared.
type VenueTable struct {
	ID             int64     `json:"id" db:"id"`
	Number         int       `json:"number" db:"number" binding:"required"`
	Capacity       int       `json:"capacity" db:"capacity"`
	Status         string    `json:"status" db:"status"`
	CurrentOrderID *int64    `json:"current_order_id,omitempty" db:"current_order_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// IsValidTableStatus reports whether status is one of the known table statuses.
func IsValidTableStatus(status string) bool {
	switch status {
	case TableFree, TableOccupied, TableReserved:
		return true
	default:
		return false
	}
}
