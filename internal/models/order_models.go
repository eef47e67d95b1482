package models

import "time"

// Order statuses. completed and cancelled are terminal.
const (
	OrderPending   = "pending"
	OrderPreparing = "preparing"
	OrderReady     = "ready"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Order belongs to a table, a server (user) and a session. TotalAmount is
// always derived server-side from the sum of its item totals.
type Order struct {
	ID          int64       `json:"id" db:"id"`
	TableID     int64       `json:"table_id" db:"table_id"`
	ServerID    int64       `json:"server_id" db:"server_id"`
	SessionID   int64       `json:"session_id" db:"session_id"`
	Status      string      `json:"status" db:"status"`
	TotalAmount float64     `json:"total_amount" db:"total_amount"`
	Notes       *string     `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
	Items       []OrderItem `json:"items"`
	Table       *VenueTable `json:"table,omitempty"`
	Server      *User       `json:"server,omitempty"`
}

// IsTerminal reports whether the order can no longer be mutated.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderCompleted || o.Status == OrderCancelled
}

// IsValidOrderStatus reports whether status is one of the known order statuses.
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderPending, OrderPreparing, OrderReady, OrderCompleted, OrderCancelled:
		return true
	default:
		return false
	}
}

// OrderItem snapshots the product price at creation time. Snapshots are
// never recomputed if the product price later changes.
type OrderItem struct {
	ID         int64     `json:"id" db:"id"`
	OrderID    int64     `json:"order_id" db:"order_id"`
	ProductID  int64     `json:"product_id" db:"product_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	UnitPrice  float64   `json:"unit_price" db:"unit_price"`
	TotalPrice float64   `json:"total_price" db:"total_price"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	Product    *Product  `json:"product,omitempty"`
}

// OrderFilters defines the available filters for querying orders.
// Used by both the service and repository layers.
type OrderFilters struct {
	TableID   *int64  `form:"table_id"`
	ServerID  *int64  `form:"server_id"`
	SessionID *int64  `form:"session_id"`
	Status    *string `form:"status"`
	Date      *string `form:"date"` // Expected format YYYY-MM-DD
	Page      int     `form:"page"`
	PageSize  int     `form:"page_size"`
}
