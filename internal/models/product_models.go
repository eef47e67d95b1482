package models

import "time"

// Category is a simple named grouping for products.
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Product is a sellable item with tracked stock.
// Low stock means StockQuantity <= MinStockLevel.
type Product struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Price         float64   `json:"price" db:"price"`
	CategoryID    int64     `json:"category_id" db:"category_id"`
	StockQuantity int       `json:"stock_quantity" db:"stock_quantity"`
	MinStockLevel int       `json:"min_stock_level" db:"min_stock_level"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
	Category      *Category `json:"category,omitempty"`
}

// IsLowStock reports whether the product is at or below its minimum level.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinStockLevel
}

// Stock movement types. Sales and cancellations are recorded automatically;
// adjustments come from the manager's stock route.
const (
	MovementSale       = "sale"
	MovementReturn     = "return_cancellation"
	MovementAdjustment = "adjustment"
)

// StockMovement is an audit row for every stock_quantity change.
type StockMovement struct {
	ID              int64     `json:"id" db:"id"`
	ProductID       int64     `json:"product_id" db:"product_id"`
	UserID          *int64    `json:"user_id,omitempty" db:"user_id"`
	MovementType    string    `json:"movement_type" db:"movement_type"`
	QuantityChanged int       `json:"quantity_changed" db:"quantity_changed"`
	Reason          *string   `json:"reason,omitempty" db:"reason"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	Product         *Product  `json:"product,omitempty"`
}
