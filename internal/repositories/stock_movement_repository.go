package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
)

// StockMovementRepository defines the interface for stock-movement database operations.
type StockMovementRepository interface {
	CreateMovement(executor SQLExecutor, movement *models.StockMovement) (int64, error)
	GetMovements(productID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error)
}

type stockMovementRepository struct {
	db *sql.DB
}

// NewStockMovementRepository creates a new instance of StockMovementRepository.
func NewStockMovementRepository(db *sql.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) CreateMovement(executor SQLExecutor, movement *models.StockMovement) (int64, error) {
	query := `INSERT INTO stock_movements (product_id, user_id, movement_type, quantity_changed, reason, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	var userID sql.NullInt64
	if movement.UserID != nil {
		userID = sql.NullInt64{Int64: *movement.UserID, Valid: true}
	}

	err := executor.QueryRow(query,
		movement.ProductID, userID, movement.MovementType, movement.QuantityChanged,
		movement.Reason, time.Now(),
	).Scan(&movement.ID)

	if err != nil {
		return 0, fmt.Errorf("%w: creating stock movement: %v", ErrDatabaseError, err)
	}
	return movement.ID, nil
}

func (r *stockMovementRepository) GetMovements(productID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error) {
	movements := []models.StockMovement{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    sm.id, sm.product_id, sm.user_id, sm.movement_type, sm.quantity_changed,
	    sm.reason, sm.created_at,
	    p.name AS product_name,
	    COUNT(*) OVER() AS total_count
	  FROM stock_movements sm
	  JOIN products p ON sm.product_id = p.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if productID != nil {
		conditions = append(conditions, fmt.Sprintf("sm.product_id = $%d", argCount))
		args = append(args, *productID)
		argCount++
	}
	if movementType != nil && *movementType != "" {
		conditions = append(conditions, fmt.Sprintf("sm.movement_type = $%d", argCount))
		args = append(args, *movementType)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY sm.created_at DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting stock movements: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var movement models.StockMovement
		var product models.Product
		var scannedUserID sql.NullInt64
		var productName sql.NullString

		if err := rows.Scan(
			&movement.ID, &movement.ProductID, &scannedUserID, &movement.MovementType, &movement.QuantityChanged,
			&movement.Reason, &movement.CreatedAt,
			&productName,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning stock movement: %v", ErrDatabaseError, err)
		}

		product.ID = movement.ProductID
		if productName.Valid {
			product.Name = productName.String
		}
		movement.Product = &product

		if scannedUserID.Valid {
			movement.UserID = &scannedUserID.Int64
		}

		movements = append(movements, movement)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating stock movements: %v", ErrDatabaseError, err)
	}

	return movements, totalCount, nil
}
