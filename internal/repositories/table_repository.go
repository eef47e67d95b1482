package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Isba24ha/barliberty-sub000/internal/models"

	"github.com/lib/pq"
)

// TableRepository defines the interface for venue-table database operations.
type TableRepository interface {
	CreateTable(executor SQLExecutor, table *models.VenueTable) (int64, error)
	GetTables() ([]models.VenueTable, error)
	GetTableByID(id int64) (*models.VenueTable, error)
	GetTableForUpdate(executor SQLExecutor, id int64) (*models.VenueTable, error)
	UpdateTable(executor SQLExecutor, table *models.VenueTable) error
	UpdateTableStatus(executor SQLExecutor, id int64, status string, orderID *int64) error
}

type tableRepository struct {
	db *sql.DB
}

// NewTableRepository creates a new instance of TableRepository.
func NewTableRepository(db *sql.DB) TableRepository {
	return &tableRepository{db: db}
}

const tableColumns = `id, number, capacity, status, current_order_id, created_at, updated_at`

func scanTable(row interface{ Scan(dest ...interface{}) error }) (*models.VenueTable, error) {
	t := &models.VenueTable{}
	var currentOrderID sql.NullInt64
	err := row.Scan(&t.ID, &t.Number, &t.Capacity, &t.Status, &currentOrderID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if currentOrderID.Valid {
		t.CurrentOrderID = &currentOrderID.Int64
	}
	return t, nil
}

func (r *tableRepository) CreateTable(executor SQLExecutor, table *models.VenueTable) (int64, error) {
	query := `INSERT INTO venue_tables (number, capacity, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	currentTime := time.Now()
	if table.Status == "" {
		table.Status = models.TableFree
	}
	if table.Capacity <= 0 {
		table.Capacity = 4
	}

	err := executor.QueryRow(query, table.Number, table.Capacity, table.Status, currentTime, currentTime).Scan(&table.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: table number %d already exists (constraint: %s)", ErrDuplicateKey, table.Number, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating table: %v", ErrDatabaseError, err)
	}
	return table.ID, nil
}

func (r *tableRepository) GetTables() ([]models.VenueTable, error) {
	tables := []models.VenueTable{}
	query := `SELECT ` + tableColumns + ` FROM venue_tables ORDER BY number`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying tables: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning table: %v", ErrDatabaseError, err)
		}
		tables = append(tables, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating table rows: %v", ErrDatabaseError, err)
	}
	return tables, nil
}

func (r *tableRepository) GetTableByID(id int64) (*models.VenueTable, error) {
	query := `SELECT ` + tableColumns + ` FROM venue_tables WHERE id = $1`
	table, err := scanTable(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting table by ID %d: %v", ErrDatabaseError, id, err)
	}
	return table, nil
}

// GetTableForUpdate locks the table row so concurrent order creation against
// the same table serializes on the row lock.
func (r *tableRepository) GetTableForUpdate(executor SQLExecutor, id int64) (*models.VenueTable, error) {
	query := `SELECT ` + tableColumns + ` FROM venue_tables WHERE id = $1 FOR UPDATE`
	table, err := scanTable(executor.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking table ID %d: %v", ErrDatabaseError, id, err)
	}
	return table, nil
}

func (r *tableRepository) UpdateTable(executor SQLExecutor, table *models.VenueTable) error {
	query := `UPDATE venue_tables SET number = $1, capacity = $2, updated_at = $3 WHERE id = $4`
	result, err := executor.Exec(query, table.Number, table.Capacity, time.Now(), table.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: table number %d already exists (constraint: %s)", ErrDuplicateKey, table.Number, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating table ID %d: %v", ErrDatabaseError, table.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateTableStatus overwrites status and current_order_id together so the
// occupied/current-order invariant cannot be half-applied.
func (r *tableRepository) UpdateTableStatus(executor SQLExecutor, id int64, status string, orderID *int64) error {
	var currentOrderID sql.NullInt64
	if orderID != nil {
		currentOrderID = sql.NullInt64{Int64: *orderID, Valid: true}
	}

	query := `UPDATE venue_tables SET status = $1, current_order_id = $2, updated_at = $3 WHERE id = $4`
	result, err := executor.Exec(query, status, currentOrderID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating status for table ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for table status update ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
