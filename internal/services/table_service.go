package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
	"github.com/Isba24ha/barliberty-sub000/internal/repositories"
)

var (
	ErrTableNumberExists  = errors.New("a table with this number already exists")
	ErrInvalidTableStatus = errors.New("invalid table status")
	ErrTableHasOpenOrder  = errors.New("table has an open order and cannot be changed manually")
)

// --- Data Transfer Objects (DTOs) ---

// CreateTableRequest is used for creating a new venue table.
type CreateTableRequest struct {
	Number   int `json:"number" binding:"required,gt=0"`
	Capacity int `json:"capacity" binding:"required,gt=0"`
}

// UpdateTableRequest edits a table's physical attributes.
type UpdateTableRequest struct {
	Number   int `json:"number" binding:"required,gt=0"`
	Capacity int `json:"capacity" binding:"required,gt=0"`
}

// UpdateTableStatusRequest sets a table's status by hand. occupied requires
// the order it belongs to; free and reserved clear the order reference.
type UpdateTableStatusRequest struct {
	Status  string `json:"status" binding:"required,oneof=free reserved occupied"`
	OrderID *int64 `json:"order_id,omitempty"`
}

// --- TableService Interface ---
type TableService interface {
	CreateTable(req CreateTableRequest) (*models.VenueTable, error)
	GetTables() ([]models.VenueTable, error)
	GetTableByID(tableID int64) (*models.VenueTable, error)
	UpdateTable(tableID int64, req UpdateTableRequest) (*models.VenueTable, error)
	SetTableStatus(tableID int64, req UpdateTableStatusRequest) (*models.VenueTable, error)
}

type tableService struct {
	tableRepo repositories.TableRepository
	db        *sql.DB
}

// NewTableService creates a new instance of TableService.
func NewTableService(tr repositories.TableRepository, db *sql.DB) TableService {
	return &tableService{tableRepo: tr, db: db}
}

func (s *tableService) CreateTable(req CreateTableRequest) (*models.VenueTable, error) {
	table := models.VenueTable{
		Number:   req.Number,
		Capacity: req.Capacity,
		Status:   models.TableFree,
	}
	id, err := s.tableRepo.CreateTable(s.db, &table)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrTableNumberExists
		}
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return s.tableRepo.GetTableByID(id)
}

func (s *tableService) GetTables() ([]models.VenueTable, error) {
	tables, err := s.tableRepo.GetTables()
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}
	return tables, nil
}

func (s *tableService) GetTableByID(tableID int64) (*models.VenueTable, error) {
	table, err := s.tableRepo.GetTableByID(tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to get table by ID: %w", err)
	}
	return table, nil
}

func (s *tableService) UpdateTable(tableID int64, req UpdateTableRequest) (*models.VenueTable, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	table, err := s.tableRepo.GetTableForUpdate(tx, tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to lock table %d: %w", tableID, err)
	}

	table.Number = req.Number
	table.Capacity = req.Capacity
	if err = s.tableRepo.UpdateTable(tx, table); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrTableNumberExists
		}
		return nil, fmt.Errorf("failed to update table %d: %w", tableID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit table update: %w", err)
	}
	return s.tableRepo.GetTableByID(tableID)
}

// SetTableStatus handles the manual status toggle. A table tied to an open
// order is only released through payment or cancellation.
func (s *tableService) SetTableStatus(tableID int64, req UpdateTableStatusRequest) (*models.VenueTable, error) {
	if req.Status == models.TableOccupied && req.OrderID == nil {
		return nil, fmt.Errorf("%w: occupied requires an order_id", ErrInvalidTableStatus)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	table, err := s.tableRepo.GetTableForUpdate(tx, tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to lock table %d: %w", tableID, err)
	}
	if table.Status == models.TableOccupied && table.CurrentOrderID != nil {
		return nil, ErrTableHasOpenOrder
	}

	var orderID *int64
	if req.Status == models.TableOccupied {
		orderID = req.OrderID
	}
	if err = s.tableRepo.UpdateTableStatus(tx, tableID, req.Status, orderID); err != nil {
		return nil, fmt.Errorf("failed to update table status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit table status transaction: %w", err)
	}
	return s.tableRepo.GetTableByID(tableID)
}
