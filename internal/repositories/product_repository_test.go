package repositories

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
)

func TestAdjustStock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(`UPDATE products\s+SET stock_quantity = stock_quantity \+ \$1`).
		WithArgs(-3, sqlmock.AnyArg(), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}).AddRow(7))

	newStock, err := repo.AdjustStock(db, 5, -3)
	if err != nil {
		t.Fatalf("adjust stock: %v", err)
	}
	if newStock != 7 {
		t.Fatalf("expected new stock 7, got %d", newStock)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAdjustStockBelowZeroRejected(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	// The WHERE guard filters the row out, so the RETURNING scan sees no rows.
	mock.ExpectQuery(`UPDATE products\s+SET stock_quantity = stock_quantity \+ \$1`).
		WithArgs(-50, sqlmock.AnyArg(), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}))

	_, err := repo.AdjustStock(db, 5, -50)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateCategoryDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	pqErr := &pq.Error{Code: "23505", Constraint: "categories_name_key"}
	mock.ExpectQuery(`INSERT INTO categories`).
		WithArgs("Beers", sqlmock.AnyArg()).
		WillReturnError(pqErr)

	category := models.Category{Name: "Beers"}
	_, err := repo.CreateCategory(db, &category)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
