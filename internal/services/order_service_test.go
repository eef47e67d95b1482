package services

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
	"github.com/Isba24ha/barliberty-sub000/internal/repositories"
)

var (
	tableCols   = []string{"id", "number", "capacity", "status", "current_order_id", "created_at", "updated_at"}
	productCols = []string{"id", "name", "price", "category_id", "stock_quantity", "min_stock_level", "is_active", "created_at", "updated_at"}
	orderCols   = []string{"id", "table_id", "server_id", "session_id", "status", "total_amount", "notes", "created_at", "updated_at"}
	orderJoinCols = []string{
		"id", "table_id", "server_id", "session_id", "status", "total_amount", "notes",
		"created_at", "updated_at", "table_number", "table_status",
		"server_username", "server_name", "server_role",
	}
	orderItemCols = []string{"id", "order_id", "product_id", "quantity", "unit_price", "total_price", "created_at"}
)

func buildOrderService(db *sql.DB) OrderService {
	return NewOrderService(
		repositories.NewOrderRepository(db),
		repositories.NewProductRepository(db),
		repositories.NewTableRepository(db),
		repositories.NewSessionRepository(db),
		repositories.NewStockMovementRepository(db),
		db,
	)
}

func TestCreateOrderTableOccupied(t *testing.T) {
	db, mock := newMockService(t)
	svc := buildOrderService(db)

	now := time.Now()
	mock.ExpectQuery(`FROM bar_sessions\s+WHERE user_id = \$1 AND is_active = TRUE`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow(int64(2), int64(7), models.ShiftMorning, now, nil, 0.0, 0, true, now, now))
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM venue_tables WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(tableCols).
			AddRow(int64(4), 4, 4, models.TableOccupied, int64(8), now, now))
	mock.ExpectRollback()

	req := CreateOrderRequest{
		TableID: 4,
		Items:   []CreateOrderItemRequest{{ProductID: 3, Quantity: 1}},
	}
	_, err := svc.CreateOrder(7, models.RoleCashier, req)
	if !errors.Is(err, ErrTableOccupied) {
		t.Fatalf("expected ErrTableOccupied, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	db, mock := newMockService(t)
	svc := buildOrderService(db)

	now := time.Now()
	mock.ExpectQuery(`FROM bar_sessions\s+WHERE user_id = \$1 AND is_active = TRUE`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow(int64(2), int64(7), models.ShiftMorning, now, nil, 0.0, 0, true, now, now))
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM venue_tables WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(tableCols).
			AddRow(int64(4), 4, 4, models.TableFree, nil, now, now))
	mock.ExpectQuery(`FROM products WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(int64(3), "Super Bock", 15.00, int64(1), 1, 5, true, now, now))
	mock.ExpectRollback()

	req := CreateOrderRequest{
		TableID: 4,
		Items:   []CreateOrderItemRequest{{ProductID: 3, Quantity: 3}},
	}
	_, err := svc.CreateOrder(7, models.RoleCashier, req)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateOrderStatusInvalidTransition(t *testing.T) {
	db, mock := newMockService(t)
	svc := buildOrderService(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(int64(9), int64(4), int64(7), int64(2), models.OrderReady, 30.00, nil, now, now))
	mock.ExpectRollback()

	_, err := svc.UpdateOrderStatus(9, UpdateOrderStatusRequest{Status: models.OrderPreparing})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateOrderStatusTerminalOrder(t *testing.T) {
	db, mock := newMockService(t)
	svc := buildOrderService(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(int64(9), int64(4), int64(7), int64(2), models.OrderCompleted, 30.00, nil, now, now))
	mock.ExpectRollback()

	_, err := svc.UpdateOrderStatus(9, UpdateOrderStatusRequest{Status: models.OrderPreparing})
	if !errors.Is(err, ErrOrderNotEditable) {
		t.Fatalf("expected ErrOrderNotEditable, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCancelOrderRestoresStockAndFreesTable(t *testing.T) {
	db, mock := newMockService(t)
	svc := buildOrderService(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(int64(9), int64(4), int64(7), int64(2), models.OrderPending, 30.00, nil, now, now))
	mock.ExpectQuery(`FROM order_items WHERE order_id = \$1 ORDER BY id`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(orderItemCols).
			AddRow(int64(1), int64(9), int64(3), 2, 15.00, 30.00, now))
	mock.ExpectQuery(`UPDATE products\s+SET stock_quantity = stock_quantity \+ \$1`).
		WithArgs(2, sqlmock.AnyArg(), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}).AddRow(12))
	mock.ExpectQuery(`INSERT INTO stock_movements`).
		WithArgs(int64(3), int64(7), models.MovementReturn, 2, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(50)))
	mock.ExpectExec(`UPDATE orders SET status = \$1`).
		WithArgs(models.OrderCancelled, sqlmock.AnyArg(), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM venue_tables WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(tableCols).
			AddRow(int64(4), 4, 4, models.TableOccupied, int64(9), now, now))
	mock.ExpectExec(`UPDATE venue_tables SET status = \$1, current_order_id = \$2`).
		WithArgs(models.TableFree, sqlmock.AnyArg(), sqlmock.AnyArg(), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`FROM orders o\s+JOIN venue_tables vt`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(orderJoinCols).
			AddRow(int64(9), int64(4), int64(7), int64(2), models.OrderCancelled, 30.00, nil,
				now, now, 4, models.TableFree, "pedro", "Pedro Mendes", models.RoleServer))
	mock.ExpectQuery(`FROM order_items oi\s+JOIN products p`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_id", "product_id", "quantity", "unit_price", "total_price", "created_at",
			"product_name", "product_price", "product_category_id",
		}).AddRow(int64(1), int64(9), int64(3), 2, 15.00, 30.00, now, "Super Bock", 15.00, int64(1)))

	order, err := svc.CancelOrder(7, 9)
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if order.Status != models.OrderCancelled {
		t.Fatalf("expected cancelled status, got %s", order.Status)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(order.Items))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
