package repositories

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
)

var orderItemTestColumns = []string{
	"id", "order_id", "product_id", "quantity", "unit_price", "total_price", "created_at",
	"product_name", "product_price", "product_category_id",
}

func TestGetOrdersFiltersAndPagination(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	status := models.OrderPending
	sessionID := int64(2)
	now := time.Now()

	mock.ExpectQuery(`FROM orders o\s+JOIN venue_tables vt ON o\.table_id = vt\.id\s+JOIN users u ON o\.server_id = u\.id WHERE o\.session_id = \$1 AND o\.status = \$2 ORDER BY o\.created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(sessionID, status, 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "table_id", "server_id", "session_id", "status", "total_amount", "notes",
			"created_at", "updated_at", "table_number", "table_status",
			"server_username", "server_name", "server_role", "total_count",
		}).AddRow(int64(31), int64(4), int64(7), sessionID, status, 18.50, nil,
			now, now, 4, models.TableOccupied, "amara", "Amara D.", models.RoleServer, 23))

	orders, total, err := repo.GetOrders(models.OrderFilters{
		SessionID: &sessionID,
		Status:    &status,
		Page:      2,
		PageSize:  10,
	})
	if err != nil {
		t.Fatalf("get orders: %v", err)
	}
	if total != 23 {
		t.Fatalf("expected total 23, got %d", total)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if orders[0].Table == nil || orders[0].Table.Number != 4 {
		t.Errorf("expected table join populated, got %+v", orders[0].Table)
	}
	if orders[0].Server == nil || orders[0].Server.Username != "amara" {
		t.Errorf("expected server join populated, got %+v", orders[0].Server)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetOrderItemsByOrderIDsBatches(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	now := time.Now()
	mock.ExpectQuery(`WHERE oi\.order_id = ANY\(\$1\) ORDER BY oi\.order_id, oi\.id`).
		WithArgs(pq.Array([]int64{10, 11})).
		WillReturnRows(sqlmock.NewRows(orderItemTestColumns).
			AddRow(int64(1), int64(10), int64(5), 2, 3.00, 6.00, now, "Beer 33cl", 3.00, int64(1)).
			AddRow(int64(2), int64(10), int64(6), 1, 7.50, 7.50, now, "House Wine", 7.50, int64(1)).
			AddRow(int64(3), int64(11), int64(5), 4, 3.00, 12.00, now, "Beer 33cl", 3.00, int64(1)))

	itemsByOrder, err := repo.GetOrderItemsByOrderIDs([]int64{10, 11})
	if err != nil {
		t.Fatalf("batched items: %v", err)
	}
	if len(itemsByOrder[10]) != 2 {
		t.Errorf("expected 2 items for order 10, got %d", len(itemsByOrder[10]))
	}
	if len(itemsByOrder[11]) != 1 {
		t.Errorf("expected 1 item for order 11, got %d", len(itemsByOrder[11]))
	}
	if itemsByOrder[10][0].Product == nil || itemsByOrder[10][0].Product.Name != "Beer 33cl" {
		t.Errorf("expected product join populated, got %+v", itemsByOrder[10][0].Product)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetOrderItemsByOrderIDsEmptySkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	itemsByOrder, err := repo.GetOrderItemsByOrderIDs(nil)
	if err != nil {
		t.Fatalf("batched items with no ids: %v", err)
	}
	if len(itemsByOrder) != 0 {
		t.Fatalf("expected empty map, got %v", itemsByOrder)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectExec(`UPDATE orders SET status = \$1`).
		WithArgs(models.OrderPreparing, sqlmock.AnyArg(), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateOrderStatus(db, 99, models.OrderPreparing, time.Now())
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
