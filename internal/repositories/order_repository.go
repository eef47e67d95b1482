package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Isba24ha/barliberty-sub000/internal/models"

	"github.com/lib/pq"
)

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	// Order methods
	CreateOrder(executor SQLExecutor, order *models.Order) (int64, error)
	GetOrderByID(id int64) (*models.Order, error)
	GetOrderForUpdate(executor SQLExecutor, id int64) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error) // orders, total count, error
	GetPendingOrders() ([]models.Order, error)
	UpdateOrderStatus(executor SQLExecutor, orderID int64, newStatus string, updatedAt time.Time) error
	UpdateOrderTotal(executor SQLExecutor, orderID int64, totalAmount float64, updatedAt time.Time) error

	// OrderItem methods
	CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error)
	GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error)
	GetOrderItemsByOrderIDs(orderIDs []int64) (map[int64][]models.OrderItem, error)
	GetOrderItemsForUpdate(executor SQLExecutor, orderID int64) ([]models.OrderItem, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// --- Order Methods ---

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) (int64, error) {
	query := `INSERT INTO orders (table_id, server_id, session_id, status, total_amount, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	currentTime := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = currentTime
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = currentTime
	}

	err := executor.QueryRow(query,
		order.TableID, order.ServerID, order.SessionID, order.Status,
		order.TotalAmount, order.Notes, order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return 0, fmt.Errorf("%w: creating order (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return order.ID, nil
}

const orderSelect = `SELECT
	    o.id, o.table_id, o.server_id, o.session_id, o.status, o.total_amount, o.notes,
	    o.created_at, o.updated_at,
	    vt.number AS table_number, vt.status AS table_status,
	    u.username AS server_username, u.full_name AS server_name, u.role AS server_role
	FROM orders o
	JOIN venue_tables vt ON o.table_id = vt.id
	JOIN users u ON o.server_id = u.id`

func scanOrderWithJoins(row interface{ Scan(dest ...interface{}) error }) (*models.Order, error) {
	o := &models.Order{}
	table := &models.VenueTable{}
	server := &models.User{}
	var serverName sql.NullString

	err := row.Scan(
		&o.ID, &o.TableID, &o.ServerID, &o.SessionID, &o.Status, &o.TotalAmount, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
		&table.Number, &table.Status,
		&server.Username, &serverName, &server.Role,
	)
	if err != nil {
		return nil, err
	}

	table.ID = o.TableID
	o.Table = table
	server.ID = o.ServerID
	if serverName.Valid {
		name := serverName.String
		server.FullName = &name
	}
	o.Server = server
	return o, nil
}

func (r *orderRepository) GetOrderByID(id int64) (*models.Order, error) {
	query := orderSelect + ` WHERE o.id = $1`
	order, err := scanOrderWithJoins(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by ID %d: %v", ErrDatabaseError, id, err)
	}
	return order, nil
}

// GetOrderForUpdate locks the order row for the remainder of the surrounding
// transaction. Payments, item additions and cancellation all lock first so
// concurrent mutations of the same order serialize.
func (r *orderRepository) GetOrderForUpdate(executor SQLExecutor, id int64) (*models.Order, error) {
	query := `SELECT id, table_id, server_id, session_id, status, total_amount, notes, created_at, updated_at
	          FROM orders WHERE id = $1 FOR UPDATE`
	o := &models.Order{}
	err := executor.QueryRow(query, id).Scan(
		&o.ID, &o.TableID, &o.ServerID, &o.SessionID, &o.Status, &o.TotalAmount, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking order ID %d: %v", ErrDatabaseError, id, err)
	}
	return o, nil
}

func (r *orderRepository) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    o.id, o.table_id, o.server_id, o.session_id, o.status, o.total_amount, o.notes,
	    o.created_at, o.updated_at,
	    vt.number AS table_number, vt.status AS table_status,
	    u.username AS server_username, u.full_name AS server_name, u.role AS server_role,
	    COUNT(*) OVER() AS total_count
	FROM orders o
	JOIN venue_tables vt ON o.table_id = vt.id
	JOIN users u ON o.server_id = u.id`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.TableID != nil {
		conditions = append(conditions, fmt.Sprintf("o.table_id = $%d", argCounter))
		args = append(args, *filters.TableID)
		argCounter++
	}
	if filters.ServerID != nil {
		conditions = append(conditions, fmt.Sprintf("o.server_id = $%d", argCounter))
		args = append(args, *filters.ServerID)
		argCounter++
	}
	if filters.SessionID != nil {
		conditions = append(conditions, fmt.Sprintf("o.session_id = $%d", argCounter))
		args = append(args, *filters.SessionID)
		argCounter++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}
	if filters.Date != nil && *filters.Date != "" {
		parsedDate, err := time.Parse("2006-01-02", *filters.Date)
		if err == nil {
			startOfDay := time.Date(parsedDate.Year(), parsedDate.Month(), parsedDate.Day(), 0, 0, 0, 0, parsedDate.Location())
			endOfDay := startOfDay.AddDate(0, 0, 1)
			conditions = append(conditions, fmt.Sprintf("o.created_at >= $%d AND o.created_at < $%d", argCounter, argCounter+1))
			args = append(args, startOfDay, endOfDay)
			argCounter += 2
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY o.created_at DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		o := models.Order{}
		table := models.VenueTable{}
		server := models.User{}
		var serverName sql.NullString

		err := rows.Scan(
			&o.ID, &o.TableID, &o.ServerID, &o.SessionID, &o.Status, &o.TotalAmount, &o.Notes,
			&o.CreatedAt, &o.UpdatedAt,
			&table.Number, &table.Status,
			&server.Username, &serverName, &server.Role,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}

		table.ID = o.TableID
		o.Table = &table
		server.ID = o.ServerID
		if serverName.Valid {
			name := serverName.String
			server.FullName = &name
		}
		o.Server = &server
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

// GetPendingOrders returns every order still in the kitchen pipeline
// (pending, preparing, ready), oldest first.
func (r *orderRepository) GetPendingOrders() ([]models.Order, error) {
	orders := []models.Order{}
	query := orderSelect + ` WHERE o.status IN ('pending', 'preparing', 'ready') ORDER BY o.created_at`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying pending orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		o, err := scanOrderWithJoins(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning pending order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, *o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating pending order rows: %v", ErrDatabaseError, err)
	}
	return orders, nil
}

func (r *orderRepository) UpdateOrderStatus(executor SQLExecutor, orderID int64, newStatus string, updatedAt time.Time) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, newStatus, updatedAt, orderID)
	if err != nil {
		return fmt.Errorf("%w: updating order status for ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for order status update ID %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) UpdateOrderTotal(executor SQLExecutor, orderID int64, totalAmount float64, updatedAt time.Time) error {
	query := `UPDATE orders SET total_amount = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, totalAmount, updatedAt, orderID)
	if err != nil {
		return fmt.Errorf("%w: updating order total for ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for order total update ID %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- OrderItem Methods ---

func (r *orderRepository) CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error) {
	query := `INSERT INTO order_items (order_id, product_id, quantity, unit_price, total_price, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	err := executor.QueryRow(query,
		item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice, time.Now(),
	).Scan(&item.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating order item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating order item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

const orderItemSelect = `SELECT
	    oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, oi.total_price, oi.created_at,
	    p.name AS product_name, p.price AS product_price, p.category_id AS product_category_id
	FROM order_items oi
	JOIN products p ON oi.product_id = p.id`

func scanOrderItemWithProduct(row interface{ Scan(dest ...interface{}) error }) (*models.OrderItem, error) {
	item := &models.OrderItem{}
	product := &models.Product{}

	err := row.Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice,
		&item.TotalPrice, &item.CreatedAt,
		&product.Name, &product.Price, &product.CategoryID,
	)
	if err != nil {
		return nil, err
	}

	product.ID = item.ProductID
	item.Product = product
	return item, nil
}

func (r *orderRepository) GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	query := orderItemSelect + ` WHERE oi.order_id = $1 ORDER BY oi.id`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanOrderItemWithProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning order item for order ID %d: %v", ErrDatabaseError, orderID, err)
		}
		items = append(items, *item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order item rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return items, nil
}

// GetOrderItemsByOrderIDs hydrates items for a set of orders in one query,
// keyed by order id. Replaces the per-order secondary fetch so listing N
// orders costs two queries, not N+1.
func (r *orderRepository) GetOrderItemsByOrderIDs(orderIDs []int64) (map[int64][]models.OrderItem, error) {
	itemsByOrder := make(map[int64][]models.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return itemsByOrder, nil
	}

	query := orderItemSelect + ` WHERE oi.order_id = ANY($1) ORDER BY oi.order_id, oi.id`

	rows, err := r.db.Query(query, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("%w: querying order items for %d orders: %v", ErrDatabaseError, len(orderIDs), err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanOrderItemWithProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning batched order item: %v", ErrDatabaseError, err)
		}
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], *item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating batched order item rows: %v", ErrDatabaseError, err)
	}
	return itemsByOrder, nil
}

// GetOrderItemsForUpdate reads an order's items through the given executor so
// cancellation can restore stock inside its own transaction.
func (r *orderRepository) GetOrderItemsForUpdate(executor SQLExecutor, orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	query := `SELECT id, order_id, product_id, quantity, unit_price, total_price, created_at
	          FROM order_items WHERE order_id = $1 ORDER BY id`

	rows, err := executor.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order items in tx for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.TotalPrice, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning order item in tx for order ID %d: %v", ErrDatabaseError, orderID, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order item rows in tx for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return items, nil
}
