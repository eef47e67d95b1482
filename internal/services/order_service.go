package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
	"github.com/Isba24ha/barliberty-sub000/internal/repositories"
	"github.com/Isba24ha/barliberty-sub000/pkg/utils"
)

var (
	ErrProductNotFound   = errors.New("product not found or not available")
	ErrInsufficientStock = errors.New("insufficient stock for product")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrOrderNotEditable  = errors.New("order is in a terminal status and cannot be modified")
	ErrTableNotFound     = errors.New("table not found")
	ErrTableOccupied     = errors.New("table already has an open order")
)

// --- Data Transfer Objects (DTOs) ---

// CreateOrderItemRequest is one line of a new order. Prices are never taken
// from the client; they are snapshotted from the product row server-side.
type CreateOrderItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest is used for creating a new order.
type CreateOrderRequest struct {
	TableID int64                    `json:"table_id" binding:"required"`
	Notes   string                   `json:"notes"`
	Items   []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// AddOrderItemRequest adds a line to an existing non-terminal order.
type AddOrderItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// UpdateOrderStatusRequest moves an order along the kitchen pipeline.
// completed is reachable only through payments; cancelled only through the
// cancel route.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=preparing ready"`
}

// --- OrderService Interface ---
type OrderService interface {
	CreateOrder(userID int64, role string, req CreateOrderRequest) (*models.Order, error)
	AddOrderItem(userID int64, orderID int64, req AddOrderItemRequest) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	GetPendingOrders() ([]models.Order, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	UpdateOrderStatus(orderID int64, req UpdateOrderStatusRequest) (*models.Order, error)
	CancelOrder(userID int64, orderID int64) (*models.Order, error)
}

type orderService struct {
	orderRepo    repositories.OrderRepository
	productRepo  repositories.ProductRepository
	tableRepo    repositories.TableRepository
	sessionRepo  repositories.SessionRepository
	movementRepo repositories.StockMovementRepository
	db           *sql.DB
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	or repositories.OrderRepository,
	pr repositories.ProductRepository,
	tr repositories.TableRepository,
	sr repositories.SessionRepository,
	mr repositories.StockMovementRepository,
	db *sql.DB,
) OrderService {
	return &orderService{
		orderRepo:    or,
		productRepo:  pr,
		tableRepo:    tr,
		sessionRepo:  sr,
		movementRepo: mr,
		db:           db,
	}
}

// resolveSession finds the session new work is attributed to. Cashiers must
// own an open shift; servers and managers attach to the venue's current one.
func (s *orderService) resolveSession(userID int64, role string) (*models.BarSession, error) {
	if role == models.RoleCashier {
		session, err := s.sessionRepo.GetActiveSessionByUser(s.db, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrNoActiveSession
			}
			return nil, fmt.Errorf("failed to resolve cashier session: %w", err)
		}
		return session, nil
	}

	session, err := s.sessionRepo.GetCurrentSession()
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("failed to resolve venue session: %w", err)
	}
	return session, nil
}

// CreateOrder creates an order with its items as one atomic unit. Stock is
// decremented, price snapshots taken, the total derived server-side, and the
// table flipped to occupied, all in a single transaction.
func (s *orderService) CreateOrder(userID int64, role string, req CreateOrderRequest) (*models.Order, error) {
	session, err := s.resolveSession(userID, role)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	table, err := s.tableRepo.GetTableForUpdate(tx, req.TableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to lock table %d: %w", req.TableID, err)
	}
	if table.Status == models.TableOccupied {
		return nil, fmt.Errorf("%w: table %d", ErrTableOccupied, table.Number)
	}

	var totalAmount float64
	orderItemsToCreate := make([]models.OrderItem, 0, len(req.Items))

	for _, itemReq := range req.Items {
		product, repoErr := s.productRepo.GetProductForUpdate(tx, itemReq.ProductID)
		if repoErr != nil {
			if errors.Is(repoErr, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: product ID %d", ErrProductNotFound, itemReq.ProductID)
			}
			return nil, fmt.Errorf("failed to fetch product %d: %w", itemReq.ProductID, repoErr)
		}
		if !product.IsActive {
			return nil, fmt.Errorf("%w: product %s (ID: %d) is inactive", ErrProductNotFound, product.Name, product.ID)
		}
		if product.StockQuantity < itemReq.Quantity {
			return nil, fmt.Errorf("%w %s (ID: %d). Requested: %d, Available: %d",
				ErrInsufficientStock, product.Name, product.ID, itemReq.Quantity, product.StockQuantity)
		}

		if _, repoErr = s.productRepo.AdjustStock(tx, product.ID, -itemReq.Quantity); repoErr != nil {
			return nil, fmt.Errorf("failed to decrement stock for product %s (ID: %d): %w", product.Name, product.ID, repoErr)
		}
		movement := models.StockMovement{
			ProductID:       product.ID,
			UserID:          &userID,
			MovementType:    models.MovementSale,
			QuantityChanged: -itemReq.Quantity,
			Reason:          models.NewNullString("Order creation"),
		}
		if _, repoErr = s.movementRepo.CreateMovement(tx, &movement); repoErr != nil {
			return nil, fmt.Errorf("failed to record stock movement for product %d: %w", product.ID, repoErr)
		}

		itemTotal := utils.RoundMoney(product.Price * float64(itemReq.Quantity))
		totalAmount = utils.RoundMoney(totalAmount + itemTotal)

		orderItemsToCreate = append(orderItemsToCreate, models.OrderItem{
			ProductID:  product.ID,
			Quantity:   itemReq.Quantity,
			UnitPrice:  product.Price,
			TotalPrice: itemTotal,
		})
	}

	order := models.Order{
		TableID:     req.TableID,
		ServerID:    userID,
		SessionID:   session.ID,
		Status:      models.OrderPending,
		TotalAmount: totalAmount,
		Notes:       models.NewNullString(req.Notes),
	}

	createdOrderID, repoErr := s.orderRepo.CreateOrder(tx, &order)
	if repoErr != nil {
		return nil, fmt.Errorf("failed to create order record: %w", repoErr)
	}

	for _, itemModel := range orderItemsToCreate {
		itemModel.OrderID = createdOrderID
		if _, repoErr = s.orderRepo.CreateOrderItem(tx, &itemModel); repoErr != nil {
			return nil, fmt.Errorf("failed to create order item (product_id: %d): %w", itemModel.ProductID, repoErr)
		}
	}

	if err := s.tableRepo.UpdateTableStatus(tx, req.TableID, models.TableOccupied, &createdOrderID); err != nil {
		return nil, fmt.Errorf("failed to occupy table %d: %w", req.TableID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	return s.GetOrderByID(createdOrderID)
}

// AddOrderItem appends a line to a non-terminal order: stock decrement, item
// insert and total recompute share one transaction.
func (s *orderService) AddOrderItem(userID int64, orderID int64, req AddOrderItemRequest) (*models.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderForUpdate(tx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock order %d: %w", orderID, err)
	}
	if order.IsTerminal() {
		return nil, ErrOrderNotEditable
	}

	product, err := s.productRepo.GetProductForUpdate(tx, req.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: product ID %d", ErrProductNotFound, req.ProductID)
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", req.ProductID, err)
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: product %s (ID: %d) is inactive", ErrProductNotFound, product.Name, product.ID)
	}
	if product.StockQuantity < req.Quantity {
		return nil, fmt.Errorf("%w %s (ID: %d). Requested: %d, Available: %d",
			ErrInsufficientStock, product.Name, product.ID, req.Quantity, product.StockQuantity)
	}

	if _, err = s.productRepo.AdjustStock(tx, product.ID, -req.Quantity); err != nil {
		return nil, fmt.Errorf("failed to decrement stock for product %d: %w", product.ID, err)
	}
	movement := models.StockMovement{
		ProductID:       product.ID,
		UserID:          &userID,
		MovementType:    models.MovementSale,
		QuantityChanged: -req.Quantity,
		Reason:          models.NewNullString(fmt.Sprintf("Added to order %d", orderID)),
	}
	if _, err = s.movementRepo.CreateMovement(tx, &movement); err != nil {
		return nil, fmt.Errorf("failed to record stock movement for product %d: %w", product.ID, err)
	}

	itemTotal := utils.RoundMoney(product.Price * float64(req.Quantity))
	item := models.OrderItem{
		OrderID:    orderID,
		ProductID:  product.ID,
		Quantity:   req.Quantity,
		UnitPrice:  product.Price,
		TotalPrice: itemTotal,
	}
	if _, err = s.orderRepo.CreateOrderItem(tx, &item); err != nil {
		return nil, fmt.Errorf("failed to create order item: %w", err)
	}

	newTotal := utils.RoundMoney(order.TotalAmount + itemTotal)
	if err = s.orderRepo.UpdateOrderTotal(tx, orderID, newTotal, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to update order total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit add-item transaction: %w", err)
	}

	return s.GetOrderByID(orderID)
}

func (s *orderService) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders, totalCount, err := s.orderRepo.GetOrders(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	if err := s.hydrateItems(orders); err != nil {
		return nil, 0, err
	}
	return orders, totalCount, nil
}

func (s *orderService) GetPendingOrders() ([]models.Order, error) {
	orders, err := s.orderRepo.GetPendingOrders()
	if err != nil {
		return nil, fmt.Errorf("failed to get pending orders: %w", err)
	}
	if err := s.hydrateItems(orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// hydrateItems attaches items to a page of orders with one batched query.
func (s *orderService) hydrateItems(orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	itemsByOrder, err := s.orderRepo.GetOrderItemsByOrderIDs(ids)
	if err != nil {
		return fmt.Errorf("failed to hydrate order items: %w", err)
	}
	for i := range orders {
		items := itemsByOrder[orders[i].ID]
		if items == nil {
			items = []models.OrderItem{}
		}
		orders[i].Items = items
	}
	return nil
}

func (s *orderService) GetOrderByID(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}

	items, err := s.orderRepo.GetOrderItemsByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items for order %d: %w", orderID, err)
	}
	order.Items = items
	return order, nil
}

// UpdateOrderStatus advances the kitchen pipeline. Only forward moves among
// pending, preparing and ready are allowed here.
func (s *orderService) UpdateOrderStatus(orderID int64, req UpdateOrderStatusRequest) (*models.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderForUpdate(tx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock order for status update: %w", err)
	}

	if order.IsTerminal() {
		return nil, ErrOrderNotEditable
	}

	allowed := map[string][]string{
		models.OrderPending:   {models.OrderPreparing, models.OrderReady},
		models.OrderPreparing: {models.OrderReady},
	}
	valid := false
	for _, next := range allowed[order.Status] {
		if next == req.Status {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, req.Status)
	}

	if err = s.orderRepo.UpdateOrderStatus(tx, orderID, req.Status, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status transaction: %w", err)
	}
	return s.GetOrderByID(orderID)
}

// CancelOrder cancels a non-terminal order: stock restored per item, status
// flipped, and the table freed, all in one transaction.
func (s *orderService) CancelOrder(userID int64, orderID int64) (*models.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderForUpdate(tx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock order for cancel: %w", err)
	}
	if order.IsTerminal() {
		return nil, ErrOrderNotEditable
	}

	items, err := s.orderRepo.GetOrderItemsForUpdate(tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order items for stock return: %w", err)
	}
	for _, item := range items {
		if _, err = s.productRepo.AdjustStock(tx, item.ProductID, item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to return stock for product %d: %w", item.ProductID, err)
		}
		movement := models.StockMovement{
			ProductID:       item.ProductID,
			UserID:          &userID,
			MovementType:    models.MovementReturn,
			QuantityChanged: item.Quantity,
			Reason:          models.NewNullString(fmt.Sprintf("Order %d cancelled", orderID)),
		}
		if _, err = s.movementRepo.CreateMovement(tx, &movement); err != nil {
			return nil, fmt.Errorf("failed to record stock return for product %d: %w", item.ProductID, err)
		}
	}

	if err = s.orderRepo.UpdateOrderStatus(tx, orderID, models.OrderCancelled, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to mark order cancelled: %w", err)
	}

	table, err := s.tableRepo.GetTableForUpdate(tx, order.TableID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock table %d for release: %w", order.TableID, err)
	}
	if table.CurrentOrderID != nil && *table.CurrentOrderID == orderID {
		if err = s.tableRepo.UpdateTableStatus(tx, order.TableID, models.TableFree, nil); err != nil {
			return nil, fmt.Errorf("failed to free table %d: %w", order.TableID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancel transaction: %w", err)
	}
	return s.GetOrderByID(orderID)
}
