package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
	"github.com/Isba24ha/barliberty-sub000/internal/repositories"
	"github.com/Isba24ha/barliberty-sub000/pkg/utils"
)

var (
	ErrPaymentExceedsBalance   = errors.New("payment amount exceeds outstanding balance")
	ErrCreditClientRequired    = errors.New("credit payments require a credit client")
	ErrCreditClientNotFound    = errors.New("credit client not found")
	ErrCreditClientInactive    = errors.New("credit client is inactive")
	ErrCreditLimitExceeded     = errors.New("credit limit exceeded")
	ErrManagerConsumptionOnly  = errors.New("manager consumption is only allowed for orders served to a manager")
	ErrReceivedBelowAmount     = errors.New("received amount is less than the payment amount")
	ErrRepaymentExceedsBalance = errors.New("repayment exceeds the client's outstanding credit")
)

// --- Data Transfer Objects (DTOs) ---

// CreatePaymentRequest settles (part of) an order. ReceivedAmount only
// matters for cash; change is derived from it.
type CreatePaymentRequest struct {
	OrderID        int64    `json:"order_id" binding:"required"`
	Method         string   `json:"method" binding:"required,oneof=cash mobile_money credit manager_consumption"`
	Amount         float64  `json:"amount" binding:"required,gt=0,money"`
	ReceivedAmount *float64 `json:"received_amount,omitempty" binding:"omitempty,gt=0"`
	IsPartial      bool     `json:"is_partial"`
	CreditClientID *int64   `json:"credit_client_id,omitempty"`
}

// RepaymentRequest pays down a credit client's balance outside any order.
type RepaymentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0,money"`
	Method string  `json:"method" binding:"required,oneof=cash mobile_money"`
}

// --- PaymentService Interface ---
type PaymentService interface {
	CreatePayment(cashierID int64, req CreatePaymentRequest) (*models.Payment, error)
	RecordRepayment(cashierID int64, clientID int64, req RepaymentRequest) (*models.Payment, error)
	GetPaymentsBySession(sessionID int64) ([]models.Payment, error)
}

type paymentService struct {
	paymentRepo repositories.PaymentRepository
	orderRepo   repositories.OrderRepository
	tableRepo   repositories.TableRepository
	sessionRepo repositories.SessionRepository
	creditRepo  repositories.CreditClientRepository
	userRepo    repositories.UserRepository
	db          *sql.DB
}

// NewPaymentService creates a new instance of PaymentService.
func NewPaymentService(
	pr repositories.PaymentRepository,
	or repositories.OrderRepository,
	tr repositories.TableRepository,
	sr repositories.SessionRepository,
	cr repositories.CreditClientRepository,
	ur repositories.UserRepository,
	db *sql.DB,
) PaymentService {
	return &paymentService{
		paymentRepo: pr,
		orderRepo:   or,
		tableRepo:   tr,
		sessionRepo: sr,
		creditRepo:  cr,
		userRepo:    ur,
		db:          db,
	}
}

// Receipt numbers are bare uuids; the payments.receipt_number column is UUID.
func newReceiptNumber() string {
	return uuid.NewString()
}

// CreatePayment records a payment against an order. The payment row, the
// credit balance adjustment, the order completion and the table release all
// commit or roll back together.
func (s *paymentService) CreatePayment(cashierID int64, req CreatePaymentRequest) (*models.Payment, error) {
	session, err := s.sessionRepo.GetActiveSessionByUser(s.db, cashierID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("failed to resolve cashier session: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start payment transaction: %w", err)
	}
	defer tx.Rollback()

	// Re-check under lock: end-session holds this row while it freezes the
	// totals, so a payment cannot land in a session closed mid-flight.
	locked, err := s.sessionRepo.GetSessionForUpdate(tx, session.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("failed to lock session %d: %w", session.ID, err)
	}
	if !locked.IsActive {
		return nil, ErrNoActiveSession
	}

	order, err := s.orderRepo.GetOrderForUpdate(tx, req.OrderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock order %d: %w", req.OrderID, err)
	}
	if order.IsTerminal() {
		return nil, ErrOrderNotEditable
	}

	paidSoFar, err := s.paymentRepo.SumPaymentsForOrder(tx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum prior payments for order %d: %w", req.OrderID, err)
	}
	outstanding := utils.RoundMoney(order.TotalAmount - paidSoFar)

	amount := utils.RoundMoney(req.Amount)

	switch req.Method {
	case models.PaymentManagerConsumption:
		server, repoErr := s.userRepo.FindUserByID(order.ServerID)
		if repoErr != nil {
			return nil, fmt.Errorf("failed to load order server %d: %w", order.ServerID, repoErr)
		}
		if server.Role != models.RoleManager {
			return nil, ErrManagerConsumptionOnly
		}
		// Recorded as zero-charge but still settles the full balance.
		amount = 0
	case models.PaymentCredit:
		if req.CreditClientID == nil {
			return nil, ErrCreditClientRequired
		}
	}

	if req.Method != models.PaymentManagerConsumption && amount > outstanding {
		return nil, fmt.Errorf("%w: amount %.2f, outstanding %.2f", ErrPaymentExceedsBalance, amount, outstanding)
	}

	payment := models.Payment{
		OrderID:       &req.OrderID,
		CashierID:     cashierID,
		SessionID:     session.ID,
		Method:        req.Method,
		Amount:        amount,
		IsPartial:     req.IsPartial,
		ReceiptNumber: newReceiptNumber(),
	}

	if req.Method == models.PaymentCash && req.ReceivedAmount != nil {
		received := utils.RoundMoney(*req.ReceivedAmount)
		if received < amount {
			return nil, fmt.Errorf("%w: received %.2f, due %.2f", ErrReceivedBelowAmount, received, amount)
		}
		change := utils.RoundMoney(received - amount)
		payment.ReceivedAmount = &received
		payment.ChangeAmount = &change
	}

	if req.Method == models.PaymentCredit {
		client, repoErr := s.creditRepo.GetCreditClientForUpdate(tx, *req.CreditClientID)
		if repoErr != nil {
			if errors.Is(repoErr, repositories.ErrNotFound) {
				return nil, ErrCreditClientNotFound
			}
			return nil, fmt.Errorf("failed to lock credit client %d: %w", *req.CreditClientID, repoErr)
		}
		if !client.IsActive {
			return nil, ErrCreditClientInactive
		}
		if utils.RoundMoney(client.TotalCredit+amount) > client.CreditLimit {
			return nil, fmt.Errorf("%w: balance %.2f + %.2f exceeds limit %.2f",
				ErrCreditLimitExceeded, client.TotalCredit, amount, client.CreditLimit)
		}
		if repoErr = s.creditRepo.AdjustCredit(tx, client.ID, amount); repoErr != nil {
			return nil, fmt.Errorf("failed to increment credit balance for client %d: %w", client.ID, repoErr)
		}
		payment.CreditClientID = req.CreditClientID
	}

	paymentID, err := s.paymentRepo.CreatePayment(tx, &payment)
	if err != nil {
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}
	payment.ID = paymentID

	covered := req.Method == models.PaymentManagerConsumption ||
		utils.RoundMoney(paidSoFar+amount) >= order.TotalAmount
	if covered && !req.IsPartial {
		if err = s.orderRepo.UpdateOrderStatus(tx, order.ID, models.OrderCompleted, payment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to complete order %d: %w", order.ID, err)
		}
		table, repoErr := s.tableRepo.GetTableForUpdate(tx, order.TableID)
		if repoErr != nil {
			return nil, fmt.Errorf("failed to lock table %d for release: %w", order.TableID, repoErr)
		}
		if table.CurrentOrderID != nil && *table.CurrentOrderID == order.ID {
			if repoErr = s.tableRepo.UpdateTableStatus(tx, order.TableID, models.TableFree, nil); repoErr != nil {
				return nil, fmt.Errorf("failed to free table %d: %w", order.TableID, repoErr)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment transaction: %w", err)
	}
	return &payment, nil
}

// RecordRepayment registers money received against a client's running
// balance. The payment row has no order; the balance decrement shares the
// transaction.
func (s *paymentService) RecordRepayment(cashierID int64, clientID int64, req RepaymentRequest) (*models.Payment, error) {
	session, err := s.sessionRepo.GetActiveSessionByUser(s.db, cashierID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("failed to resolve cashier session: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start repayment transaction: %w", err)
	}
	defer tx.Rollback()

	locked, err := s.sessionRepo.GetSessionForUpdate(tx, session.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("failed to lock session %d: %w", session.ID, err)
	}
	if !locked.IsActive {
		return nil, ErrNoActiveSession
	}

	client, err := s.creditRepo.GetCreditClientForUpdate(tx, clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCreditClientNotFound
		}
		return nil, fmt.Errorf("failed to lock credit client %d: %w", clientID, err)
	}

	amount := utils.RoundMoney(req.Amount)
	if amount > client.TotalCredit {
		return nil, fmt.Errorf("%w: repayment %.2f, owed %.2f", ErrRepaymentExceedsBalance, amount, client.TotalCredit)
	}

	if err = s.creditRepo.AdjustCredit(tx, clientID, -amount); err != nil {
		return nil, fmt.Errorf("failed to decrement credit balance for client %d: %w", clientID, err)
	}

	payment := models.Payment{
		CreditClientID: &clientID,
		CashierID:      cashierID,
		SessionID:      session.ID,
		Method:         req.Method,
		Amount:         amount,
		ReceiptNumber:  newReceiptNumber(),
	}
	paymentID, err := s.paymentRepo.CreatePayment(tx, &payment)
	if err != nil {
		return nil, fmt.Errorf("failed to insert repayment: %w", err)
	}
	payment.ID = paymentID

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit repayment transaction: %w", err)
	}
	return &payment, nil
}

func (s *paymentService) GetPaymentsBySession(sessionID int64) ([]models.Payment, error) {
	payments, err := s.paymentRepo.GetPaymentsBySession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments for session %d: %w", sessionID, err)
	}
	return payments, nil
}
