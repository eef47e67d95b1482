package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Isba24ha/barliberty-sub000/internal/models"

	"github.com/lib/pq"
)

// PaymentRepository defines the interface for payment-related database operations.
type PaymentRepository interface {
	CreatePayment(executor SQLExecutor, payment *models.Payment) (int64, error)
	GetPaymentsBySession(sessionID int64) ([]models.Payment, error)
	SumPaymentsForOrder(executor SQLExecutor, orderID int64) (float64, error)
}

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreatePayment(executor SQLExecutor, payment *models.Payment) (int64, error) {
	query := `INSERT INTO payments
	            (order_id, credit_client_id, cashier_id, session_id, method, amount,
	             received_amount, change_amount, is_partial, receipt_number, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`

	var orderID, creditClientID sql.NullInt64
	if payment.OrderID != nil {
		orderID = sql.NullInt64{Int64: *payment.OrderID, Valid: true}
	}
	if payment.CreditClientID != nil {
		creditClientID = sql.NullInt64{Int64: *payment.CreditClientID, Valid: true}
	}

	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		orderID, creditClientID, payment.CashierID, payment.SessionID, payment.Method, payment.Amount,
		payment.ReceivedAmount, payment.ChangeAmount, payment.IsPartial, payment.ReceiptNumber, payment.CreatedAt,
	).Scan(&payment.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return 0, fmt.Errorf("%w: creating payment (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating payment: %v", ErrDatabaseError, err)
	}
	return payment.ID, nil
}

func (r *paymentRepository) GetPaymentsBySession(sessionID int64) ([]models.Payment, error) {
	payments := []models.Payment{}
	query := `SELECT id, order_id, credit_client_id, cashier_id, session_id, method, amount,
	                 received_amount, change_amount, is_partial, receipt_number, created_at
	          FROM payments
	          WHERE session_id = $1
	          ORDER BY created_at DESC`

	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying payments for session %d: %v", ErrDatabaseError, sessionID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Payment
		var orderID, creditClientID sql.NullInt64
		if err := rows.Scan(
			&p.ID, &orderID, &creditClientID, &p.CashierID, &p.SessionID, &p.Method, &p.Amount,
			&p.ReceivedAmount, &p.ChangeAmount, &p.IsPartial, &p.ReceiptNumber, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning payment: %v", ErrDatabaseError, err)
		}
		if orderID.Valid {
			p.OrderID = &orderID.Int64
		}
		if creditClientID.Valid {
			p.CreditClientID = &creditClientID.Int64
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating payment rows: %v", ErrDatabaseError, err)
	}
	return payments, nil
}

// SumPaymentsForOrder totals what has already been recorded against the
// order. Runs through the executor so the payment transaction sees its own
// consistent snapshot after locking the order row.
func (r *paymentRepository) SumPaymentsForOrder(executor SQLExecutor, orderID int64) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE order_id = $1`
	if err := executor.QueryRow(query, orderID).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: summing payments for order %d: %v", ErrDatabaseError, orderID, err)
	}
	return total, nil
}
