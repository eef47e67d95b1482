package services

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
	"github.com/Isba24ha/barliberty-sub000/internal/repositories"
)

var creditClientCols = []string{
	"id", "name", "email", "phone", "total_credit", "credit_limit", "is_active", "created_at", "updated_at",
}

func buildPaymentService(db *sql.DB) PaymentService {
	return NewPaymentService(
		repositories.NewPaymentRepository(db),
		repositories.NewOrderRepository(db),
		repositories.NewTableRepository(db),
		repositories.NewSessionRepository(db),
		repositories.NewCreditClientRepository(db),
		repositories.NewUserRepository(db),
		db,
	)
}

func expectCashierSession(mock sqlmock.Sqlmock, cashierID, sessionID int64) {
	now := time.Now()
	mock.ExpectQuery(`FROM bar_sessions\s+WHERE user_id = \$1 AND is_active = TRUE`).
		WithArgs(cashierID).
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow(sessionID, cashierID, models.ShiftMorning, now, nil, 0.0, 0, true, now, now))
}

func expectSessionLock(mock sqlmock.Sqlmock, sessionID, cashierID int64, active bool) {
	now := time.Now()
	mock.ExpectQuery(`FROM bar_sessions WHERE id = \$1 FOR UPDATE`).
		WithArgs(sessionID).
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow(sessionID, cashierID, models.ShiftMorning, now, nil, 0.0, 0, active, now, now))
}

func TestCreatePaymentCashCompletesOrder(t *testing.T) {
	db, mock := newMockService(t)
	svc := buildPaymentService(db)

	now := time.Now()
	expectCashierSession(mock, 7, 2)
	mock.ExpectBegin()
	expectSessionLock(mock, 2, 7, true)
	mock.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(int64(9), int64(4), int64(7), int64(2), models.OrderReady, 30.00, nil, now, now))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM payments WHERE order_id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0.00))
	mock.ExpectQuery(`INSERT INTO payments`).
		WithArgs(int64(9), nil, int64(7), int64(2), models.PaymentCash, 30.00,
			50.00, 20.00, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(31)))
	mock.ExpectExec(`UPDATE orders SET status = \$1`).
		WithArgs(models.OrderCompleted, sqlmock.AnyArg(), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM venue_tables WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(tableCols).
			AddRow(int64(4), 4, 4, models.TableOccupied, int64(9), now, now))
	mock.ExpectExec(`UPDATE venue_tables SET status = \$1, current_order_id = \$2`).
		WithArgs(models.TableFree, sqlmock.AnyArg(), sqlmock.AnyArg(), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	received := 50.00
	payment, err := svc.CreatePayment(7, CreatePaymentRequest{
		OrderID:        9,
		Method:         models.PaymentCash,
		Amount:         30.00,
		ReceivedAmount: &received,
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if payment.ID != 31 {
		t.Fatalf("expected payment ID 31, got %d", payment.ID)
	}
	if payment.ChangeAmount == nil || *payment.ChangeAmount != 20.00 {
		t.Fatalf("expected change 20.00, got %v", payment.ChangeAmount)
	}
	if _, err := uuid.Parse(payment.ReceiptNumber); err != nil {
		t.Fatalf("receipt number %q is not a valid uuid: %v", payment.ReceiptNumber, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreatePaymentExceedsOutstanding(t *testing.T) {
	db, mock := newMockService(t)
	svc := buildPaymentService(db)

	now := time.Now()
	expectCashierSession(mock, 7, 2)
	mock.ExpectBegin()
	expectSessionLock(mock, 2, 7, true)
	mock.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(int64(9), int64(4), int64(7), int64(2), models.OrderReady, 30.00, nil, now, now))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM payments WHERE order_id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(20.00))
	mock.ExpectRollback()

	_, err := svc.CreatePayment(7, CreatePaymentRequest{
		OrderID: 9,
		Method:  models.PaymentCash,
		Amount:  15.00,
	})
	if !errors.Is(err, ErrPaymentExceedsBalance) {
		t.Fatalf("expected ErrPaymentExceedsBalance, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreatePaymentCreditLimitExceeded(t *testing.T) {
	db, mock := newMockService(t)
	svc := buildPaymentService(db)

	now := time.Now()
	expectCashierSession(mock, 7, 2)
	mock.ExpectBegin()
	expectSessionLock(mock, 2, 7, true)
	mock.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(int64(9), int64(4), int64(7), int64(2), models.OrderReady, 80.00, nil, now, now))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM payments WHERE order_id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0.00))
	mock.ExpectQuery(`FROM credit_clients WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows(creditClientCols).
			AddRow(int64(12), "Mario Gomes", nil, nil, 150.00, 200.00, true, now, now))
	mock.ExpectRollback()

	clientID := int64(12)
	_, err := svc.CreatePayment(7, CreatePaymentRequest{
		OrderID:        9,
		Method:         models.PaymentCredit,
		Amount:         80.00,
		CreditClientID: &clientID,
	})
	if !errors.Is(err, ErrCreditLimitExceeded) {
		t.Fatalf("expected ErrCreditLimitExceeded, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreatePaymentManagerConsumptionRequiresManager(t *testing.T) {
	db, mock := newMockService(t)
	svc := buildPaymentService(db)

	now := time.Now()
	expectCashierSession(mock, 7, 2)
	mock.ExpectBegin()
	expectSessionLock(mock, 2, 7, true)
	mock.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(int64(9), int64(4), int64(20), int64(2), models.OrderReady, 30.00, nil, now, now))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM payments WHERE order_id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0.00))
	mock.ExpectQuery(`FROM users\s+WHERE id = \$1`).
		WithArgs(int64(20)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "full_name", "role", "is_active", "created_at", "updated_at"}).
			AddRow(int64(20), "pedro", "Pedro Mendes", models.RoleServer, true, now, now))
	mock.ExpectRollback()

	_, err := svc.CreatePayment(7, CreatePaymentRequest{
		OrderID: 9,
		Method:  models.PaymentManagerConsumption,
		Amount:  30.00,
	})
	if !errors.Is(err, ErrManagerConsumptionOnly) {
		t.Fatalf("expected ErrManagerConsumptionOnly, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordRepaymentReducesBalance(t *testing.T) {
	db, mock := newMockService(t)
	svc := buildPaymentService(db)

	now := time.Now()
	expectCashierSession(mock, 7, 2)
	mock.ExpectBegin()
	expectSessionLock(mock, 2, 7, true)
	mock.ExpectQuery(`FROM credit_clients WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows(creditClientCols).
			AddRow(int64(12), "Mario Gomes", nil, nil, 150.00, 200.00, true, now, now))
	mock.ExpectExec(`UPDATE credit_clients\s+SET total_credit = total_credit \+ \$1`).
		WithArgs(-60.00, sqlmock.AnyArg(), int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO payments`).
		WithArgs(nil, int64(12), int64(7), int64(2), models.PaymentCash, 60.00,
			nil, nil, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(32)))
	mock.ExpectCommit()

	payment, err := svc.RecordRepayment(7, 12, RepaymentRequest{Amount: 60.00, Method: models.PaymentCash})
	if err != nil {
		t.Fatalf("record repayment: %v", err)
	}
	if payment.CreditClientID == nil || *payment.CreditClientID != 12 {
		t.Fatalf("expected credit client 12 on payment, got %v", payment.CreditClientID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordRepaymentExceedsBalance(t *testing.T) {
	db, mock := newMockService(t)
	svc := buildPaymentService(db)

	now := time.Now()
	expectCashierSession(mock, 7, 2)
	mock.ExpectBegin()
	expectSessionLock(mock, 2, 7, true)
	mock.ExpectQuery(`FROM credit_clients WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows(creditClientCols).
			AddRow(int64(12), "Mario Gomes", nil, nil, 50.00, 200.00, true, now, now))
	mock.ExpectRollback()

	_, err := svc.RecordRepayment(7, 12, RepaymentRequest{Amount: 60.00, Method: models.PaymentCash})
	if !errors.Is(err, ErrRepaymentExceedsBalance) {
		t.Fatalf("expected ErrRepaymentExceedsBalance, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreatePaymentSessionClosedUnderLock(t *testing.T) {
	db, mock := newMockService(t)
	svc := buildPaymentService(db)

	// The unlocked resolve still sees the session, but by the time the row
	// lock is granted end-session has flipped it inactive.
	expectCashierSession(mock, 7, 2)
	mock.ExpectBegin()
	expectSessionLock(mock, 2, 7, false)
	mock.ExpectRollback()

	_, err := svc.CreatePayment(7, CreatePaymentRequest{
		OrderID: 9,
		Method:  models.PaymentCash,
		Amount:  30.00,
	})
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordRepaymentSessionClosedUnderLock(t *testing.T) {
	db, mock := newMockService(t)
	svc := buildPaymentService(db)

	expectCashierSession(mock, 7, 2)
	mock.ExpectBegin()
	expectSessionLock(mock, 2, 7, false)
	mock.ExpectRollback()

	_, err := svc.RecordRepayment(7, 12, RepaymentRequest{Amount: 10.00, Method: models.PaymentCash})
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
