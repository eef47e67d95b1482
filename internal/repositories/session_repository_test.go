package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var sessionTestColumns = []string{
	"id", "user_id", "shift_type", "start_time", "end_time",
	"total_sales", "transaction_count", "is_active", "created_at", "updated_at",
}

func TestCreateSession(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectQuery(`INSERT INTO bar_sessions`).
		WithArgs(int64(7), models.ShiftMorning, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	session := &models.BarSession{UserID: 7, ShiftType: models.ShiftMorning}
	id, err := repo.CreateSession(db, session)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}
	if !session.IsActive {
		t.Fatal("expected created session to be active")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetActiveSessionByUserNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectQuery(`FROM bar_sessions`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(sessionTestColumns))

	_, err := repo.GetActiveSessionByUser(db, 9)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetActiveSessionByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	now := time.Now()
	mock.ExpectQuery(`FROM bar_sessions`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(sessionTestColumns).
			AddRow(int64(3), int64(7), models.ShiftEvening, now, nil, 0.0, 0, true, now, now))

	session, err := repo.GetActiveSessionByUser(db, 7)
	if err != nil {
		t.Fatalf("get active session: %v", err)
	}
	if session.ID != 3 || session.UserID != 7 || !session.IsActive {
		t.Fatalf("unexpected session: %+v", session)
	}
	if session.EndTime != nil {
		t.Fatal("expected nil end time for an open session")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCloseSessionAlreadyClosed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectExec(`UPDATE bar_sessions\s+SET is_active = FALSE`).
		WithArgs(sqlmock.AnyArg(), 150.0, 3, sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CloseSession(db, 5, time.Now(), 150.0, 3)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for already-closed session, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetSessionStats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectQuery(`FROM payments\s+WHERE session_id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"sum", "count", "cash", "mobile", "credit"}).
			AddRow(275.50, 6, 200.00, 50.50, 25.00))
	mock.ExpectQuery(`FROM venue_tables`).
		WillReturnRows(sqlmock.NewRows([]string{"occupied", "total"}).AddRow(4, 12))
	mock.ExpectQuery(`FROM credit_clients`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(80.00))

	stats, err := repo.GetSessionStats(db, 3)
	if err != nil {
		t.Fatalf("get session stats: %v", err)
	}
	if stats.TotalSales != 275.50 {
		t.Errorf("expected total sales 275.50, got %.2f", stats.TotalSales)
	}
	if stats.TransactionCount != 6 {
		t.Errorf("expected 6 transactions, got %d", stats.TransactionCount)
	}
	if stats.CashTotal != 200.00 || stats.MobileMoneyTotal != 50.50 || stats.CreditTotal != 25.00 {
		t.Errorf("unexpected method breakdown: %+v", stats)
	}
	if stats.OccupiedTables != 4 || stats.TotalTables != 12 {
		t.Errorf("unexpected table counts: %+v", stats)
	}
	if stats.OutstandingCredit != 80.00 {
		t.Errorf("expected outstanding credit 80.00, got %.2f", stats.OutstandingCredit)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
