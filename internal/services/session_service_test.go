package services

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
	"github.com/Isba24ha/barliberty-sub000/internal/repositories"
)

func newMockService(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var sessionCols = []string{
	"id", "user_id", "shift_type", "start_time", "end_time",
	"total_sales", "transaction_count", "is_active", "created_at", "updated_at",
}

func TestOpenSessionRejectsSecondActive(t *testing.T) {
	db, mock := newMockService(t)
	svc := NewSessionService(repositories.NewSessionRepository(db), db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bar_sessions\s+WHERE user_id = \$1 AND is_active = TRUE`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow(int64(3), int64(7), models.ShiftMorning, now, nil, 0.0, 0, true, now, now))
	mock.ExpectRollback()

	_, err := svc.OpenSession(7, OpenSessionRequest{ShiftType: models.ShiftEvening})
	if !errors.Is(err, ErrActiveSessionExists) {
		t.Fatalf("expected ErrActiveSessionExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestOpenSession(t *testing.T) {
	db, mock := newMockService(t)
	svc := NewSessionService(repositories.NewSessionRepository(db), db)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bar_sessions\s+WHERE user_id = \$1 AND is_active = TRUE`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(sessionCols))
	mock.ExpectQuery(`INSERT INTO bar_sessions`).
		WithArgs(int64(7), models.ShiftMorning, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectCommit()

	session, err := svc.OpenSession(7, OpenSessionRequest{ShiftType: models.ShiftMorning})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	if session.ID != 11 || !session.IsActive {
		t.Fatalf("unexpected session: %+v", session)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestOpenSessionConcurrentOpenHitsUniqueIndex(t *testing.T) {
	db, mock := newMockService(t)
	svc := NewSessionService(repositories.NewSessionRepository(db), db)

	// A concurrent open that committed after our check leaves no row visible
	// to the SELECT; the insert then trips the active-session unique index.
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bar_sessions\s+WHERE user_id = \$1 AND is_active = TRUE`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(sessionCols))
	mock.ExpectQuery(`INSERT INTO bar_sessions`).
		WithArgs(int64(7), models.ShiftMorning, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_bar_sessions_user_active"})
	mock.ExpectRollback()

	_, err := svc.OpenSession(7, OpenSessionRequest{ShiftType: models.ShiftMorning})
	if !errors.Is(err, ErrActiveSessionExists) {
		t.Fatalf("expected ErrActiveSessionExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEndSessionFreezesTotals(t *testing.T) {
	db, mock := newMockService(t)
	svc := NewSessionService(repositories.NewSessionRepository(db), db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bar_sessions WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow(int64(5), int64(7), models.ShiftMorning, now, nil, 0.0, 0, true, now, now))
	mock.ExpectQuery(`FROM payments\s+WHERE session_id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"sum", "count", "cash", "mobile", "credit"}).
			AddRow(340.00, 9, 300.00, 40.00, 0.00))
	mock.ExpectQuery(`FROM venue_tables`).
		WillReturnRows(sqlmock.NewRows([]string{"occupied", "total"}).AddRow(0, 12))
	mock.ExpectQuery(`FROM credit_clients`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0.00))
	mock.ExpectExec(`UPDATE bar_sessions\s+SET is_active = FALSE`).
		WithArgs(sqlmock.AnyArg(), 340.00, 9, sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	session, err := svc.EndSession(7, 5)
	if err != nil {
		t.Fatalf("end session: %v", err)
	}
	if session.IsActive {
		t.Fatal("expected session to be closed")
	}
	if session.TotalSales != 340.00 || session.TransactionCount != 9 {
		t.Fatalf("expected frozen totals 340.00/9, got %.2f/%d", session.TotalSales, session.TransactionCount)
	}
	if session.EndTime == nil {
		t.Fatal("expected end time to be set")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEndSessionWrongOwner(t *testing.T) {
	db, mock := newMockService(t)
	svc := NewSessionService(repositories.NewSessionRepository(db), db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bar_sessions WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow(int64(5), int64(99), models.ShiftMorning, now, nil, 0.0, 0, true, now, now))
	mock.ExpectRollback()

	_, err := svc.EndSession(7, 5)
	if !errors.Is(err, ErrSessionNotOwned) {
		t.Fatalf("expected ErrSessionNotOwned, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
