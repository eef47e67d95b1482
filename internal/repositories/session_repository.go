package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
)

// SessionRepository defines the interface for shift-session database operations.
type SessionRepository interface {
	CreateSession(executor SQLExecutor, session *models.BarSession) (int64, error)
	GetSessionByID(id int64) (*models.BarSession, error)
	GetSessionForUpdate(executor SQLExecutor, id int64) (*models.BarSession, error)
	GetActiveSessionByUser(executor SQLExecutor, userID int64) (*models.BarSession, error)
	GetCurrentSession() (*models.BarSession, error)
	CloseSession(executor SQLExecutor, id int64, endTime time.Time, totalSales float64, transactionCount int) error
	GetSessionStats(executor SQLExecutor, sessionID int64) (*models.SessionStats, error)
}

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = `id, user_id, shift_type, start_time, end_time, total_sales, transaction_count, is_active, created_at, updated_at`

func scanSession(row interface{ Scan(dest ...interface{}) error }) (*models.BarSession, error) {
	s := &models.BarSession{}
	var endTime sql.NullTime
	err := row.Scan(
		&s.ID, &s.UserID, &s.ShiftType, &s.StartTime, &endTime,
		&s.TotalSales, &s.TransactionCount, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		s.EndTime = &endTime.Time
	}
	return s, nil
}

func (r *sessionRepository) CreateSession(executor SQLExecutor, session *models.BarSession) (int64, error) {
	query := `INSERT INTO bar_sessions (user_id, shift_type, start_time, total_sales, transaction_count, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, 0, 0, TRUE, $4, $5)
	          RETURNING id`
	currentTime := time.Now()
	if session.StartTime.IsZero() {
		session.StartTime = currentTime
	}

	err := executor.QueryRow(query, session.UserID, session.ShiftType, session.StartTime, currentTime, currentTime).Scan(&session.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: user %d already has an active session (constraint: %s)", ErrDuplicateKey, session.UserID, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating bar session: %v", ErrDatabaseError, err)
	}
	session.IsActive = true
	return session.ID, nil
}

func (r *sessionRepository) GetSessionByID(id int64) (*models.BarSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM bar_sessions WHERE id = $1`
	session, err := scanSession(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting bar session by ID %d: %v", ErrDatabaseError, id, err)
	}
	return session, nil
}

// GetSessionForUpdate locks the session row for the remainder of the
// surrounding transaction. End-session holds it across the stats read and
// the close write; payment creation holds it while inserting, so neither
// can interleave with the other against the frozen totals.
func (r *sessionRepository) GetSessionForUpdate(executor SQLExecutor, id int64) (*models.BarSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM bar_sessions WHERE id = $1 FOR UPDATE`
	session, err := scanSession(executor.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking bar session ID %d: %v", ErrDatabaseError, id, err)
	}
	return session, nil
}

// GetActiveSessionByUser returns the most recent active session for the user,
// or ErrNotFound when the user has no open shift. Callers treat absence as
// "no open shift", not as a failure.
func (r *sessionRepository) GetActiveSessionByUser(executor SQLExecutor, userID int64) (*models.BarSession, error) {
	query := `SELECT ` + sessionColumns + `
	          FROM bar_sessions
	          WHERE user_id = $1 AND is_active = TRUE
	          ORDER BY start_time DESC
	          LIMIT 1`
	session, err := scanSession(executor.QueryRow(query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting active session for user %d: %v", ErrDatabaseError, userID, err)
	}
	return session, nil
}

// GetCurrentSession returns the venue's most recently opened active session.
// Server orders attach to this session since servers do not open shifts.
func (r *sessionRepository) GetCurrentSession() (*models.BarSession, error) {
	query := `SELECT ` + sessionColumns + `
	          FROM bar_sessions
	          WHERE is_active = TRUE
	          ORDER BY start_time DESC
	          LIMIT 1`
	session, err := scanSession(r.db.QueryRow(query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting current active session: %v", ErrDatabaseError, err)
	}
	return session, nil
}

// CloseSession marks the session inactive and freezes its totals.
func (r *sessionRepository) CloseSession(executor SQLExecutor, id int64, endTime time.Time, totalSales float64, transactionCount int) error {
	query := `UPDATE bar_sessions
	          SET is_active = FALSE, end_time = $1, total_sales = $2, transaction_count = $3, updated_at = $4
	          WHERE id = $5 AND is_active = TRUE`
	result, err := executor.Exec(query, endTime, totalSales, transactionCount, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: closing bar session ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected closing session ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSessionStats aggregates the session's payments plus a venue snapshot.
// Read-time aggregation: correctness depends only on the payments table
// being complete at read time, which end-session guarantees by running this
// inside its transaction after locking the session row.
func (r *sessionRepository) GetSessionStats(executor SQLExecutor, sessionID int64) (*models.SessionStats, error) {
	stats := &models.SessionStats{SessionID: sessionID}

	paymentsQuery := `SELECT
	            COALESCE(SUM(amount), 0),
	            COUNT(*),
	            COALESCE(SUM(amount) FILTER (WHERE method = 'cash'), 0),
	            COALESCE(SUM(amount) FILTER (WHERE method = 'mobile_money'), 0),
	            COALESCE(SUM(amount) FILTER (WHERE method = 'credit'), 0)
	          FROM payments
	          WHERE session_id = $1`
	err := executor.QueryRow(paymentsQuery, sessionID).Scan(
		&stats.TotalSales, &stats.TransactionCount,
		&stats.CashTotal, &stats.MobileMoneyTotal, &stats.CreditTotal,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregating payments for session %d: %v", ErrDatabaseError, sessionID, err)
	}

	tablesQuery := `SELECT
	            COUNT(*) FILTER (WHERE status = 'occupied'),
	            COUNT(*)
	          FROM venue_tables`
	if err := executor.QueryRow(tablesQuery).Scan(&stats.OccupiedTables, &stats.TotalTables); err != nil {
		return nil, fmt.Errorf("%w: counting tables for session stats: %v", ErrDatabaseError, err)
	}

	creditQuery := `SELECT COALESCE(SUM(total_credit), 0) FROM credit_clients WHERE is_active = TRUE`
	if err := executor.QueryRow(creditQuery).Scan(&stats.OutstandingCredit); err != nil {
		return nil, fmt.Errorf("%w: summing outstanding credit for session stats: %v", ErrDatabaseError, err)
	}

	return stats, nil
}
