package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
	"github.com/Isba24ha/barliberty-sub000/internal/repositories"
)

var (
	ErrSessionNotFound      = errors.New("shift session not found")
	ErrActiveSessionExists  = errors.New("cashier already has an active session")
	ErrSessionAlreadyClosed = errors.New("shift session is already closed")
	ErrSessionNotOwned      = errors.New("shift session belongs to another cashier")
	ErrNoActiveSession      = errors.New("no active shift session")
)

// OpenSessionRequest is used by cashiers to open a shift.
type OpenSessionRequest struct {
	ShiftType string `json:"shift_type" binding:"required,oneof=morning evening"`
}

// --- SessionService Interface ---
type SessionService interface {
	OpenSession(userID int64, req OpenSessionRequest) (*models.BarSession, error)
	EndSession(userID int64, sessionID int64) (*models.BarSession, error)
	GetActiveSession(userID int64, role string) (*models.BarSession, error)
	GetSessionStats(sessionID int64) (*models.SessionStats, error)
}

type sessionService struct {
	sessionRepo repositories.SessionRepository
	db          *sql.DB
}

// NewSessionService creates a new instance of SessionService.
func NewSessionService(sessionRepo repositories.SessionRepository, db *sql.DB) SessionService {
	return &sessionService{sessionRepo: sessionRepo, db: db}
}

// OpenSession opens a shift for the cashier. The existing-session check gives
// the common case a clean error; concurrent opens that both pass it hit the
// unique partial index on active sessions and surface the same rejection.
// A second open is rejected, never auto-closed.
func (s *sessionService) OpenSession(userID int64, req OpenSessionRequest) (*models.BarSession, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = s.sessionRepo.GetActiveSessionByUser(tx, userID)
	if err == nil {
		return nil, ErrActiveSessionExists
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for active session: %w", err)
	}

	session := &models.BarSession{
		UserID:    userID,
		ShiftType: req.ShiftType,
		StartTime: time.Now(),
	}
	if _, err := s.sessionRepo.CreateSession(tx, session); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrActiveSessionExists
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session transaction: %w", err)
	}
	return session, nil
}

// EndSession closes the caller's session. The session row is locked, the
// payment aggregates are read, and the totals are frozen all inside one
// transaction, so a payment recorded mid-close cannot vanish from the
// frozen totals.
func (s *sessionService) EndSession(userID int64, sessionID int64) (*models.BarSession, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	session, err := s.sessionRepo.GetSessionForUpdate(tx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to lock session for close: %w", err)
	}

	if session.UserID != userID {
		return nil, ErrSessionNotOwned
	}
	if !session.IsActive {
		return nil, ErrSessionAlreadyClosed
	}

	stats, err := s.sessionRepo.GetSessionStats(tx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute session stats for close: %w", err)
	}

	endTime := time.Now()
	if err := s.sessionRepo.CloseSession(tx, sessionID, endTime, stats.TotalSales, stats.TransactionCount); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionAlreadyClosed
		}
		return nil, fmt.Errorf("failed to close session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit end-session transaction: %w", err)
	}

	session.IsActive = false
	session.EndTime = &endTime
	session.TotalSales = stats.TotalSales
	session.TransactionCount = stats.TransactionCount
	return session, nil
}

// GetActiveSession resolves "the caller's session": cashiers get their own
// open shift; servers and managers get the venue's current open shift, since
// they attach work to it without owning one.
func (s *sessionService) GetActiveSession(userID int64, role string) (*models.BarSession, error) {
	var session *models.BarSession
	var err error

	if role == models.RoleCashier {
		session, err = s.sessionRepo.GetActiveSessionByUser(s.db, userID)
	} else {
		session, err = s.sessionRepo.GetCurrentSession()
	}

	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return session, nil
}

// GetSessionStats returns the read-time aggregation snapshot for a session.
func (s *sessionService) GetSessionStats(sessionID int64) (*models.SessionStats, error) {
	if _, err := s.sessionRepo.GetSessionByID(sessionID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to fetch session for stats: %w", err)
	}

	stats, err := s.sessionRepo.GetSessionStats(s.db, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute session stats: %w", err)
	}
	return stats, nil
}
