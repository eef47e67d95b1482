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
	ErrAbsenceNotFound        = errors.New("absence not found")
	ErrAbsenceAlreadyApproved = errors.New("absence is already approved")
	ErrInvalidAbsenceDates    = errors.New("invalid absence date range")
)

// --- Data Transfer Objects (DTOs) ---

// CreateAbsenceRequest is a leave request for the calling user.
type CreateAbsenceRequest struct {
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" binding:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" binding:"omitempty,max=255"`
}

// --- AbsenceService Interface ---
type AbsenceService interface {
	CreateAbsence(userID int64, req CreateAbsenceRequest) (*models.Absence, error)
	GetAbsences() ([]models.Absence, error)
	ApproveAbsence(approverID int64, absenceID int64) (*models.Absence, error)
}

type absenceService struct {
	absenceRepo repositories.AbsenceRepository
	db          *sql.DB
}

// NewAbsenceService creates a new instance of AbsenceService.
func NewAbsenceService(ar repositories.AbsenceRepository, db *sql.DB) AbsenceService {
	return &absenceService{absenceRepo: ar, db: db}
}

func (s *absenceService) CreateAbsence(userID int64, req CreateAbsenceRequest) (*models.Absence, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad start_date", ErrInvalidAbsenceDates)
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad end_date", ErrInvalidAbsenceDates)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end_date before start_date", ErrInvalidAbsenceDates)
	}

	absence := models.Absence{
		UserID:    userID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    models.NewNullString(req.Reason),
	}
	id, err := s.absenceRepo.CreateAbsence(s.db, &absence)
	if err != nil {
		return nil, fmt.Errorf("failed to create absence: %w", err)
	}
	return s.absenceRepo.GetAbsenceByID(id)
}

func (s *absenceService) GetAbsences() ([]models.Absence, error) {
	absences, err := s.absenceRepo.GetAbsences()
	if err != nil {
		return nil, fmt.Errorf("failed to get absences: %w", err)
	}
	return absences, nil
}

func (s *absenceService) ApproveAbsence(approverID int64, absenceID int64) (*models.Absence, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	absence, err := s.absenceRepo.GetAbsenceByID(absenceID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAbsenceNotFound
		}
		return nil, fmt.Errorf("failed to get absence %d: %w", absenceID, err)
	}
	if absence.IsApproved {
		return nil, ErrAbsenceAlreadyApproved
	}

	if err = s.absenceRepo.ApproveAbsence(tx, absenceID, approverID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAbsenceNotFound
		}
		return nil, fmt.Errorf("failed to approve absence %d: %w", absenceID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit absence approval: %w", err)
	}
	return s.absenceRepo.GetAbsenceByID(absenceID)
}
