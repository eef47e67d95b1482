package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
)

// AbsenceRepository defines the interface for absence-related database operations.
type AbsenceRepository interface {
	CreateAbsence(executor SQLExecutor, absence *models.Absence) (int64, error)
	GetAbsences() ([]models.Absence, error)
	GetAbsenceByID(id int64) (*models.Absence, error)
	ApproveAbsence(executor SQLExecutor, id int64, approverID int64) error
}

type absenceRepository struct {
	db *sql.DB
}

// NewAbsenceRepository creates a new instance of AbsenceRepository.
func NewAbsenceRepository(db *sql.DB) AbsenceRepository {
	return &absenceRepository{db: db}
}

func (r *absenceRepository) CreateAbsence(executor SQLExecutor, absence *models.Absence) (int64, error) {
	query := `INSERT INTO absences (user_id, start_date, end_date, reason, is_approved, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, FALSE, $5, $6)
	          RETURNING id`
	currentTime := time.Now()

	err := executor.QueryRow(query,
		absence.UserID, absence.StartDate, absence.EndDate, absence.Reason, currentTime, currentTime,
	).Scan(&absence.ID)

	if err != nil {
		return 0, fmt.Errorf("%w: creating absence: %v", ErrDatabaseError, err)
	}
	return absence.ID, nil
}

func (r *absenceRepository) GetAbsences() ([]models.Absence, error) {
	absences := []models.Absence{}
	query := `SELECT a.id, a.user_id, to_char(a.start_date, 'YYYY-MM-DD'), to_char(a.end_date, 'YYYY-MM-DD'),
	                 a.reason, a.is_approved, a.approved_by, a.created_at, a.updated_at,
	                 u.username, u.full_name, u.role
	          FROM absences a
	          JOIN users u ON a.user_id = u.id
	          ORDER BY a.start_date DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying absences: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Absence
		user := models.User{}
		var approvedBy sql.NullInt64

		if err := rows.Scan(
			&a.ID, &a.UserID, &a.StartDate, &a.EndDate,
			&a.Reason, &a.IsApproved, &approvedBy, &a.CreatedAt, &a.UpdatedAt,
			&user.Username, &user.FullName, &user.Role,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning absence: %v", ErrDatabaseError, err)
		}

		if approvedBy.Valid {
			a.ApprovedBy = &approvedBy.Int64
		}
		user.ID = a.UserID
		a.User = &user
		absences = append(absences, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating absence rows: %v", ErrDatabaseError, err)
	}
	return absences, nil
}

func (r *absenceRepository) GetAbsenceByID(id int64) (*models.Absence, error) {
	a := &models.Absence{}
	var approvedBy sql.NullInt64
	query := `SELECT id, user_id, to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
	                 reason, is_approved, approved_by, created_at, updated_at
	          FROM absences WHERE id = $1`

	err := r.db.QueryRow(query, id).Scan(
		&a.ID, &a.UserID, &a.StartDate, &a.EndDate,
		&a.Reason, &a.IsApproved, &approvedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting absence by ID %d: %v", ErrDatabaseError, id, err)
	}
	if approvedBy.Valid {
		a.ApprovedBy = &approvedBy.Int64
	}
	return a, nil
}

func (r *absenceRepository) ApproveAbsence(executor SQLExecutor, id int64, approverID int64) error {
	query := `UPDATE absences SET is_approved = TRUE, approved_by = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, approverID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: approving absence ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected approving absence ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
