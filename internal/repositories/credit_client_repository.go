package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
)

// CreditClientRepository defines the interface for credit-client database operations.
type CreditClientRepository interface {
	CreateCreditClient(executor SQLExecutor, client *models.CreditClient) (int64, error)
	GetCreditClients(activeOnly bool) ([]models.CreditClient, error)
	GetCreditClientByID(id int64) (*models.CreditClient, error)
	GetCreditClientForUpdate(executor SQLExecutor, id int64) (*models.CreditClient, error)
	UpdateCreditClient(executor SQLExecutor, client *models.CreditClient) error
	AdjustCredit(executor SQLExecutor, id int64, delta float64) error
}

type creditClientRepository struct {
	db *sql.DB
}

// NewCreditClientRepository creates a new instance of CreditClientRepository.
func NewCreditClientRepository(db *sql.DB) CreditClientRepository {
	return &creditClientRepository{db: db}
}

const creditClientColumns = `id, name, email, phone, total_credit, credit_limit, is_active, created_at, updated_at`

func scanCreditClient(row interface{ Scan(dest ...interface{}) error }) (*models.CreditClient, error) {
	c := &models.CreditClient{}
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.TotalCredit, &c.CreditLimit,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *creditClientRepository) CreateCreditClient(executor SQLExecutor, client *models.CreditClient) (int64, error) {
	query := `INSERT INTO credit_clients (name, email, phone, total_credit, credit_limit, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, 0, $4, TRUE, $5, $6)
	          RETURNING id`
	currentTime := time.Now()

	err := executor.QueryRow(query,
		client.Name, client.Email, client.Phone, client.CreditLimit, currentTime, currentTime,
	).Scan(&client.ID)

	if err != nil {
		return 0, fmt.Errorf("%w: creating credit client: %v", ErrDatabaseError, err)
	}
	client.IsActive = true
	return client.ID, nil
}

func (r *creditClientRepository) GetCreditClients(activeOnly bool) ([]models.CreditClient, error) {
	clients := []models.CreditClient{}
	query := `SELECT ` + creditClientColumns + ` FROM credit_clients`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying credit clients: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCreditClient(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning credit client: %v", ErrDatabaseError, err)
		}
		clients = append(clients, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating credit client rows: %v", ErrDatabaseError, err)
	}
	return clients, nil
}

func (r *creditClientRepository) GetCreditClientByID(id int64) (*models.CreditClient, error) {
	query := `SELECT ` + creditClientColumns + ` FROM credit_clients WHERE id = $1`
	client, err := scanCreditClient(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting credit client by ID %d: %v", ErrDatabaseError, id, err)
	}
	return client, nil
}

// GetCreditClientForUpdate locks the client row so balance mutations inside
// payment and repayment transactions serialize.
func (r *creditClientRepository) GetCreditClientForUpdate(executor SQLExecutor, id int64) (*models.CreditClient, error) {
	query := `SELECT ` + creditClientColumns + ` FROM credit_clients WHERE id = $1 FOR UPDATE`
	client, err := scanCreditClient(executor.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking credit client ID %d: %v", ErrDatabaseError, id, err)
	}
	return client, nil
}

func (r *creditClientRepository) UpdateCreditClient(executor SQLExecutor, client *models.CreditClient) error {
	query := `UPDATE credit_clients
	          SET name = $1, email = $2, phone = $3, credit_limit = $4, is_active = $5, updated_at = $6
	          WHERE id = $7`
	result, err := executor.Exec(query,
		client.Name, client.Email, client.Phone, client.CreditLimit, client.IsActive, time.Now(), client.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating credit client ID %d: %v", ErrDatabaseError, client.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustCredit applies a relative balance change. The guard keeps the
// balance non-negative; callers enforce the credit limit after locking
// the row.
func (r *creditClientRepository) AdjustCredit(executor SQLExecutor, id int64, delta float64) error {
	query := `UPDATE credit_clients
	          SET total_credit = total_credit + $1, updated_at = $2
	          WHERE id = $3 AND total_credit + $1 >= 0`
	result, err := executor.Exec(query, delta, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: adjusting credit for client ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected adjusting credit for client ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
