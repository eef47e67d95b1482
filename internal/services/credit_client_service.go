package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
	"github.com/Isba24ha/barliberty-sub000/internal/repositories"
)

var ErrCreditClientExists = errors.New("a credit client with this email already exists")

// --- Data Transfer Objects (DTOs) ---

// CreateCreditClientRequest registers a customer allowed to buy on credit.
type CreateCreditClientRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=150"`
	Email       string  `json:"email" binding:"omitempty,email"`
	Phone       string  `json:"phone" binding:"omitempty,min=5,max=30"`
	CreditLimit float64 `json:"credit_limit" binding:"required,gt=0,money"`
}

// UpdateCreditClientRequest is used for updating an existing credit client.
// The running balance is never set directly; only payments move it.
type UpdateCreditClientRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=150"`
	Email       string  `json:"email" binding:"omitempty,email"`
	Phone       string  `json:"phone" binding:"omitempty,min=5,max=30"`
	CreditLimit float64 `json:"credit_limit" binding:"required,gt=0,money"`
	IsActive    *bool   `json:"is_active" binding:"required"`
}

// --- CreditClientService Interface ---
type CreditClientService interface {
	CreateCreditClient(req CreateCreditClientRequest) (*models.CreditClient, error)
	GetCreditClients(activeOnly bool) ([]models.CreditClient, error)
	GetCreditClientByID(clientID int64) (*models.CreditClient, error)
	UpdateCreditClient(clientID int64, req UpdateCreditClientRequest) (*models.CreditClient, error)
}

type creditClientService struct {
	creditRepo repositories.CreditClientRepository
	db         *sql.DB
}

// NewCreditClientService creates a new instance of CreditClientService.
func NewCreditClientService(cr repositories.CreditClientRepository, db *sql.DB) CreditClientService {
	return &creditClientService{creditRepo: cr, db: db}
}

func (s *creditClientService) CreateCreditClient(req CreateCreditClientRequest) (*models.CreditClient, error) {
	client := models.CreditClient{
		Name:        req.Name,
		Email:       models.NewNullString(req.Email),
		Phone:       models.NewNullString(req.Phone),
		CreditLimit: req.CreditLimit,
		IsActive:    true,
	}
	id, err := s.creditRepo.CreateCreditClient(s.db, &client)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrCreditClientExists
		}
		return nil, fmt.Errorf("failed to create credit client: %w", err)
	}
	return s.creditRepo.GetCreditClientByID(id)
}

func (s *creditClientService) GetCreditClients(activeOnly bool) ([]models.CreditClient, error) {
	clients, err := s.creditRepo.GetCreditClients(activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to get credit clients: %w", err)
	}
	return clients, nil
}

func (s *creditClientService) GetCreditClientByID(clientID int64) (*models.CreditClient, error) {
	client, err := s.creditRepo.GetCreditClientByID(clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCreditClientNotFound
		}
		return nil, fmt.Errorf("failed to get credit client by ID: %w", err)
	}
	return client, nil
}

func (s *creditClientService) UpdateCreditClient(clientID int64, req UpdateCreditClientRequest) (*models.CreditClient, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	client, err := s.creditRepo.GetCreditClientForUpdate(tx, clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCreditClientNotFound
		}
		return nil, fmt.Errorf("failed to lock credit client %d: %w", clientID, err)
	}

	client.Name = req.Name
	client.Email = models.NewNullString(req.Email)
	client.Phone = models.NewNullString(req.Phone)
	client.CreditLimit = req.CreditLimit
	client.IsActive = *req.IsActive

	if err = s.creditRepo.UpdateCreditClient(tx, client); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrCreditClientExists
		}
		return nil, fmt.Errorf("failed to update credit client %d: %w", clientID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit credit client update: %w", err)
	}
	return s.creditRepo.GetCreditClientByID(clientID)
}
