package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
	"github.com/Isba24ha/barliberty-sub000/internal/repositories"
)

var (
	ErrCategoryNameExists = errors.New("a category with this name already exists")
	ErrStockBelowZero     = errors.New("adjustment would take stock below zero")
	ErrInvalidCategory    = errors.New("referenced category does not exist")
)

// --- Data Transfer Objects (DTOs) ---

// CreateCategoryRequest is used for creating a new category.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

// CreateProductRequest is used for creating a new product.
type CreateProductRequest struct {
	Name          string  `json:"name" binding:"required,min=2,max=150"`
	Price         float64 `json:"price" binding:"required,gt=0,money"`
	CategoryID    int64   `json:"category_id" binding:"required"`
	StockQuantity int     `json:"stock_quantity" binding:"gte=0"`
	MinStockLevel int     `json:"min_stock_level" binding:"gte=0"`
}

// UpdateProductRequest is used for updating an existing product.
type UpdateProductRequest struct {
	Name          string  `json:"name" binding:"required,min=2,max=150"`
	Price         float64 `json:"price" binding:"required,gt=0,money"`
	CategoryID    int64   `json:"category_id" binding:"required"`
	MinStockLevel int     `json:"min_stock_level" binding:"gte=0"`
	IsActive      *bool   `json:"is_active" binding:"required"`
}

// AdjustStockRequest changes stock by a signed delta with an audit reason.
type AdjustStockRequest struct {
	QuantityChange int    `json:"quantity_change" binding:"required"`
	Reason         string `json:"reason" binding:"required,min=3,max=255"`
}

// --- ProductService Interface ---
type ProductService interface {
	CreateCategory(req CreateCategoryRequest) (*models.Category, error)
	GetCategories() ([]models.Category, error)
	CreateProduct(req CreateProductRequest) (*models.Product, error)
	GetProducts(activeOnly bool) ([]models.Product, error)
	GetProductByID(productID int64) (*models.Product, error)
	UpdateProduct(productID int64, req UpdateProductRequest) (*models.Product, error)
	AdjustStock(userID int64, productID int64, req AdjustStockRequest) (*models.Product, error)
	GetLowStockProducts() ([]models.Product, error)
	GetStockMovements(productID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error)
}

type productService struct {
	productRepo  repositories.ProductRepository
	movementRepo repositories.StockMovementRepository
	db           *sql.DB
}

// NewProductService creates a new instance of ProductService.
func NewProductService(pr repositories.ProductRepository, mr repositories.StockMovementRepository, db *sql.DB) ProductService {
	return &productService{productRepo: pr, movementRepo: mr, db: db}
}

func (s *productService) CreateCategory(req CreateCategoryRequest) (*models.Category, error) {
	category := models.Category{Name: req.Name}
	id, err := s.productRepo.CreateCategory(s.db, &category)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrCategoryNameExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	category.ID = id
	return &category, nil
}

func (s *productService) GetCategories() ([]models.Category, error) {
	categories, err := s.productRepo.GetCategories()
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

func (s *productService) CreateProduct(req CreateProductRequest) (*models.Product, error) {
	product := models.Product{
		Name:          req.Name,
		Price:         req.Price,
		CategoryID:    req.CategoryID,
		StockQuantity: req.StockQuantity,
		MinStockLevel: req.MinStockLevel,
		IsActive:      true,
	}
	id, err := s.productRepo.CreateProduct(s.db, &product)
	if err != nil {
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return nil, ErrInvalidCategory
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return s.productRepo.GetProductByID(id)
}

func (s *productService) GetProducts(activeOnly bool) ([]models.Product, error) {
	products, err := s.productRepo.GetProducts(activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

func (s *productService) GetProductByID(productID int64) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID: %w", err)
	}
	return product, nil
}

func (s *productService) UpdateProduct(productID int64, req UpdateProductRequest) (*models.Product, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	product, err := s.productRepo.GetProductForUpdate(tx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to lock product %d: %w", productID, err)
	}

	product.Name = req.Name
	product.Price = req.Price
	product.CategoryID = req.CategoryID
	product.MinStockLevel = req.MinStockLevel
	product.IsActive = *req.IsActive

	if err = s.productRepo.UpdateProduct(tx, product); err != nil {
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return nil, ErrInvalidCategory
		}
		return nil, fmt.Errorf("failed to update product %d: %w", productID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit product update: %w", err)
	}
	return s.productRepo.GetProductByID(productID)
}

// AdjustStock applies a manual stock correction and records the audit row in
// the same transaction.
func (s *productService) AdjustStock(userID int64, productID int64, req AdjustStockRequest) (*models.Product, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	product, err := s.productRepo.GetProductForUpdate(tx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to lock product %d: %w", productID, err)
	}
	if product.StockQuantity+req.QuantityChange < 0 {
		return nil, fmt.Errorf("%w: current %d, change %d", ErrStockBelowZero, product.StockQuantity, req.QuantityChange)
	}

	if _, err = s.productRepo.AdjustStock(tx, productID, req.QuantityChange); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStockBelowZero
		}
		return nil, fmt.Errorf("failed to adjust stock for product %d: %w", productID, err)
	}

	movement := models.StockMovement{
		ProductID:       productID,
		UserID:          &userID,
		MovementType:    models.MovementAdjustment,
		QuantityChanged: req.QuantityChange,
		Reason:          models.NewNullString(req.Reason),
	}
	if _, err = s.movementRepo.CreateMovement(tx, &movement); err != nil {
		return nil, fmt.Errorf("failed to record stock adjustment for product %d: %w", productID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit stock adjustment: %w", err)
	}
	return s.productRepo.GetProductByID(productID)
}

func (s *productService) GetLowStockProducts() ([]models.Product, error) {
	products, err := s.productRepo.GetLowStockProducts()
	if err != nil {
		return nil, fmt.Errorf("failed to get low stock products: %w", err)
	}
	return products, nil
}

func (s *productService) GetStockMovements(productID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	movements, total, err := s.movementRepo.GetMovements(productID, movementType, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get stock movements: %w", err)
	}
	return movements, total, nil
}
