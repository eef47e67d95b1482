package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Isba24ha/barliberty-sub000/internal/models"

	"github.com/lib/pq"
)

// ProductRepository defines the interface for catalog database operations.
type ProductRepository interface {
	// Category methods
	CreateCategory(executor SQLExecutor, category *models.Category) (int64, error)
	GetCategories() ([]models.Category, error)

	// Product methods
	CreateProduct(executor SQLExecutor, product *models.Product) (int64, error)
	GetProducts(activeOnly bool) ([]models.Product, error)
	GetProductByID(id int64) (*models.Product, error)
	GetProductForUpdate(executor SQLExecutor, id int64) (*models.Product, error)
	UpdateProduct(executor SQLExecutor, product *models.Product) error
	AdjustStock(executor SQLExecutor, productID int64, quantityChange int) (int, error) // Returns new stock level
	GetLowStockProducts() ([]models.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// --- Category Methods ---

func (r *productRepository) CreateCategory(executor SQLExecutor, category *models.Category) (int64, error) {
	query := `INSERT INTO categories (name, created_at) VALUES ($1, $2) RETURNING id`
	err := executor.QueryRow(query, category.Name, time.Now()).Scan(&category.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: category name '%s' already exists (constraint: %s)", ErrDuplicateKey, category.Name, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating category: %v", ErrDatabaseError, err)
	}
	return category.ID, nil
}

func (r *productRepository) GetCategories() ([]models.Category, error) {
	categories := []models.Category{}
	query := `SELECT id, name, created_at FROM categories ORDER BY name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying categories: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning category: %v", ErrDatabaseError, err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating category rows: %v", ErrDatabaseError, err)
	}
	return categories, nil
}

// --- Product Methods ---

func (r *productRepository) CreateProduct(executor SQLExecutor, product *models.Product) (int64, error) {
	query := `INSERT INTO products (name, price, category_id, stock_quantity, min_stock_level, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	currentTime := time.Now()

	err := executor.QueryRow(query,
		product.Name, product.Price, product.CategoryID, product.StockQuantity,
		product.MinStockLevel, product.IsActive, currentTime, currentTime,
	).Scan(&product.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return 0, fmt.Errorf("%w: invalid category_id %d (constraint: %s)", ErrForeignKeyViolation, product.CategoryID, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating product: %v", ErrDatabaseError, err)
	}
	return product.ID, nil
}

const productSelect = `SELECT p.id, p.name, p.price, p.category_id, p.stock_quantity, p.min_stock_level,
	       p.is_active, p.created_at, p.updated_at,
	       c.name AS category_name, c.created_at AS category_created_at
	FROM products p
	JOIN categories c ON p.category_id = c.id`

func scanProductWithCategory(row interface{ Scan(dest ...interface{}) error }) (*models.Product, error) {
	p := &models.Product{}
	category := &models.Category{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.CategoryID, &p.StockQuantity, &p.MinStockLevel,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&category.Name, &category.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	category.ID = p.CategoryID
	p.Category = category
	return p, nil
}

func (r *productRepository) GetProducts(activeOnly bool) ([]models.Product, error) {
	products := []models.Product{}
	query := productSelect
	if activeOnly {
		query += ` WHERE p.is_active = TRUE`
	}
	query += ` ORDER BY c.name, p.name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProductWithCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
		}
		products = append(products, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating product rows: %v", ErrDatabaseError, err)
	}
	return products, nil
}

func (r *productRepository) GetProductByID(id int64) (*models.Product, error) {
	query := productSelect + ` WHERE p.id = $1`
	product, err := scanProductWithCategory(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting product by ID %d: %v", ErrDatabaseError, id, err)
	}
	return product, nil
}

// GetProductForUpdate locks the product row so concurrent stock mutations
// serialize. Used inside order and adjustment transactions.
func (r *productRepository) GetProductForUpdate(executor SQLExecutor, id int64) (*models.Product, error) {
	query := `SELECT id, name, price, category_id, stock_quantity, min_stock_level, is_active, created_at, updated_at
	          FROM products WHERE id = $1 FOR UPDATE`
	p := &models.Product{}
	err := executor.QueryRow(query, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.CategoryID, &p.StockQuantity, &p.MinStockLevel,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking product ID %d: %v", ErrDatabaseError, id, err)
	}
	return p, nil
}

func (r *productRepository) UpdateProduct(executor SQLExecutor, product *models.Product) error {
	query := `UPDATE products
	          SET name = $1, price = $2, category_id = $3, min_stock_level = $4, is_active = $5, updated_at = $6
	          WHERE id = $7`
	result, err := executor.Exec(query,
		product.Name, product.Price, product.CategoryID, product.MinStockLevel,
		product.IsActive, time.Now(), product.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: invalid category_id %d", ErrForeignKeyViolation, product.CategoryID)
		}
		return fmt.Errorf("%w: updating product ID %d: %v", ErrDatabaseError, product.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustStock applies a relative stock change and returns the new level.
// The WHERE guard plus the schema CHECK keep stock_quantity non-negative;
// a zero-row update means the change would have driven it below zero.
func (r *productRepository) AdjustStock(executor SQLExecutor, productID int64, quantityChange int) (int, error) {
	query := `UPDATE products
	          SET stock_quantity = stock_quantity + $1, updated_at = $2
	          WHERE id = $3 AND stock_quantity + $1 >= 0
	          RETURNING stock_quantity`
	var newStock int
	err := executor.QueryRow(query, quantityChange, time.Now(), productID).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: adjusting stock for product ID %d: %v", ErrDatabaseError, productID, err)
	}
	return newStock, nil
}

func (r *productRepository) GetLowStockProducts() ([]models.Product, error) {
	products := []models.Product{}
	query := productSelect + ` WHERE p.is_active = TRUE AND p.stock_quantity <= p.min_stock_level ORDER BY p.stock_quantity`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying low stock products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProductWithCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning low stock product: %v", ErrDatabaseError, err)
		}
		products = append(products, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating low stock product rows: %v", ErrDatabaseError, err)
	}
	return products, nil
}
