package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cafe_pos_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ProductRepository defines the interface for product and category
// database operations. Products are soft-deleted so historical order
// items keep their references.
type ProductRepository interface {
	// Category methods
	CreateCategory(executor SQLExecutor, name string, sortOrder int) (*models.Category, error)
	GetCategories() ([]models.Category, error)
	UpdateCategory(executor SQLExecutor, category *models.Category) error
	DeleteCategory(executor SQLExecutor, categoryID string) error
	CountProductsByCategoryID(categoryID string) (int, error)

	// Product methods
	CreateProduct(executor SQLExecutor, product *models.Product) (string, error)
	GetProductByID(executor SQLExecutor, productID string) (*models.Product, error)
	GetProducts(includeDeleted bool) ([]models.Product, error)
	GetProductsByCategoryID(categoryID string) ([]models.Product, error)
	UpdateProduct(executor SQLExecutor, product *models.Product) error
	SetProductFavorite(executor SQLExecutor, productID string, favorite bool) error
	SoftDeleteProduct(executor SQLExecutor, productID string) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) executorOrDB(executor SQLExecutor) SQLExecutor {
	if executor != nil {
		return executor
	}
	return r.db
}

// --- Category Methods ---

func (r *productRepository) CreateCategory(executor SQLExecutor, name string, sortOrder int) (*models.Category, error) {
	now := time.Now()
	category := &models.Category{
		ID:        uuid.New().String(),
		Name:      name,
		SortOrder: sortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	query := `INSERT INTO categories (id, name, sort_order, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.executorOrDB(executor).Exec(query,
		category.ID, category.Name, category.SortOrder, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("%w: category name '%s'", ErrDuplicateKey, name)
		}
		return nil, fmt.Errorf("%w: creating category: %v", ErrDatabaseError, err)
	}
	return category, nil
}

func (r *productRepository) GetCategories() ([]models.Category, error) {
	categories := []models.Category{}
	query := `SELECT id, name, sort_order, created_at, updated_at FROM categories
	          ORDER BY sort_order, name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying categories: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Category
		err := rows.Scan(&c.ID, &c.Name, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning category: %v", ErrDatabaseError, err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating category rows: %v", ErrDatabaseError, err)
	}
	return categories, nil
}

func (r *productRepository) UpdateCategory(executor SQLExecutor, category *models.Category) error {
	query := `UPDATE categories SET name = $1, sort_order = $2, updated_at = $3 WHERE id = $4`
	result, err := r.executorOrDB(executor).Exec(query,
		category.Name, category.SortOrder, time.Now(), category.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: category name '%s'", ErrDuplicateKey, category.Name)
		}
		return fmt.Errorf("%w: updating category %s: %v", ErrDatabaseError, category.ID, err)
	}
	return requireRowsAffected(result, category.ID)
}

func (r *productRepository) DeleteCategory(executor SQLExecutor, categoryID string) error {
	result, err := r.executorOrDB(executor).Exec(`DELETE FROM categories WHERE id = $1`, categoryID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("%w: category %s still has products", ErrDatabaseError, categoryID)
		}
		return fmt.Errorf("%w: deleting category %s: %v", ErrDatabaseError, categoryID, err)
	}
	return requireRowsAffected(result, categoryID)
}

func (r *productRepository) CountProductsByCategoryID(categoryID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM products WHERE category_id = $1 AND is_deleted = FALSE`
	err := r.db.QueryRow(query, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting products for category %s: %v", ErrDatabaseError, categoryID, err)
	}
	return count, nil
}

// --- Product Methods ---

const productColumns = `id, name, price, category_id, is_favorite, is_deleted, created_at, updated_at`

func scanProduct(row scanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.CategoryID, &p.IsFavorite, &p.IsDeleted,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
	}
	return &p, nil
}

func (r *productRepository) CreateProduct(executor SQLExecutor, product *models.Product) (string, error) {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	query := `INSERT INTO products (id, name, price, category_id, is_favorite, is_deleted, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7)`
	_, err := r.executorOrDB(executor).Exec(query,
		product.ID, product.Name, product.Price, product.CategoryID, product.IsFavorite,
		product.CreatedAt, product.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return "", fmt.Errorf("%w: product name '%s'", ErrDuplicateKey, product.Name)
			case "23503":
				return "", fmt.Errorf("%w: category %s", ErrNotFound, product.CategoryID)
			}
		}
		return "", fmt.Errorf("%w: creating product: %v", ErrDatabaseError, err)
	}
	return product.ID, nil
}

func (r *productRepository) GetProductByID(executor SQLExecutor, productID string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.executorOrDB(executor).QueryRow(query, productID))
}

func (r *productRepository) GetProducts(includeDeleted bool) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if !includeDeleted {
		query += ` WHERE is_deleted = FALSE`
	}
	query += ` ORDER BY name`
	return r.queryProducts(query)
}

func (r *productRepository) GetProductsByCategoryID(categoryID string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
	          WHERE category_id = $1 AND is_deleted = FALSE ORDER BY name`
	return r.queryProducts(query, categoryID)
}

func (r *productRepository) queryProducts(query string, args ...interface{}) ([]models.Product, error) {
	products := []models.Product{}
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating product rows: %v", ErrDatabaseError, err)
	}
	return products, nil
}

func (r *productRepository) UpdateProduct(executor SQLExecutor, product *models.Product) error {
	query := `UPDATE products SET name = $1, price = $2, category_id = $3, is_favorite = $4, updated_at = $5
	          WHERE id = $6 AND is_deleted = FALSE`
	result, err := r.executorOrDB(executor).Exec(query,
		product.Name, product.Price, product.CategoryID, product.IsFavorite, time.Now(), product.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return fmt.Errorf("%w: product name '%s'", ErrDuplicateKey, product.Name)
			case "23503":
				return fmt.Errorf("%w: category %s", ErrNotFound, product.CategoryID)
			}
		}
		return fmt.Errorf("%w: updating product %s: %v", ErrDatabaseError, product.ID, err)
	}
	return requireRowsAffected(result, product.ID)
}

func (r *productRepository) SetProductFavorite(executor SQLExecutor, productID string, favorite bool) error {
	query := `UPDATE products SET is_favorite = $1, updated_at = $2 WHERE id = $3 AND is_deleted = FALSE`
	result, err := r.executorOrDB(executor).Exec(query, favorite, time.Now(), productID)
	if err != nil {
		return fmt.Errorf("%w: setting favorite for product %s: %v", ErrDatabaseError, productID, err)
	}
	return requireRowsAffected(result, productID)
}

func (r *productRepository) SoftDeleteProduct(executor SQLExecutor, productID string) error {
	query := `UPDATE products SET is_deleted = TRUE, is_favorite = FALSE, updated_at = $1
	          WHERE id = $2 AND is_deleted = FALSE`
	result, err := r.executorOrDB(executor).Exec(query, time.Now(), productID)
	if err != nil {
		return fmt.Errorf("%w: deleting product %s: %v", ErrDatabaseError, productID, err)
	}
	return requireRowsAffected(result, productID)
}
