package services

import (
	"errors"
	"strings"

	"cafe_pos_backend/internal/models"
	"cafe_pos_backend/internal/repositories"
)

var (
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryNameExists = errors.New("category name already exists")
	ErrCategoryNotEmpty   = errors.New("category still has products")
	ErrProductNameExists  = errors.New("product name already exists")
	ErrPriceInvalid       = errors.New("price must be positive")
	ErrNameEmpty          = errors.New("name cannot be empty")
	ErrValidation         = errors.New("validation error")
)

// --- DTOs ---

type CreateCategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

type UpdateCategoryRequest struct {
	Name      *string `json:"name"`
	SortOrder *int    `json:"sort_order"`
}

type CreateProductRequest struct {
	Name       string `json:"name" binding:"required"`
	Price      int64  `json:"price" binding:"required,gt=0"`
	CategoryID string `json:"category_id" binding:"required"`
	IsFavorite bool   `json:"is_favorite"`
}

type UpdateProductRequest struct {
	Name       *string `json:"name"`
	Price      *int64  `json:"price"`
	CategoryID *string `json:"category_id"`
	IsFavorite *bool   `json:"is_favorite"`
}

// ProductService manages the menu: categories and products. Products
// referenced by past orders are soft-deleted, never removed.
type ProductService interface {
	CreateCategory(req CreateCategoryRequest) (*models.Category, error)
	GetCategories() ([]models.Category, error)
	UpdateCategory(categoryID string, req UpdateCategoryRequest) error
	DeleteCategory(categoryID string) error

	CreateProduct(req CreateProductRequest) (*models.Product, error)
	GetProducts() ([]models.Product, error)
	GetProductsByCategory(categoryID string) ([]models.Product, error)
	UpdateProduct(productID string, req UpdateProductRequest) (*models.Product, error)
	ToggleFavorite(productID string) (*models.Product, error)
	DeleteProduct(productID string) error
}

type productService struct {
	productRepo repositories.ProductRepository
}

func NewProductService(productRepo repositories.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

// --- Category Methods ---

func (s *productService) CreateCategory(req CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameEmpty
	}
	category, err := s.productRepo.CreateCategory(nil, name, req.SortOrder)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrCategoryNameExists
		}
		return nil, err
	}
	return category, nil
}

func (s *productService) GetCategories() ([]models.Category, error) {
	return s.productRepo.GetCategories()
}

func (s *productService) UpdateCategory(categoryID string, req UpdateCategoryRequest) error {
	categories, err := s.productRepo.GetCategories()
	if err != nil {
		return err
	}
	var category *models.Category
	for i := range categories {
		if categories[i].ID == categoryID {
			category = &categories[i]
			break
		}
	}
	if category == nil {
		return ErrCategoryNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return ErrNameEmpty
		}
		category.Name = name
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}

	err = s.productRepo.UpdateCategory(nil, category)
	if errors.Is(err, repositories.ErrDuplicateKey) {
		return ErrCategoryNameExists
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrCategoryNotFound
	}
	return err
}

// DeleteCategory refuses when live products still reference the
// category.
func (s *productService) DeleteCategory(categoryID string) error {
	count, err := s.productRepo.CountProductsByCategoryID(categoryID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryNotEmpty
	}
	err = s.productRepo.DeleteCategory(nil, categoryID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrCategoryNotFound
	}
	return err
}

// --- Product Methods ---

func (s *productService) CreateProduct(req CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameEmpty
	}
	if req.Price <= 0 {
		return nil, ErrPriceInvalid
	}
	product := &models.Product{
		Name:       name,
		Price:      req.Price,
		CategoryID: req.CategoryID,
		IsFavorite: req.IsFavorite,
	}
	if _, err := s.productRepo.CreateProduct(nil, product); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, ErrProductNameExists
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProducts() ([]models.Product, error) {
	return s.productRepo.GetProducts(false)
}

func (s *productService) GetProductsByCategory(categoryID string) ([]models.Product, error) {
	return s.productRepo.GetProductsByCategoryID(categoryID)
}

func (s *productService) UpdateProduct(productID string, req UpdateProductRequest) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(nil, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.IsDeleted {
		return nil, ErrProductNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameEmpty
		}
		product.Name = name
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, ErrPriceInvalid
		}
		product.Price = *req.Price
	}
	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}
	if req.IsFavorite != nil {
		product.IsFavorite = *req.IsFavorite
	}

	if err := s.productRepo.UpdateProduct(nil, product); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, ErrProductNameExists
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) ToggleFavorite(productID string) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(nil, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.IsDeleted {
		return nil, ErrProductNotFound
	}
	product.IsFavorite = !product.IsFavorite
	if err := s.productRepo.SetProductFavorite(nil, productID, product.IsFavorite); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) DeleteProduct(productID string) error {
	err := s.productRepo.SoftDeleteProduct(nil, productID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}
