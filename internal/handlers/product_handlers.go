package handlers

import (
	"errors"
	"net/http"

	"cafe_pos_backend/internal/services"
	"cafe_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ProductHandler holds the product service.
type ProductHandler struct {
	productService services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(ps services.ProductService) *ProductHandler {
	return &ProductHandler{productService: ps}
}

// --- Category Handlers ---

func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	category, err := h.productService.CreateCategory(req)
	if err != nil {
		h.respondProductError(c, err, "CreateCategory")
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.productService.GetCategories()
	if err != nil {
		utils.LogError(err, "GetCategories: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch categories.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *ProductHandler) UpdateCategory(c *gin.Context) {
	var req services.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	if err := h.productService.UpdateCategory(c.Param("id"), req); err != nil {
		h.respondProductError(c, err, "UpdateCategory")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category updated successfully"})
}

func (h *ProductHandler) DeleteCategory(c *gin.Context) {
	if err := h.productService.DeleteCategory(c.Param("id")); err != nil {
		h.respondProductError(c, err, "DeleteCategory")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// --- Product Handlers ---

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	product, err := h.productService.CreateProduct(req)
	if err != nil {
		h.respondProductError(c, err, "CreateProduct")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProducts lists live products, optionally scoped to one category.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var err error
	var products interface{}
	if categoryID := c.Query("category_id"); categoryID != "" {
		products, err = h.productService.GetProductsByCategory(categoryID)
	} else {
		products, err = h.productService.GetProducts()
	}
	if err != nil {
		utils.LogError(err, "GetProducts: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch products.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(c.Param("id"), req)
	if err != nil {
		h.respondProductError(c, err, "UpdateProduct")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) ToggleFavorite(c *gin.Context) {
	product, err := h.productService.ToggleFavorite(c.Param("id"))
	if err != nil {
		h.respondProductError(c, err, "ToggleFavorite")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Param("id")); err != nil {
		h.respondProductError(c, err, "DeleteProduct")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (h *ProductHandler) respondProductError(c *gin.Context, err error, operation string) {
	switch {
	case errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrProductNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Resource not found.", err.Error()))
	case errors.Is(err, services.ErrCategoryNameExists),
		errors.Is(err, services.ErrProductNameExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Name is already in use.", err.Error()))
	case errors.Is(err, services.ErrCategoryNotEmpty):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Category still has products.", err.Error()))
	case errors.Is(err, services.ErrNameEmpty),
		errors.Is(err, services.ErrPriceInvalid):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid input.", err.Error()))
	default:
		utils.LogError(err, operation+": service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Operation failed.", "Internal error"))
	}
}
