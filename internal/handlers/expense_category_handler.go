package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/evozago/financeiro/internal/errors"
	"github.com/evozago/financeiro/internal/pagination"
	"github.com/evozago/financeiro/internal/services"
)

// ExpenseCategoryHandler handles expense-category requests.
type ExpenseCategoryHandler struct {
	categoryService services.ExpenseCategoryServicer
}

// NewExpenseCategoryHandler creates a new ExpenseCategoryHandler.
func NewExpenseCategoryHandler(categoryService services.ExpenseCategoryServicer) *ExpenseCategoryHandler {
	return &ExpenseCategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the request payload for creating an expense category.
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// CreateCategory handles the creation of a new expense category
// @Summary     Create an expense category
// @Tags        expense-categories
// @Accept      json
// @Produce     json
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.ExpenseCategory "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Name already exists"
// @Router      /expense-categories [post]
func (h *ExpenseCategoryHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(req.Name, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetCategory handles retrieving a single expense category
// @Summary     Get an expense category
// @Tags        expense-categories
// @Produce     json
// @Param       id path int true "Category ID"
// @Success     200 {object} models.ExpenseCategory "Category"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /expense-categories/{id} [get]
func (h *ExpenseCategoryHandler) GetCategory(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// ListCategories handles listing expense categories with pagination
// @Summary     List expense categories
// @Tags        expense-categories
// @Produce     json
// @Param       page query int false "Page number"
// @Param       per_page query int false "Items per page"
// @Success     200 {object} pagination.PageResponse[models.ExpenseCategory] "Categories"
// @Router      /expense-categories [get]
func (h *ExpenseCategoryHandler) ListCategories(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.categoryService.ListCategories(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
