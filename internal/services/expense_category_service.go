package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/evozago/financeiro/internal/errors"
	"github.com/evozago/financeiro/internal/models"
	"github.com/evozago/financeiro/internal/pagination"
)

// expenseCategoryService handles expense-category business logic.
type expenseCategoryService struct {
	db *gorm.DB
}

// NewExpenseCategoryService creates a new ExpenseCategoryServicer.
func NewExpenseCategoryService(db *gorm.DB) ExpenseCategoryServicer {
	return &expenseCategoryService{db: db}
}

// CreateCategory registers an expense category with a unique name.
func (s *expenseCategoryService) CreateCategory(name, description string) (*models.ExpenseCategory, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	var count int64
	if err := s.db.Model(&models.ExpenseCategory{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	category := &models.ExpenseCategory{
		Name:        name,
		Description: description,
		Active:      true,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetCategoryByID retrieves an expense category by ID.
func (s *expenseCategoryService) GetCategoryByID(id uint) (*models.ExpenseCategory, error) {
	var category models.ExpenseCategory
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// ListCategories retrieves a paginated list of expense categories.
func (s *expenseCategoryService) ListCategories(page pagination.PageRequest) (*pagination.PageResponse[models.ExpenseCategory], error) {
	page.Defaults()

	base := s.db.Model(&models.ExpenseCategory{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.ExpenseCategory
	if err := base.Scopes(pagination.Paginate(page)).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PerPage, totalItems)
	return &result, nil
}
