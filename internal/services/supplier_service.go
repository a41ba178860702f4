package services

import (
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	apperrors "github.com/evozago/financeiro/internal/errors"
	"github.com/evozago/financeiro/internal/models"
	"github.com/evozago/financeiro/internal/pagination"
)

var nonDigits = regexp.MustCompile(`[^0-9]`)

// supplierService handles supplier-related business logic.
type supplierService struct {
	db *gorm.DB
}

// NewSupplierService creates a new SupplierServicer.
func NewSupplierService(db *gorm.DB) SupplierServicer {
	return &supplierService{db: db}
}

// FormatCNPJ normalizes a CNPJ to the XX.XXX.XXX/XXXX-XX form. Inputs
// that do not contain exactly 14 digits are returned stripped.
func FormatCNPJ(cnpj string) string {
	digits := nonDigits.ReplaceAllString(cnpj, "")
	if len(digits) != 14 {
		return digits
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s", digits[:2], digits[2:5], digits[5:8], digits[8:12], digits[12:14])
}

// ValidCNPJ reports whether the input carries the 14 digits of a CNPJ.
func ValidCNPJ(cnpj string) bool {
	return len(nonDigits.ReplaceAllString(cnpj, "")) == 14
}

// CreateSupplier registers a supplier after validating and formatting its CNPJ.
func (s *supplierService) CreateSupplier(cnpj, legalName, tradeName, stateRegistry, address, city, state, postalCode, phone, email string) (*models.Supplier, error) {
	if cnpj == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "CNPJ is required")
	}
	if legalName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "legal name is required")
	}
	if !ValidCNPJ(cnpj) {
		return nil, apperrors.ErrInvalidCNPJ
	}

	formatted := FormatCNPJ(cnpj)

	var count int64
	if err := s.db.Model(&models.Supplier{}).Where("cnpj = ?", formatted).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCNPJ
	}

	supplier := &models.Supplier{
		CNPJ:          formatted,
		LegalName:     legalName,
		TradeName:     tradeName,
		StateRegistry: stateRegistry,
		Address:       address,
		City:          city,
		State:         state,
		PostalCode:    postalCode,
		Phone:         phone,
		Email:         email,
		Active:        true,
	}
	if err := s.db.Create(supplier).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return supplier, nil
}

// GetSupplierByID retrieves a supplier by ID.
func (s *supplierService) GetSupplierByID(id uint) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := s.db.First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSupplierNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &supplier, nil
}

// ListSuppliers retrieves a paginated list of suppliers, optionally
// filtered by a name/CNPJ search term.
func (s *supplierService) ListSuppliers(page pagination.PageRequest, search string, activeOnly bool) (*pagination.PageResponse[models.Supplier], error) {
	page.Defaults()

	base := s.db.Model(&models.Supplier{})
	if search != "" {
		like := "%" + search + "%"
		base = base.Where("legal_name LIKE ? OR trade_name LIKE ? OR cnpj LIKE ?", like, like, like)
	}
	if activeOnly {
		base = base.Where("active = ?", true)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var suppliers []models.Supplier
	if err := base.Scopes(pagination.Paginate(page)).
		Order("legal_name ASC").
		Find(&suppliers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(suppliers, page.Page, page.PerPage, totalItems)
	return &result, nil
}
