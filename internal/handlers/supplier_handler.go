package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/evozago/financeiro/internal/errors"
	"github.com/evozago/financeiro/internal/pagination"
	"github.com/evozago/financeiro/internal/services"
)

// SupplierHandler handles supplier-related requests.
type SupplierHandler struct {
	supplierService services.SupplierServicer
}

// NewSupplierHandler creates a new SupplierHandler.
func NewSupplierHandler(supplierService services.SupplierServicer) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// CreateSupplierRequest represents the request payload for registering a supplier.
type CreateSupplierRequest struct {
	CNPJ          string `json:"cnpj" binding:"required,min=14,max=18"`
	LegalName     string `json:"legal_name" binding:"required,min=1,max=255"`
	TradeName     string `json:"trade_name" binding:"max=255"`
	StateRegistry string `json:"state_registry" binding:"max=50"`
	Address       string `json:"address" binding:"max=255"`
	City          string `json:"city" binding:"max=100"`
	State         string `json:"state" binding:"max=2"`
	PostalCode    string `json:"postal_code" binding:"max=10"`
	Phone         string `json:"phone" binding:"max=20"`
	Email         string `json:"email" binding:"omitempty,email,max=255"`
}

// CreateSupplier handles the registration of a new supplier
// @Summary     Register a supplier
// @Description Register a new supplier identified by its CNPJ
// @Tags        suppliers
// @Accept      json
// @Produce     json
// @Param       request body CreateSupplierRequest true "Supplier details"
// @Success     201 {object} models.Supplier "Supplier created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "CNPJ already registered"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /suppliers [post]
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	supplier, err := h.supplierService.CreateSupplier(
		req.CNPJ,
		req.LegalName,
		req.TradeName,
		req.StateRegistry,
		req.Address,
		req.City,
		req.State,
		req.PostalCode,
		req.Phone,
		req.Email,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"supplier": supplier})
}

// GetSupplier handles retrieving a single supplier
// @Summary     Get a supplier
// @Tags        suppliers
// @Produce     json
// @Param       id path int true "Supplier ID"
// @Success     200 {object} models.Supplier "Supplier"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /suppliers/{id} [get]
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	supplier, err := h.supplierService.GetSupplierByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"supplier": supplier})
}

// ListSuppliers handles listing suppliers with pagination
// @Summary     List suppliers
// @Description List suppliers ordered by legal name, optionally filtered by a search term
// @Tags        suppliers
// @Produce     json
// @Param       page query int false "Page number"
// @Param       per_page query int false "Items per page"
// @Param       search query string false "Search in legal name, trade name or CNPJ"
// @Param       active query bool false "Only active suppliers"
// @Success     200 {object} pagination.PageResponse[models.Supplier] "Suppliers"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /suppliers [get]
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	activeOnly := c.Query("active") == "true"

	result, err := h.supplierService.ListSuppliers(page, c.Query("search"), activeOnly)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
