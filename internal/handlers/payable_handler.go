package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/evozago/financeiro/internal/errors"
	"github.com/evozago/financeiro/internal/models"
	"github.com/evozago/financeiro/internal/pagination"
	"github.com/evozago/financeiro/internal/services"
)

// PayableHandler handles payable-related requests.
type PayableHandler struct {
	payableService services.PayableServicer
}

// NewPayableHandler creates a new PayableHandler.
func NewPayableHandler(payableService services.PayableServicer) *PayableHandler {
	return &PayableHandler{payableService: payableService}
}

// InstallmentRequest represents one installment of a split payable.
type InstallmentRequest struct {
	Amount  string `json:"amount" binding:"required"`
	DueDate string `json:"due_date" binding:"required"`
}

// CreatePayableRequest represents the request payload for creating a payable.
// When installments are given, amount and due_date at the top level are
// ignored and one payable is created per installment.
type CreatePayableRequest struct {
	SupplierID     uint                 `json:"supplier_id" binding:"required"`
	CategoryID     uint                 `json:"category_id" binding:"required"`
	Description    string               `json:"description" binding:"required,min=1,max=255"`
	DocumentNumber string               `json:"document_number" binding:"max=100"`
	Amount         string               `json:"amount"`
	DueDate        string               `json:"due_date"`
	Notes          string               `json:"notes" binding:"max=1000"`
	Installments   []InstallmentRequest `json:"installments" binding:"omitempty,dive"`
}

// UpdatePayableRequest represents the request payload for updating a payable.
type UpdatePayableRequest struct {
	SupplierID     *uint   `json:"supplier_id"`
	CategoryID     *uint   `json:"category_id"`
	Description    *string `json:"description" binding:"omitempty,min=1,max=255"`
	DocumentNumber *string `json:"document_number" binding:"omitempty,max=100"`
	Amount         *string `json:"amount"`
	DueDate        *string `json:"due_date"`
	Notes          *string `json:"notes" binding:"omitempty,max=1000"`
	Status         *string `json:"status" binding:"omitempty,payable_status"`
}

// PayRequest represents the request payload for registering a direct payment.
type PayRequest struct {
	PaidAmount *string `json:"paid_amount"`
	PaidDate   *string `json:"paid_date"`
	Notes      string  `json:"notes" binding:"max=1000"`
}

// CreatePayable handles the creation of a new payable
// @Summary     Create a payable
// @Description Create a payable, or one per installment when installments are given
// @Tags        payables
// @Accept      json
// @Produce     json
// @Param       request body CreatePayableRequest true "Payable details"
// @Success     201 {object} models.Payable "Payables created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Supplier or category not found"
// @Router      /payables [post]
func (h *PayableHandler) CreatePayable(c *gin.Context) {
	var req CreatePayableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.CreatePayableInput{
		SupplierID:     req.SupplierID,
		CategoryID:     req.CategoryID,
		Description:    req.Description,
		DocumentNumber: req.DocumentNumber,
		Notes:          req.Notes,
	}

	if len(req.Installments) > 0 {
		for i, inst := range req.Installments {
			amount, err := decimal.NewFromString(inst.Amount)
			if err != nil {
				respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput,
					"invalid amount in installment "+strconv.Itoa(i+1)))
				return
			}
			dueDate, err := parseFlexibleTime(inst.DueDate)
			if err != nil {
				respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput,
					"invalid due_date in installment "+strconv.Itoa(i+1)+", use RFC3339 or YYYY-MM-DD"))
				return
			}
			input.Installments = append(input.Installments, services.InstallmentInput{
				Amount:  amount,
				DueDate: dueDate,
			})
		}
	} else {
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid amount"))
			return
		}
		dueDate, err := parseFlexibleTime(req.DueDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid due_date, use RFC3339 or YYYY-MM-DD"))
			return
		}
		input.OriginalAmount = amount
		input.DueDate = dueDate
	}

	payables, err := h.payableService.CreatePayable(input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payables": payables})
}

// ListPayables handles listing payables with pagination and filters
// @Summary     List payables
// @Description List payables ordered by ascending due date
// @Tags        payables
// @Produce     json
// @Param       page query int false "Page number"
// @Param       per_page query int false "Items per page"
// @Param       status query string false "Filter by status (PENDING, PAID, OVERDUE, CANCELLED)"
// @Param       supplier_id query int false "Filter by supplier"
// @Param       category_id query int false "Filter by category"
// @Param       from_due_date query string false "Due date lower bound"
// @Param       to_due_date query string false "Due date upper bound"
// @Param       search query string false "Search in description, document number or supplier name"
// @Success     200 {object} pagination.PageResponse[models.Payable] "Payables"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /payables [get]
func (h *PayableHandler) ListPayables(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parsePayableFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.payableService.ListPayables(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parsePayableFilter(c *gin.Context) (services.PayableFilter, error) {
	var filter services.PayableFilter

	if v := c.Query("status"); v != "" {
		status := models.PayableStatus(v)
		switch status {
		case models.PayableStatusPending, models.PayableStatusPaid, models.PayableStatusCancelled:
			filter.Status = &status
		case models.PayableStatusOverdue:
			filter.OverdueOnly = true
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput,
				"invalid status, must be PENDING, PAID, OVERDUE, or CANCELLED")
		}
	}

	if v := c.Query("supplier_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid supplier_id")
		}
		supplierID := uint(id)
		filter.SupplierID = &supplierID
	}

	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category_id")
		}
		categoryID := uint(id)
		filter.CategoryID = &categoryID
	}

	if v := c.Query("from_due_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_due_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDueDate = &t
	}

	if v := c.Query("to_due_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_due_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDueDate = &t
	}

	filter.Search = c.Query("search")
	return filter, nil
}

// GetPayable handles retrieving a single payable
// @Summary     Get a payable
// @Tags        payables
// @Produce     json
// @Param       id path int true "Payable ID"
// @Success     200 {object} models.Payable "Payable"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /payables/{id} [get]
func (h *PayableHandler) GetPayable(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	payable, err := h.payableService.GetPayableByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payable": payable})
}

// UpdatePayable handles updating a payable
// @Summary     Update a payable
// @Description Update editable fields of a pending payable
// @Tags        payables
// @Accept      json
// @Produce     json
// @Param       id path int true "Payable ID"
// @Param       request body UpdatePayableRequest true "Fields to update"
// @Success     200 {object} models.Payable "Payable updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Payable is paid"
// @Router      /payables/{id} [put]
func (h *PayableHandler) UpdatePayable(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePayableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.PayableUpdateFields{
		SupplierID:     req.SupplierID,
		CategoryID:     req.CategoryID,
		Description:    req.Description,
		DocumentNumber: req.DocumentNumber,
		Notes:          req.Notes,
	}

	if req.Amount != nil {
		amount, parseErr := decimal.NewFromString(*req.Amount)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid amount"))
			return
		}
		fields.OriginalAmount = &amount
	}
	if req.DueDate != nil {
		dueDate, parseErr := parseFlexibleTime(*req.DueDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid due_date, use RFC3339 or YYYY-MM-DD"))
			return
		}
		fields.DueDate = &dueDate
	}
	if req.Status != nil {
		status := models.PayableStatus(*req.Status)
		fields.Status = &status
	}

	payable, err := h.payableService.UpdatePayable(id, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payable": payable})
}

// DeletePayable handles deleting a payable
// @Summary     Delete a payable
// @Description Delete a payable that is not paid and has no reconciliations
// @Tags        payables
// @Produce     json
// @Param       id path int true "Payable ID"
// @Success     200 {object} MessageResponse "Payable deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Payable is paid or reconciled"
// @Router      /payables/{id} [delete]
func (h *PayableHandler) DeletePayable(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.payableService.DeletePayable(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payable deleted successfully"})
}

// PayPayable handles registering a direct payment
// @Summary     Pay a payable
// @Description Register a payment made outside of reconciliation
// @Tags        payables
// @Accept      json
// @Produce     json
// @Param       id path int true "Payable ID"
// @Param       request body PayRequest true "Payment details"
// @Success     200 {object} models.Payable "Payable paid"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Already paid or cancelled"
// @Router      /payables/{id}/pay [post]
func (h *PayableHandler) PayPayable(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var paidAmount *decimal.Decimal
	if req.PaidAmount != nil {
		amount, parseErr := decimal.NewFromString(*req.PaidAmount)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid paid_amount"))
			return
		}
		if !amount.IsPositive() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "paid_amount must be greater than zero"))
			return
		}
		paidAmount = &amount
	}

	var paidDate *time.Time
	if req.PaidDate != nil {
		date, parseErr := parseFlexibleTime(*req.PaidDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid paid_date, use RFC3339 or YYYY-MM-DD"))
			return
		}
		paidDate = &date
	}

	payable, err := h.payableService.Pay(id, paidAmount, paidDate, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payable": payable})
}

// PayableDashboard handles the payable dashboard
// @Summary     Payable dashboard
// @Description Totals and counters per status plus the next dues within 30 days
// @Tags        payables
// @Produce     json
// @Success     200 {object} services.PayableDashboard "Dashboard"
// @Router      /payables/dashboard [get]
func (h *PayableHandler) PayableDashboard(c *gin.Context) {
	dash, err := h.payableService.Dashboard()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dash)
}
