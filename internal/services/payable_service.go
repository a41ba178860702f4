package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/evozago/financeiro/internal/errors"
	"github.com/evozago/financeiro/internal/models"
	"github.com/evozago/financeiro/internal/pagination"
)

// payableService handles the payable registry: lifecycle and settlement
// state of amounts owed to suppliers.
type payableService struct {
	db *gorm.DB
}

// NewPayableService creates a new PayableServicer.
func NewPayableService(db *gorm.DB) PayableServicer {
	return &payableService{db: db}
}

// CreatePayable creates a payable, or one payable per installment when the
// input carries an installment list. Installment descriptions are suffixed
// with their position, matching the document they were split from.
func (s *payableService) CreatePayable(input CreatePayableInput) ([]models.Payable, error) {
	if input.Description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}

	if err := s.checkReferences(input.SupplierID, input.CategoryID); err != nil {
		return nil, err
	}

	if len(input.Installments) > 1 {
		return s.createInstallments(input)
	}

	if !input.OriginalAmount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "original amount must be greater than zero")
	}
	if input.DueDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "due date is required")
	}

	payable := models.Payable{
		SupplierID:     input.SupplierID,
		CategoryID:     input.CategoryID,
		Description:    input.Description,
		DocumentNumber: input.DocumentNumber,
		OriginalAmount: input.OriginalAmount,
		DueDate:        input.DueDate,
		Installment:    1,
		Installments:   1,
		Status:         models.PayableStatusPending,
		Notes:          input.Notes,
	}
	if err := s.db.Create(&payable).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return []models.Payable{payable}, nil
}

func (s *payableService) createInstallments(input CreatePayableInput) ([]models.Payable, error) {
	total := len(input.Installments)
	payables := make([]models.Payable, 0, total)

	for i, inst := range input.Installments {
		if !inst.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
				fmt.Sprintf("installment %d amount must be greater than zero", i+1))
		}
		if inst.DueDate.IsZero() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
				fmt.Sprintf("installment %d due date is required", i+1))
		}
		payables = append(payables, models.Payable{
			SupplierID:     input.SupplierID,
			CategoryID:     input.CategoryID,
			Description:    fmt.Sprintf("%s - Parcela %d/%d", input.Description, i+1, total),
			DocumentNumber: input.DocumentNumber,
			OriginalAmount: inst.Amount,
			DueDate:        inst.DueDate,
			Installment:    i + 1,
			Installments:   total,
			Status:         models.PayableStatusPending,
			Notes:          input.Notes,
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range payables {
			if err := tx.Create(&payables[i]).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payables, nil
}

func (s *payableService) checkReferences(supplierID, categoryID uint) error {
	if supplierID == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "supplier ID is required")
	}
	if categoryID == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category ID is required")
	}

	var count int64
	if err := s.db.Model(&models.Supplier{}).Where("id = ?", supplierID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrSupplierNotFound
	}

	if err := s.db.Model(&models.ExpenseCategory{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

// ListPayables retrieves a paginated, filtered list of payables ordered by
// ascending due date.
func (s *payableService) ListPayables(page pagination.PageRequest, filter PayableFilter) (*pagination.PageResponse[models.Payable], error) {
	page.Defaults()

	base := s.db.Model(&models.Payable{})
	base = applyPayableFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payables []models.Payable
	if err := base.Preload("Supplier").Preload("Category").
		Scopes(pagination.Paginate(page)).
		Order("due_date ASC").
		Find(&payables).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(payables, page.Page, page.PerPage, totalItems)
	return &result, nil
}

func applyPayableFilters(q *gorm.DB, f PayableFilter) *gorm.DB {
	if f.Status != nil {
		q = q.Where("payables.status = ?", *f.Status)
	}
	if f.SupplierID != nil {
		q = q.Where("payables.supplier_id = ?", *f.SupplierID)
	}
	if f.CategoryID != nil {
		q = q.Where("payables.category_id = ?", *f.CategoryID)
	}
	if f.FromDueDate != nil {
		q = q.Where("payables.due_date >= ?", *f.FromDueDate)
	}
	if f.ToDueDate != nil {
		q = q.Where("payables.due_date <= ?", *f.ToDueDate)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Joins("JOIN suppliers ON suppliers.id = payables.supplier_id").
			Where("payables.description LIKE ? OR payables.document_number LIKE ? OR suppliers.legal_name LIKE ?",
				like, like, like)
	}
	if f.OverdueOnly {
		q = q.Where("payables.status = ? AND payables.due_date < ?",
			models.PayableStatusPending, time.Now().Truncate(24*time.Hour))
	}
	return q
}

// GetPayableByID retrieves a payable with its supplier and category.
func (s *payableService) GetPayableByID(id uint) (*models.Payable, error) {
	var payable models.Payable
	if err := s.db.Preload("Supplier").Preload("Category").First(&payable, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPayableNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &payable, nil
}

// UpdatePayable updates editable fields of a payable. Paid payables cannot
// be modified.
func (s *payableService) UpdatePayable(id uint, fields PayableUpdateFields) (*models.Payable, error) {
	payable, err := s.GetPayableByID(id)
	if err != nil {
		return nil, err
	}
	if payable.Status == models.PayableStatusPaid {
		return nil, apperrors.ErrPayableAlreadyPaid
	}

	if fields.SupplierID != nil || fields.CategoryID != nil {
		supplierID := payable.SupplierID
		categoryID := payable.CategoryID
		if fields.SupplierID != nil {
			supplierID = *fields.SupplierID
		}
		if fields.CategoryID != nil {
			categoryID = *fields.CategoryID
		}
		if err := s.checkReferences(supplierID, categoryID); err != nil {
			return nil, err
		}
		payable.SupplierID = supplierID
		payable.CategoryID = categoryID
	}

	if fields.Description != nil {
		if *fields.Description == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
		}
		payable.Description = *fields.Description
	}
	if fields.DocumentNumber != nil {
		payable.DocumentNumber = *fields.DocumentNumber
	}
	if fields.OriginalAmount != nil {
		if !fields.OriginalAmount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "original amount must be greater than zero")
		}
		payable.OriginalAmount = *fields.OriginalAmount
	}
	if fields.DueDate != nil {
		payable.DueDate = *fields.DueDate
	}
	if fields.Notes != nil {
		payable.Notes = *fields.Notes
	}
	if fields.Status != nil {
		switch *fields.Status {
		case models.PayableStatusPending, models.PayableStatusCancelled:
			payable.Status = *fields.Status
		default:
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
				"status can only be set to PENDING or CANCELLED here; use the pay operation to settle")
		}
	}

	if err := s.db.Save(payable).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payable, nil
}

// DeletePayable removes a payable. Paid payables and payables referenced
// by a reconciliation are protected.
func (s *payableService) DeletePayable(id uint) error {
	payable, err := s.GetPayableByID(id)
	if err != nil {
		return err
	}
	if payable.Status == models.PayableStatusPaid {
		return apperrors.ErrPayableAlreadyPaid
	}

	var count int64
	if err := s.db.Model(&models.Reconciliation{}).Where("payable_id = ?", id).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrPayableInUse
	}

	if err := s.db.Delete(&models.Payable{}, id).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Pay marks a payable as paid outside of reconciliation (a direct payment
// registration). Defaults: amount falls back to the original amount, date
// to today.
func (s *payableService) Pay(id uint, paidAmount *decimal.Decimal, paidDate *time.Time, notes string) (*models.Payable, error) {
	payable, err := s.GetPayableByID(id)
	if err != nil {
		return nil, err
	}
	if payable.Status == models.PayableStatusCancelled {
		return nil, apperrors.ErrPayableCancelled
	}

	amount := payable.OriginalAmount
	if paidAmount != nil {
		amount = *paidAmount
	}
	date := time.Now().Truncate(24 * time.Hour)
	if paidDate != nil {
		date = *paidDate
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.MarkPaid(tx, id, amount, date); err != nil {
			return err
		}
		if notes != "" {
			if err := tx.Model(&models.Payable{}).Where("id = ?", id).
				Update("notes", notes).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetPayableByID(id)
}

// MarkPaid transitions a payable PENDING to PAID with a compare-and-set on
// status, so a losing concurrent writer fails instead of double-settling.
func (s *payableService) MarkPaid(tx *gorm.DB, id uint, paidAmount decimal.Decimal, paidDate time.Time) error {
	res := tx.Model(&models.Payable{}).
		Where("id = ? AND status = ?", id, models.PayableStatusPending).
		Updates(map[string]interface{}{
			"status":       models.PayableStatusPaid,
			"paid_amount":  paidAmount,
			"payment_date": paidDate,
		})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return s.explainPayableCAS(tx, id, models.PayableStatusPending)
	}
	return nil
}

// RevertToPending clears the settlement of a payable that is currently
// PAID, again via compare-and-set.
func (s *payableService) RevertToPending(tx *gorm.DB, id uint) error {
	res := tx.Model(&models.Payable{}).
		Where("id = ? AND status = ?", id, models.PayableStatusPaid).
		Updates(map[string]interface{}{
			"status":       models.PayableStatusPending,
			"paid_amount":  nil,
			"payment_date": nil,
		})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return s.explainPayableCAS(tx, id, models.PayableStatusPaid)
	}
	return nil
}

// explainPayableCAS turns a zero-row compare-and-set into the specific
// error the caller should see.
func (s *payableService) explainPayableCAS(tx *gorm.DB, id uint, expected models.PayableStatus) error {
	var payable models.Payable
	if err := tx.First(&payable, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPayableNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	switch {
	case payable.Status == models.PayableStatusCancelled:
		return apperrors.ErrPayableCancelled
	case expected == models.PayableStatusPending && payable.Status == models.PayableStatusPaid:
		return apperrors.ErrPayableAlreadyPaid
	case expected == models.PayableStatusPaid && payable.Status != models.PayableStatusPaid:
		return apperrors.ErrPayableNotPaid
	default:
		return apperrors.ErrPayableConflict
	}
}

// ListEligible returns payables in the given statuses that have no active
// reconciliation, with suppliers preloaded for text matching, ordered by
// ascending due date.
func (s *payableService) ListEligible(tx *gorm.DB, statuses []models.PayableStatus) ([]models.Payable, error) {
	reconciled := tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.Reconciliation{}).Select("payable_id")

	var payables []models.Payable
	if err := tx.Preload("Supplier").
		Where("status IN ?", statuses).
		Where("id NOT IN (?)", reconciled).
		Order("due_date ASC").
		Find(&payables).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payables, nil
}

// Dashboard aggregates payable totals and counters per status, overdue
// figures, and the next dues inside 30 days.
func (s *payableService) Dashboard() (*PayableDashboard, error) {
	today := time.Now().Truncate(24 * time.Hour)
	dash := &PayableDashboard{}

	type row struct {
		Total decimal.Decimal
		Count int64
	}

	var pending row
	if err := s.db.Model(&models.Payable{}).
		Select("COALESCE(SUM(original_amount), 0) AS total, COUNT(*) AS count").
		Where("status = ?", models.PayableStatusPending).
		Scan(&pending).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var paid row
	if err := s.db.Model(&models.Payable{}).
		Select("COALESCE(SUM(paid_amount), 0) AS total, COUNT(*) AS count").
		Where("status = ?", models.PayableStatusPaid).
		Scan(&paid).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var overdue row
	if err := s.db.Model(&models.Payable{}).
		Select("COALESCE(SUM(original_amount), 0) AS total, COUNT(*) AS count").
		Where("status = ? AND due_date < ?", models.PayableStatusPending, today).
		Scan(&overdue).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var nextDue []models.Payable
	if err := s.db.Preload("Supplier").
		Where("status = ? AND due_date BETWEEN ? AND ?",
			models.PayableStatusPending, today, today.AddDate(0, 0, 30)).
		Order("due_date ASC").
		Limit(10).
		Find(&nextDue).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	dash.PendingTotal = pending.Total
	dash.PendingCount = pending.Count
	dash.PaidTotal = paid.Total
	dash.PaidCount = paid.Count
	dash.OverdueTotal = overdue.Total
	dash.OverdueCount = overdue.Count
	dash.NextDue = nextDue
	return dash, nil
}
