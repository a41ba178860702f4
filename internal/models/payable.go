package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayableStatus represents the settlement state of a payable.
type PayableStatus string

const (
	PayableStatusPending   PayableStatus = "PENDING"
	PayableStatusPaid      PayableStatus = "PAID"
	PayableStatusOverdue   PayableStatus = "OVERDUE"
	PayableStatusCancelled PayableStatus = "CANCELLED"
)

// Payable represents an amount owed to a supplier by a due date.
type Payable struct {
	Base
	SupplierID     uint             `gorm:"not null;index" json:"supplier_id"`
	CategoryID     uint             `gorm:"not null" json:"category_id"`
	Description    string           `gorm:"size:300;not null" json:"description"`
	DocumentNumber string           `gorm:"size:50" json:"document_number"`
	OriginalAmount decimal.Decimal  `gorm:"type:numeric(15,2);not null" json:"original_amount"`
	PaidAmount     *decimal.Decimal `gorm:"type:numeric(15,2)" json:"paid_amount,omitempty"`
	DueDate        time.Time        `gorm:"type:date;not null;index" json:"due_date"`
	PaymentDate    *time.Time       `gorm:"type:date" json:"payment_date,omitempty"`
	Installment    int              `gorm:"default:1" json:"installment"`
	Installments   int              `gorm:"default:1" json:"installments"`
	Status         PayableStatus    `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	Notes          string           `json:"notes"`

	Supplier *Supplier        `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Category *ExpenseCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// EffectiveStatus returns the advisory status as of the given day.
// A pending payable past its due date reads as OVERDUE; the stored
// status is never mutated for this.
func (p *Payable) EffectiveStatus(today time.Time) PayableStatus {
	if p.Status == PayableStatusPending && p.DueDate.Before(today.Truncate(24*time.Hour)) {
		return PayableStatusOverdue
	}
	return p.Status
}
