package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationKind distinguishes system-initiated matches from user ones.
type ReconciliationKind string

const (
	ReconciliationKindAutomatic ReconciliationKind = "AUTOMATIC"
	ReconciliationKindManual    ReconciliationKind = "MANUAL"
)

// Reconciliation links one transaction to one payable, asserting that the
// transaction settles it. At most one may exist per transaction and per
// payable at any time.
type Reconciliation struct {
	Base
	TransactionID uint               `gorm:"not null;uniqueIndex" json:"transaction_id"`
	PayableID     uint               `gorm:"not null;index" json:"payable_id"`
	Kind          ReconciliationKind `gorm:"size:20;not null" json:"kind"`
	ReconciledAt  time.Time          `gorm:"not null" json:"reconciled_at"`
	Note          string             `json:"note"`

	// ValueDifference is observed |amount| minus the payable's original
	// amount, recorded even when within tolerance.
	ValueDifference decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"value_difference"`

	// SettledPayable records whether this reconciliation transitioned the
	// payable PENDING to PAID. Undo only reverts the payable when set; a
	// payable paid through another mechanism beforehand stays PAID.
	SettledPayable bool `gorm:"not null;default:false" json:"settled_payable"`

	Transaction *Transaction `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
	Payable     *Payable     `gorm:"foreignKey:PayableID" json:"payable,omitempty"`
}
