package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionSource identifies where an observed financial event came from.
type TransactionSource string

const (
	TransactionSourceStatement TransactionSource = "STATEMENT"
	TransactionSourceReceipt   TransactionSource = "RECEIPT"
)

// TransactionStatus represents the matching state of a transaction.
type TransactionStatus string

const (
	TransactionStatusUnmatched TransactionStatus = "UNMATCHED"
	TransactionStatusMatched   TransactionStatus = "MATCHED"
)

// Transaction is a single observed financial event: a bank-statement line
// (signed amount) or a receipt observation (unsigned amount, optional date).
type Transaction struct {
	Base
	Source TransactionSource `gorm:"size:20;not null;index" json:"source"`
	Status TransactionStatus `gorm:"size:20;not null;default:UNMATCHED;index" json:"status"`

	// Statement lines carry an amount and date; receipts may lack both
	// when OCR failed to recognize them.
	Amount *decimal.Decimal `gorm:"type:numeric(15,2)" json:"amount,omitempty"`
	Date   *time.Time       `gorm:"type:date" json:"date,omitempty"`

	// Statement fields
	Kind          string `gorm:"size:50" json:"kind,omitempty"`
	Memo          string `gorm:"size:500" json:"memo,omitempty"`
	ExternalID    string `gorm:"size:100;index" json:"external_id,omitempty"`
	SourceBatchID string `gorm:"size:255;index" json:"source_batch_id,omitempty"`
	Bank          string `gorm:"size:100" json:"bank,omitempty"`
	Branch        string `gorm:"size:20" json:"branch,omitempty"`
	AccountNumber string `gorm:"size:50" json:"account_number,omitempty"`

	// Receipt fields
	SourceFile string `gorm:"size:255" json:"source_file,omitempty"`
	PayerText  string `gorm:"size:255" json:"payer_text,omitempty"`
	OCRText    string `json:"ocr_text,omitempty"`

	Reconciliation *Reconciliation `gorm:"foreignKey:TransactionID" json:"reconciliation,omitempty"`
}

// IsDebit reports whether the transaction is a statement debit, i.e. a
// negative-amount line. Receipts are not debits.
func (t *Transaction) IsDebit() bool {
	return t.Source == TransactionSourceStatement && t.Amount != nil && t.Amount.IsNegative()
}

// Matchable reports whether the transaction may ever be reconciled against
// a payable: statement debits, or receipts with a recognized amount.
func (t *Transaction) Matchable() bool {
	if t.Source == TransactionSourceReceipt {
		return t.Amount != nil
	}
	return t.IsDebit()
}

// AbsAmount returns the absolute value of the transaction amount, or zero
// when no amount was recognized.
func (t *Transaction) AbsAmount() decimal.Decimal {
	if t.Amount == nil {
		return decimal.Zero
	}
	return t.Amount.Abs()
}
