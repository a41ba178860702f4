package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/evozago/financeiro/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestSupplier creates an active supplier with a unique CNPJ.
func CreateTestSupplier(t *testing.T, db *gorm.DB) *models.Supplier {
	t.Helper()
	return CreateTestSupplierWithName(t, db, fmt.Sprintf("FORNECEDOR TESTE %d LTDA", nextID()))
}

// CreateTestSupplierWithName creates an active supplier with the given legal name.
func CreateTestSupplierWithName(t *testing.T, db *gorm.DB, legalName string) *models.Supplier {
	t.Helper()

	n := nextID()
	supplier := &models.Supplier{
		CNPJ:      fmt.Sprintf("%02d.%03d.%03d/0001-%02d", n%100, n%1000, (n+7)%1000, n%100),
		LegalName: legalName,
		Active:    true,
	}
	if err := db.Create(supplier).Error; err != nil {
		t.Fatalf("failed to create test supplier: %v", err)
	}
	return supplier
}

// CreateTestCategory creates an expense category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB) *models.ExpenseCategory {
	t.Helper()

	category := &models.ExpenseCategory{
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Active: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestPayable creates a pending payable with the given amount and due date.
func CreateTestPayable(t *testing.T, db *gorm.DB, supplierID, categoryID uint, amount string, dueDate time.Time) *models.Payable {
	t.Helper()

	payable := &models.Payable{
		SupplierID:     supplierID,
		CategoryID:     categoryID,
		Description:    fmt.Sprintf("Test Payable %d", nextID()),
		OriginalAmount: decimal.RequireFromString(amount),
		DueDate:        dueDate,
		Installment:    1,
		Installments:   1,
		Status:         models.PayableStatusPending,
	}
	if err := db.Create(payable).Error; err != nil {
		t.Fatalf("failed to create test payable: %v", err)
	}
	return payable
}

// CreateTestStatementTransaction creates an unmatched statement line with the
// given signed amount and date.
func CreateTestStatementTransaction(t *testing.T, db *gorm.DB, amount string, date time.Time) *models.Transaction {
	t.Helper()

	value := decimal.RequireFromString(amount)
	kind := "CREDIT"
	if value.IsNegative() {
		kind = "DEBIT"
	}
	txn := &models.Transaction{
		Source:        models.TransactionSourceStatement,
		Status:        models.TransactionStatusUnmatched,
		Amount:        &value,
		Date:          &date,
		Kind:          kind,
		ExternalID:    fmt.Sprintf("EXT-%d", nextID()),
		SourceBatchID: fmt.Sprintf("batch-%d", nextID()),
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test statement transaction: %v", err)
	}
	return txn
}

// CreateTestReceiptTransaction creates an unmatched receipt with the given
// unsigned amount; date may be nil when OCR failed to recognize one.
func CreateTestReceiptTransaction(t *testing.T, db *gorm.DB, amount string, date *time.Time) *models.Transaction {
	t.Helper()

	value := decimal.RequireFromString(amount)
	txn := &models.Transaction{
		Source:     models.TransactionSourceReceipt,
		Status:     models.TransactionStatusUnmatched,
		Amount:     &value,
		Date:       date,
		SourceFile: fmt.Sprintf("receipt-%d.pdf", nextID()),
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test receipt transaction: %v", err)
	}
	return txn
}
