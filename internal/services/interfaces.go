package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/evozago/financeiro/internal/matching"
	"github.com/evozago/financeiro/internal/models"
	"github.com/evozago/financeiro/internal/pagination"
)

// SupplierServicer defines the contract for supplier lookups and creation.
type SupplierServicer interface {
	CreateSupplier(cnpj, legalName, tradeName, stateRegistry, address, city, state, postalCode, phone, email string) (*models.Supplier, error)
	GetSupplierByID(id uint) (*models.Supplier, error)
	ListSuppliers(page pagination.PageRequest, search string, activeOnly bool) (*pagination.PageResponse[models.Supplier], error)
}

// ExpenseCategoryServicer defines the contract for expense-category lookups
// and creation.
type ExpenseCategoryServicer interface {
	CreateCategory(name, description string) (*models.ExpenseCategory, error)
	GetCategoryByID(id uint) (*models.ExpenseCategory, error)
	ListCategories(page pagination.PageRequest) (*pagination.PageResponse[models.ExpenseCategory], error)
}

// InstallmentInput describes one installment of a split payable.
type InstallmentInput struct {
	Amount  decimal.Decimal
	DueDate time.Time
}

// CreatePayableInput holds the fields for creating a payable, or several
// when Installments is set.
type CreatePayableInput struct {
	SupplierID     uint
	CategoryID     uint
	Description    string
	DocumentNumber string
	OriginalAmount decimal.Decimal
	DueDate        time.Time
	Notes          string
	Installments   []InstallmentInput
}

// PayableFilter holds optional filter parameters for listing payables.
type PayableFilter struct {
	Status      *models.PayableStatus
	SupplierID  *uint
	CategoryID  *uint
	FromDueDate *time.Time
	ToDueDate   *time.Time
	Search      string
	OverdueOnly bool
}

// PayableUpdateFields holds optional fields for updating a payable. Nil
// pointers leave the column unchanged.
type PayableUpdateFields struct {
	SupplierID     *uint
	CategoryID     *uint
	Description    *string
	DocumentNumber *string
	OriginalAmount *decimal.Decimal
	DueDate        *time.Time
	Notes          *string
	Status         *models.PayableStatus
}

// PayableDashboard aggregates payable totals for the dashboard endpoint.
type PayableDashboard struct {
	PendingTotal decimal.Decimal  `json:"pending_total"`
	PaidTotal    decimal.Decimal  `json:"paid_total"`
	OverdueTotal decimal.Decimal  `json:"overdue_total"`
	PendingCount int64            `json:"pending_count"`
	PaidCount    int64            `json:"paid_count"`
	OverdueCount int64            `json:"overdue_count"`
	NextDue      []models.Payable `json:"next_due"`
}

// PayableServicer defines the contract for the payable registry.
// MarkPaid, RevertToPending and ListEligible take an explicit *gorm.DB so
// the reconciliation coordinator can call them inside its own transaction.
type PayableServicer interface {
	CreatePayable(input CreatePayableInput) ([]models.Payable, error)
	ListPayables(page pagination.PageRequest, filter PayableFilter) (*pagination.PageResponse[models.Payable], error)
	GetPayableByID(id uint) (*models.Payable, error)
	UpdatePayable(id uint, fields PayableUpdateFields) (*models.Payable, error)
	DeletePayable(id uint) error
	Pay(id uint, paidAmount *decimal.Decimal, paidDate *time.Time, notes string) (*models.Payable, error)
	MarkPaid(tx *gorm.DB, id uint, paidAmount decimal.Decimal, paidDate time.Time) error
	RevertToPending(tx *gorm.DB, id uint) error
	ListEligible(tx *gorm.DB, statuses []models.PayableStatus) ([]models.Payable, error)
	Dashboard() (*PayableDashboard, error)
}

// RawStatementLine is one parsed bank-export line as delivered by the
// file-parsing collaborator. Amount and date arrive as text and are
// normalized here.
type RawStatementLine struct {
	Amount        string
	Date          string
	Kind          string
	Memo          string
	ExternalID    string
	Bank          string
	Branch        string
	AccountNumber string
}

// RawReceiptObservation is the OCR-extracted field set for one uploaded
// receipt. Any field may be empty when recognition failed.
type RawReceiptObservation struct {
	Amount     string
	Date       string
	PayerText  string
	BankText   string
	OCRText    string
	SourceFile string
}

// LineOutcome reports what happened to a single statement line during
// import.
type LineOutcome struct {
	Line          int    `json:"line"`
	Status        string `json:"status"` // imported, duplicate, invalid
	Error         string `json:"error,omitempty"`
	TransactionID uint   `json:"transaction_id,omitempty"`
	Reconciled    bool   `json:"reconciled"`
}

// ImportReport summarizes a statement import batch.
type ImportReport struct {
	Imported          int           `json:"imported"`
	DuplicatesSkipped int           `json:"duplicates_skipped"`
	AutoReconciled    int           `json:"auto_reconciled"`
	Lines             []LineOutcome `json:"lines"`
}

// ReceiptResult pairs a stored receipt transaction with its reconciliation
// outcome, when auto-reconciliation found a match.
type ReceiptResult struct {
	Transaction    *models.Transaction    `json:"transaction"`
	Reconciliation *models.Reconciliation `json:"reconciliation,omitempty"`
}

// TransactionFilter holds optional filter parameters for listing
// transactions.
type TransactionFilter struct {
	Status   *models.TransactionStatus
	Source   *models.TransactionSource
	FromDate *time.Time
	ToDate   *time.Time
}

// TransactionServicer defines the contract for normalizing and storing
// observed transactions.
type TransactionServicer interface {
	ImportStatement(batchID string, lines []RawStatementLine) (*ImportReport, error)
	SubmitReceipt(obs RawReceiptObservation) (*ReceiptResult, error)
	ListTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(id uint) (*models.Transaction, error)
	DeleteTransaction(id uint) error
}

// ReconciliationDashboard aggregates matching statistics.
type ReconciliationDashboard struct {
	TotalTransactions int64           `json:"total_transactions"`
	Matched           int64           `json:"matched"`
	Unmatched         int64           `json:"unmatched"`
	MatchedPct        float64         `json:"matched_pct"`
	Automatic         int64           `json:"automatic"`
	Manual            int64           `json:"manual"`
	DebitTotal        decimal.Decimal `json:"debit_total"`
	MatchedTotal      decimal.Decimal `json:"matched_total"`
	UnmatchedTotal    decimal.Decimal `json:"unmatched_total"`
}

// ReconciliationServicer defines the contract for the reconciliation
// coordinator: the only writer of cross-entity state.
type ReconciliationServicer interface {
	AutoReconcile(tx *gorm.DB, txn *models.Transaction) (*models.Reconciliation, error)
	ConfirmManual(transactionID, payableID uint, note string, settle *bool) (*models.Reconciliation, error)
	Undo(reconciliationID uint) error
	ListCandidates(transactionID uint) ([]matching.Match, error)
	ListReconciliations(page pagination.PageRequest, kind *models.ReconciliationKind) (*pagination.PageResponse[models.Reconciliation], error)
	Dashboard() (*ReconciliationDashboard, error)
}
