// Package errors provides custom error types for the payables API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrValidation     = &AppError{Code: "VALIDATION_ERROR", Message: "Value could not be parsed", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Supplier and category errors.
var (
	ErrSupplierNotFound  = &AppError{Code: "SUPPLIER_NOT_FOUND", Message: "Supplier not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCNPJ     = &AppError{Code: "DUPLICATE_CNPJ", Message: "A supplier with this CNPJ already exists", StatusCode: http.StatusConflict}
	ErrInvalidCNPJ       = &AppError{Code: "INVALID_CNPJ", Message: "CNPJ is not valid", StatusCode: http.StatusBadRequest}
	ErrCategoryNotFound  = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Expense category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategory = &AppError{Code: "DUPLICATE_CATEGORY", Message: "An expense category with this name already exists", StatusCode: http.StatusConflict}
)

// Payable errors.
var (
	ErrPayableNotFound    = &AppError{Code: "PAYABLE_NOT_FOUND", Message: "Payable not found", StatusCode: http.StatusNotFound}
	ErrPayableAlreadyPaid = &AppError{Code: "PAYABLE_ALREADY_PAID", Message: "Payable is already paid", StatusCode: http.StatusConflict}
	ErrPayableNotPaid     = &AppError{Code: "PAYABLE_NOT_PAID", Message: "Payable is not currently paid", StatusCode: http.StatusConflict}
	ErrPayableCancelled   = &AppError{Code: "PAYABLE_CANCELLED", Message: "Payable is cancelled", StatusCode: http.StatusConflict}
	ErrPayableInUse       = &AppError{Code: "PAYABLE_IN_USE", Message: "Payable has reconciliations and cannot be deleted", StatusCode: http.StatusConflict}
	ErrPayableConflict    = &AppError{Code: "PAYABLE_CONFLICT", Message: "Payable was modified concurrently", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrTransactionMatched  = &AppError{Code: "TRANSACTION_MATCHED", Message: "Transaction is already reconciled", StatusCode: http.StatusConflict}
	ErrTransactionInUse    = &AppError{Code: "TRANSACTION_IN_USE", Message: "Transaction has a reconciliation and cannot be deleted", StatusCode: http.StatusConflict}

	// ErrDuplicateImport marks a statement line already imported. It is
	// counted and skipped by the import loop, never surfaced over HTTP.
	ErrDuplicateImport = &AppError{Code: "DUPLICATE_IMPORT", Message: "Statement line was already imported", StatusCode: http.StatusConflict}
)

// Reconciliation errors.
var (
	ErrReconciliationNotFound = &AppError{Code: "RECONCILIATION_NOT_FOUND", Message: "Reconciliation not found", StatusCode: http.StatusNotFound}
	ErrPayableReconciled      = &AppError{Code: "PAYABLE_RECONCILED", Message: "Payable already has an active reconciliation", StatusCode: http.StatusConflict}
)
