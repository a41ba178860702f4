// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("payable_status", validatePayableStatus)
		_ = v.RegisterValidation("transaction_source", validateTransactionSource)
		_ = v.RegisterValidation("transaction_status", validateTransactionStatus)
		_ = v.RegisterValidation("reconciliation_kind", validateReconciliationKind)
	}
}

func validatePayableStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "PENDING", "PAID", "OVERDUE", "CANCELLED":
		return true
	}
	return false
}

func validateTransactionSource(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "STATEMENT", "RECEIPT":
		return true
	}
	return false
}

func validateTransactionStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "UNMATCHED", "MATCHED":
		return true
	}
	return false
}

func validateReconciliationKind(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "AUTOMATIC", "MANUAL":
		return true
	}
	return false
}
