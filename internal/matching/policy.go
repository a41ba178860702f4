package matching

import (
	"github.com/shopspring/decimal"

	"github.com/evozago/financeiro/internal/models"
)

// Policy holds the tolerance and window parameters for one matching call
// site. The original system applied different values per call site; they
// are kept as separate presets rather than unified, since unifying them
// would silently change matching outcomes.
type Policy struct {
	// Tolerance is the allowed relative deviation between the observed
	// amount and a payable's original amount, e.g. 0.05 for 5%.
	Tolerance decimal.Decimal

	// WindowDays bounds the absolute distance between the transaction
	// date and a payable's due date. Ignored when the transaction has no
	// recognized date.
	WindowDays int

	// Statuses lists the payable statuses considered eligible.
	Statuses []models.PayableStatus

	// MaxResults caps the returned candidate list.
	MaxResults int
}

// StatementAutoPolicy is used when auto-reconciling imported statement
// debits: tight tolerance, and already-paid payables stay eligible so a
// bank line can still be linked to a bill settled by other means.
func StatementAutoPolicy() Policy {
	return Policy{
		Tolerance:  decimal.RequireFromString("0.05"),
		WindowDays: 10,
		Statuses:   []models.PayableStatus{models.PayableStatusPending, models.PayableStatusPaid},
		MaxResults: 10,
	}
}

// StatementSuggestPolicy is used for manual-review suggestion listings on
// statement lines: wider tolerance and window than auto-matching.
func StatementSuggestPolicy() Policy {
	return Policy{
		Tolerance:  decimal.RequireFromString("0.1"),
		WindowDays: 15,
		Statuses:   []models.PayableStatus{models.PayableStatusPending, models.PayableStatusPaid},
		MaxResults: 10,
	}
}

// ReceiptAutoPolicy is used when auto-reconciling an uploaded receipt with
// a recognized amount and date. Only pending payables are eligible.
func ReceiptAutoPolicy() Policy {
	return Policy{
		Tolerance:  decimal.RequireFromString("0.05"),
		WindowDays: 10,
		Statuses:   []models.PayableStatus{models.PayableStatusPending},
		MaxResults: 10,
	}
}

// ReceiptSuggestPolicy is used for suggestion listings on receipts: the
// widest window, since receipt dates are often far from due dates.
func ReceiptSuggestPolicy() Policy {
	return Policy{
		Tolerance:  decimal.RequireFromString("0.1"),
		WindowDays: 30,
		Statuses:   []models.PayableStatus{models.PayableStatusPending},
		MaxResults: 10,
	}
}

func (p Policy) allows(status models.PayableStatus) bool {
	for _, s := range p.Statuses {
		if s == status {
			return true
		}
	}
	return false
}
