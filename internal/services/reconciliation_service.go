package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/evozago/financeiro/internal/errors"
	"github.com/evozago/financeiro/internal/logger"
	"github.com/evozago/financeiro/internal/matching"
	"github.com/evozago/financeiro/internal/models"
	"github.com/evozago/financeiro/internal/pagination"
)

// reconciliationService coordinates matching decisions and is the only
// writer of cross-entity state: every confirm and undo touches the
// transaction, the payable and the reconciliation row inside one database
// transaction, so a partial application is never observable.
type reconciliationService struct {
	db       *gorm.DB
	payables PayableServicer
}

// NewReconciliationService creates a new ReconciliationServicer.
func NewReconciliationService(db *gorm.DB, payables PayableServicer) ReconciliationServicer {
	return &reconciliationService{db: db, payables: payables}
}

// confirm links a transaction to a payable inside the caller's database
// transaction. The transaction status flip is a compare-and-set, so a
// concurrent confirm of the same transaction loses with ErrTransactionMatched
// instead of overwriting. When settle is set and the payable is pending it
// is marked paid, again via compare-and-set on the payable side.
func (s *reconciliationService) confirm(tx *gorm.DB, txn *models.Transaction, payable *models.Payable, kind models.ReconciliationKind, note string, settle bool) (*models.Reconciliation, error) {
	// Re-read the payable under a row lock so concurrent confirms against
	// the same payable serialize before the active-reconciliation check.
	// A non-settling confirm never touches payable status, so without the
	// lock two such confirms could both pass the check and insert. sqlite
	// has a single writer and does not support FOR UPDATE.
	lockTx := tx
	if tx.Dialector.Name() != "sqlite" {
		lockTx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := lockTx.First(payable, payable.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPayableNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if payable.Status == models.PayableStatusCancelled {
		return nil, apperrors.ErrPayableCancelled
	}

	var active int64
	if err := tx.Model(&models.Reconciliation{}).
		Where("payable_id = ?", payable.ID).
		Count(&active).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if active > 0 {
		return nil, apperrors.ErrPayableReconciled
	}

	res := tx.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", txn.ID, models.TransactionStatusUnmatched).
		Update("status", models.TransactionStatusMatched)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrTransactionMatched
	}

	settled := false
	if settle && payable.Status == models.PayableStatusPending {
		paidAmount := txn.AbsAmount()
		if paidAmount.IsZero() {
			paidAmount = payable.OriginalAmount
		}
		paidDate := time.Now().Truncate(24 * time.Hour)
		if txn.Date != nil {
			paidDate = *txn.Date
		}
		if err := s.payables.MarkPaid(tx, payable.ID, paidAmount, paidDate); err != nil {
			return nil, err
		}
		settled = true
	}

	diff := decimal.Zero
	if txn.Amount != nil {
		diff = txn.AbsAmount().Sub(payable.OriginalAmount)
	}

	rec := &models.Reconciliation{
		TransactionID:   txn.ID,
		PayableID:       payable.ID,
		Kind:            kind,
		ReconciledAt:    time.Now(),
		Note:            note,
		ValueDifference: diff,
		SettledPayable:  settled,
	}
	if err := tx.Create(rec).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	txn.Status = models.TransactionStatusMatched
	return rec, nil
}

// AutoReconcile attempts to match the given transaction against the
// eligible payable pool using the auto policy for its source, inside the
// caller's database transaction. It confirms only the top candidate;
// (nil, nil) means no candidate was found and the transaction stays
// unmatched. Statement debits settle the payable; a matched receipt is
// attached as evidence without settling.
func (s *reconciliationService) AutoReconcile(tx *gorm.DB, txn *models.Transaction) (*models.Reconciliation, error) {
	if !txn.Matchable() {
		return nil, nil
	}

	policy := matching.StatementAutoPolicy()
	settle := true
	if txn.Source == models.TransactionSourceReceipt {
		policy = matching.ReceiptAutoPolicy()
		settle = false
	}

	eligible, err := s.payables.ListEligible(tx, policy.Statuses)
	if err != nil {
		return nil, err
	}
	candidates := matching.FindCandidates(txn, eligible, policy)
	if len(candidates) == 0 {
		return nil, nil
	}

	best := candidates[0].Payable
	rec, err := s.confirm(tx, txn, &best, models.ReconciliationKindAutomatic, "", settle)
	if err != nil {
		return nil, err
	}
	logger.Get().Infow("auto-reconciled transaction",
		"transaction_id", txn.ID,
		"payable_id", best.ID,
		"settled", rec.SettledPayable,
	)
	return rec, nil
}

// ConfirmManual links a transaction to a payable chosen by the user. The
// matcher's tolerance and window filters do not apply here. When settle is
// nil the default follows the source: statement lines settle the payable,
// receipts attach without settling.
func (s *reconciliationService) ConfirmManual(transactionID, payableID uint, note string, settle *bool) (*models.Reconciliation, error) {
	var rec *models.Reconciliation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		if err := tx.First(&txn, transactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var payable models.Payable
		if err := tx.First(&payable, payableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPayableNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		doSettle := txn.Source == models.TransactionSourceStatement
		if settle != nil {
			doSettle = *settle
		}

		var err error
		rec, err = s.confirm(tx, &txn, &payable, models.ReconciliationKindManual, note, doSettle)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.getByID(rec.ID)
}

// Undo removes a reconciliation, returning the transaction to UNMATCHED
// and, when this reconciliation was the one that settled the payable,
// reverting the payable to PENDING with its paid fields cleared. A payable
// that was already paid before the match stays paid.
func (s *reconciliationService) Undo(reconciliationID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var rec models.Reconciliation
		if err := tx.First(&rec, reconciliationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrReconciliationNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Model(&models.Transaction{}).
			Where("id = ?", rec.TransactionID).
			Update("status", models.TransactionStatusUnmatched).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if rec.SettledPayable {
			if err := s.payables.RevertToPending(tx, rec.PayableID); err != nil {
				return err
			}
		}

		if err := tx.Delete(&models.Reconciliation{}, rec.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// ListCandidates returns the ranked payable candidates for a transaction
// under the wider suggestion policy for its source. Non-matchable
// transactions (statement credits, receipts without a recognized amount)
// get an empty list.
func (s *reconciliationService) ListCandidates(transactionID uint) ([]matching.Match, error) {
	var txn models.Transaction
	if err := s.db.First(&txn, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !txn.Matchable() {
		return []matching.Match{}, nil
	}

	policy := matching.StatementSuggestPolicy()
	if txn.Source == models.TransactionSourceReceipt {
		policy = matching.ReceiptSuggestPolicy()
	}

	eligible, err := s.payables.ListEligible(s.db, policy.Statuses)
	if err != nil {
		return nil, err
	}

	matches := matching.FindCandidates(&txn, eligible, policy)
	if matches == nil {
		matches = []matching.Match{}
	}
	return matches, nil
}

// ListReconciliations retrieves a paginated list of reconciliations, most
// recent first, optionally filtered by kind.
func (s *reconciliationService) ListReconciliations(page pagination.PageRequest, kind *models.ReconciliationKind) (*pagination.PageResponse[models.Reconciliation], error) {
	page.Defaults()

	base := s.db.Model(&models.Reconciliation{})
	if kind != nil {
		base = base.Where("kind = ?", *kind)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var recs []models.Reconciliation
	if err := base.Preload("Transaction").Preload("Payable").Preload("Payable.Supplier").
		Scopes(pagination.Paginate(page)).
		Order("reconciled_at DESC").
		Find(&recs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(recs, page.Page, page.PerPage, totalItems)
	return &result, nil
}

func (s *reconciliationService) getByID(id uint) (*models.Reconciliation, error) {
	var rec models.Reconciliation
	if err := s.db.Preload("Transaction").Preload("Payable").
		First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReconciliationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rec, nil
}

// Dashboard aggregates matching statistics over the transaction pool and
// the statement debit volume.
func (s *reconciliationService) Dashboard() (*ReconciliationDashboard, error) {
	dash := &ReconciliationDashboard{}

	if err := s.db.Model(&models.Transaction{}).Count(&dash.TotalTransactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Transaction{}).
		Where("status = ?", models.TransactionStatusMatched).
		Count(&dash.Matched).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	dash.Unmatched = dash.TotalTransactions - dash.Matched
	if dash.TotalTransactions > 0 {
		dash.MatchedPct = float64(dash.Matched) / float64(dash.TotalTransactions) * 100
	}

	if err := s.db.Model(&models.Reconciliation{}).
		Where("kind = ?", models.ReconciliationKindAutomatic).
		Count(&dash.Automatic).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Reconciliation{}).
		Where("kind = ?", models.ReconciliationKindManual).
		Count(&dash.Manual).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	type sumRow struct {
		Total decimal.Decimal
	}
	debits := func(status *models.TransactionStatus) (decimal.Decimal, error) {
		q := s.db.Model(&models.Transaction{}).
			Select("COALESCE(SUM(-amount), 0) AS total").
			Where("source = ? AND amount < 0", models.TransactionSourceStatement)
		if status != nil {
			q = q.Where("status = ?", *status)
		}
		var row sumRow
		if err := q.Scan(&row).Error; err != nil {
			return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return row.Total, nil
	}

	var err error
	if dash.DebitTotal, err = debits(nil); err != nil {
		return nil, err
	}
	matched := models.TransactionStatusMatched
	if dash.MatchedTotal, err = debits(&matched); err != nil {
		return nil, err
	}
	unmatched := models.TransactionStatusUnmatched
	if dash.UnmatchedTotal, err = debits(&unmatched); err != nil {
		return nil, err
	}
	return dash, nil
}
