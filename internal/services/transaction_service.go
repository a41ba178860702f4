package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/evozago/financeiro/internal/errors"
	"github.com/evozago/financeiro/internal/logger"
	"github.com/evozago/financeiro/internal/models"
	"github.com/evozago/financeiro/internal/pagination"
)

// transactionService normalizes raw observations from the file-parsing and
// OCR collaborators into canonical transactions, deduplicates statement
// lines, and hands matchable transactions to the reconciliation
// coordinator.
type transactionService struct {
	db    *gorm.DB
	recon ReconciliationServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, recon ReconciliationServicer) TransactionServicer {
	return &transactionService{db: db, recon: recon}
}

// parseAmount parses a monetary value in either Brazilian notation
// ("1.500,00", optionally prefixed with "R$") or plain decimal notation
// ("1500.00", "1,500.00").
func parseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimPrefix(s, "r$")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, apperrors.WithMessage(apperrors.ErrValidation, "amount is empty")
	}

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && comma > dot:
		// Brazilian: dot is the thousands separator, comma the decimal.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperrors.WithMessage(apperrors.ErrValidation,
			fmt.Sprintf("unrecognized amount %q", raw))
	}
	return amount, nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02/01/2006",
	"02-01-2006",
	"02/01/06",
}

// parseDate parses a date in ISO or Brazilian day-first notation and
// normalizes it to midnight UTC.
func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrValidation, "date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, apperrors.WithMessage(apperrors.ErrValidation,
		fmt.Sprintf("unrecognized date %q", raw))
}

// normalizeStatementLine maps one raw bank-export line into a canonical
// transaction. Amount and date are required.
func normalizeStatementLine(batchID string, line RawStatementLine) (*models.Transaction, error) {
	amount, err := parseAmount(line.Amount)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(line.Date)
	if err != nil {
		return nil, err
	}

	kind := strings.TrimSpace(line.Kind)
	if kind == "" {
		if amount.IsNegative() {
			kind = "DEBIT"
		} else {
			kind = "CREDIT"
		}
	}

	return &models.Transaction{
		Source:        models.TransactionSourceStatement,
		Status:        models.TransactionStatusUnmatched,
		Amount:        &amount,
		Date:          &date,
		Kind:          kind,
		Memo:          strings.TrimSpace(line.Memo),
		ExternalID:    strings.TrimSpace(line.ExternalID),
		SourceBatchID: batchID,
		Bank:          strings.TrimSpace(line.Bank),
		Branch:        strings.TrimSpace(line.Branch),
		AccountNumber: strings.TrimSpace(line.AccountNumber),
	}, nil
}

// checkDuplicate returns ErrDuplicateImport when an identical statement
// line is already stored, keyed on external ID, date, amount and source
// batch. Receipts carry no stable external key and are never deduplicated.
func (s *transactionService) checkDuplicate(tx *gorm.DB, txn *models.Transaction) error {
	if txn.Source != models.TransactionSourceStatement {
		return nil
	}
	var count int64
	err := tx.Model(&models.Transaction{}).
		Where("source = ? AND external_id = ? AND date = ? AND amount = ? AND source_batch_id = ?",
			models.TransactionSourceStatement, txn.ExternalID, txn.Date, txn.Amount, txn.SourceBatchID).
		Count(&count).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateImport
	}
	return nil
}

// ImportStatement stores a batch of statement lines inside one database
// transaction. Lines are processed in source order so earlier lines claim
// payables before later ones look at the pool. Unparseable lines are
// skipped and reported, never aborting the batch; duplicates are counted
// and discarded silently.
func (s *transactionService) ImportStatement(batchID string, lines []RawStatementLine) (*ImportReport, error) {
	if strings.TrimSpace(batchID) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "batch ID is required")
	}

	report := &ImportReport{Lines: make([]LineOutcome, 0, len(lines))}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i, line := range lines {
			outcome := LineOutcome{Line: i + 1}

			txn, err := normalizeStatementLine(batchID, line)
			if err != nil {
				outcome.Status = "invalid"
				outcome.Error = err.Error()
				report.Lines = append(report.Lines, outcome)
				continue
			}

			if err := s.checkDuplicate(tx, txn); err != nil {
				if !errors.Is(err, apperrors.ErrDuplicateImport) {
					return err
				}
				outcome.Status = "duplicate"
				report.DuplicatesSkipped++
				report.Lines = append(report.Lines, outcome)
				continue
			}

			if err := tx.Create(txn).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			outcome.Status = "imported"
			outcome.TransactionID = txn.ID
			report.Imported++

			if txn.Matchable() {
				rec, err := s.recon.AutoReconcile(tx, txn)
				if err != nil {
					return err
				}
				if rec != nil {
					outcome.Reconciled = true
					report.AutoReconciled++
				}
			}
			report.Lines = append(report.Lines, outcome)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("statement batch imported",
		"batch_id", batchID,
		"imported", report.Imported,
		"duplicates_skipped", report.DuplicatesSkipped,
		"auto_reconciled", report.AutoReconciled,
	)
	return report, nil
}

// SubmitReceipt stores one receipt observation. OCR fields are optional;
// a field that is present but unparseable is a validation error, a missing
// field just limits what matching can do. Auto-reconciliation runs only
// when both amount and date were recognized.
func (s *transactionService) SubmitReceipt(obs RawReceiptObservation) (*ReceiptResult, error) {
	txn := &models.Transaction{
		Source:     models.TransactionSourceReceipt,
		Status:     models.TransactionStatusUnmatched,
		PayerText:  strings.TrimSpace(obs.PayerText),
		Bank:       strings.TrimSpace(obs.BankText),
		OCRText:    obs.OCRText,
		SourceFile: strings.TrimSpace(obs.SourceFile),
	}

	if strings.TrimSpace(obs.Amount) != "" {
		amount, err := parseAmount(obs.Amount)
		if err != nil {
			return nil, err
		}
		// Receipts are unsigned.
		amount = amount.Abs()
		txn.Amount = &amount
	}
	if strings.TrimSpace(obs.Date) != "" {
		date, err := parseDate(obs.Date)
		if err != nil {
			return nil, err
		}
		txn.Date = &date
	}

	result := &ReceiptResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if txn.Matchable() && txn.Date != nil {
			rec, err := s.recon.AutoReconcile(tx, txn)
			if err != nil {
				return err
			}
			result.Reconciliation = rec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Transaction = txn
	return result, nil
}

// ListTransactions retrieves a paginated, filtered list of transactions,
// most recent first.
func (s *transactionService) ListTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{})
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.Source != nil {
		base = base.Where("source = ?", *filter.Source)
	}
	if filter.FromDate != nil {
		base = base.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("date <= ?", *filter.ToDate)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Reconciliation").
		Scopes(pagination.Paginate(page)).
		Order("date DESC, id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PerPage, totalItems)
	return &result, nil
}

// GetTransactionByID retrieves a transaction with its reconciliation, if
// any, and the payable it links to.
func (s *transactionService) GetTransactionByID(id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.Preload("Reconciliation").Preload("Reconciliation.Payable").
		First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &txn, nil
}

// DeleteTransaction removes an unmatched transaction. Matched transactions
// must be undone first.
func (s *transactionService) DeleteTransaction(id uint) error {
	txn, err := s.GetTransactionByID(id)
	if err != nil {
		return err
	}
	if txn.Status == models.TransactionStatusMatched || txn.Reconciliation != nil {
		return apperrors.ErrTransactionInUse
	}
	if err := s.db.Delete(&models.Transaction{}, id).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
