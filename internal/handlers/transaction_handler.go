package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/evozago/financeiro/internal/errors"
	"github.com/evozago/financeiro/internal/models"
	"github.com/evozago/financeiro/internal/pagination"
	"github.com/evozago/financeiro/internal/services"
)

// TransactionHandler handles statement imports, receipt submissions and
// transaction queries.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// StatementLineRequest represents one raw bank-export line. Amount and
// date are text as delivered by the file parser; Brazilian and plain
// decimal notations are accepted.
type StatementLineRequest struct {
	Amount        string `json:"amount" binding:"required"`
	Date          string `json:"date" binding:"required"`
	Kind          string `json:"kind" binding:"max=50"`
	Memo          string `json:"memo" binding:"max=500"`
	ExternalID    string `json:"external_id" binding:"max=100"`
	Bank          string `json:"bank" binding:"max=100"`
	Branch        string `json:"branch" binding:"max=20"`
	AccountNumber string `json:"account_number" binding:"max=50"`
}

// ImportStatementRequest represents the request payload for importing a
// statement batch.
type ImportStatementRequest struct {
	BatchID string                 `json:"batch_id" binding:"required,min=1,max=255"`
	Lines   []StatementLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// SubmitReceiptRequest represents one OCR-extracted receipt observation.
// Every field is optional; unrecognized fields just limit matching.
type SubmitReceiptRequest struct {
	Amount     string `json:"amount"`
	Date       string `json:"date"`
	PayerText  string `json:"payer_text" binding:"max=255"`
	BankText   string `json:"bank_text" binding:"max=100"`
	OCRText    string `json:"ocr_text"`
	SourceFile string `json:"source_file" binding:"max=255"`
}

// ImportStatement handles importing a batch of statement lines
// @Summary     Import a statement batch
// @Description Import raw bank-export lines; duplicates are skipped and debits are auto-reconciled
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body ImportStatementRequest true "Statement batch"
// @Success     200 {object} services.ImportReport "Import report"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /statements/import [post]
func (h *TransactionHandler) ImportStatement(c *gin.Context) {
	var req ImportStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	lines := make([]services.RawStatementLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, services.RawStatementLine{
			Amount:        line.Amount,
			Date:          line.Date,
			Kind:          line.Kind,
			Memo:          line.Memo,
			ExternalID:    line.ExternalID,
			Bank:          line.Bank,
			Branch:        line.Branch,
			AccountNumber: line.AccountNumber,
		})
	}

	report, err := h.transactionService.ImportStatement(req.BatchID, lines)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// SubmitReceipt handles submitting one receipt observation
// @Summary     Submit a receipt
// @Description Store an OCR-extracted receipt and attempt auto-reconciliation
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body SubmitReceiptRequest true "Receipt observation"
// @Success     201 {object} services.ReceiptResult "Receipt stored"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /receipts [post]
func (h *TransactionHandler) SubmitReceipt(c *gin.Context) {
	var req SubmitReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.SubmitReceipt(services.RawReceiptObservation{
		Amount:     req.Amount,
		Date:       req.Date,
		PayerText:  req.PayerText,
		BankText:   req.BankText,
		OCRText:    req.OCRText,
		SourceFile: req.SourceFile,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListTransactions handles listing transactions with pagination and filters
// @Summary     List transactions
// @Description List transactions, most recent first
// @Tags        transactions
// @Produce     json
// @Param       page query int false "Page number"
// @Param       per_page query int false "Items per page"
// @Param       status query string false "Filter by status (UNMATCHED, MATCHED)"
// @Param       source query string false "Filter by source (STATEMENT, RECEIPT)"
// @Param       from_date query string false "Date lower bound"
// @Param       to_date query string false "Date upper bound"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var query ListTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := query.toFilter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListTransactions(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListTransactionsQuery represents the filter query parameters for listing
// transactions.
type ListTransactionsQuery struct {
	Status   string `form:"status" binding:"omitempty,transaction_status"`
	Source   string `form:"source" binding:"omitempty,transaction_source"`
	FromDate string `form:"from_date"`
	ToDate   string `form:"to_date"`
}

func (q ListTransactionsQuery) toFilter() (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if q.Status != "" {
		status := models.TransactionStatus(q.Status)
		filter.Status = &status
	}
	if q.Source != "" {
		source := models.TransactionSource(q.Source)
		filter.Source = &source
	}

	if q.FromDate != "" {
		t, err := parseFlexibleTime(q.FromDate)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}
	if q.ToDate != "" {
		t, err := parseFlexibleTime(q.ToDate)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	return filter, nil
}

// GetTransaction handles retrieving a single transaction
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.transactionService.GetTransactionByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// DeleteTransaction handles deleting an unmatched transaction
// @Summary     Delete a transaction
// @Description Delete a transaction that has no reconciliation
// @Tags        transactions
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Transaction is reconciled"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
