package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/evozago/financeiro/internal/errors"
	"github.com/evozago/financeiro/internal/models"
	"github.com/evozago/financeiro/internal/pagination"
	"github.com/evozago/financeiro/internal/services"
)

// ReconciliationHandler handles reconciliation decisions: candidate
// listings, manual confirms and undo.
type ReconciliationHandler struct {
	reconciliationService services.ReconciliationServicer
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationService services.ReconciliationServicer) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationService: reconciliationService}
}

// ConfirmManualRequest represents the request payload for confirming a
// manual match. When settle is omitted the default follows the transaction
// source: statement lines settle the payable, receipts do not.
type ConfirmManualRequest struct {
	TransactionID uint   `json:"transaction_id" binding:"required"`
	PayableID     uint   `json:"payable_id" binding:"required"`
	Note          string `json:"note" binding:"max=1000"`
	Settle        *bool  `json:"settle"`
}

// ListCandidates handles listing ranked payable candidates for a transaction
// @Summary     List match candidates
// @Description Ranked payables plausibly settled by the transaction, best first
// @Tags        reconciliations
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Success     200 {object} matching.Match "Candidates"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/candidates [get]
func (h *ReconciliationHandler) ListCandidates(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	candidates, err := h.reconciliationService.ListCandidates(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

// ConfirmManual handles confirming a user-chosen match
// @Summary     Confirm a manual match
// @Description Link a transaction to a payable chosen by the user; tolerance and window filters do not apply
// @Tags        reconciliations
// @Accept      json
// @Produce     json
// @Param       request body ConfirmManualRequest true "Match details"
// @Success     201 {object} models.Reconciliation "Reconciliation created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction or payable not found"
// @Failure     409 {object} ErrorResponse "Already matched or payable reconciled"
// @Router      /reconciliations [post]
func (h *ReconciliationHandler) ConfirmManual(c *gin.Context) {
	var req ConfirmManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rec, err := h.reconciliationService.ConfirmManual(req.TransactionID, req.PayableID, req.Note, req.Settle)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reconciliation": rec})
}

// UndoReconciliation handles undoing a reconciliation
// @Summary     Undo a reconciliation
// @Description Return the transaction to UNMATCHED and revert the payable when this match settled it
// @Tags        reconciliations
// @Produce     json
// @Param       id path int true "Reconciliation ID"
// @Success     200 {object} MessageResponse "Reconciliation undone"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /reconciliations/{id} [delete]
func (h *ReconciliationHandler) UndoReconciliation(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.reconciliationService.Undo(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reconciliation undone successfully"})
}

// ListReconciliations handles listing reconciliations with pagination
// @Summary     List reconciliations
// @Description List reconciliations, most recent first, optionally filtered by kind
// @Tags        reconciliations
// @Produce     json
// @Param       page query int false "Page number"
// @Param       per_page query int false "Items per page"
// @Param       kind query string false "Filter by kind (AUTOMATIC, MANUAL)"
// @Success     200 {object} pagination.PageResponse[models.Reconciliation] "Reconciliations"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /reconciliations [get]
func (h *ReconciliationHandler) ListReconciliations(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var query struct {
		Kind string `form:"kind" binding:"omitempty,reconciliation_kind"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var kind *models.ReconciliationKind
	if query.Kind != "" {
		k := models.ReconciliationKind(query.Kind)
		kind = &k
	}

	result, err := h.reconciliationService.ListReconciliations(page, kind)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReconciliationDashboard handles the reconciliation dashboard
// @Summary     Reconciliation dashboard
// @Description Matching statistics over the transaction pool
// @Tags        reconciliations
// @Produce     json
// @Success     200 {object} services.ReconciliationDashboard "Dashboard"
// @Router      /reconciliations/dashboard [get]
func (h *ReconciliationHandler) ReconciliationDashboard(c *gin.Context) {
	dash, err := h.reconciliationService.Dashboard()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dash)
}
