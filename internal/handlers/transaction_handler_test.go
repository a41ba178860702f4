package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/evozago/financeiro/internal/errors"
	"github.com/evozago/financeiro/internal/models"
	"github.com/evozago/financeiro/internal/pagination"
	"github.com/evozago/financeiro/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	importStatementFn  func(batchID string, lines []services.RawStatementLine) (*services.ImportReport, error)
	submitReceiptFn    func(obs services.RawReceiptObservation) (*services.ReceiptResult, error)
	listTransactionsFn func(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionFn   func(id uint) (*models.Transaction, error)
	deleteFn           func(id uint) error
}

func (m *mockTransactionService) ImportStatement(batchID string, lines []services.RawStatementLine) (*services.ImportReport, error) {
	if m.importStatementFn != nil {
		return m.importStatementFn(batchID, lines)
	}
	return &services.ImportReport{}, nil
}

func (m *mockTransactionService) SubmitReceipt(obs services.RawReceiptObservation) (*services.ReceiptResult, error) {
	if m.submitReceiptFn != nil {
		return m.submitReceiptFn(obs)
	}
	return &services.ReceiptResult{Transaction: &models.Transaction{}}, nil
}

func (m *mockTransactionService) ListTransactions(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(id uint) (*models.Transaction, error) {
	if m.getTransactionFn != nil {
		return m.getTransactionFn(id)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(id uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	r.POST("/statements/import", handler.ImportStatement)
	r.POST("/receipts", handler.SubmitReceipt)
	r.GET("/transactions", handler.ListTransactions)
	r.GET("/transactions/:id", handler.GetTransaction)
	r.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

// --- tests ---

func TestTransactionHandler_ImportStatement(t *testing.T) {
	t.Run("returns report on success", func(t *testing.T) {
		svc := &mockTransactionService{
			importStatementFn: func(batchID string, lines []services.RawStatementLine) (*services.ImportReport, error) {
				if batchID != "extrato.ofx" {
					t.Errorf("expected batch extrato.ofx, got %q", batchID)
				}
				if len(lines) != 2 {
					t.Errorf("expected 2 lines, got %d", len(lines))
				}
				return &services.ImportReport{Imported: 2}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "POST", "/statements/import",
			`{"batch_id":"extrato.ofx","lines":[{"amount":"-1.500,00","date":"12/03/2025","external_id":"X1"},{"amount":"-200,00","date":"13/03/2025","external_id":"X2"}]}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["imported"].(float64) != 2 {
			t.Errorf("expected imported=2, got %v", result["imported"])
		}
	})

	t.Run("returns 400 without batch id", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, "POST", "/statements/import",
			`{"lines":[{"amount":"-1.00","date":"2025-03-12"}]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 without lines", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, "POST", "/statements/import", `{"batch_id":"x","lines":[]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_SubmitReceipt(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockTransactionService{
			submitReceiptFn: func(obs services.RawReceiptObservation) (*services.ReceiptResult, error) {
				if obs.Amount != "R$ 250,00" {
					t.Errorf("unexpected amount field: %q", obs.Amount)
				}
				return &services.ReceiptResult{
					Transaction: &models.Transaction{Base: models.Base{ID: 9}},
				}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "POST", "/receipts",
			`{"amount":"R$ 250,00","date":"12/03/2025","payer_text":"ACME LTDA"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 on unparseable amount", func(t *testing.T) {
		svc := &mockTransactionService{
			submitReceiptFn: func(obs services.RawReceiptObservation) (*services.ReceiptResult, error) {
				return nil, apperrors.WithMessage(apperrors.ErrValidation, "unrecognized amount")
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "POST", "/receipts", `{"amount":"quinhentos"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "VALIDATION_ERROR")
	})
}

func TestTransactionHandler_ListTransactions(t *testing.T) {
	t.Run("forwards filters", func(t *testing.T) {
		var captured services.TransactionFilter
		svc := &mockTransactionService{
			listTransactionsFn: func(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				captured = filter
				resp := pagination.NewPageResponse([]models.Transaction{}, page.Page, page.PerPage, 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "GET", "/transactions?status=UNMATCHED&source=STATEMENT", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if captured.Status == nil || *captured.Status != models.TransactionStatusUnmatched {
			t.Error("expected UNMATCHED filter forwarded")
		}
		if captured.Source == nil || *captured.Source != models.TransactionSourceStatement {
			t.Error("expected STATEMENT filter forwarded")
		}
	})

	t.Run("returns 400 on bad source", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, "GET", "/transactions?source=EMAIL", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("returns 409 when reconciled", func(t *testing.T) {
		svc := &mockTransactionService{
			deleteFn: func(id uint) error {
				return apperrors.ErrTransactionInUse
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "DELETE", "/transactions/3", "")

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_IN_USE")
	})
}
