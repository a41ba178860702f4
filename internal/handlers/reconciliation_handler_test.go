package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apperrors "github.com/evozago/financeiro/internal/errors"
	"github.com/evozago/financeiro/internal/matching"
	"github.com/evozago/financeiro/internal/models"
	"github.com/evozago/financeiro/internal/pagination"
	"github.com/evozago/financeiro/internal/services"
)

// --- mock reconciliation service ---

type mockReconciliationService struct {
	confirmManualFn  func(transactionID, payableID uint, note string, settle *bool) (*models.Reconciliation, error)
	undoFn           func(reconciliationID uint) error
	listCandidatesFn func(transactionID uint) ([]matching.Match, error)
	listFn           func(page pagination.PageRequest, kind *models.ReconciliationKind) (*pagination.PageResponse[models.Reconciliation], error)
	dashboardFn      func() (*services.ReconciliationDashboard, error)
}

func (m *mockReconciliationService) AutoReconcile(tx *gorm.DB, txn *models.Transaction) (*models.Reconciliation, error) {
	return nil, nil
}

func (m *mockReconciliationService) ConfirmManual(transactionID, payableID uint, note string, settle *bool) (*models.Reconciliation, error) {
	if m.confirmManualFn != nil {
		return m.confirmManualFn(transactionID, payableID, note, settle)
	}
	return &models.Reconciliation{}, nil
}

func (m *mockReconciliationService) Undo(reconciliationID uint) error {
	if m.undoFn != nil {
		return m.undoFn(reconciliationID)
	}
	return nil
}

func (m *mockReconciliationService) ListCandidates(transactionID uint) ([]matching.Match, error) {
	if m.listCandidatesFn != nil {
		return m.listCandidatesFn(transactionID)
	}
	return []matching.Match{}, nil
}

func (m *mockReconciliationService) ListReconciliations(page pagination.PageRequest, kind *models.ReconciliationKind) (*pagination.PageResponse[models.Reconciliation], error) {
	if m.listFn != nil {
		return m.listFn(page, kind)
	}
	resp := pagination.NewPageResponse([]models.Reconciliation{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockReconciliationService) Dashboard() (*services.ReconciliationDashboard, error) {
	if m.dashboardFn != nil {
		return m.dashboardFn()
	}
	return &services.ReconciliationDashboard{}, nil
}

var _ services.ReconciliationServicer = (*mockReconciliationService)(nil)

func setupReconciliationRouter(handler *ReconciliationHandler) *gin.Engine {
	r := gin.New()
	r.GET("/transactions/:id/candidates", handler.ListCandidates)
	r.POST("/reconciliations", handler.ConfirmManual)
	r.GET("/reconciliations", handler.ListReconciliations)
	r.GET("/reconciliations/dashboard", handler.ReconciliationDashboard)
	r.DELETE("/reconciliations/:id", handler.UndoReconciliation)
	return r
}

// --- tests ---

func TestReconciliationHandler_ConfirmManual(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockReconciliationService{
			confirmManualFn: func(transactionID, payableID uint, note string, settle *bool) (*models.Reconciliation, error) {
				if transactionID != 3 || payableID != 7 {
					t.Errorf("unexpected ids: %d/%d", transactionID, payableID)
				}
				if settle == nil || *settle != false {
					t.Error("expected explicit settle=false forwarded")
				}
				return &models.Reconciliation{
					Base:          models.Base{ID: 1},
					TransactionID: transactionID,
					PayableID:     payableID,
					Kind:          models.ReconciliationKindManual,
				}, nil
			},
		}
		r := setupReconciliationRouter(NewReconciliationHandler(svc))

		rec := doRequest(r, "POST", "/reconciliations",
			`{"transaction_id":3,"payable_id":7,"note":"ok","settle":false}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 409 on double claim", func(t *testing.T) {
		svc := &mockReconciliationService{
			confirmManualFn: func(transactionID, payableID uint, note string, settle *bool) (*models.Reconciliation, error) {
				return nil, apperrors.ErrPayableReconciled
			},
		}
		r := setupReconciliationRouter(NewReconciliationHandler(svc))

		rec := doRequest(r, "POST", "/reconciliations", `{"transaction_id":3,"payable_id":7}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PAYABLE_RECONCILED")
	})

	t.Run("returns 400 on missing ids", func(t *testing.T) {
		r := setupReconciliationRouter(NewReconciliationHandler(&mockReconciliationService{}))

		rec := doRequest(r, "POST", "/reconciliations", `{"note":"x"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestReconciliationHandler_ListCandidates(t *testing.T) {
	t.Run("returns ranked candidates", func(t *testing.T) {
		svc := &mockReconciliationService{
			listCandidatesFn: func(transactionID uint) ([]matching.Match, error) {
				return []matching.Match{
					{Payable: models.Payable{Base: models.Base{ID: 4}}, Score: 2},
				}, nil
			},
		}
		r := setupReconciliationRouter(NewReconciliationHandler(svc))

		rec := doRequest(r, "GET", "/transactions/3/candidates", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		candidates := result["candidates"].([]interface{})
		if len(candidates) != 1 {
			t.Errorf("expected 1 candidate, got %d", len(candidates))
		}
	})

	t.Run("returns 404 for unknown transaction", func(t *testing.T) {
		svc := &mockReconciliationService{
			listCandidatesFn: func(transactionID uint) ([]matching.Match, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupReconciliationRouter(NewReconciliationHandler(svc))

		rec := doRequest(r, "GET", "/transactions/99/candidates", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestReconciliationHandler_Undo(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		called := false
		svc := &mockReconciliationService{
			undoFn: func(reconciliationID uint) error {
				called = true
				if reconciliationID != 12 {
					t.Errorf("expected id 12, got %d", reconciliationID)
				}
				return nil
			},
		}
		r := setupReconciliationRouter(NewReconciliationHandler(svc))

		rec := doRequest(r, "DELETE", "/reconciliations/12", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !called {
			t.Error("expected undo to be called")
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		svc := &mockReconciliationService{
			undoFn: func(reconciliationID uint) error {
				return apperrors.ErrReconciliationNotFound
			},
		}
		r := setupReconciliationRouter(NewReconciliationHandler(svc))

		rec := doRequest(r, "DELETE", "/reconciliations/99", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestReconciliationHandler_List(t *testing.T) {
	t.Run("forwards kind filter", func(t *testing.T) {
		var captured *models.ReconciliationKind
		svc := &mockReconciliationService{
			listFn: func(page pagination.PageRequest, kind *models.ReconciliationKind) (*pagination.PageResponse[models.Reconciliation], error) {
				captured = kind
				resp := pagination.NewPageResponse([]models.Reconciliation{}, page.Page, page.PerPage, 0)
				return &resp, nil
			},
		}
		r := setupReconciliationRouter(NewReconciliationHandler(svc))

		rec := doRequest(r, "GET", "/reconciliations?kind=AUTOMATIC", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if captured == nil || *captured != models.ReconciliationKindAutomatic {
			t.Error("expected AUTOMATIC kind forwarded")
		}
	})

	t.Run("returns 400 on bad kind", func(t *testing.T) {
		r := setupReconciliationRouter(NewReconciliationHandler(&mockReconciliationService{}))

		rec := doRequest(r, "GET", "/reconciliations?kind=MAGIC", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
