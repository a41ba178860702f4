package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evozago/financeiro/internal/models"
	"github.com/evozago/financeiro/internal/pagination"
	"github.com/evozago/financeiro/internal/testutil"
)

func TestCreatePayable(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)
		supplier := testutil.CreateTestSupplier(t, db)
		category := testutil.CreateTestCategory(t, db)

		payables, err := svc.CreatePayable(CreatePayableInput{
			SupplierID:     supplier.ID,
			CategoryID:     category.ID,
			Description:    "Compra de mercadorias",
			OriginalAmount: decimal.RequireFromString("1500.00"),
			DueDate:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		})
		testutil.AssertNoError(t, err)

		if len(payables) != 1 {
			t.Fatalf("expected 1 payable, got %d", len(payables))
		}
		if payables[0].Status != models.PayableStatusPending {
			t.Errorf("expected status PENDING, got %s", payables[0].Status)
		}
		if !payables[0].OriginalAmount.Equal(decimal.RequireFromString("1500.00")) {
			t.Errorf("expected amount 1500.00, got %s", payables[0].OriginalAmount)
		}
	})

	t.Run("installments", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)
		supplier := testutil.CreateTestSupplier(t, db)
		category := testutil.CreateTestCategory(t, db)

		due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
		payables, err := svc.CreatePayable(CreatePayableInput{
			SupplierID:  supplier.ID,
			CategoryID:  category.ID,
			Description: "Nota fiscal 123",
			Installments: []InstallmentInput{
				{Amount: decimal.RequireFromString("500.00"), DueDate: due},
				{Amount: decimal.RequireFromString("500.00"), DueDate: due.AddDate(0, 1, 0)},
				{Amount: decimal.RequireFromString("500.00"), DueDate: due.AddDate(0, 2, 0)},
			},
		})
		testutil.AssertNoError(t, err)

		if len(payables) != 3 {
			t.Fatalf("expected 3 payables, got %d", len(payables))
		}
		if payables[1].Description != "Nota fiscal 123 - Parcela 2/3" {
			t.Errorf("unexpected installment description: %q", payables[1].Description)
		}
		if payables[2].Installment != 3 || payables[2].Installments != 3 {
			t.Errorf("expected installment 3/3, got %d/%d", payables[2].Installment, payables[2].Installments)
		}
	})

	t.Run("missing_description", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)

		_, err := svc.CreatePayable(CreatePayableInput{SupplierID: 1, CategoryID: 1})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_supplier", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)
		category := testutil.CreateTestCategory(t, db)

		_, err := svc.CreatePayable(CreatePayableInput{
			SupplierID:     99999,
			CategoryID:     category.ID,
			Description:    "x",
			OriginalAmount: decimal.RequireFromString("10.00"),
			DueDate:        time.Now(),
		})
		testutil.AssertAppError(t, err, "SUPPLIER_NOT_FOUND")
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)
		supplier := testutil.CreateTestSupplier(t, db)
		category := testutil.CreateTestCategory(t, db)

		_, err := svc.CreatePayable(CreatePayableInput{
			SupplierID:     supplier.ID,
			CategoryID:     category.ID,
			Description:    "x",
			OriginalAmount: decimal.Zero,
			DueDate:        time.Now(),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestMarkPaidAndRevert(t *testing.T) {
	t.Run("mark_paid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)
		supplier := testutil.CreateTestSupplier(t, db)
		category := testutil.CreateTestCategory(t, db)
		payable := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "1500.00",
			time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

		paidDate := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
		err := svc.MarkPaid(db, payable.ID, decimal.RequireFromString("1500.00"), paidDate)
		testutil.AssertNoError(t, err)

		updated, err := svc.GetPayableByID(payable.ID)
		testutil.AssertNoError(t, err)
		if updated.Status != models.PayableStatusPaid {
			t.Errorf("expected status PAID, got %s", updated.Status)
		}
		if updated.PaidAmount == nil || !updated.PaidAmount.Equal(decimal.RequireFromString("1500.00")) {
			t.Errorf("unexpected paid amount: %v", updated.PaidAmount)
		}
		if updated.PaymentDate == nil || !updated.PaymentDate.Equal(paidDate) {
			t.Errorf("unexpected payment date: %v", updated.PaymentDate)
		}
	})

	t.Run("mark_paid_twice_conflicts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)
		supplier := testutil.CreateTestSupplier(t, db)
		category := testutil.CreateTestCategory(t, db)
		payable := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "100.00", time.Now())

		testutil.AssertNoError(t, svc.MarkPaid(db, payable.ID, decimal.RequireFromString("100.00"), time.Now()))
		err := svc.MarkPaid(db, payable.ID, decimal.RequireFromString("100.00"), time.Now())
		testutil.AssertAppError(t, err, "PAYABLE_ALREADY_PAID")
	})

	t.Run("mark_paid_missing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)

		err := svc.MarkPaid(db, 99999, decimal.RequireFromString("100.00"), time.Now())
		testutil.AssertAppError(t, err, "PAYABLE_NOT_FOUND")
	})

	t.Run("mark_paid_cancelled", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)
		supplier := testutil.CreateTestSupplier(t, db)
		category := testutil.CreateTestCategory(t, db)
		payable := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "100.00", time.Now())
		db.Model(payable).Update("status", models.PayableStatusCancelled)

		err := svc.MarkPaid(db, payable.ID, decimal.RequireFromString("100.00"), time.Now())
		testutil.AssertAppError(t, err, "PAYABLE_CANCELLED")
	})

	t.Run("revert_clears_paid_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)
		supplier := testutil.CreateTestSupplier(t, db)
		category := testutil.CreateTestCategory(t, db)
		payable := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "100.00", time.Now())

		testutil.AssertNoError(t, svc.MarkPaid(db, payable.ID, decimal.RequireFromString("100.00"), time.Now()))
		testutil.AssertNoError(t, svc.RevertToPending(db, payable.ID))

		updated, err := svc.GetPayableByID(payable.ID)
		testutil.AssertNoError(t, err)
		if updated.Status != models.PayableStatusPending {
			t.Errorf("expected status PENDING, got %s", updated.Status)
		}
		if updated.PaidAmount != nil || updated.PaymentDate != nil {
			t.Error("expected paid fields cleared after revert")
		}
	})

	t.Run("revert_pending_conflicts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)
		supplier := testutil.CreateTestSupplier(t, db)
		category := testutil.CreateTestCategory(t, db)
		payable := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "100.00", time.Now())

		err := svc.RevertToPending(db, payable.ID)
		testutil.AssertAppError(t, err, "PAYABLE_NOT_PAID")
	})
}

func TestUpdatePayable(t *testing.T) {
	t.Run("paid_payable_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)
		supplier := testutil.CreateTestSupplier(t, db)
		category := testutil.CreateTestCategory(t, db)
		payable := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "100.00", time.Now())
		testutil.AssertNoError(t, svc.MarkPaid(db, payable.ID, decimal.RequireFromString("100.00"), time.Now()))

		desc := "changed"
		_, err := svc.UpdatePayable(payable.ID, PayableUpdateFields{Description: &desc})
		testutil.AssertAppError(t, err, "PAYABLE_ALREADY_PAID")
	})

	t.Run("update_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)
		supplier := testutil.CreateTestSupplier(t, db)
		category := testutil.CreateTestCategory(t, db)
		payable := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "100.00", time.Now())

		desc := "Aluguel de março"
		amount := decimal.RequireFromString("250.00")
		updated, err := svc.UpdatePayable(payable.ID, PayableUpdateFields{
			Description:    &desc,
			OriginalAmount: &amount,
		})
		testutil.AssertNoError(t, err)
		if updated.Description != desc {
			t.Errorf("expected description %q, got %q", desc, updated.Description)
		}
		if !updated.OriginalAmount.Equal(amount) {
			t.Errorf("expected amount 250.00, got %s", updated.OriginalAmount)
		}
	})

	t.Run("status_paid_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)
		supplier := testutil.CreateTestSupplier(t, db)
		category := testutil.CreateTestCategory(t, db)
		payable := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "100.00", time.Now())

		status := models.PayableStatusPaid
		_, err := svc.UpdatePayable(payable.ID, PayableUpdateFields{Status: &status})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestDeletePayable(t *testing.T) {
	t.Run("paid_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)
		supplier := testutil.CreateTestSupplier(t, db)
		category := testutil.CreateTestCategory(t, db)
		payable := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "100.00", time.Now())
		testutil.AssertNoError(t, svc.MarkPaid(db, payable.ID, decimal.RequireFromString("100.00"), time.Now()))

		testutil.AssertAppError(t, svc.DeletePayable(payable.ID), "PAYABLE_ALREADY_PAID")
	})

	t.Run("reconciled_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)
		supplier := testutil.CreateTestSupplier(t, db)
		category := testutil.CreateTestCategory(t, db)
		payable := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "100.00", time.Now())
		txn := testutil.CreateTestStatementTransaction(t, db, "-100.00", time.Now())
		rec := &models.Reconciliation{
			TransactionID: txn.ID,
			PayableID:     payable.ID,
			Kind:          models.ReconciliationKindManual,
			ReconciledAt:  time.Now(),
		}
		if err := db.Create(rec).Error; err != nil {
			t.Fatalf("failed to create reconciliation: %v", err)
		}

		testutil.AssertAppError(t, svc.DeletePayable(payable.ID), "PAYABLE_IN_USE")
	})

	t.Run("pending_deleted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayableService(db)
		supplier := testutil.CreateTestSupplier(t, db)
		category := testutil.CreateTestCategory(t, db)
		payable := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "100.00", time.Now())

		testutil.AssertNoError(t, svc.DeletePayable(payable.ID))
		_, err := svc.GetPayableByID(payable.ID)
		testutil.AssertAppError(t, err, "PAYABLE_NOT_FOUND")
	})
}

func TestListEligible(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewPayableService(db)
	supplier := testutil.CreateTestSupplier(t, db)
	category := testutil.CreateTestCategory(t, db)

	open := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "100.00", time.Now())
	reconciled := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "200.00", time.Now())
	paid := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "300.00", time.Now())
	testutil.AssertNoError(t, svc.MarkPaid(db, paid.ID, decimal.RequireFromString("300.00"), time.Now()))

	txn := testutil.CreateTestStatementTransaction(t, db, "-200.00", time.Now())
	rec := &models.Reconciliation{
		TransactionID: txn.ID,
		PayableID:     reconciled.ID,
		Kind:          models.ReconciliationKindAutomatic,
		ReconciledAt:  time.Now(),
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("failed to create reconciliation: %v", err)
	}

	pendingOnly, err := svc.ListEligible(db, []models.PayableStatus{models.PayableStatusPending})
	testutil.AssertNoError(t, err)
	if len(pendingOnly) != 1 || pendingOnly[0].ID != open.ID {
		t.Fatalf("expected only the open payable, got %d results", len(pendingOnly))
	}
	if pendingOnly[0].Supplier == nil {
		t.Error("expected supplier preloaded for text matching")
	}

	withPaid, err := svc.ListEligible(db, []models.PayableStatus{models.PayableStatusPending, models.PayableStatusPaid})
	testutil.AssertNoError(t, err)
	if len(withPaid) != 2 {
		t.Fatalf("expected open and paid payables, got %d results", len(withPaid))
	}
}

func TestPayableDashboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewPayableService(db)
	supplier := testutil.CreateTestSupplier(t, db)
	category := testutil.CreateTestCategory(t, db)

	today := time.Now().Truncate(24 * time.Hour)
	testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "100.00", today.AddDate(0, 0, 5))
	testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "200.00", today.AddDate(0, 0, -5))
	paid := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "300.00", today)
	testutil.AssertNoError(t, svc.MarkPaid(db, paid.ID, decimal.RequireFromString("300.00"), today))

	dash, err := svc.Dashboard()
	testutil.AssertNoError(t, err)

	if dash.PendingCount != 2 {
		t.Errorf("expected 2 pending, got %d", dash.PendingCount)
	}
	if !dash.PendingTotal.Equal(decimal.RequireFromString("300.00")) {
		t.Errorf("expected pending total 300.00, got %s", dash.PendingTotal)
	}
	if dash.OverdueCount != 1 {
		t.Errorf("expected 1 overdue, got %d", dash.OverdueCount)
	}
	if dash.PaidCount != 1 || !dash.PaidTotal.Equal(decimal.RequireFromString("300.00")) {
		t.Errorf("unexpected paid figures: %d / %s", dash.PaidCount, dash.PaidTotal)
	}
	if len(dash.NextDue) != 1 {
		t.Errorf("expected 1 upcoming due, got %d", len(dash.NextDue))
	}
}

func TestListPayables(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewPayableService(db)
	supplier := testutil.CreateTestSupplier(t, db)
	category := testutil.CreateTestCategory(t, db)

	later := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "100.00",
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	sooner := testutil.CreateTestPayable(t, db, supplier.ID, category.ID, "200.00",
		time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))

	page := pagination.PageRequest{Page: 1, PerPage: 10}
	result, err := svc.ListPayables(page, PayableFilter{})
	testutil.AssertNoError(t, err)

	if result.TotalItems != 2 {
		t.Fatalf("expected 2 payables, got %d", result.TotalItems)
	}
	if result.Data[0].ID != sooner.ID || result.Data[1].ID != later.ID {
		t.Error("expected payables ordered by ascending due date")
	}

	status := models.PayableStatusPaid
	filtered, err := svc.ListPayables(page, PayableFilter{Status: &status})
	testutil.AssertNoError(t, err)
	if filtered.TotalItems != 0 {
		t.Errorf("expected no paid payables, got %d", filtered.TotalItems)
	}
}
