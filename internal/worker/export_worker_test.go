package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/amqp"
	"github.com/nisrj10/yieldly/internal/core"
	"github.com/nisrj10/yieldly/internal/derive"
	"github.com/nisrj10/yieldly/internal/services"
	"github.com/nisrj10/yieldly/internal/sheets/memory"
	"github.com/nisrj10/yieldly/internal/storage"
)

func newWorker(t *testing.T) (*ExportWorker, *memory.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	budgets := services.NewBudgetService(repo, nil)
	now := time.Now()
	b, err := budgets.CreateBudget(context.Background(), core.HouseBudget{
		Name:          "Current",
		Month:         int(now.Month()),
		Year:          now.Year(),
		PrimarySalary: decimal.NewFromInt(4000),
	})
	if err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}
	if _, err := budgets.AddLineItem(context.Background(), core.BudgetLineItem{
		BudgetID:     b.ID,
		Name:         "Rent",
		Amount:       decimal.NewFromInt(1200),
		CategoryType: core.CategoryExpense,
		SplitType:    core.SplitPrimaryOnly,
		Group:        "Housing",
	}); err != nil {
		t.Fatalf("AddLineItem() error = %v", err)
	}

	store := memory.New()
	reports := services.NewReportService(repo, derive.New(derive.Options{}))
	return NewExportWorker(reports, store, 10*time.Millisecond), store
}

func TestExportNow(t *testing.T) {
	w, store := newWorker(t)

	ref, err := w.ExportNow(context.Background())
	if err != nil {
		t.Fatalf("ExportNow() error = %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ExportNow() ref = %s, want mem:1", ref)
	}

	report, ok := store.Latest()
	if !ok {
		t.Fatal("Latest() should report an export")
	}
	if !report.Budget.TotalExpenses.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("exported TotalExpenses = %s, want 1200", report.Budget.TotalExpenses)
	}
}

func TestHandleEventRejectsUnknownKind(t *testing.T) {
	w, _ := newWorker(t)

	if err := w.HandleEvent(&amqp.EventMessage{Kind: "bogus"}); err == nil {
		t.Error("HandleEvent() with unknown kind should fail")
	}
	if err := w.HandleEvent(amqp.NewEventMessage(amqp.EventBudgetChanged, 1)); err != nil {
		t.Errorf("HandleEvent() error = %v", err)
	}
}

// A burst of events inside the debounce window coalesces into one export.
func TestRunCoalescesEvents(t *testing.T) {
	w, store := newWorker(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	for i := 0; i < 5; i++ {
		if err := w.HandleEvent(amqp.NewEventMessage(amqp.EventBudgetChanged, int64(i))); err != nil {
			t.Errorf("HandleEvent() error = %v", err)
		}
	}

	deadline := time.After(2 * time.Second)
	for store.Count() == 0 {
		select {
		case <-deadline:
			t.Fatal("no export happened within deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done

	if store.Count() > 2 {
		t.Errorf("Count() = %d, want coalesced exports (<= 2)", store.Count())
	}
}
