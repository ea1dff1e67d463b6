package assistant

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/core"
	"github.com/nisrj10/yieldly/internal/derive"
	"github.com/nisrj10/yieldly/internal/services"
	"github.com/nisrj10/yieldly/internal/storage"
)

func newTestRegistry(t *testing.T) (*Registry, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	engine := derive.New(derive.Options{})
	reports := services.NewReportService(repo, engine)
	budgets := services.NewBudgetService(repo, nil)
	portfolios := services.NewPortfolioService(repo, nil)
	goals := services.NewGoalService(repo, nil)
	transactions := services.NewTransactionService(repo)
	return NewRegistry(reports, budgets, portfolios, goals, transactions), repo
}

func TestRegistryList(t *testing.T) {
	r, _ := newTestRegistry(t)

	tools := r.List()
	if len(tools) != 9 {
		t.Fatalf("List() returned %d tools, want 9", len(tools))
	}
	for i := 1; i < len(tools); i++ {
		if tools[i-1].Name >= tools[i].Name {
			t.Errorf("List() not sorted: %q before %q", tools[i-1].Name, tools[i].Name)
		}
	}
	for _, tool := range tools {
		if tool.Description == "" {
			t.Errorf("tool %q has no description", tool.Name)
		}
	}
}

func TestCallUnknownTool(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Call(context.Background(), "transfer_everything", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("Call() error = %v, want ErrUnknownTool", err)
	}
}

func TestUpdatePortfolioValueTool(t *testing.T) {
	ctx := context.Background()
	r, repo := newTestRegistry(t)

	created, err := repo.CreatePortfolio(ctx, core.Portfolio{
		Name:          "Vanguard ISA",
		PortfolioType: core.PortfolioISA,
		InitialValue:  decimal.NewFromInt(10000),
		CurrentValue:  decimal.NewFromInt(10000),
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("CreatePortfolio() error = %v", err)
	}

	// Numeric params arrive as float64 after JSON decoding.
	out, err := r.Call(ctx, "update_portfolio_value", Params{
		"portfolio_id": float64(created.ID),
		"value":        12345.50,
		"notes":        "March statement",
		"as_of":        "2026-03-10",
	})
	if err != nil {
		t.Fatalf("Call(update_portfolio_value) error = %v", err)
	}

	result, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("result type = %T, want map", out)
	}
	if got := result["current_value"].(decimal.Decimal); !got.Equal(decimal.NewFromFloat(12345.50)) {
		t.Errorf("current_value = %s, want 12345.5", got)
	}

	snaps, err := repo.ListSnapshots(ctx, created.ID)
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(snaps) != 1 || snaps[0].Year != 2026 || snaps[0].Month != 3 {
		t.Errorf("snapshots = %+v, want one for 2026-03", snaps)
	}
}

func TestGetMonthlySpendingTool(t *testing.T) {
	ctx := context.Background()
	r, repo := newTestRegistry(t)

	seed := []core.Transaction{
		{Type: core.TransactionIncome, Description: "Salary", Category: "Salary", Amount: decimal.NewFromInt(4000), Date: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{Type: core.TransactionExpense, Description: "Rent", Category: "Housing", Amount: decimal.NewFromInt(1000), Date: time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)},
		{Type: core.TransactionExpense, Description: "Rent", Category: "Housing", Amount: decimal.NewFromInt(1000), Date: time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tx := range seed {
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
	}

	out, err := r.Call(ctx, "get_monthly_spending", Params{
		"months": float64(2),
		"as_of":  "2026-03-15",
	})
	if err != nil {
		t.Fatalf("Call(get_monthly_spending) error = %v", err)
	}

	result := out.(map[string]any)
	data := result["monthly_data"].([]derive.MonthSpend)
	if len(data) != 2 {
		t.Fatalf("monthly_data = %d months, want 2", len(data))
	}
	if !data[0].Savings.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("March savings = %s, want 3000", data[0].Savings)
	}
	if !data[1].Income.IsZero() || !data[1].Expenses.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("February = %+v, want expenses 1000 with no income", data[1])
	}
}

func TestAddFundsToGoalTool(t *testing.T) {
	ctx := context.Background()
	r, repo := newTestRegistry(t)

	goal, err := repo.CreateGoal(ctx, core.SavingsGoal{
		Name:          "Holiday",
		TargetAmount:  decimal.NewFromInt(1000),
		CurrentAmount: decimal.NewFromInt(900),
	})
	if err != nil {
		t.Fatalf("CreateGoal() error = %v", err)
	}

	out, err := r.Call(ctx, "add_funds_to_goal", Params{
		"goal_id": float64(goal.ID),
		"amount":  "150.00",
	})
	if err != nil {
		t.Fatalf("Call(add_funds_to_goal) error = %v", err)
	}

	result := out.(map[string]any)
	if completed := result["is_completed"].(bool); !completed {
		t.Error("is_completed = false, want true after reaching the target")
	}
	if got := result["current_amount"].(decimal.Decimal); !got.Equal(decimal.NewFromInt(1050)) {
		t.Errorf("current_amount = %s, want 1050", got)
	}
}

func TestAddFundsToGoalRejectsMissingAmount(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Call(context.Background(), "add_funds_to_goal", Params{"goal_id": float64(1)})
	if !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("Call() error = %v, want ErrMissingParameter", err)
	}
}

func TestCreateSavingsGoalTool(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)

	out, err := r.Call(ctx, "create_savings_goal", Params{
		"name":           "New boiler",
		"target_amount":  3000.0,
		"current_amount": "250",
		"target_date":    "2027-01-01",
	})
	if err != nil {
		t.Fatalf("Call(create_savings_goal) error = %v", err)
	}

	goal := out.(core.SavingsGoal)
	if !goal.CurrentAmount.Equal(decimal.NewFromInt(250)) {
		t.Errorf("CurrentAmount = %s, want 250", goal.CurrentAmount)
	}
	if goal.TargetDate.Year() != 2027 {
		t.Errorf("TargetDate = %s, want 2027-01-01", goal.TargetDate)
	}
}

func TestGetFinancialSummaryTool(t *testing.T) {
	ctx := context.Background()
	r, repo := newTestRegistry(t)

	budget, err := repo.CreateBudget(ctx, core.HouseBudget{
		Name:          "March 2026",
		Year:          2026,
		Month:         3,
		PrimarySalary: decimal.NewFromInt(4000),
	})
	if err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}
	_, err = repo.CreateLineItem(ctx, core.BudgetLineItem{
		BudgetID:            budget.ID,
		Name:                "Mortgage",
		Amount:              decimal.NewFromInt(1400),
		CategoryType:        core.CategoryExpense,
		SplitType:           core.SplitShared,
		PrimarySharePercent: decimal.NewFromInt(50),
		Group:               "Housing",
	})
	if err != nil {
		t.Fatalf("CreateLineItem() error = %v", err)
	}

	out, err := r.Call(ctx, "get_financial_summary", Params{"as_of": "2026-03-15"})
	if err != nil {
		t.Fatalf("Call(get_financial_summary) error = %v", err)
	}

	report, ok := out.(derive.Report)
	if !ok {
		t.Fatalf("result type = %T, want derive.Report", out)
	}
	if !report.Budget.TotalExpenses.Equal(decimal.NewFromInt(1400)) {
		t.Errorf("TotalExpenses = %s, want 1400", report.Budget.TotalExpenses)
	}
	if report.DaysLeftInMonth != 16 {
		t.Errorf("DaysLeftInMonth = %d, want 16", report.DaysLeftInMonth)
	}
}

func TestGetFinancialSummaryRejectsBadDate(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Call(context.Background(), "get_financial_summary", Params{"as_of": "15/03/2026"})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("Call() error = %v, want ErrInvalidParameter", err)
	}
}

func TestParamAccessors(t *testing.T) {
	p := Params{
		"count":  float64(7),
		"id_str": "42",
		"price":  "19.99",
		"flag":   "true",
	}

	if v, err := p.int64("count"); err != nil || v != 7 {
		t.Errorf("int64(count) = %d, %v", v, err)
	}
	if v, err := p.int64("id_str"); err != nil || v != 42 {
		t.Errorf("int64(id_str) = %d, %v", v, err)
	}
	if v, err := p.decimal("price"); err != nil || !v.Equal(decimal.NewFromFloat(19.99)) {
		t.Errorf("decimal(price) = %s, %v", v, err)
	}
	if v, err := p.optionalBool("flag"); err != nil || !v {
		t.Errorf("optionalBool(flag) = %v, %v", v, err)
	}
	if v, err := p.optionalBool("absent"); err != nil || v {
		t.Errorf("optionalBool(absent) = %v, %v", v, err)
	}
	if _, _, err := p.optionalDecimal("flag"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("optionalDecimal(flag) error = %v, want ErrInvalidParameter", err)
	}
	if _, err := p.int64("missing"); !errors.Is(err, ErrMissingParameter) {
		t.Errorf("int64(missing) error = %v, want ErrMissingParameter", err)
	}
}

func TestHealthCheckStatuses(t *testing.T) {
	healthy := derive.Report{}
	healthy.NetWorth.MonthsCovered = decimal.NewFromInt(8)
	healthy.CashFlow.SavingsRate = decimal.NewFromInt(25)
	healthy.CashFlow.Remaining = decimal.NewFromInt(500)
	healthy.Budget.MonthlyBuffer = decimal.NewFromInt(100)

	if got := HealthCheck(healthy); got.Status != StatusHealthy || got.Score != 100 {
		t.Errorf("Status = %q score = %d, want healthy 100", got.Status, got.Score)
	}

	lowCover := healthy
	lowCover.NetWorth.MonthsCovered = decimal.NewFromInt(4)
	if got := HealthCheck(lowCover); got.Status != StatusWarning || got.Score != 85 {
		t.Errorf("Status = %q score = %d, want warning 85 at 4 months cover", got.Status, got.Score)
	}

	overBudget := healthy
	overBudget.CashFlow.Remaining = decimal.NewFromInt(-200)
	overBudget.CashFlow.OverBudget = true
	got := HealthCheck(overBudget)
	if got.Status != StatusAttention || got.Score != 70 {
		t.Errorf("Status = %q score = %d, want needs_attention 70 when over budget", got.Status, got.Score)
	}
	if len(got.Recommendations) == 0 {
		t.Error("no recommendations for a degraded report")
	}

	check := HealthCheck(healthy)
	if len(check.Signals) != 4 {
		t.Fatalf("Signals = %d, want 4", len(check.Signals))
	}
}
