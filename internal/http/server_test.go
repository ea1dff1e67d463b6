package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/assistant"
	"github.com/nisrj10/yieldly/internal/core"
	"github.com/nisrj10/yieldly/internal/derive"
	applog "github.com/nisrj10/yieldly/internal/log"
	"github.com/nisrj10/yieldly/internal/services"
	"github.com/nisrj10/yieldly/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	engine := derive.New(derive.Options{})
	budgets := services.NewBudgetService(repo, nil)
	portfolios := services.NewPortfolioService(repo, nil)
	goals := services.NewGoalService(repo, nil)
	transactions := services.NewTransactionService(repo)
	reports := services.NewReportService(repo, engine)
	tools := assistant.NewRegistry(reports, budgets, portfolios, goals, transactions)
	logger := applog.New(applog.DefaultConfig())

	srv := NewServer(":0", repo, budgets, portfolios, goals, transactions, reports, tools, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv, repo
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rr.Code)
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "yieldly_http_requests_total") {
		t.Errorf("/metrics body missing request counter: %s", rr.Body.String())
	}
}

func TestBudgetLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/budgets", map[string]any{
		"name":           "March 2026",
		"year":           2026,
		"month":          3,
		"primary_salary": "4000",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create budget status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var created budgetPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created budget has no id")
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/budgets/"+itoa(created.ID)+"/items", map[string]any{
		"name":                  "Mortgage",
		"amount":                "1400",
		"category_type":         "expense",
		"split_type":            "shared",
		"primary_share_percent": "60",
		"group":                 "Housing",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add item status = %d, body = %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/budgets/"+itoa(created.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get budget status = %d", rr.Code)
	}
	var detail struct {
		budgetPayload
		Items []lineItemPayload `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode budget detail: %v", err)
	}
	if len(detail.Items) != 1 || detail.Items[0].Name != "Mortgage" {
		t.Errorf("items = %+v, want one Mortgage item", detail.Items)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/budgets/"+itoa(created.ID)+"/changes", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list changes status = %d", rr.Code)
	}
	var changes []changePayload
	if err := json.Unmarshal(rr.Body.Bytes(), &changes); err != nil {
		t.Fatalf("decode changes: %v", err)
	}
	if len(changes) != 2 {
		t.Errorf("changes = %d rows, want 2 (budget create + item create)", len(changes))
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/budgets/"+itoa(created.ID), nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete budget status = %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/budgets/"+itoa(created.ID), nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("get deleted budget status = %d, want 404", rr.Code)
	}
}

func TestAddLineItemDefaultsSharePercent(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/budgets", map[string]any{
		"name": "April 2026", "year": 2026, "month": 4,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create budget status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var budget budgetPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &budget); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/budgets/"+itoa(budget.ID)+"/items", map[string]any{
		"name":          "Groceries",
		"amount":        "400",
		"category_type": "expense",
		"split_type":    "shared",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add item status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var item lineItemPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode item response: %v", err)
	}
	if item.PrimarySharePercent == nil || !item.PrimarySharePercent.Equal(decimal.NewFromInt(50)) {
		t.Errorf("primary_share_percent = %v, want default 50", item.PrimarySharePercent)
	}

	// An explicit zero must survive, not be replaced by the default.
	rr = doJSON(t, srv, http.MethodPost, "/api/budgets/"+itoa(budget.ID)+"/items", map[string]any{
		"name":                  "Partner gym",
		"amount":                "35",
		"category_type":         "expense",
		"split_type":            "shared",
		"primary_share_percent": "0",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add zero-share item status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode item response: %v", err)
	}
	if item.PrimarySharePercent == nil || !item.PrimarySharePercent.IsZero() {
		t.Errorf("primary_share_percent = %v, want explicit 0", item.PrimarySharePercent)
	}
}

func TestCreateBudgetRejectsInvalid(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/budgets", map[string]any{
		"name":  "",
		"year":  2026,
		"month": 3,
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 for empty name", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/budgets", map[string]any{
		"name": "Bad", "unknown_field": true,
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown field", rr.Code)
	}
}

func TestTransactionEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]any{
		"type":        "income",
		"amount":      "4000",
		"description": "Salary",
		"category":    "Salary",
		"date":        "2026-03-01",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("record income status = %d, body = %s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]any{
		"type":        "expense",
		"amount":      "1500",
		"description": "Rent",
		"category":    "Housing",
		"date":        "2026-03-02",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("record expense status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var expense transactionPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &expense); err != nil {
		t.Fatalf("decode transaction: %v", err)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]any{
		"type":        "expense",
		"amount":      "10",
		"description": "Bad date",
		"date":        "03/15/2026",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("malformed date status = %d, want 400", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?from=2026-03-01&to=2026-04-01", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var listed []transactionPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("list = %d rows, want 2", len(listed))
	}
	if listed[0].Description != "Rent" {
		t.Errorf("first row = %q, want newest first", listed[0].Description)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/reports/monthly-spending?months=1&as_of=2026-03-15", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("monthly spending status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var spending struct {
		AsOf        string              `json:"as_of"`
		MonthlyData []derive.MonthSpend `json:"monthly_data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &spending); err != nil {
		t.Fatalf("decode monthly spending: %v", err)
	}
	if len(spending.MonthlyData) != 1 {
		t.Fatalf("monthly_data = %d months, want 1", len(spending.MonthlyData))
	}
	if !spending.MonthlyData[0].Savings.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("March savings = %s, want 2500", spending.MonthlyData[0].Savings)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+itoa(expense.ID), nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+itoa(expense.ID), nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rr.Code)
	}
}

func TestDuplicateBudgetEndpoint(t *testing.T) {
	srv, repo := newTestServer(t)
	ctx := context.Background()

	template, err := repo.CreateBudget(ctx, core.HouseBudget{
		Name:          "Template",
		IsTemplate:    true,
		PrimarySalary: decimal.NewFromInt(4000),
	})
	if err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}
	if _, err := repo.CreateLineItem(ctx, core.BudgetLineItem{
		BudgetID:     template.ID,
		Name:         "Groceries",
		Amount:       decimal.NewFromInt(500),
		CategoryType: core.CategoryExpense,
		SplitType:    core.SplitPrimaryOnly,
		Group:        "Living",
	}); err != nil {
		t.Fatalf("CreateLineItem() error = %v", err)
	}

	rr := doJSON(t, srv, http.MethodPost, "/api/budgets/"+itoa(template.ID)+"/duplicate", map[string]any{
		"name": "April 2026", "year": 2026, "month": 4,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("duplicate status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var dup budgetPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &dup); err != nil {
		t.Fatalf("decode duplicate: %v", err)
	}
	if dup.IsTemplate || dup.Month != 4 {
		t.Errorf("duplicate = %+v, want month instance for April", dup)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/budgets/"+itoa(dup.ID)+"/items", nil)
	var items []lineItemPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("duplicated items = %d, want 1", len(items))
	}
}

func TestPortfolioValueEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/portfolios", map[string]any{
		"name":          "Vanguard ISA",
		"type":          "isa",
		"initial_value": "10000",
		"is_active":     true,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create portfolio status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var created portfolioResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode portfolio: %v", err)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/portfolios/"+itoa(created.ID)+"/value", map[string]any{
		"value": "11250.75",
		"as_of": "2026-03-15",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("update value status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var updated portfolioResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated portfolio: %v", err)
	}
	if !updated.CurrentValue.Equal(decimal.NewFromFloat(11250.75)) {
		t.Errorf("current_value = %s, want 11250.75", updated.CurrentValue)
	}
	if !updated.TotalGainLoss.Equal(decimal.NewFromFloat(1250.75)) {
		t.Errorf("total_gain_loss = %s, want 1250.75", updated.TotalGainLoss)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/portfolios/"+itoa(created.ID)+"/snapshots", nil)
	var snaps []snapshotPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &snaps); err != nil {
		t.Fatalf("decode snapshots: %v", err)
	}
	if len(snaps) != 1 || snaps[0].Month != 3 {
		t.Errorf("snapshots = %+v, want one March entry", snaps)
	}
}

func TestGoalFundsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/goals", map[string]any{
		"name":           "Holiday",
		"target_amount":  "1000",
		"current_amount": "900",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create goal status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var created goalResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode goal: %v", err)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/goals/"+itoa(created.ID)+"/funds", map[string]any{
		"amount": "150",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("add funds status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var funded goalResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &funded); err != nil {
		t.Fatalf("decode funded goal: %v", err)
	}
	if !funded.IsCompleted {
		t.Error("goal not completed after passing the target")
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/goals/"+itoa(created.ID)+"/funds", map[string]any{
		"amount": "0",
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("zero amount status = %d, want 422", rr.Code)
	}
}

func TestDashboardReportEndpoint(t *testing.T) {
	srv, repo := newTestServer(t)
	ctx := context.Background()

	budget, err := repo.CreateBudget(ctx, core.HouseBudget{
		Name:          "March 2026",
		Year:          2026,
		Month:         3,
		PrimarySalary: decimal.NewFromInt(4000),
	})
	if err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}
	if _, err := repo.CreateLineItem(ctx, core.BudgetLineItem{
		BudgetID:     budget.ID,
		Name:         "Rent",
		Amount:       decimal.NewFromInt(1200),
		CategoryType: core.CategoryExpense,
		SplitType:    core.SplitPrimaryOnly,
		Group:        "Housing",
	}); err != nil {
		t.Fatalf("CreateLineItem() error = %v", err)
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/reports/dashboard?as_of=2026-03-10", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var report derive.Report
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !report.Budget.TotalExpenses.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("total_expenses = %s, want 1200", report.Budget.TotalExpenses)
	}
	if report.DaysLeftInMonth != 21 {
		t.Errorf("days_left_in_month = %d, want 21", report.DaysLeftInMonth)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/reports/dashboard?as_of=10-03-2026", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad as_of status = %d, want 400", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/reports/net-worth?as_of=2026-03-10", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("net-worth status = %d, want 200", rr.Code)
	}
}

func TestReportCacheInvalidatedOnMutation(t *testing.T) {
	srv, repo := newTestServer(t)
	ctx := context.Background()

	budget, err := repo.CreateBudget(ctx, core.HouseBudget{
		Name: "March 2026", Year: 2026, Month: 3,
		PrimarySalary: decimal.NewFromInt(4000),
	})
	if err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/reports/dashboard?as_of=2026-03-10", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("first dashboard status = %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/budgets/"+itoa(budget.ID)+"/items", map[string]any{
		"name":          "Rent",
		"amount":        "1200",
		"category_type": "expense",
		"split_type":    "primary_only",
		"group":         "Housing",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add item status = %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/reports/dashboard?as_of=2026-03-10", nil)
	var report derive.Report
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !report.Budget.TotalExpenses.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("total_expenses = %s after mutation, want 1200 (stale cache?)", report.Budget.TotalExpenses)
	}
}

func TestToolEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/tools", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list tools status = %d", rr.Code)
	}
	var tools []assistant.Tool
	if err := json.Unmarshal(rr.Body.Bytes(), &tools); err != nil {
		t.Fatalf("decode tools: %v", err)
	}
	if len(tools) != 9 {
		t.Errorf("tools = %d, want 9", len(tools))
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/tools/create_savings_goal", map[string]any{
		"name": "Boiler", "target_amount": 2500,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("call tool status = %d, body = %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/tools/no_such_tool", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown tool status = %d, want 404", rr.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/budgets", nil)
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
