// Package assistant exposes the household finance operations as a named
// tool registry, the calling convention conversational assistants use:
// list the tools, then invoke one by name with loosely typed parameters.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/core"
	"github.com/nisrj10/yieldly/internal/services"
)

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ParamSpec declares one parameter a tool accepts, so callers can
// discover the calling convention from the listing alone.
type ParamSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required,omitempty"`
	Description string `json:"description,omitempty"`
}

// Tool is one callable operation.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []ParamSpec `json:"parameters,omitempty"`

	handler func(ctx context.Context, p Params) (any, error)
}

// Params is the loosely typed parameter bag of a tool call.
type Params map[string]any

// Registry holds the available tools.
type Registry struct {
	tools map[string]Tool

	reports      *services.ReportService
	budgets      *services.BudgetService
	portfolios   *services.PortfolioService
	goals        *services.GoalService
	transactions *services.TransactionService
}

func NewRegistry(reports *services.ReportService, budgets *services.BudgetService, portfolios *services.PortfolioService, goals *services.GoalService, transactions *services.TransactionService) *Registry {
	r := &Registry{
		tools:        make(map[string]Tool),
		reports:      reports,
		budgets:      budgets,
		portfolios:   portfolios,
		goals:        goals,
		transactions: transactions,
	}

	asOfParam := ParamSpec{Name: "as_of", Type: "string", Description: "Report date, YYYY-MM-DD. Defaults to today."}

	r.register("get_financial_summary",
		"Full household financial report: budget totals, cash flow, spending breakdown, net worth, and goals.",
		r.getFinancialSummary, asOfParam)
	r.register("get_house_budget",
		"The budget and its line items with each item's per-member split. Defaults to the current month's budget.",
		r.getHouseBudget,
		ParamSpec{Name: "budget_id", Type: "integer", Description: "Specific budget to report on."},
		asOfParam)
	r.register("get_monthly_spending",
		"Monthly income, expenses, and savings from the transaction ledger for recent months.",
		r.getMonthlySpending,
		ParamSpec{Name: "months", Type: "integer", Description: "Number of months to include. Defaults to 3."},
		asOfParam)
	r.register("get_portfolios",
		"All active portfolios with current values and returns.",
		r.getPortfolios,
		ParamSpec{Name: "include_inactive", Type: "boolean", Description: "Include retired accounts."})
	r.register("update_portfolio_value",
		"Record a new current value for a portfolio. Also writes this month's snapshot.",
		r.updatePortfolioValue,
		ParamSpec{Name: "portfolio_id", Type: "integer", Required: true},
		ParamSpec{Name: "value", Type: "number", Required: true},
		ParamSpec{Name: "notes", Type: "string"},
		asOfParam)
	r.register("get_savings_goals",
		"All savings goals with progress and remaining amounts.",
		r.getSavingsGoals)
	r.register("create_savings_goal",
		"Create a savings goal.",
		r.createSavingsGoal,
		ParamSpec{Name: "name", Type: "string", Required: true},
		ParamSpec{Name: "target_amount", Type: "number", Required: true},
		ParamSpec{Name: "current_amount", Type: "number"},
		ParamSpec{Name: "target_date", Type: "string", Description: "YYYY-MM-DD."})
	r.register("add_funds_to_goal",
		"Add funds to a savings goal. Completes the goal when the target is reached.",
		r.addFundsToGoal,
		ParamSpec{Name: "goal_id", Type: "integer", Required: true},
		ParamSpec{Name: "amount", Type: "number", Required: true})
	r.register("get_financial_health_check",
		"Health check with a bounded score: emergency cover, savings rate, budget balance, and over-budget warnings.",
		r.getFinancialHealthCheck, asOfParam)

	return r
}

func (r *Registry) register(name, description string, handler func(ctx context.Context, p Params) (any, error), params ...ParamSpec) {
	r.tools[name] = Tool{Name: name, Description: description, Parameters: params, handler: handler}
}

// List returns the available tools sorted by name.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call invokes a tool by name.
func (r *Registry) Call(ctx context.Context, name string, p Params) (any, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if p == nil {
		p = Params{}
	}
	return t.handler(ctx, p)
}

func (r *Registry) getFinancialSummary(ctx context.Context, p Params) (any, error) {
	asOf, err := p.timeOrNow("as_of")
	if err != nil {
		return nil, err
	}
	return r.reports.BuildReport(ctx, asOf)
}

func (r *Registry) getHouseBudget(ctx context.Context, p Params) (any, error) {
	asOf, err := p.timeOrNow("as_of")
	if err != nil {
		return nil, err
	}

	if id, ok, err := p.optionalInt64("budget_id"); err != nil {
		return nil, err
	} else if ok {
		return r.reports.BuildReportForBudget(ctx, id, asOf)
	}
	return r.reports.BuildReport(ctx, asOf)
}

func (r *Registry) getMonthlySpending(ctx context.Context, p Params) (any, error) {
	asOf, err := p.timeOrNow("as_of")
	if err != nil {
		return nil, err
	}
	months := 0
	if n, ok, err := p.optionalInt64("months"); err != nil {
		return nil, err
	} else if ok {
		months = int(n)
	}

	data, err := r.transactions.MonthlySpending(ctx, asOf, months)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"as_of":        asOf.Format(time.DateOnly),
		"monthly_data": data,
	}, nil
}

func (r *Registry) getPortfolios(ctx context.Context, p Params) (any, error) {
	includeInactive, err := p.optionalBool("include_inactive")
	if err != nil {
		return nil, err
	}

	portfolios, err := r.portfolios.ListPortfolios(ctx, includeInactive)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(portfolios))
	for _, pf := range portfolios {
		out = append(out, map[string]any{
			"id":                   pf.ID,
			"name":                 pf.Name,
			"type":                 string(pf.PortfolioType),
			"provider":             pf.Provider,
			"owner":                pf.OwnerName,
			"current_value":        pf.CurrentValue,
			"total_gain_loss":      pf.TotalGainLoss(),
			"total_return_percent": pf.TotalGainLossPercent(),
			"ytd_gain_loss":        pf.YTDGainLoss(),
			"ytd_return_percent":   pf.YTDGainLossPercent(),
			"is_active":            pf.IsActive,
		})
	}
	return out, nil
}

func (r *Registry) updatePortfolioValue(ctx context.Context, p Params) (any, error) {
	id, err := p.int64("portfolio_id")
	if err != nil {
		return nil, err
	}
	value, err := p.decimal("value")
	if err != nil {
		return nil, err
	}
	notes, _ := p.string("notes")
	asOf, err := p.timeOrNow("as_of")
	if err != nil {
		return nil, err
	}

	updated, err := r.portfolios.UpdateValue(ctx, id, value, notes, asOf)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":            updated.ID,
		"name":          updated.Name,
		"current_value": updated.CurrentValue,
	}, nil
}

func (r *Registry) getSavingsGoals(ctx context.Context, _ Params) (any, error) {
	goals, err := r.goals.ListGoals(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(goals))
	for _, g := range goals {
		out = append(out, map[string]any{
			"id":               g.ID,
			"name":             g.Name,
			"target_amount":    g.TargetAmount,
			"current_amount":   g.CurrentAmount,
			"progress_percent": g.ProgressPercent(),
			"remaining":        g.Remaining(),
			"is_completed":     g.IsCompleted,
		})
	}
	return out, nil
}

func (r *Registry) createSavingsGoal(ctx context.Context, p Params) (any, error) {
	name, err := p.string("name")
	if err != nil {
		return nil, err
	}
	target, err := p.decimal("target_amount")
	if err != nil {
		return nil, err
	}

	goal := core.SavingsGoal{Name: name, TargetAmount: target, CurrentAmount: decimal.Zero}
	if current, ok, err := p.optionalDecimal("current_amount"); err != nil {
		return nil, err
	} else if ok {
		goal.CurrentAmount = current
	}
	if raw, err := p.string("target_date"); err == nil {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: target_date", ErrInvalidParameter)
		}
		goal.TargetDate = d
	}

	return r.goals.CreateGoal(ctx, goal)
}

func (r *Registry) addFundsToGoal(ctx context.Context, p Params) (any, error) {
	id, err := p.int64("goal_id")
	if err != nil {
		return nil, err
	}
	amount, err := p.decimal("amount")
	if err != nil {
		return nil, err
	}

	g, err := r.goals.AddFunds(ctx, id, amount)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":               g.ID,
		"name":             g.Name,
		"current_amount":   g.CurrentAmount,
		"progress_percent": g.ProgressPercent(),
		"is_completed":     g.IsCompleted,
	}, nil
}

func (r *Registry) getFinancialHealthCheck(ctx context.Context, p Params) (any, error) {
	asOf, err := p.timeOrNow("as_of")
	if err != nil {
		return nil, err
	}
	report, err := r.reports.BuildReport(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return HealthCheck(report), nil
}
