// Package derive is the household budget derivation engine: the single
// calculation layer that turns flat budget line items, portfolio values,
// and the household income declaration into split amounts, subtotals,
// cash-flow figures, net-worth attribution, and emergency-fund coverage.
//
// The engine is pure and deterministic. It performs no I/O, reads no
// ambient clock (the as-of date is an explicit parameter), and produces
// identical output for identical input. Every view and assistant tool
// reads from one Report rather than re-deriving overlapping sums.
package derive

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/core"
)

// DefaultEssentialGroups is the default allow-list of expense groups that
// count as essential when sizing emergency-fund coverage.
var DefaultEssentialGroups = []string{"Housing", "Living", "Transport", "Family", "Property"}

// DefaultEssentialFallback is the monthly essential-spend estimate used
// when the budget has no items in any essential group yet.
var DefaultEssentialFallback = decimal.NewFromInt(3500)

type (
	// Options configures the engine. Zero values fall back to the
	// package defaults.
	Options struct {
		// EssentialGroups is the allow-list of expense groups counted as
		// essential monthly spending.
		EssentialGroups []string
		// EssentialFallback replaces a zero essential-expense sum so
		// coverage never divides by zero. Callers may override it.
		EssentialFallback decimal.Decimal
		// DependentOwner attributes matching portfolios to a dependent
		// (e.g. a child) in the net-worth partition.
		DependentOwner string
	}

	// Engine derives reports from budget and portfolio snapshots.
	Engine struct {
		opts            Options
		essentialGroups map[string]struct{}
	}

	// Inputs is one consistent snapshot of the records the engine reads.
	Inputs struct {
		Budget     core.HouseBudget
		LineItems  []core.BudgetLineItem
		Portfolios []core.Portfolio
		Goals      []core.SavingsGoal
	}

	// LineItemSplit is a line item together with its derived member
	// amounts.
	LineItemSplit struct {
		ID            int64           `json:"id"`
		Name          string          `json:"name"`
		Group         string          `json:"group"`
		CategoryType  string          `json:"category_type"`
		SplitType     string          `json:"split_type"`
		Amount        decimal.Decimal `json:"amount"`
		PrimaryAmount decimal.Decimal `json:"primary_amount"`
		PartnerAmount decimal.Decimal `json:"partner_amount"`
	}

	// BudgetSummary totals the declared income against all allocations,
	// Income-group transfers included.
	BudgetSummary struct {
		Name             string          `json:"name"`
		PartnerName      string          `json:"partner_name"`
		TotalIncome      decimal.Decimal `json:"total_income"`
		TotalExpenses    decimal.Decimal `json:"total_expenses"`
		TotalSavings     decimal.Decimal `json:"total_savings"`
		TotalInvestments decimal.Decimal `json:"total_investments"`
		MonthlyBuffer    decimal.Decimal `json:"monthly_buffer"`
	}

	// GoalsSummary condenses active savings goals.
	GoalsSummary struct {
		ActiveCount     int             `json:"active_count"`
		TotalTarget     decimal.Decimal `json:"total_target"`
		TotalSaved      decimal.Decimal `json:"total_saved"`
		ProgressPercent decimal.Decimal `json:"progress_percent"`
	}

	// Report is the engine's full structured output for one snapshot.
	Report struct {
		AsOf            time.Time       `json:"as_of"`
		DaysLeftInMonth int             `json:"days_left_in_month"`
		Budget          BudgetSummary   `json:"budget"`
		Items           []LineItemSplit `json:"items"`
		Breakdown       Breakdown       `json:"breakdown"`
		CashFlow        CashFlow        `json:"cash_flow"`
		NetWorth        NetWorth        `json:"net_worth"`
		Goals           GoalsSummary    `json:"goals"`
	}
)

// New builds an engine, applying defaults for unset options.
func New(opts Options) *Engine {
	if len(opts.EssentialGroups) == 0 {
		opts.EssentialGroups = DefaultEssentialGroups
	}
	if !opts.EssentialFallback.IsPositive() {
		opts.EssentialFallback = DefaultEssentialFallback
	}
	groups := make(map[string]struct{}, len(opts.EssentialGroups))
	for _, g := range opts.EssentialGroups {
		groups[g] = struct{}{}
	}
	return &Engine{opts: opts, essentialGroups: groups}
}

// Derive computes the full report for one input snapshot as of the given
// date. The date must be supplied by the caller; nothing here reads the
// wall clock.
func (e *Engine) Derive(in Inputs, asOf time.Time) Report {
	r := Report{
		AsOf:            asOf,
		DaysLeftInMonth: daysLeftInMonth(asOf),
	}

	r.Items = make([]LineItemSplit, 0, len(in.LineItems))
	for _, item := range in.LineItems {
		split := Split(item)
		r.Items = append(r.Items, LineItemSplit{
			ID:            item.ID,
			Name:          item.Name,
			Group:         item.GroupLabel(),
			CategoryType:  string(item.CategoryType),
			SplitType:     string(item.SplitType),
			Amount:        item.Amount,
			PrimaryAmount: split.Primary,
			PartnerAmount: split.Partner,
		})
	}

	r.Budget = summarizeBudget(in.Budget, in.LineItems)
	r.Breakdown = Aggregate(in.LineItems)
	r.CashFlow = ResolveCashFlow(in.LineItems, in.Budget.PrimarySalary)
	r.NetWorth = e.ResolveNetWorth(in.Portfolios, in.LineItems)
	r.Goals = summarizeGoals(in.Goals)

	return r
}

func summarizeBudget(b core.HouseBudget, items []core.BudgetLineItem) BudgetSummary {
	s := BudgetSummary{
		Name:             b.Name,
		PartnerName:      b.PartnerName,
		TotalIncome:      b.TotalIncome(),
		TotalExpenses:    decimal.Zero,
		TotalSavings:     decimal.Zero,
		TotalInvestments: decimal.Zero,
	}
	for _, item := range items {
		switch item.CategoryType {
		case core.CategoryExpense:
			s.TotalExpenses = s.TotalExpenses.Add(item.Amount)
		case core.CategorySaving:
			s.TotalSavings = s.TotalSavings.Add(item.Amount)
		case core.CategoryInvestment:
			s.TotalInvestments = s.TotalInvestments.Add(item.Amount)
		}
	}
	s.MonthlyBuffer = s.TotalIncome.Sub(s.TotalExpenses).Sub(s.TotalSavings).Sub(s.TotalInvestments)
	return s
}

func summarizeGoals(goals []core.SavingsGoal) GoalsSummary {
	s := GoalsSummary{
		TotalTarget:     decimal.Zero,
		TotalSaved:      decimal.Zero,
		ProgressPercent: decimal.Zero,
	}
	for _, g := range goals {
		if g.IsCompleted {
			continue
		}
		s.ActiveCount++
		s.TotalTarget = s.TotalTarget.Add(g.TargetAmount)
		s.TotalSaved = s.TotalSaved.Add(g.CurrentAmount)
	}
	if s.TotalTarget.IsPositive() {
		s.ProgressPercent = s.TotalSaved.Div(s.TotalTarget).Mul(hundred)
	}
	return s
}

func daysLeftInMonth(asOf time.Time) int {
	lastDay := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location()).AddDate(0, 1, -1)
	return lastDay.Day() - asOf.Day()
}
