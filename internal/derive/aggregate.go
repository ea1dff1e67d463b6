package derive

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/core"
)

type (
	// GroupTotals is the expense and saving subtotal for one display group.
	GroupTotals struct {
		Group        string          `json:"group"`
		ExpenseTotal decimal.Decimal `json:"expense_total"`
		SavingTotal  decimal.Decimal `json:"saving_total"`
	}

	// Breakdown is the spending view of a budget: subtotals per group and
	// per category type. Items in the Income group are inbound transfers,
	// not outflows, and are excluded from every total here.
	Breakdown struct {
		Groups           []GroupTotals              `json:"groups"`
		ByCategory       map[string]decimal.Decimal `json:"by_category"`
		TotalExpenses    decimal.Decimal            `json:"total_expenses"`
		TotalSavings     decimal.Decimal            `json:"total_savings"`
		TotalInvestments decimal.Decimal            `json:"total_investments"`
	}
)

// Aggregate reduces line items into grouped and typed subtotals for the
// spending breakdown. Input order is irrelevant; groups come back sorted
// by name and blank groups bucket under "Other".
func Aggregate(items []core.BudgetLineItem) Breakdown {
	b := Breakdown{
		ByCategory: map[string]decimal.Decimal{
			string(core.CategoryExpense):    decimal.Zero,
			string(core.CategorySaving):     decimal.Zero,
			string(core.CategoryInvestment): decimal.Zero,
		},
		TotalExpenses:    decimal.Zero,
		TotalSavings:     decimal.Zero,
		TotalInvestments: decimal.Zero,
	}

	byGroup := make(map[string]*GroupTotals)
	for _, item := range items {
		if item.GroupLabel() == core.GroupIncome {
			continue
		}

		g, ok := byGroup[item.GroupLabel()]
		if !ok {
			g = &GroupTotals{
				Group:        item.GroupLabel(),
				ExpenseTotal: decimal.Zero,
				SavingTotal:  decimal.Zero,
			}
			byGroup[item.GroupLabel()] = g
		}

		switch item.CategoryType {
		case core.CategoryExpense:
			g.ExpenseTotal = g.ExpenseTotal.Add(item.Amount)
			b.TotalExpenses = b.TotalExpenses.Add(item.Amount)
		case core.CategorySaving:
			g.SavingTotal = g.SavingTotal.Add(item.Amount)
			b.TotalSavings = b.TotalSavings.Add(item.Amount)
		case core.CategoryInvestment:
			b.TotalInvestments = b.TotalInvestments.Add(item.Amount)
		}
		b.ByCategory[string(item.CategoryType)] = b.ByCategory[string(item.CategoryType)].Add(item.Amount)
	}

	b.Groups = make([]GroupTotals, 0, len(byGroup))
	for _, g := range byGroup {
		b.Groups = append(b.Groups, *g)
	}
	sort.Slice(b.Groups, func(i, j int) bool { return b.Groups[i].Group < b.Groups[j].Group })

	return b
}
