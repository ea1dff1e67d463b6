package derive

import (
	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/core"
)

// CashFlow carries the signed figures behind the dashboard's health
// indicators. Remaining may be negative; over-budget is surfaced, never
// clamped away.
type CashFlow struct {
	PartnerTotalContribution decimal.Decimal `json:"partner_total_contribution"`
	PartnerCashToHousehold   decimal.Decimal `json:"partner_cash_to_household"`
	TotalHouseholdIncome     decimal.Decimal `json:"total_household_income"`
	AvailablePot             decimal.Decimal `json:"available_pot"`
	PrimaryOutgoing          decimal.Decimal `json:"primary_outgoing"`
	Remaining                decimal.Decimal `json:"remaining"`
	OverBudget               bool            `json:"over_budget"`
	PrimarySavings           decimal.Decimal `json:"primary_savings"`
	SavingsRate              decimal.Decimal `json:"savings_rate"`
}

// ResolveCashFlow computes the household cash-flow figures from the full
// line-item list and the primary member's salary.
//
// The available pot is deliberately narrower than total household income:
// it is the primary salary plus only the partner contributions paid into
// the shared account (partner-only items in the Income group), since
// contributions the partner pays directly never pass through the pot the
// primary member allocates.
func ResolveCashFlow(items []core.BudgetLineItem, primarySalary decimal.Decimal) CashFlow {
	cf := CashFlow{
		PartnerTotalContribution: decimal.Zero,
		PartnerCashToHousehold:   decimal.Zero,
		PrimaryOutgoing:          decimal.Zero,
		PrimarySavings:           decimal.Zero,
	}

	for _, item := range items {
		switch item.SplitType {
		case core.SplitPartnerOnly:
			cf.PartnerTotalContribution = cf.PartnerTotalContribution.Add(item.Amount)
			if item.GroupLabel() == core.GroupIncome {
				cf.PartnerCashToHousehold = cf.PartnerCashToHousehold.Add(item.Amount)
			}
		case core.SplitPrimaryOnly:
			cf.PrimaryOutgoing = cf.PrimaryOutgoing.Add(item.Amount)
			if item.CategoryType == core.CategorySaving {
				cf.PrimarySavings = cf.PrimarySavings.Add(item.Amount)
			}
		}
	}

	cf.TotalHouseholdIncome = primarySalary.Add(cf.PartnerTotalContribution)
	cf.AvailablePot = primarySalary.Add(cf.PartnerCashToHousehold)
	cf.Remaining = cf.AvailablePot.Sub(cf.PrimaryOutgoing)
	cf.OverBudget = cf.Remaining.IsNegative()

	if cf.AvailablePot.IsPositive() {
		cf.SavingsRate = cf.PrimarySavings.Div(cf.AvailablePot).Mul(hundred)
	} else {
		// Savings rate is undefined with an empty pot; report 0, not NaN.
		cf.SavingsRate = decimal.Zero
	}

	return cf
}
