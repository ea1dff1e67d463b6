package derive

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/core"
)

type (
	// OwnerTotal is the net worth attributed to one owner label.
	OwnerTotal struct {
		Owner string          `json:"owner"`
		Total decimal.Decimal `json:"total"`
	}

	// PortfolioPerformance is the per-account return view.
	PortfolioPerformance struct {
		ID                   int64           `json:"id"`
		Name                 string          `json:"name"`
		Type                 string          `json:"type"`
		Owner                string          `json:"owner"`
		CurrentValue         decimal.Decimal `json:"current_value"`
		YTDReturnPercent     decimal.Decimal `json:"ytd_return_percent"`
		AllTimeReturnPercent decimal.Decimal `json:"all_time_return_percent"`
	}

	// NetWorth attributes portfolio values to household members and sizes
	// the emergency fund against essential monthly spending.
	NetWorth struct {
		TotalInvestments  decimal.Decimal `json:"total_investments"`
		TotalSavings      decimal.Decimal `json:"total_savings"`
		TotalPots         decimal.Decimal `json:"total_pots"`
		FamilyTotal       decimal.Decimal `json:"family_total"`
		PrimaryNetWorth   decimal.Decimal `json:"primary_net_worth"`
		DependentNetWorth decimal.Decimal `json:"dependent_net_worth"`
		ByOwner           []OwnerTotal    `json:"by_owner"`

		EmergencyFundTotal       decimal.Decimal `json:"emergency_fund_total"`
		EssentialMonthlyExpenses decimal.Decimal `json:"essential_monthly_expenses"`
		EssentialFallbackUsed    bool            `json:"essential_fallback_used"`
		MonthsCovered            decimal.Decimal `json:"months_covered"`

		Portfolios []PortfolioPerformance `json:"portfolios"`
	}
)

// ResolveNetWorth partitions active portfolios by owner, totals the family
// net worth, and computes emergency-fund coverage.
//
// Emergency fund detection uses the typed field first and falls back to a
// case-insensitive "emergency" substring on the account name; the fallback
// covers accounts created before the emergency type existed and is not a
// primary key. Essential monthly expenses come from the engine's
// configured group allow-list; when that sum is zero the configured
// fallback estimate is used instead of dividing by zero.
func (e *Engine) ResolveNetWorth(portfolios []core.Portfolio, items []core.BudgetLineItem) NetWorth {
	nw := NetWorth{
		TotalInvestments:   decimal.Zero,
		TotalSavings:       decimal.Zero,
		TotalPots:          decimal.Zero,
		EmergencyFundTotal: decimal.Zero,
	}

	byOwner := make(map[string]decimal.Decimal)
	for _, p := range portfolios {
		if !p.IsActive {
			continue
		}

		switch {
		case p.PortfolioType.IsInvestment():
			nw.TotalInvestments = nw.TotalInvestments.Add(p.CurrentValue)
		case p.PortfolioType.IsSavings():
			nw.TotalSavings = nw.TotalSavings.Add(p.CurrentValue)
		case p.PortfolioType == core.PortfolioPot:
			nw.TotalPots = nw.TotalPots.Add(p.CurrentValue)
		default:
			nw.TotalSavings = nw.TotalSavings.Add(p.CurrentValue)
		}

		owner := ownerLabel(p.OwnerName)
		byOwner[owner] = byOwner[owner].Add(p.CurrentValue)

		if e.isDependentOwned(p) {
			nw.DependentNetWorth = nw.DependentNetWorth.Add(p.CurrentValue)
		}
		if isEmergencyFund(p) {
			nw.EmergencyFundTotal = nw.EmergencyFundTotal.Add(p.CurrentValue)
		}

		nw.Portfolios = append(nw.Portfolios, PortfolioPerformance{
			ID:                   p.ID,
			Name:                 p.Name,
			Type:                 string(p.PortfolioType),
			Owner:                owner,
			CurrentValue:         p.CurrentValue,
			YTDReturnPercent:     p.YTDGainLossPercent(),
			AllTimeReturnPercent: p.TotalGainLossPercent(),
		})
	}

	nw.FamilyTotal = nw.TotalInvestments.Add(nw.TotalSavings).Add(nw.TotalPots)
	nw.PrimaryNetWorth = nw.FamilyTotal.Sub(nw.DependentNetWorth)

	nw.ByOwner = make([]OwnerTotal, 0, len(byOwner))
	for owner, total := range byOwner {
		nw.ByOwner = append(nw.ByOwner, OwnerTotal{Owner: owner, Total: total})
	}
	sort.Slice(nw.ByOwner, func(i, j int) bool { return nw.ByOwner[i].Owner < nw.ByOwner[j].Owner })

	sort.Slice(nw.Portfolios, func(i, j int) bool {
		if nw.Portfolios[i].Name != nw.Portfolios[j].Name {
			return nw.Portfolios[i].Name < nw.Portfolios[j].Name
		}
		return nw.Portfolios[i].ID < nw.Portfolios[j].ID
	})

	nw.EssentialMonthlyExpenses = e.essentialMonthlyExpenses(items)
	if !nw.EssentialMonthlyExpenses.IsPositive() {
		nw.EssentialMonthlyExpenses = e.opts.EssentialFallback
		nw.EssentialFallbackUsed = true
	}
	if nw.EssentialMonthlyExpenses.IsPositive() {
		nw.MonthsCovered = nw.EmergencyFundTotal.Div(nw.EssentialMonthlyExpenses)
	} else {
		nw.MonthsCovered = decimal.Zero
	}

	return nw
}

// essentialMonthlyExpenses sums expense-type items whose group is in the
// configured allow-list. The list is the single source of truth for every
// view; no per-view variants.
func (e *Engine) essentialMonthlyExpenses(items []core.BudgetLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.CategoryType != core.CategoryExpense {
			continue
		}
		if _, ok := e.essentialGroups[item.GroupLabel()]; ok {
			total = total.Add(item.Amount)
		}
	}
	return total
}

func (e *Engine) isDependentOwned(p core.Portfolio) bool {
	if e.opts.DependentOwner == "" {
		return false
	}
	return strings.Contains(strings.ToLower(p.OwnerName), strings.ToLower(e.opts.DependentOwner))
}

func isEmergencyFund(p core.Portfolio) bool {
	if p.PortfolioType == core.PortfolioEmergency {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), "emergency")
}

func ownerLabel(ownerName string) string {
	if strings.TrimSpace(ownerName) == "" {
		return "Family"
	}
	return ownerName
}
