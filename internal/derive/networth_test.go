package derive

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nisrj10/yieldly/internal/core"
)

func portfolio(name string, typ core.PortfolioType, owner string, value int64) core.Portfolio {
	return core.Portfolio{
		Name:          name,
		PortfolioType: typ,
		OwnerName:     owner,
		CurrentValue:  decimal.NewFromInt(value),
		IsActive:      true,
	}
}

func TestResolveNetWorthBuckets(t *testing.T) {
	e := New(Options{DependentOwner: "Maya"})
	portfolios := []core.Portfolio{
		portfolio("Stocks ISA", core.PortfolioISA, "Alex", 20000),
		portfolio("Workplace pension", core.PortfolioPension, "Alex", 45000),
		portfolio("Junior ISA", core.PortfolioJISA, "Maya", 5000),
		portfolio("Rainy day", core.PortfolioEmergency, "", 9000),
		portfolio("Holiday pot", core.PortfolioPot, "Alex", 1500),
	}

	nw := e.ResolveNetWorth(portfolios, nil)

	assert.True(t, nw.TotalInvestments.Equal(decimal.NewFromInt(70000)))
	assert.True(t, nw.TotalSavings.Equal(decimal.NewFromInt(9000)))
	assert.True(t, nw.TotalPots.Equal(decimal.NewFromInt(1500)))
	assert.True(t, nw.FamilyTotal.Equal(decimal.NewFromInt(80500)))
	assert.True(t, nw.DependentNetWorth.Equal(decimal.NewFromInt(5000)))
	assert.True(t, nw.PrimaryNetWorth.Equal(decimal.NewFromInt(75500)))

	require.Len(t, nw.ByOwner, 3)
	// Owners come back sorted; the blank owner is labelled Family.
	assert.Equal(t, "Alex", nw.ByOwner[0].Owner)
	assert.Equal(t, "Family", nw.ByOwner[1].Owner)
	assert.Equal(t, "Maya", nw.ByOwner[2].Owner)
	assert.True(t, nw.ByOwner[0].Total.Equal(decimal.NewFromInt(66500)))
}

func TestResolveNetWorthIgnoresInactive(t *testing.T) {
	e := New(Options{})
	closed := portfolio("Old ISA", core.PortfolioISA, "Alex", 12000)
	closed.IsActive = false

	nw := e.ResolveNetWorth([]core.Portfolio{closed}, nil)

	assert.True(t, nw.FamilyTotal.IsZero())
	assert.Empty(t, nw.Portfolios)
}

func TestEmergencyFundCoverage(t *testing.T) {
	e := New(Options{EssentialGroups: []string{"Housing", "Transport"}})
	portfolios := []core.Portfolio{
		portfolio("Rainy day", core.PortfolioEmergency, "Alex", 6500),
	}
	items := []core.BudgetLineItem{
		{Name: "Mortgage", Group: "Housing", CategoryType: core.CategoryExpense, SplitType: core.SplitShared, Amount: decimal.NewFromInt(1000)},
		{Name: "Car", Group: "Transport", CategoryType: core.CategoryExpense, SplitType: core.SplitShared, Amount: decimal.NewFromInt(300)},
		// Non-essential and non-expense items must not widen the denominator.
		{Name: "Eating out", Group: "Fun", CategoryType: core.CategoryExpense, SplitType: core.SplitShared, Amount: decimal.NewFromInt(400)},
		{Name: "Travel fund", Group: "Housing", CategoryType: core.CategorySaving, SplitType: core.SplitShared, Amount: decimal.NewFromInt(250)},
	}

	nw := e.ResolveNetWorth(portfolios, items)

	assert.True(t, nw.EssentialMonthlyExpenses.Equal(decimal.NewFromInt(1300)))
	assert.False(t, nw.EssentialFallbackUsed)
	assert.True(t, nw.MonthsCovered.Equal(decimal.NewFromInt(5)), "months covered = %s", nw.MonthsCovered)
}

// With no items in any essential group the configured fallback estimate
// keeps coverage defined.
func TestEmergencyFundCoverageFallback(t *testing.T) {
	e := New(Options{EssentialFallback: decimal.NewFromInt(2000)})
	portfolios := []core.Portfolio{
		portfolio("Rainy day", core.PortfolioEmergency, "Alex", 8000),
	}

	nw := e.ResolveNetWorth(portfolios, nil)

	assert.True(t, nw.EssentialFallbackUsed)
	assert.True(t, nw.EssentialMonthlyExpenses.Equal(decimal.NewFromInt(2000)))
	assert.True(t, nw.MonthsCovered.Equal(decimal.NewFromInt(4)))
}

// Accounts created before the emergency type existed are picked up by
// name.
func TestEmergencyFundDetectedByName(t *testing.T) {
	e := New(Options{})
	portfolios := []core.Portfolio{
		portfolio("Emergency Fund", core.PortfolioSavings, "Alex", 3000),
		portfolio("Rainy day", core.PortfolioEmergency, "Alex", 2000),
		portfolio("Holiday savings", core.PortfolioSavings, "Alex", 1000),
	}

	nw := e.ResolveNetWorth(portfolios, nil)

	assert.True(t, nw.EmergencyFundTotal.Equal(decimal.NewFromInt(5000)))
}

func TestPortfolioReturnsGuarded(t *testing.T) {
	p := core.Portfolio{
		Name:          "New ISA",
		PortfolioType: core.PortfolioISA,
		CurrentValue:  decimal.NewFromInt(500),
		// No initial or year-start value recorded yet.
		IsActive: true,
	}
	e := New(Options{})

	nw := e.ResolveNetWorth([]core.Portfolio{p}, nil)

	require.Len(t, nw.Portfolios, 1)
	assert.True(t, nw.Portfolios[0].AllTimeReturnPercent.IsZero())
	assert.True(t, nw.Portfolios[0].YTDReturnPercent.IsZero())
}
