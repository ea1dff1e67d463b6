package derive

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/core"
)

// Categories whose income-typed transactions are internal movements
// between household accounts, not real earnings.
var internalIncomeCategories = map[string]struct{}{
	"Internal Transfers": {},
	"Shopping":           {},
}

// MonthSpend is income, expenses and the resulting savings for one
// calendar month of transaction history.
type MonthSpend struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Label       string          `json:"label"`
	Income      decimal.Decimal `json:"income"`
	Expenses    decimal.Decimal `json:"expenses"`
	Savings     decimal.Decimal `json:"savings"`
	SavingsRate decimal.Decimal `json:"savings_rate"`
}

// MonthlySpending buckets transactions into the `months` calendar months
// ending at asOf, newest first. Income-typed transactions in internal
// categories are skipped so account shuffling does not inflate earnings;
// transfers never count on either side. A month with no income reports a
// zero savings rate rather than a division error.
func MonthlySpending(txns []core.Transaction, asOf time.Time, months int) []MonthSpend {
	if months < 1 {
		months = 1
	}

	out := make([]MonthSpend, 0, months)
	for i := 0; i < months; i++ {
		total := asOf.Year()*12 + int(asOf.Month()) - 1 - i
		year, month := total/12, time.Month(total%12+1)

		m := MonthSpend{
			Year:     year,
			Month:    int(month),
			Label:    time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006"),
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
		}
		for _, t := range txns {
			if t.Date.Year() != year || t.Date.Month() != month {
				continue
			}
			switch t.Type {
			case core.TransactionIncome:
				if _, internal := internalIncomeCategories[t.Category]; internal {
					continue
				}
				m.Income = m.Income.Add(t.Amount)
			case core.TransactionExpense:
				m.Expenses = m.Expenses.Add(t.Amount)
			}
		}
		m.Savings = m.Income.Sub(m.Expenses)
		if m.Income.IsPositive() {
			m.SavingsRate = m.Savings.Div(m.Income).Mul(decimal.NewFromInt(100)).Round(1)
		} else {
			m.SavingsRate = decimal.Zero
		}
		out = append(out, m)
	}
	return out
}
