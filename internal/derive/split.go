package derive

import (
	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/core"
)

var hundred = decimal.NewFromInt(100)

// SplitAmounts is a line item's cost divided between the two household
// members. Primary + Partner always equals the item amount.
type SplitAmounts struct {
	Primary decimal.Decimal `json:"primary"`
	Partner decimal.Decimal `json:"partner"`
}

// Split divides a line item's amount according to its split rule.
//
// For shared items the partner amount is the remainder after the primary
// share, not an independent multiplication, so the two halves always sum
// back to the original amount. Out-of-range share percentages are the
// write boundary's problem; they are clamped here only to keep bad stored
// data from producing negative shares.
func Split(item core.BudgetLineItem) SplitAmounts {
	amount := item.Amount
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	switch item.SplitType {
	case core.SplitPrimaryOnly:
		return SplitAmounts{Primary: amount, Partner: decimal.Zero}
	case core.SplitPartnerOnly:
		return SplitAmounts{Primary: decimal.Zero, Partner: amount}
	default: // shared
		pct := item.PrimarySharePercent
		if pct.IsNegative() {
			pct = decimal.Zero
		} else if pct.GreaterThan(hundred) {
			pct = hundred
		}
		primary := amount.Mul(pct).Div(hundred)
		return SplitAmounts{Primary: primary, Partner: amount.Sub(primary)}
	}
}
