package derive

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/nisrj10/yieldly/internal/core"
)

func TestSplitShared(t *testing.T) {
	item := core.BudgetLineItem{
		Amount:              decimal.NewFromInt(100),
		SplitType:           core.SplitShared,
		PrimarySharePercent: decimal.NewFromInt(70),
	}

	got := Split(item)
	assert.True(t, got.Primary.Equal(decimal.NewFromInt(70)), "primary = %s", got.Primary)
	assert.True(t, got.Partner.Equal(decimal.NewFromInt(30)), "partner = %s", got.Partner)
}

func TestSplitExclusive(t *testing.T) {
	amount := decimal.NewFromInt(500)

	primaryOnly := Split(core.BudgetLineItem{Amount: amount, SplitType: core.SplitPrimaryOnly})
	assert.True(t, primaryOnly.Primary.Equal(amount))
	assert.True(t, primaryOnly.Partner.IsZero())

	partnerOnly := Split(core.BudgetLineItem{Amount: amount, SplitType: core.SplitPartnerOnly})
	assert.True(t, partnerOnly.Primary.IsZero())
	assert.True(t, partnerOnly.Partner.Equal(amount))
}

// The partner amount is computed by subtraction, so the two shares must
// recompose the original amount exactly even for awkward percentages.
func TestSplitConservation(t *testing.T) {
	cases := []struct {
		amount  string
		percent string
	}{
		{"100", "70"},
		{"99.99", "33.33"},
		{"1205", "63.43"},
		{"0.01", "50"},
		{"350", "0"},
		{"350", "100"},
		{"123.45", "66.67"},
	}

	for _, tc := range cases {
		item := core.BudgetLineItem{
			Amount:              decimal.RequireFromString(tc.amount),
			SplitType:           core.SplitShared,
			PrimarySharePercent: decimal.RequireFromString(tc.percent),
		}
		got := Split(item)
		sum := got.Primary.Add(got.Partner)
		assert.True(t, sum.Equal(item.Amount),
			"amount %s at %s%%: %s + %s = %s", tc.amount, tc.percent, got.Primary, got.Partner, sum)
	}
}

func TestSplitClampsBadStoredData(t *testing.T) {
	over := Split(core.BudgetLineItem{
		Amount:              decimal.NewFromInt(100),
		SplitType:           core.SplitShared,
		PrimarySharePercent: decimal.NewFromInt(150),
	})
	assert.True(t, over.Primary.Equal(decimal.NewFromInt(100)))
	assert.True(t, over.Partner.IsZero())

	negative := Split(core.BudgetLineItem{
		Amount:              decimal.NewFromInt(-10),
		SplitType:           core.SplitShared,
		PrimarySharePercent: decimal.NewFromInt(50),
	})
	assert.True(t, negative.Primary.IsZero())
	assert.True(t, negative.Partner.IsZero())
}
