package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PortfolioISA       PortfolioType = "isa"
	PortfolioJISA      PortfolioType = "jisa"
	PortfolioPension   PortfolioType = "pension"
	PortfolioGIA       PortfolioType = "gia"
	PortfolioSavings   PortfolioType = "savings"
	PortfolioEmergency PortfolioType = "emergency"
	PortfolioPot       PortfolioType = "pot"
	PortfolioOther     PortfolioType = "other"
)

type (
	PortfolioType string

	// Portfolio is one investment or savings account tracked by the
	// household. Current value is updated manually; each update writes
	// a monthly Snapshot.
	Portfolio struct {
		ID             int64
		Name           string
		PortfolioType  PortfolioType
		RiskLevel      string // "1".."5" or "none"
		Provider       string
		InitialValue   decimal.Decimal
		StartDate      time.Time
		CurrentValue   decimal.Decimal
		YearStartValue decimal.Decimal
		OwnerName      string
		Notes          string
		IsActive       bool
	}

	// Snapshot is the recorded value of a portfolio for one month.
	Snapshot struct {
		ID          int64
		PortfolioID int64
		Year        int
		Month       int // 1-12
		Value       decimal.Decimal
		Notes       string
		CreatedAt   time.Time
	}

	// SavingsGoal tracks progress towards a target amount.
	SavingsGoal struct {
		ID            int64
		Name          string
		TargetAmount  decimal.Decimal
		CurrentAmount decimal.Decimal
		TargetDate    time.Time // zero when open-ended
		IsCompleted   bool
		CreatedAt     time.Time
	}
)

var ErrInvalidPortfolioType = errors.New("invalid portfolio type")

func (p PortfolioType) Validate() error {
	switch p {
	case PortfolioISA, PortfolioJISA, PortfolioPension, PortfolioGIA,
		PortfolioSavings, PortfolioEmergency, PortfolioPot, PortfolioOther:
		return nil
	default:
		return ErrInvalidPortfolioType
	}
}

// IsInvestment reports whether the portfolio type counts towards the
// investment bucket of the net-worth breakdown.
func (p PortfolioType) IsInvestment() bool {
	switch p {
	case PortfolioISA, PortfolioJISA, PortfolioPension, PortfolioGIA:
		return true
	default:
		return false
	}
}

// IsSavings reports whether the portfolio type counts towards the savings
// bucket of the net-worth breakdown.
func (p PortfolioType) IsSavings() bool {
	return p == PortfolioSavings || p == PortfolioEmergency
}

func (p Portfolio) Validate() error {
	if len(strings.TrimSpace(p.Name)) == 0 {
		return ErrEmptyName
	}
	if err := p.PortfolioType.Validate(); err != nil {
		return err
	}
	if p.InitialValue.IsNegative() || p.CurrentValue.IsNegative() || p.YearStartValue.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// TotalGainLoss is the absolute change since the account was opened.
func (p Portfolio) TotalGainLoss() decimal.Decimal {
	return p.CurrentValue.Sub(p.InitialValue)
}

// TotalGainLossPercent is the all-time return, 0 when no initial value
// was recorded.
func (p Portfolio) TotalGainLossPercent() decimal.Decimal {
	if !p.InitialValue.IsPositive() {
		return decimal.Zero
	}
	return p.TotalGainLoss().Div(p.InitialValue).Mul(hundred)
}

// YTDGainLoss is the absolute change since the start of the calendar year.
func (p Portfolio) YTDGainLoss() decimal.Decimal {
	return p.CurrentValue.Sub(p.YearStartValue)
}

// YTDGainLossPercent is the year-to-date return, 0 when no year-start
// value was recorded.
func (p Portfolio) YTDGainLossPercent() decimal.Decimal {
	if !p.YearStartValue.IsPositive() {
		return decimal.Zero
	}
	return p.YTDGainLoss().Div(p.YearStartValue).Mul(hundred)
}

func (s Snapshot) Validate() error {
	if s.Month < 1 || s.Month > 12 {
		return ErrInvalidMonth
	}
	if s.Value.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyName
	}
	if !g.TargetAmount.IsPositive() {
		return errors.New("target amount must be positive")
	}
	if g.CurrentAmount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// ProgressPercent is how far the goal has come, capped at 100.
func (g SavingsGoal) ProgressPercent() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	p := g.CurrentAmount.Div(g.TargetAmount).Mul(hundred)
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// Remaining is the amount still to save; never negative.
func (g SavingsGoal) Remaining() decimal.Decimal {
	r := g.TargetAmount.Sub(g.CurrentAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}
