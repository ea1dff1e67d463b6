package assistant

import (
	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/derive"
)

// Health check thresholds: months of essential spending the emergency
// fund should cover, and the savings rate below which we nudge.
var (
	emergencyHealthyMonths = decimal.NewFromInt(6)
	emergencyMinimumMonths = decimal.NewFromInt(3)
	savingsRateTarget      = decimal.NewFromInt(20)
)

const (
	StatusHealthy   = "healthy"
	StatusWarning   = "warning"
	StatusAttention = "needs_attention"
)

// HealthSignal is one scored dimension of the household's finances.
type HealthSignal struct {
	Name           string `json:"name"`
	Status         string `json:"status"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation,omitempty"`
}

// HealthReport is the condensed verdict returned by the health check
// tool: an overall status, a 0-100 score, and the signals behind them.
type HealthReport struct {
	Status          string         `json:"status"`
	Score           int            `json:"score"`
	Signals         []HealthSignal `json:"signals"`
	Recommendations []string       `json:"recommendations,omitempty"`
}

// HealthCheck scores a derived report on emergency cover, savings rate,
// and budget balance. Overall status is the worst individual signal;
// the score starts at 100 and loses points per degraded signal.
func HealthCheck(r derive.Report) HealthReport {
	signals := []HealthSignal{
		emergencySignal(r),
		savingsRateSignal(r),
		bufferSignal(r),
		cashFlowSignal(r),
	}

	out := HealthReport{Status: StatusHealthy, Score: 100, Signals: signals}
	for _, s := range signals {
		if worse(s.Status, out.Status) {
			out.Status = s.Status
		}
		switch s.Status {
		case StatusWarning:
			out.Score -= 15
		case StatusAttention:
			out.Score -= 30
		}
		if s.Recommendation != "" {
			out.Recommendations = append(out.Recommendations, s.Recommendation)
		}
	}
	if out.Score < 0 {
		out.Score = 0
	}
	return out
}

func emergencySignal(r derive.Report) HealthSignal {
	months := r.NetWorth.MonthsCovered
	s := HealthSignal{Name: "emergency_fund"}
	switch {
	case months.GreaterThanOrEqual(emergencyHealthyMonths):
		s.Status = StatusHealthy
		s.Message = "Emergency fund covers " + months.StringFixed(1) + " months of essential spending."
	case months.GreaterThanOrEqual(emergencyMinimumMonths):
		s.Status = StatusWarning
		s.Message = "Emergency fund covers " + months.StringFixed(1) + " months of essential spending."
		s.Recommendation = "Grow the emergency fund towards 6 months of essential spending."
	default:
		s.Status = StatusAttention
		s.Message = "Emergency fund covers only " + months.StringFixed(1) + " months of essential spending."
		s.Recommendation = "Prioritise the emergency fund until it covers at least 3 months of essential spending."
	}
	return s
}

func savingsRateSignal(r derive.Report) HealthSignal {
	rate := r.CashFlow.SavingsRate
	s := HealthSignal{Name: "savings_rate"}
	if rate.GreaterThanOrEqual(savingsRateTarget) {
		s.Status = StatusHealthy
		s.Message = "Saving " + rate.StringFixed(1) + "% of the available pot."
	} else {
		s.Status = StatusWarning
		s.Message = "Saving " + rate.StringFixed(1) + "% of the available pot."
		s.Recommendation = "Raise the savings rate towards 20% of the available pot."
	}
	return s
}

func bufferSignal(r derive.Report) HealthSignal {
	buffer := r.Budget.MonthlyBuffer
	s := HealthSignal{Name: "monthly_buffer"}
	if buffer.IsNegative() {
		s.Status = StatusAttention
		s.Message = "The budget allocates " + buffer.Neg().StringFixed(2) + " more than the declared income."
		s.Recommendation = "Trim allocations or raise declared income so the budget balances."
	} else {
		s.Status = StatusHealthy
		s.Message = "The budget leaves a " + buffer.StringFixed(2) + " unallocated buffer."
	}
	return s
}

func cashFlowSignal(r derive.Report) HealthSignal {
	s := HealthSignal{Name: "cash_flow"}
	if r.CashFlow.OverBudget {
		s.Status = StatusAttention
		s.Message = "Planned outgoings exceed the available pot by " + r.CashFlow.Remaining.Neg().StringFixed(2) + "."
		s.Recommendation = "Cut planned outgoings until they fit inside the available pot."
	} else {
		s.Status = StatusHealthy
		s.Message = r.CashFlow.Remaining.StringFixed(2) + " of the available pot remains after planned outgoings."
	}
	return s
}

// worse reports whether status a ranks below status b.
func worse(a, b string) bool {
	return rank(a) > rank(b)
}

func rank(s string) int {
	switch s {
	case StatusAttention:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}
