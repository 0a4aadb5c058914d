package ledger

import (
	"financas/internal/core"

	"github.com/shopspring/decimal"
)

// HealthStatus bands a health score for display.
type HealthStatus string

const (
	Excellent HealthStatus = "excellent"
	Warning   HealthStatus = "warning"
	Critical  HealthStatus = "critical"
)

const (
	excellentFloor = 30
	warningFloor   = 10
)

var hundred = decimal.NewFromInt(100)

// ExpenseRatio is spent / income, or 1 when there is no income to spend.
func ExpenseRatio(income, spent core.Money) float64 {
	return expenseRatio(income, spent).InexactFloat64()
}

func expenseRatio(income, spent core.Money) decimal.Decimal {
	if income.Cents <= 0 {
		return decimal.NewFromInt(1)
	}
	return spent.Decimal().Div(income.Decimal())
}

// HealthScore maps the expense ratio onto 0..100, where 100 means nothing was
// spent and 0 means everything (or more) was.
func HealthScore(effectiveIncome, paidTotal core.Money) float64 {
	score := hundred.Sub(expenseRatio(effectiveIncome, paidTotal).Mul(hundred))
	if score.IsNegative() {
		return 0
	}
	if score.GreaterThan(hundred) {
		return 100
	}
	return score.InexactFloat64()
}

// Status returns the band a score falls into.
func Status(score float64) HealthStatus {
	switch {
	case score >= excellentFloor:
		return Excellent
	case score >= warningFloor:
		return Warning
	default:
		return Critical
	}
}

// RoundScore rounds a score half away from zero for display (66.67 -> 67).
func RoundScore(score float64) int {
	return int(decimal.NewFromFloat(score).Round(0).IntPart())
}
