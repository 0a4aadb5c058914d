package ledger

import (
	"errors"
	"fmt"

	"financas/internal/core"
)

const (
	// DefaultTrendMonths is the window the analytics view shows.
	DefaultTrendMonths = 6
	MaxTrendMonths     = 36
)

var ErrInvalidWindow = errors.New("trend window must be between 1 and 36 months")

// TrendPoint is one month of the income/expense history. Expenses here are
// gross (paid and pending alike), unlike Stats.PaidTotal.
type TrendPoint struct {
	Month       core.Month   `json:"month"`
	Income      core.Money   `json:"income"`
	Expenses    core.Money   `json:"expenses"`
	HealthScore float64      `json:"healthScore"`
	Status      HealthStatus `json:"status"`
}

// Trend returns one point per month for the months ending at target, oldest first.
func Trend(all []core.Transaction, baseIncome core.Money, target core.Month, months int) ([]TrendPoint, error) {
	if months < 1 || months > MaxTrendMonths {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, months)
	}
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("target month: %w", err)
	}
	if first := target.AddMonths(1 - months); first.Validate() != nil {
		return nil, fmt.Errorf("%w: %d months before %s", ErrInvalidWindow, months, target)
	}
	items, err := parseAnchors(all)
	if err != nil {
		return nil, err
	}

	points := make([]TrendPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		m := target.AddMonths(-i)
		p := TrendPoint{Month: m, Income: baseIncome}
		for _, it := range items {
			if !IsRelevant(it.tx, it.anchor, m) {
				continue
			}
			switch it.tx.Type {
			case core.Revenue:
				p.Income = p.Income.Add(it.tx.Amount)
			case core.Expense:
				p.Expenses = p.Expenses.Add(it.tx.Amount)
			}
		}
		p.HealthScore = HealthScore(p.Income, p.Expenses)
		p.Status = Status(p.HealthScore)
		points = append(points, p)
	}
	return points, nil
}
