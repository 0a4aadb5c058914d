package ledger

import (
	"sort"

	"financas/internal/core"
)

// Stats are the derived figures for one month. They are recomputed on every call.
type Stats struct {
	MonthKey        core.MonthKey `json:"monthKey"`
	BaseIncome      core.Money    `json:"baseIncome"`
	EffectiveIncome core.Money    `json:"effectiveIncome"`
	PaidTotal       core.Money    `json:"paidTotal"`
	PendingTotal    core.Money    `json:"pendingTotal"`
	Balance         core.Money    `json:"balance"`
	ExpenseRatio    float64       `json:"expenseRatio"`
	HealthScore     float64       `json:"healthScore"`
	Status          HealthStatus  `json:"status"`
}

// RoundedScore is the health score as shown to users.
func (s Stats) RoundedScore() int {
	return RoundScore(s.HealthScore)
}

// ExpenseTotal is the sum of paid and pending expenses.
func (s Stats) ExpenseTotal() core.Money {
	return s.PaidTotal.Add(s.PendingTotal)
}

// MonthlyStats computes the month's totals from the output of
// RelevantTransactions for the same month. Pending expenses do not reduce the
// balance: it reflects cash actually committed.
func MonthlyStats(relevant []core.Transaction, baseIncome core.Money, key core.MonthKey) Stats {
	s := Stats{MonthKey: key, BaseIncome: baseIncome, EffectiveIncome: baseIncome}
	for _, t := range relevant {
		switch t.Type {
		case core.Revenue:
			s.EffectiveIncome = s.EffectiveIncome.Add(t.Amount)
		case core.Expense:
			if Settled(t, key) {
				s.PaidTotal = s.PaidTotal.Add(t.Amount)
			} else {
				s.PendingTotal = s.PendingTotal.Add(t.Amount)
			}
		}
	}
	s.Balance = s.EffectiveIncome.Sub(s.PaidTotal)
	s.ExpenseRatio = ExpenseRatio(s.EffectiveIncome, s.PaidTotal)
	s.HealthScore = HealthScore(s.EffectiveIncome, s.PaidTotal)
	s.Status = Status(s.HealthScore)
	return s
}

// Statement is everything a monthly view needs: the relevant transactions,
// their totals and the expense breakdowns.
type Statement struct {
	Month        core.Month            `json:"month"`
	Transactions []core.Transaction    `json:"transactions"`
	Stats        Stats                 `json:"stats"`
	ByCategory   []core.CategoryAmount `json:"byCategory"`
	BySpender    []core.SpenderAmount  `json:"bySpender"`
}

// Summarize selects the transactions relevant to target and aggregates them.
func Summarize(all []core.Transaction, baseIncome core.Money, target core.Month) (Statement, error) {
	relevant, err := RelevantTransactions(all, target)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		Month:        target,
		Transactions: relevant,
		Stats:        MonthlyStats(relevant, baseIncome, target.Key()),
		ByCategory:   byCategory(relevant),
		BySpender:    bySpender(relevant),
	}, nil
}

func byCategory(relevant []core.Transaction) []core.CategoryAmount {
	totals := map[string]int64{}
	for _, t := range relevant {
		if t.Type == core.Expense {
			totals[t.Category] += t.Amount.Cents
		}
	}
	out := make([]core.CategoryAmount, 0, len(totals))
	for name, cents := range totals {
		out = append(out, core.CategoryAmount{Name: name, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func bySpender(relevant []core.Transaction) []core.SpenderAmount {
	totals := map[string]int64{}
	for _, t := range relevant {
		if t.Type == core.Expense {
			totals[t.SpenderID] += t.Amount.Cents
		}
	}
	out := make([]core.SpenderAmount, 0, len(totals))
	for id, cents := range totals {
		out = append(out, core.SpenderAmount{SpenderID: id, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SpenderID < out[j].SpenderID })
	return out
}
