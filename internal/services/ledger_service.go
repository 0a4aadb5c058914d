package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/log"
	"financas/internal/metrics"
	"financas/internal/ports"

	"golang.org/x/sync/errgroup"
)

// Household is the member list with the base income derived from it.
type Household struct {
	Members    []core.Member `json:"members"`
	BaseIncome core.Money    `json:"baseIncome"`
}

// BaseIncome is the sum of the members' declared incomes.
func BaseIncome(members []core.Member) core.Money {
	var total core.Money
	for _, m := range members {
		total = total.Add(m.Income)
	}
	return total
}

// LedgerService feeds store snapshots into the ledger aggregator.
type LedgerService struct {
	transactions ports.TransactionReader
	household    ports.HouseholdReader
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewLedgerService(transactions ports.TransactionReader, household ports.HouseholdReader, m *metrics.Metrics) *LedgerService {
	return &LedgerService{
		transactions: transactions,
		household:    household,
		metrics:      m,
		now:          time.Now,
	}
}

// snapshot loads transactions and members concurrently.
func (s *LedgerService) snapshot(ctx context.Context) ([]core.Transaction, []core.Member, error) {
	var (
		txs     []core.Transaction
		members []core.Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.transactions.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		members, err = s.household.ListMembers(gctx)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return txs, members, nil
}

// Statement computes the statement for month from the current snapshot.
func (s *LedgerService) Statement(ctx context.Context, month core.Month) (ledger.Statement, error) {
	txs, members, err := s.snapshot(ctx)
	if err != nil {
		return ledger.Statement{}, err
	}
	st, err := ledger.Summarize(txs, BaseIncome(members), month)
	s.metrics.IncrAggregation("statement", err)
	if err != nil {
		slog.WarnContext(ctx, "Statement aggregation failed", "month", month.Key(), "error", err)
		return ledger.Statement{}, err
	}
	// The gauge tracks the current month only; history queries leave it alone.
	if month == core.MonthOfTime(s.now()) {
		s.metrics.SetHealthScore(st.Stats.HealthScore)
	}
	slog.DebugContext(ctx, "Statement computed",
		log.FieldMonthKey, month.Key(),
		"transactions", len(st.Transactions),
		log.FieldHealthScore, st.Stats.RoundedScore())
	return st, nil
}

// Trend returns the last months points ending at month.
func (s *LedgerService) Trend(ctx context.Context, month core.Month, months int) ([]ledger.TrendPoint, error) {
	txs, members, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	points, err := ledger.Trend(txs, BaseIncome(members), month, months)
	s.metrics.IncrAggregation("trend", err)
	if err != nil {
		return nil, err
	}
	return points, nil
}

// Recent returns the n most recent transactions.
func (s *LedgerService) Recent(ctx context.Context, n int) ([]core.Transaction, error) {
	txs, err := s.transactions.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	recent, err := ledger.Recent(txs, n)
	s.metrics.IncrAggregation("recent", err)
	return recent, err
}

func (s *LedgerService) Household(ctx context.Context) (Household, error) {
	members, err := s.household.ListMembers(ctx)
	if err != nil {
		return Household{}, fmt.Errorf("list members: %w", err)
	}
	if members == nil {
		members = []core.Member{}
	}
	return Household{Members: members, BaseIncome: BaseIncome(members)}, nil
}
