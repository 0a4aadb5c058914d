package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/metrics"
	"financas/internal/ports"
)

// StatementSource computes the statement for a month from the current store
// snapshot. *services.LedgerService satisfies it.
type StatementSource interface {
	Statement(ctx context.Context, month core.Month) (ledger.Statement, error)
}

// StatementWorker keeps the mirrored monthly statements up to date.
type StatementWorker struct {
	source  StatementSource
	writer  ports.StatementWriter
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewStatementWorker(source StatementSource, writer ports.StatementWriter, m *metrics.Metrics) *StatementWorker {
	return &StatementWorker{
		source:  source,
		writer:  writer,
		metrics: m,
		now:     time.Now,
	}
}

// HandleTransactionChanged rewrites the statement of the month named in the
// message. A fixed transaction also shows up in every later month, so the
// current month is refreshed as well when it differs.
func (w *StatementWorker) HandleTransactionChanged(ctx context.Context, msg *amqp.TransactionChangedMessage) error {
	month, err := msg.Month()
	if err != nil {
		return fmt.Errorf("message month: %w", err)
	}

	slog.InfoContext(ctx, "Processing transaction change",
		"id", msg.ID,
		"action", msg.Action,
		"month", month.Key())

	if err := w.RefreshMonth(ctx, month); err != nil {
		return err
	}

	current := core.MonthOfTime(w.now())
	if current.Compare(month) > 0 {
		if err := w.RefreshMonth(ctx, current); err != nil {
			return err
		}
	}
	return nil
}

// RefreshMonth recomputes and writes one month's statement.
func (w *StatementWorker) RefreshMonth(ctx context.Context, month core.Month) error {
	st, err := w.source.Statement(ctx, month)
	if err != nil {
		return fmt.Errorf("compute statement %s: %w", month.Key(), err)
	}

	if err := w.writer.WriteStatement(ctx, st); err != nil {
		w.metrics.IncrStatementWrite(false)
		return fmt.Errorf("write statement %s: %w", month.Key(), err)
	}
	w.metrics.IncrStatementWrite(true)

	slog.InfoContext(ctx, "Statement written",
		"month", month.Key(),
		"transactions", len(st.Transactions),
		"health_score", st.Stats.RoundedScore())
	return nil
}

// RefreshCurrentMonth is the periodic backstop for lost messages.
func (w *StatementWorker) RefreshCurrentMonth(ctx context.Context) error {
	return w.RefreshMonth(ctx, core.MonthOfTime(w.now()))
}

// Run refreshes the current month every interval until ctx ends.
func (w *StatementWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.RefreshCurrentMonth(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic statement refresh failed", "error", err)
			}
		}
	}
}
