package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"financas/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

// dsn enables foreign keys (paid months cascade with their transaction) and
// waits on a locked database instead of failing immediately.
func dsn(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const selectTransaction = `
SELECT id, title, amount_cents, category, emoji, anchor_date, spender_id, type,
       is_fixed, is_paid, installment_current, installment_total, recurring_group_id, is_deleted
FROM transactions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t               core.Transaction
		typ             string
		current, total  sql.NullInt64
		isFixed, isPaid bool
		isDeleted       bool
	)
	err := row.Scan(&t.ID, &t.Title, &t.Amount.Cents, &t.Category, &t.Emoji, &t.Date, &t.SpenderID, &typ,
		&isFixed, &isPaid, &current, &total, &t.RecurringGroupID, &isDeleted)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.IsFixed = isFixed
	t.IsPaid = isPaid
	t.IsDeleted = isDeleted
	if current.Valid && total.Valid {
		t.Installments = &core.Installments{Current: int(current.Int64), Total: int(total.Int64)}
	}
	return t, nil
}

// ListTransactions implements ports.TransactionReader
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransaction+` WHERE is_deleted = 0 ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	index := map[string]int{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		index[t.ID] = len(out)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	paid, err := r.db.QueryContext(ctx, `
SELECT p.transaction_id, p.month_key
FROM transaction_paid_months p
JOIN transactions t ON t.id = p.transaction_id
WHERE t.is_deleted = 0`)
	if err != nil {
		return nil, fmt.Errorf("list paid months: %w", err)
	}
	defer paid.Close()

	for paid.Next() {
		var id, key string
		if err := paid.Scan(&id, &key); err != nil {
			return nil, fmt.Errorf("scan paid month: %w", err)
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		if out[i].PaidMonths == nil {
			out[i].PaidMonths = core.NewMonthSet()
		}
		out[i].PaidMonths[core.MonthKey(key)] = struct{}{}
	}
	if err := paid.Err(); err != nil {
		return nil, fmt.Errorf("iterate paid months: %w", err)
	}

	return out, nil
}

// GetTransaction implements ports.TransactionGetter
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx, selectTransaction+` WHERE id = ? AND is_deleted = 0`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT month_key FROM transaction_paid_months WHERE transaction_id = ?`, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get paid months: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return core.Transaction{}, fmt.Errorf("scan paid month: %w", err)
		}
		t.PaidMonths = t.PaidMonths.With(core.MonthKey(key))
	}
	return t, rows.Err()
}

// SaveTransaction implements ports.TransactionWriter. The row and its paid
// months are replaced in a single database transaction.
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var current, total sql.NullInt64
	if t.Installments != nil {
		current = sql.NullInt64{Int64: int64(t.Installments.Current), Valid: true}
		total = sql.NullInt64{Int64: int64(t.Installments.Total), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO transactions (id, title, amount_cents, category, emoji, anchor_date, spender_id, type,
    is_fixed, is_paid, installment_current, installment_total, recurring_group_id, is_deleted, seq)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM transactions))
ON CONFLICT(id) DO UPDATE SET
    title = excluded.title,
    amount_cents = excluded.amount_cents,
    category = excluded.category,
    emoji = excluded.emoji,
    anchor_date = excluded.anchor_date,
    spender_id = excluded.spender_id,
    type = excluded.type,
    is_fixed = excluded.is_fixed,
    is_paid = excluded.is_paid,
    installment_current = excluded.installment_current,
    installment_total = excluded.installment_total,
    recurring_group_id = excluded.recurring_group_id,
    is_deleted = excluded.is_deleted,
    updated_at = CURRENT_TIMESTAMP`,
		t.ID, t.Title, t.Amount.Cents, t.Category, t.Emoji, t.Date, t.SpenderID, string(t.Type),
		t.IsFixed, t.IsPaid, current, total, t.RecurringGroupID, t.IsDeleted)
	if err != nil {
		return fmt.Errorf("upsert transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM transaction_paid_months WHERE transaction_id = ?`, t.ID); err != nil {
		return fmt.Errorf("clear paid months: %w", err)
	}
	for _, key := range t.PaidMonths.Keys() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transaction_paid_months (transaction_id, month_key) VALUES (?, ?)`, t.ID, string(key)); err != nil {
			return fmt.Errorf("insert paid month %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"amount_cents", t.Amount.Cents,
		"date", t.Date,
		"fixed", t.IsFixed)
	return nil
}

// DeleteTransaction implements ports.TransactionWriter
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET is_deleted = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Transaction soft-deleted", "id", id)
	return nil
}

// ListMembers implements ports.HouseholdReader
func (r *SQLiteRepository) ListMembers(ctx context.Context) ([]core.Member, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, income_cents FROM members ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []core.Member
	for rows.Next() {
		var m core.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Income.Cents); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpsertMember creates or updates a household member.
func (r *SQLiteRepository) UpsertMember(ctx context.Context, m core.Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO members (id, name, income_cents) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET name = excluded.name, income_cents = excluded.income_cents`,
		m.ID, m.Name, m.Income.Cents)
	if err != nil {
		return fmt.Errorf("upsert member %s: %w", m.ID, err)
	}
	return nil
}
