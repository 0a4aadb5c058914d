package ports

import (
	"context"

	"financas/internal/core"
	"financas/internal/ledger"
)

// Ports for outbound adapters.
type (
	// TransactionReader returns the current snapshot of live (not deleted)
	// transactions. Callers may keep the returned slice; stores must not
	// mutate it afterwards.
	TransactionReader interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	TransactionGetter interface {
		// GetTransaction returns core.ErrNotFound for unknown or deleted ids.
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	}

	TransactionWriter interface {
		// SaveTransaction inserts or replaces the transaction with the same id.
		SaveTransaction(ctx context.Context, t core.Transaction) error
		// DeleteTransaction soft-deletes; the record stops appearing in reads.
		DeleteTransaction(ctx context.Context, id string) error
	}

	// HouseholdReader lists the members whose incomes make up the base income.
	HouseholdReader interface {
		ListMembers(ctx context.Context) ([]core.Member, error)
	}

	// StatementWriter publishes a computed monthly statement somewhere outside
	// the application, e.g. a spreadsheet tab.
	StatementWriter interface {
		WriteStatement(ctx context.Context, st ledger.Statement) error
	}

	// Store is everything a persistence backend provides.
	Store interface {
		TransactionReader
		TransactionGetter
		TransactionWriter
		HouseholdReader
	}
)
