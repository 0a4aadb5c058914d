// This file implements the Strategy Pattern for deciding whether an expense
// occurrence is settled. Fixed transactions are settled per month; one-off
// transactions carry a single flag.

package ledger

import (
	"fmt"

	"financas/internal/core"
)

// Recurrence classifies how a transaction repeats.
type Recurrence string

const (
	OneOff Recurrence = "one-off"
	Fixed  Recurrence = "fixed"
)

// RecurrenceOf returns the recurrence kind of t.
func RecurrenceOf(t core.Transaction) Recurrence {
	if t.IsFixed {
		return Fixed
	}
	return OneOff
}

// SettlementChecker is the strategy interface for settlement lookups.
type SettlementChecker interface {
	// IsSettled returns true if the occurrence of t in the month identified by
	// key has been marked paid.
	IsSettled(t core.Transaction, key core.MonthKey) bool
}

// FixedSettlement looks the month up in the transaction's paid months.
type FixedSettlement struct{}

func (FixedSettlement) IsSettled(t core.Transaction, key core.MonthKey) bool {
	return t.PaidMonths.Has(key)
}

// OneOffSettlement reads the transaction's paid flag; the month is irrelevant.
type OneOffSettlement struct{}

func (OneOffSettlement) IsSettled(t core.Transaction, _ core.MonthKey) bool {
	return t.IsPaid
}

var settlementStrategies = map[Recurrence]SettlementChecker{
	Fixed:  FixedSettlement{},
	OneOff: OneOffSettlement{},
}

// GetSettlementChecker returns the checker registered for a recurrence kind.
func GetSettlementChecker(r Recurrence) (SettlementChecker, error) {
	checker, ok := settlementStrategies[r]
	if !ok {
		return nil, fmt.Errorf("unknown recurrence: %s", r)
	}
	return checker, nil
}

// Settled reports whether t is settled for the month identified by key.
func Settled(t core.Transaction, key core.MonthKey) bool {
	checker, err := GetSettlementChecker(RecurrenceOf(t))
	if err != nil {
		return false
	}
	return checker.IsSettled(t, key)
}
