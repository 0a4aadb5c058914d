// Package ledger decides which transactions belong to a month and derives the
// month's totals and health figures from them.
//
// Every function here is pure: callers pass the transaction snapshot and the
// target month explicitly, and nothing is cached between calls.
package ledger

import (
	"fmt"
	"sort"

	"financas/internal/core"
)

// anchored pairs a transaction with its parsed anchor date.
type anchored struct {
	tx     core.Transaction
	anchor core.Date
}

// parseAnchors parses every anchor up front so that a malformed record aborts
// the whole computation instead of silently dropping out of the totals.
func parseAnchors(all []core.Transaction) ([]anchored, error) {
	out := make([]anchored, len(all))
	for i, t := range all {
		d, err := t.Anchor()
		if err != nil {
			return nil, err
		}
		out[i] = anchored{tx: t, anchor: d}
	}
	return out, nil
}

// sortNewestFirst orders by anchor date, most recent first, keeping input order on ties.
func sortNewestFirst(items []anchored) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].anchor.After(items[j].anchor.Time)
	})
}

func unwrap(items []anchored) []core.Transaction {
	out := make([]core.Transaction, len(items))
	for i, it := range items {
		out[i] = it.tx
	}
	return out
}

// IsRelevant reports whether a transaction anchored at anchor counts toward target:
// either it falls inside target, or it is fixed and started at or before target.
func IsRelevant(t core.Transaction, anchor core.Date, target core.Month) bool {
	cmp := core.MonthOf(anchor).Compare(target)
	if cmp == 0 {
		return true
	}
	return t.IsFixed && cmp < 0
}

// RelevantTransactions returns the transactions that count toward target, most
// recent anchor first. It fails with core.ErrInvalidDateFormat if any
// transaction carries an unparsable date.
func RelevantTransactions(all []core.Transaction, target core.Month) ([]core.Transaction, error) {
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("target month: %w", err)
	}
	items, err := parseAnchors(all)
	if err != nil {
		return nil, err
	}
	return unwrap(selectRelevant(items, target)), nil
}

func selectRelevant(items []anchored, target core.Month) []anchored {
	selected := make([]anchored, 0, len(items))
	for _, it := range items {
		if IsRelevant(it.tx, it.anchor, target) {
			selected = append(selected, it)
		}
	}
	sortNewestFirst(selected)
	return selected
}

// Recent returns up to n transactions with the most recent anchor dates.
func Recent(all []core.Transaction, n int) ([]core.Transaction, error) {
	items, err := parseAnchors(all)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(items)
	if n >= 0 && n < len(items) {
		items = items[:n]
	}
	return unwrap(items), nil
}
