package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Revenue TransactionType = "revenue"
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Installments marks a transaction as one step of an installment plan.
	Installments struct {
		Current int `json:"current"`
		Total   int `json:"total"`
	}

	// Transaction is the record delivered by the persistence layer. Date holds the
	// anchor in DD/MM/YYYY form: the occurrence date for one-off items, the first
	// applicable month for fixed ones.
	Transaction struct {
		ID               string          `json:"id"`
		Title            string          `json:"title"`
		Amount           Money           `json:"amount"`
		Category         string          `json:"category"`
		Emoji            string          `json:"emoji,omitempty"`
		Date             string          `json:"date"`
		SpenderID        string          `json:"spenderId"`
		Type             TransactionType `json:"type"`
		IsFixed          bool            `json:"isFixed"`
		IsPaid           bool            `json:"isPaid"`
		PaidMonths       MonthSet        `json:"paidMonths"`
		Installments     *Installments   `json:"installments,omitempty"`
		IsDeleted        bool            `json:"isDeleted,omitempty"`
		RecurringGroupID string          `json:"recurringGroupId,omitempty"`
	}

	// Member is one of the two people sharing the household budget.
	Member struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Income Money  `json:"income"`
	}
)

var (
	ErrInvalidDateFormat = errors.New("invalid date format, expected DD/MM/YYYY")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrEmptyTitle        = errors.New("empty title")
	ErrEmptySpender      = errors.New("empty spender")
	ErrInvalidPlan       = errors.New("invalid installment plan")
	ErrNotFound          = errors.New("not found")
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == Expense || t == Revenue
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// AnchorString formats the date the way transactions store it.
func (d Date) AnchorString() string {
	return d.Format("02/01/2006")
}

// ParseAnchorDate parses a DD/MM/YYYY anchor date. Anything that is not three
// slash-separated integers forming a real calendar day fails with
// ErrInvalidDateFormat.
func ParseAnchorDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	day, okD := atoiDigits(parts[0], 1, 2)
	month, okM := atoiDigits(parts[1], 1, 2)
	year, okY := atoiDigits(parts[2], 4, 4)
	if !okD || !okM || !okY {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	d := NewDate(year, month, day)
	// time.Date normalizes overflow (31/02 -> 03/03), which we refuse.
	if d.Day() != day || d.Month() != month || d.Year() != year {
		return Date{}, fmt.Errorf("%w: %q is not a calendar date", ErrInvalidDateFormat, s)
	}
	return d, nil
}

func atoiDigits(s string, minLen, maxLen int) (int, bool) {
	if len(s) < minLen || len(s) > maxLen {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m minus o. The result may be negative.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// Label renders the plan position as "current/total".
func (i Installments) Label() string {
	return fmt.Sprintf("%d/%d", i.Current, i.Total)
}

// Anchor parses the transaction's anchor date.
func (t Transaction) Anchor() (Date, error) {
	d, err := ParseAnchorDate(t.Date)
	if err != nil {
		return Date{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	return d, nil
}

// TogglePaid flips the settlement state for the given month. Fixed transactions
// track it per month; one-off transactions ignore key and flip IsPaid. The
// receiver is left untouched.
func (t Transaction) TogglePaid(key MonthKey) Transaction {
	if !t.IsFixed {
		t.IsPaid = !t.IsPaid
		return t
	}
	if t.PaidMonths.Has(key) {
		t.PaidMonths = t.PaidMonths.Without(key)
	} else {
		t.PaidMonths = t.PaidMonths.With(key)
	}
	return t
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if strings.TrimSpace(t.SpenderID) == "" {
		return ErrEmptySpender
	}
	if _, err := ParseAnchorDate(t.Date); err != nil {
		return err
	}
	if t.Installments != nil {
		if t.IsFixed {
			return fmt.Errorf("%w: fixed transactions cannot be split in installments", ErrInvalidPlan)
		}
		if t.Installments.Total < 1 || t.Installments.Current < 1 || t.Installments.Current > t.Installments.Total {
			return fmt.Errorf("%w: %s", ErrInvalidPlan, t.Installments.Label())
		}
	}
	return nil
}

func (m Member) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return errors.New("empty member id")
	}
	return m.Income.Validate()
}
