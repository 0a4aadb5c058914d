package core

import (
	"errors"
	"testing"
)

func TestParseAnchorDate(t *testing.T) {
	cases := []struct {
		in               string
		year, month, day int
		ok               bool
	}{
		{"15/01/2023", 2023, 1, 15, true},
		{"1/2/2024", 2024, 2, 1, true},
		{"29/02/2024", 2024, 2, 29, true}, // leap year
		{" 31/12/2025 ", 2025, 12, 31, true},
		{"29/02/2023", 0, 0, 0, false},
		{"31/04/2023", 0, 0, 0, false},
		{"2023-01-15", 0, 0, 0, false}, // wrong separator
		{"15/01/23", 0, 0, 0, false},
		{"15/13/2023", 0, 0, 0, false},
		{"00/01/2023", 0, 0, 0, false},
		{"aa/01/2023", 0, 0, 0, false},
		{"15/01", 0, 0, 0, false},
		{"", 0, 0, 0, false},
	}
	for _, tc := range cases {
		d, err := ParseAnchorDate(tc.in)
		if !tc.ok {
			if !errors.Is(err, ErrInvalidDateFormat) {
				t.Fatalf("%q expected ErrInvalidDateFormat, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q unexpected error: %v", tc.in, err)
		}
		if d.Year() != tc.year || d.Month() != tc.month || d.Day() != tc.day {
			t.Fatalf("%q parsed as %v", tc.in, d)
		}
	}
}

func TestAnchorStringRoundTrip(t *testing.T) {
	d := NewDate(2024, 3, 5)
	if got := d.AnchorString(); got != "05/03/2024" {
		t.Fatalf("AnchorString() = %q", got)
	}
	back, err := ParseAnchorDate(d.AnchorString())
	if err != nil || !back.Equal(d.Time) {
		t.Fatalf("round trip failed: %v %v", back, err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:        "tx_1",
		Title:     "Aluguel",
		Amount:    Money{Cents: 150000},
		Category:  "casa",
		Date:      "05/01/2024",
		SpenderID: "A",
		Type:      Expense,
		IsFixed:   true,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := good
	zero.Amount = Money{}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be accepted, got %v", err)
	}

	bads := []struct {
		name string
		mut  func(*Transaction)
		want error
	}{
		{"empty title", func(tx *Transaction) { tx.Title = "  " }, ErrEmptyTitle},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"no spender", func(tx *Transaction) { tx.SpenderID = "" }, ErrEmptySpender},
		{"bad date", func(tx *Transaction) { tx.Date = "2024-01-05" }, ErrInvalidDateFormat},
		{"fixed with installments", func(tx *Transaction) { tx.Installments = &Installments{Current: 1, Total: 3} }, ErrInvalidPlan},
		{"installment past total", func(tx *Transaction) {
			tx.IsFixed = false
			tx.Installments = &Installments{Current: 4, Total: 3}
		}, ErrInvalidPlan},
	}
	for _, tc := range bads {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mut(&tx)
			if err := tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestTogglePaid(t *testing.T) {
	key := NewMonth(2023, 3).Key()

	fixed := Transaction{ID: "f", IsFixed: true, PaidMonths: NewMonthSet("2023-1")}
	toggled := fixed.TogglePaid(key)
	if !toggled.PaidMonths.Has(key) || !toggled.PaidMonths.Has("2023-1") {
		t.Fatalf("expected %s added, got %v", key, toggled.PaidMonths.Keys())
	}
	if fixed.PaidMonths.Has(key) {
		t.Fatalf("receiver was mutated")
	}
	if back := toggled.TogglePaid(key); back.PaidMonths.Has(key) {
		t.Fatalf("second toggle should remove %s", key)
	}

	oneOff := Transaction{ID: "o", IsPaid: false}
	if !oneOff.TogglePaid(key).IsPaid {
		t.Fatalf("one-off toggle should flip IsPaid")
	}
	if oneOff.TogglePaid(key).PaidMonths.Has(key) {
		t.Fatalf("one-off toggle must not touch PaidMonths")
	}
}

func TestInstallmentsLabel(t *testing.T) {
	if got := (Installments{Current: 2, Total: 10}).Label(); got != "2/10" {
		t.Fatalf("Label() = %q", got)
	}
}
