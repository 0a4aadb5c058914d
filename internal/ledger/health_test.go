package ledger

import (
	"testing"

	"financas/internal/core"
)

func cents(c int64) core.Money { return core.Money{Cents: c} }

func TestHealthScore(t *testing.T) {
	tests := []struct {
		name   string
		income int64
		paid   int64
		want   float64
	}{
		{"nothing spent", 1000, 0, 100},
		{"half spent", 1000, 500, 50},
		{"all spent", 1000, 1000, 0},
		{"overspent floors at zero", 1000, 5000, 0},
		{"no income with spending", 0, 1, 0},
		{"no income no spending", 0, 0, 0},
		{"negative income", -100, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HealthScore(cents(tt.income), cents(tt.paid)); got != tt.want {
				t.Errorf("HealthScore(%d, %d) = %v, want %v", tt.income, tt.paid, got, tt.want)
			}
		})
	}
}

func TestHealthScore_MonotonicInPaid(t *testing.T) {
	income := cents(7351_19)
	prev := HealthScore(income, cents(0))
	for p := int64(0); p <= 9000_00; p += 137_11 {
		got := HealthScore(income, cents(p))
		if got > prev {
			t.Fatalf("score increased from %v to %v at paid=%d", prev, got, p)
		}
		if got < 0 || got > 100 {
			t.Fatalf("score %v out of range at paid=%d", got, p)
		}
		prev = got
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		score float64
		want  HealthStatus
	}{
		{100, Excellent},
		{30, Excellent},
		{29.99, Warning},
		{10, Warning},
		{9.99, Critical},
		{0, Critical},
	}
	for _, tt := range tests {
		if got := Status(tt.score); got != tt.want {
			t.Errorf("Status(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestRoundScore(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{66.666666, 67},
		{66.5, 67},
		{66.49, 66},
		{0, 0},
		{100, 100},
	}
	for _, tt := range tests {
		if got := RoundScore(tt.in); got != tt.want {
			t.Errorf("RoundScore(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSettlementStrategies(t *testing.T) {
	key := core.NewMonth(2023, 3).Key()

	tests := []struct {
		name string
		tx   core.Transaction
		want bool
	}{
		{"fixed with key", core.Transaction{IsFixed: true, PaidMonths: core.NewMonthSet(key)}, true},
		{"fixed without key", core.Transaction{IsFixed: true, PaidMonths: core.NewMonthSet("2023-2")}, false},
		{"fixed ignores IsPaid", core.Transaction{IsFixed: true, IsPaid: true}, false},
		{"one-off paid", core.Transaction{IsPaid: true}, true},
		{"one-off ignores paid months", core.Transaction{PaidMonths: core.NewMonthSet(key)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Settled(tt.tx, key); got != tt.want {
				t.Errorf("Settled() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := GetSettlementChecker("weekly"); err == nil {
		t.Error("expected error for unknown recurrence")
	}
	c, err := GetSettlementChecker(Fixed)
	if err != nil {
		t.Fatalf("GetSettlementChecker(Fixed) error = %v", err)
	}
	if _, ok := c.(FixedSettlement); !ok {
		t.Errorf("GetSettlementChecker(Fixed) = %T", c)
	}
}
