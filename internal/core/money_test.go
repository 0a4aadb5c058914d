package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1e3", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 123456})
	if err != nil || string(b) != "1234.56" {
		t.Fatalf("marshal = %s, %v", b, err)
	}

	var m Money
	for in, want := range map[string]int64{`1234.56`: 123456, `"12,5"`: 1250, `0`: 0, `null`: 0} {
		if err := json.Unmarshal([]byte(in), &m); err != nil || m.Cents != want {
			t.Fatalf("unmarshal %s = %d, %v", in, m.Cents, err)
		}
	}
	if err := json.Unmarshal([]byte(`-5`), &m); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a, b := Money{Cents: 500}, Money{Cents: 750}
	if a.Add(b).Cents != 1250 || a.Sub(b).Cents != -250 {
		t.Fatalf("unexpected arithmetic: %v %v", a.Add(b), a.Sub(b))
	}
	if a.String() != "5.00" {
		t.Fatalf("String() = %q", a.String())
	}
}
