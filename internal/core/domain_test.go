package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:       "t1",
		Kind:     Expense,
		Amount:   Money{Cents: 1250},
		Category: "Food & Dining",
		Date:     NewDate(2024, 1, 20),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		tx   Transaction
		want error
	}{
		{"zero amount", Transaction{Kind: Income, Amount: Money{Cents: 0}, Category: "Salary", Date: NewDate(2024, 1, 1)}, ErrInvalidAmount},
		{"negative amount", Transaction{Kind: Income, Amount: Money{Cents: -100}, Category: "Salary", Date: NewDate(2024, 1, 1)}, ErrInvalidAmount},
		{"empty category", Transaction{Kind: Expense, Amount: Money{Cents: 100}, Category: "  ", Date: NewDate(2024, 1, 1)}, ErrMissingField},
		{"bad kind", Transaction{Kind: "transfer", Amount: Money{Cents: 100}, Category: "Salary", Date: NewDate(2024, 1, 1)}, ErrMissingField},
		{"zero date", Transaction{Kind: Expense, Amount: Money{Cents: 100}, Category: "Travel", Date: Date{}}, ErrMissingField},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.tx.Validate(); err != tc.want {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestSigned(t *testing.T) {
	in := Transaction{Kind: Income, Amount: Money{Cents: 500}}
	if in.Signed() != 500 {
		t.Fatalf("income signed = %d", in.Signed())
	}
	out := Transaction{Kind: Expense, Amount: Money{Cents: 500}}
	if out.Signed() != -500 {
		t.Fatalf("expense signed = %d", out.Signed())
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, 2, 29)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-02-29"` {
		t.Fatalf("marshal = %s", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}
}

func TestDateMonthKey(t *testing.T) {
	if got := NewDate(2024, 1, 15).MonthKey(); got != "2024-01" {
		t.Fatalf("MonthKey = %q", got)
	}
	if got := NewDate(2024, 12, 1).MonthKey(); got != "2024-12" {
		t.Fatalf("MonthKey = %q", got)
	}
}

func TestDateSameMonth(t *testing.T) {
	now := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
	if !NewDate(2024, 3, 1).SameMonth(now) {
		t.Fatalf("expected same month")
	}
	if NewDate(2023, 3, 1).SameMonth(now) {
		t.Fatalf("different year should not match")
	}
	if NewDate(2024, 4, 1).SameMonth(now) {
		t.Fatalf("different month should not match")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Year() != 2024 || d.Time.Month() != time.January || d.Day() != 15 {
		t.Fatalf("parsed wrong date: %v", d)
	}
	if _, err := ParseDate("15/01/2024"); err == nil {
		t.Fatalf("expected error for wrong layout")
	}
}
