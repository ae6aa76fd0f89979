package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped
		{10, 30 * time.Second}, // capped
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"refused", errors.New("connection refused"), true},
		{"closed", errors.New("connection closed"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"handler failure", errors.New("append archive row: disk full"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestTransactionEventRoundTrip(t *testing.T) {
	evt := &TransactionEvent{
		Action:        ActionCreated,
		UserID:        "u1",
		TransactionID: "t1",
		Kind:          "expense",
		AmountCents:   1234,
		Category:      "Travel",
		Date:          "2024-01-15",
		Timestamp:     time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	b, err := evt.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := TransactionEventFromJSON(b)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if *back != *evt {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, evt)
	}

	if _, err := TransactionEventFromJSON([]byte("{bad")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
