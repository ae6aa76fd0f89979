package amqp

import (
	"encoding/json"
	"time"
)

const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// TransactionEvent is published after a ledger mutation. It carries the
// full row so the archive worker never reads the live store.
type TransactionEvent struct {
	Action        string    `json:"action"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	Kind          string    `json:"kind"`
	AmountCents   int64     `json:"amount_cents"`
	Category      string    `json:"category"`
	Date          string    `json:"date"` // YYYY-MM-DD
	Note          string    `json:"note,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var evt TransactionEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, err
	}
	return &evt, nil
}
