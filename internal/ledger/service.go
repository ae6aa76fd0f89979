// Package ledger implements the transaction store: one ordered
// collection per user, persisted whole after every mutation.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/storage"
)

// EventPublisher receives archive events after successful mutations.
// Publishing failures are logged, never surfaced: the mutation already
// persisted locally.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, evt *amqp.TransactionEvent) error
}

type Service struct {
	store  storage.KeyValue
	events EventPublisher // optional
	// Serializes read-modify-write per process; the store itself is
	// whole-document overwrite.
	mu sync.Mutex
}

func NewService(store storage.KeyValue, events EventPublisher) *Service {
	return &Service{store: store, events: events}
}

// Add validates, assigns an id, prepends to the user's collection, and
// persists it. The caller resolves the owning user first; userID must
// come from an active session.
func (s *Service) Add(ctx context.Context, userID string, kind core.Kind, amount core.Money, category string, date core.Date, note string) (core.Transaction, error) {
	tx := core.Transaction{
		ID:       uuid.NewString(),
		Kind:     kind,
		Amount:   amount,
		Category: category,
		Date:     date,
		Note:     note,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txs := s.load(ctx, userID)
	txs = append([]core.Transaction{tx}, txs...)
	if err := s.save(ctx, userID, txs); err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"transaction_id", tx.ID,
		"user_id", userID,
		"kind", tx.Kind,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category)

	s.publish(ctx, amqp.ActionCreated, userID, tx)
	return tx, nil
}

// Delete removes the transaction with the given id. Absent ids are a
// no-op, not an error; the collection is persisted either way only when
// something changed.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs := s.load(ctx, userID)
	for i, tx := range txs {
		if tx.ID != id {
			continue
		}
		txs = append(txs[:i], txs[i+1:]...)
		if err := s.save(ctx, userID, txs); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id, "user_id", userID)
		s.publish(ctx, amqp.ActionDeleted, userID, tx)
		return nil
	}
	return nil
}

// List returns the user's collection in stored order, most recent first.
func (s *Service) List(ctx context.Context, userID string) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, userID)
}

// load reads a user's collection, treating unparseable state as empty.
func (s *Service) load(ctx context.Context, userID string) []core.Transaction {
	raw, ok, err := s.store.Get(ctx, storage.TransactionsKey(userID))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read transactions", "user_id", userID, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var txs []core.Transaction
	if err := json.Unmarshal([]byte(raw), &txs); err != nil {
		slog.WarnContext(ctx, "Treating unparseable transaction list as empty",
			"user_id", userID, "error", err)
		return nil
	}
	return txs
}

func (s *Service) save(ctx context.Context, userID string, txs []core.Transaction) error {
	b, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("marshal transactions: %w", err)
	}
	if err := s.store.Set(ctx, storage.TransactionsKey(userID), string(b)); err != nil {
		return fmt.Errorf("persist transactions: %w", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, action, userID string, tx core.Transaction) {
	if s.events == nil {
		return
	}
	evt := &amqp.TransactionEvent{
		Action:        action,
		UserID:        userID,
		TransactionID: tx.ID,
		Kind:          string(tx.Kind),
		AmountCents:   tx.Amount.Cents,
		Category:      tx.Category,
		Date:          tx.Date.String(),
		Note:          tx.Note,
		Timestamp:     time.Now(),
	}
	if err := s.events.PublishTransactionEvent(ctx, evt); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"action", action, "transaction_id", tx.ID, "error", err)
	}
}
