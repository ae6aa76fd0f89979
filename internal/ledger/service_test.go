package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/storage"
)

type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeKV() *fakeKV { return &fakeKV{data: make(map[string]string)} }

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeKV) Close() error { return nil }

type recordingPublisher struct {
	events []*amqp.TransactionEvent
}

func (r *recordingPublisher) PublishTransactionEvent(_ context.Context, evt *amqp.TransactionEvent) error {
	r.events = append(r.events, evt)
	return nil
}

const userID = "user-1"

func TestAddPrependsAndPersists(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	svc := NewService(kv, nil)

	first, err := svc.Add(ctx, userID, core.Income, core.Money{Cents: 100000}, "Salary", core.NewDate(2024, 1, 15), "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := svc.Add(ctx, userID, core.Expense, core.Money{Cents: 20000}, "Food & Dining", core.NewDate(2024, 1, 20), "lunch")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	list := svc.List(ctx, userID)
	if len(list) != 2 {
		t.Fatalf("list length = %d", len(list))
	}
	// Most recent first.
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("wrong order: %s, %s", list[0].ID, list[1].ID)
	}
	if first.ID == second.ID {
		t.Fatalf("ids must be unique")
	}

	// The collection is persisted under the user-scoped key.
	if _, ok := kv.data[storage.TransactionsKey(userID)]; !ok {
		t.Fatalf("collection not persisted")
	}

	// A second service over the same store sees the data.
	again := NewService(kv, nil)
	if got := again.List(ctx, userID); len(got) != 2 {
		t.Fatalf("reload length = %d", len(got))
	}
}

func TestAddRejectsInvalidAmount(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeKV(), nil)

	for _, cents := range []int64{0, -500} {
		_, err := svc.Add(ctx, userID, core.Expense, core.Money{Cents: cents}, "Travel", core.NewDate(2024, 1, 1), "")
		if !errors.Is(err, core.ErrInvalidAmount) {
			t.Fatalf("cents=%d expected ErrInvalidAmount, got %v", cents, err)
		}
	}
	if got := svc.List(ctx, userID); len(got) != 0 {
		t.Fatalf("rejected add changed the collection: %d items", len(got))
	}
}

func TestAddRejectsMissingFields(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeKV(), nil)

	cases := []struct {
		name     string
		kind     core.Kind
		category string
		date     core.Date
	}{
		{"empty category", core.Expense, "", core.NewDate(2024, 1, 1)},
		{"bad kind", "transfer", "Travel", core.NewDate(2024, 1, 1)},
		{"zero date", core.Expense, "Travel", core.Date{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Add(ctx, userID, tc.kind, core.Money{Cents: 100}, tc.category, tc.date, "")
			if !errors.Is(err, core.ErrMissingField) {
				t.Fatalf("expected ErrMissingField, got %v", err)
			}
		})
	}
	if got := svc.List(ctx, userID); len(got) != 0 {
		t.Fatalf("rejected adds changed the collection")
	}
}

func TestDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeKV(), nil)

	tx, err := svc.Add(ctx, userID, core.Expense, core.Money{Cents: 100}, "Travel", core.NewDate(2024, 1, 1), "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Delete(ctx, userID, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := svc.List(ctx, userID); len(got) != 0 {
		t.Fatalf("collection not empty after delete")
	}
	// Second delete of the same id is a no-op.
	if err := svc.Delete(ctx, userID, tx.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if err := svc.Delete(ctx, userID, "never-existed"); err != nil {
		t.Fatalf("delete of unknown id: %v", err)
	}
}

func TestUserScoping(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeKV(), nil)

	if _, err := svc.Add(ctx, "alice", core.Income, core.Money{Cents: 100}, "Salary", core.NewDate(2024, 1, 1), ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := svc.List(ctx, "bob"); len(got) != 0 {
		t.Fatalf("bob sees alice's transactions")
	}
}

func TestEventsPublished(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewService(newFakeKV(), pub)

	tx, err := svc.Add(ctx, userID, core.Expense, core.Money{Cents: 1234}, "Travel", core.NewDate(2024, 1, 15), "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Delete(ctx, userID, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.events))
	}
	if pub.events[0].Action != amqp.ActionCreated || pub.events[1].Action != amqp.ActionDeleted {
		t.Fatalf("actions = %s, %s", pub.events[0].Action, pub.events[1].Action)
	}
	if pub.events[0].Date != "2024-01-15" || pub.events[0].AmountCents != 1234 {
		t.Fatalf("event payload = %+v", pub.events[0])
	}
	// Rejected mutations publish nothing.
	if _, err := svc.Add(ctx, userID, core.Expense, core.Money{Cents: 0}, "Travel", core.NewDate(2024, 1, 1), ""); err == nil {
		t.Fatalf("expected rejection")
	}
	if len(pub.events) != 2 {
		t.Fatalf("rejected add published an event")
	}
}

func TestCorruptCollectionFailsClosed(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.data[storage.TransactionsKey(userID)] = `{definitely not an array`
	svc := NewService(kv, nil)

	if got := svc.List(ctx, userID); len(got) != 0 {
		t.Fatalf("corrupt state not treated as empty")
	}
	if _, err := svc.Add(ctx, userID, core.Income, core.Money{Cents: 100}, "Salary", core.NewDate(2024, 1, 1), ""); err != nil {
		t.Fatalf("add over corrupt state: %v", err)
	}
	if got := svc.List(ctx, userID); len(got) != 1 {
		t.Fatalf("expected fresh collection with 1 item, got %d", len(got))
	}
}
