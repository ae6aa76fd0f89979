package worker

import (
	"context"
	"errors"
	"testing"

	"budget/internal/amqp"
)

type fakeArchive struct {
	rows []*amqp.TransactionEvent
	err  error
}

func (f *fakeArchive) AppendArchiveRow(_ context.Context, evt *amqp.TransactionEvent) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, evt)
	return nil
}

func TestHandleEvent(t *testing.T) {
	ctx := context.Background()
	archive := &fakeArchive{}
	w := NewArchiveWorker(archive)

	evt := &amqp.TransactionEvent{Action: amqp.ActionCreated, TransactionID: "t1", UserID: "u1"}
	if err := w.HandleEvent(ctx, evt); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(archive.rows) != 1 || archive.rows[0].TransactionID != "t1" {
		t.Fatalf("rows = %+v", archive.rows)
	}
}

func TestHandleEventSkipsIncomplete(t *testing.T) {
	ctx := context.Background()
	archive := &fakeArchive{}
	w := NewArchiveWorker(archive)

	// Missing id or action: ack without archiving, no requeue loop.
	if err := w.HandleEvent(ctx, &amqp.TransactionEvent{Action: amqp.ActionCreated}); err != nil {
		t.Fatalf("incomplete event returned error: %v", err)
	}
	if err := w.HandleEvent(ctx, &amqp.TransactionEvent{TransactionID: "t1"}); err != nil {
		t.Fatalf("incomplete event returned error: %v", err)
	}
	if len(archive.rows) != 0 {
		t.Fatalf("incomplete events archived: %+v", archive.rows)
	}
}

func TestHandleEventPropagatesArchiveError(t *testing.T) {
	ctx := context.Background()
	w := NewArchiveWorker(&fakeArchive{err: errors.New("disk full")})
	evt := &amqp.TransactionEvent{Action: amqp.ActionCreated, TransactionID: "t1"}
	if err := w.HandleEvent(ctx, evt); err == nil {
		t.Fatalf("expected error for failed archive")
	}
}
