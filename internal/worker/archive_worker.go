// Package worker runs the archive consumer: transaction events off the
// queue, rows into the configured archive sink.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"budget/internal/amqp"
	"budget/internal/export"
)

type ArchiveWorker struct {
	archive export.RowAppender
}

func NewArchiveWorker(archive export.RowAppender) *ArchiveWorker {
	return &ArchiveWorker{archive: archive}
}

// HandleEvent archives a single transaction event. Returning an error
// requeues the delivery.
func (w *ArchiveWorker) HandleEvent(ctx context.Context, evt *amqp.TransactionEvent) error {
	if evt.TransactionID == "" || evt.Action == "" {
		// Nothing to archive and a retry cannot fix it.
		slog.WarnContext(ctx, "Skipping incomplete event", "event", evt)
		return nil
	}

	if err := w.archive.AppendArchiveRow(ctx, evt); err != nil {
		return fmt.Errorf("archive event %s: %w", evt.TransactionID, err)
	}

	slog.InfoContext(ctx, "Event archived",
		"action", evt.Action,
		"transaction_id", evt.TransactionID,
		"user_id", evt.UserID)
	return nil
}
