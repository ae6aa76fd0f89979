// Package export provides archive sinks for transaction events: a local
// CSV file and a Google Sheets spreadsheet. The archive is append-only;
// nothing in the web app reads it back.
package export

import (
	"context"

	"budget/internal/amqp"
)

// RowAppender appends one archived transaction event.
type RowAppender interface {
	AppendArchiveRow(ctx context.Context, evt *amqp.TransactionEvent) error
}
