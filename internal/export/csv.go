package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"budget/internal/amqp"
)

var csvHeader = []string{"archived_at", "action", "user_id", "transaction_id", "kind", "amount_cents", "category", "date", "note"}

// CSVArchive appends events to a local CSV file, writing the header on
// first use. Each append opens, writes, flushes, and closes so a killed
// worker loses at most the in-flight row.
type CSVArchive struct {
	mu   sync.Mutex
	path string
}

func NewCSVArchive(path string) (*CSVArchive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &CSVArchive{path: path}, nil
}

func (a *CSVArchive) AppendArchiveRow(_ context.Context, evt *amqp.TransactionEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	info, err := os.Stat(a.path)
	fresh := os.IsNotExist(err) || (err == nil && info.Size() == 0)

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open archive file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write archive header: %w", err)
		}
	}
	row := []string{
		time.Now().UTC().Format(time.RFC3339),
		evt.Action,
		evt.UserID,
		evt.TransactionID,
		evt.Kind,
		strconv.FormatInt(evt.AmountCents, 10),
		evt.Category,
		evt.Date,
		evt.Note,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write archive row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush archive: %w", err)
	}
	return nil
}
