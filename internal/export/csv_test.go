package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"budget/internal/amqp"
)

func TestCSVArchiveAppend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "archive.csv")
	a, err := NewCSVArchive(path)
	if err != nil {
		t.Fatalf("new archive: %v", err)
	}

	evt := &amqp.TransactionEvent{
		Action:        amqp.ActionCreated,
		UserID:        "u1",
		TransactionID: "t1",
		Kind:          "expense",
		AmountCents:   1234,
		Category:      "Travel",
		Date:          "2024-01-15",
		Note:          "taxi",
		Timestamp:     time.Now(),
	}
	if err := a.AppendArchiveRow(ctx, evt); err != nil {
		t.Fatalf("append: %v", err)
	}
	evt.Action = amqp.ActionDeleted
	if err := a.AppendArchiveRow(ctx, evt); err != nil {
		t.Fatalf("second append: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	// Header once, then one row per event.
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "archived_at" {
		t.Fatalf("missing header: %v", rows[0])
	}
	if rows[1][1] != "created" || rows[2][1] != "deleted" {
		t.Fatalf("actions = %s, %s", rows[1][1], rows[2][1])
	}
	if rows[1][5] != "1234" || rows[1][6] != "Travel" {
		t.Fatalf("row payload = %v", rows[1])
	}
}
