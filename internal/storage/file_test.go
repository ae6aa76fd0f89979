package storage

import (
	"context"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, ok, err := s.Get(ctx, UsersKey); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, UsersKey, `[{"id":"u1"}]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get(ctx, UsersKey)
	if err != nil || !ok {
		t.Fatalf("get after set: ok=%v err=%v", ok, err)
	}
	if v != `[{"id":"u1"}]` {
		t.Fatalf("value = %q", v)
	}

	// Overwrite replaces the whole document.
	if err := s.Set(ctx, UsersKey, `[]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, _, _ = s.Get(ctx, UsersKey)
	if v != `[]` {
		t.Fatalf("value after overwrite = %q", v)
	}

	if err := s.Delete(ctx, UsersKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, UsersKey); ok {
		t.Fatalf("key survived delete")
	}
	// Deleting an absent key is not an error.
	if err := s.Delete(ctx, UsersKey); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestFileStoreKeyMapping(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	key := TransactionsKey("3f0a")
	if key != "transactions:3f0a" {
		t.Fatalf("transactions key = %q", key)
	}
	if err := s.Set(ctx, key, `[]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := s.Get(ctx, key); !ok {
		t.Fatalf("colon key not retrievable")
	}
}
