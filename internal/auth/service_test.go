package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"budget/internal/core"
	"budget/internal/storage"
)

// fakeKV is an in-memory KeyValue for tests.
type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

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

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeKV())

	registered, err := svc.Register(ctx, "Ada", "ada@example.com", "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.ID == "" {
		t.Fatalf("expected generated id")
	}

	// Registration establishes the session.
	if cur, ok := svc.Current(ctx); !ok || cur.ID != registered.ID {
		t.Fatalf("current after register = %+v ok=%v", cur, ok)
	}

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := svc.Current(ctx); ok {
		t.Fatalf("session survived logout")
	}

	logged, err := svc.Login(ctx, "ada@example.com", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != registered.ID {
		t.Fatalf("login id %s != register id %s", logged.ID, registered.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	svc := NewService(kv)

	if _, err := svc.Register(ctx, "Ada", "ada@example.com", "one"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	before := kv.data[storage.UsersKey]

	_, err := svc.Register(ctx, "Impostor", "ada@example.com", "two")
	if !errors.Is(err, core.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	// The existing record must be untouched.
	if kv.data[storage.UsersKey] != before {
		t.Fatalf("user list changed on rejected register")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeKV())
	if _, err := svc.Register(ctx, "Ada", "ada@example.com", "hunter2"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_ = svc.Logout(ctx)

	cases := []struct{ email, secret string }{
		{"ada@example.com", "wrong"},
		{"nobody@example.com", "hunter2"},
		{"ADA@EXAMPLE.COM", "hunter2"}, // email is case-sensitive as stored
	}
	for _, tc := range cases {
		if _, err := svc.Login(ctx, tc.email, tc.secret); !errors.Is(err, core.ErrInvalidCredentials) {
			t.Fatalf("login(%q) expected ErrInvalidCredentials, got %v", tc.email, err)
		}
	}
	if _, ok := svc.Current(ctx); ok {
		t.Fatalf("failed login must not establish a session")
	}
}

func TestRegisterMissingFields(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeKV())
	for _, tc := range []struct{ name, email, secret string }{
		{"", "a@b.c", "x"},
		{"Ada", "", "x"},
		{"Ada", "a@b.c", ""},
	} {
		if _, err := svc.Register(ctx, tc.name, tc.email, tc.secret); !errors.Is(err, core.ErrMissingField) {
			t.Fatalf("expected ErrMissingField for %+v, got %v", tc, err)
		}
	}
}

func TestLogoutIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeKV())
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("logout with no session: %v", err)
	}
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}

func TestSecretStoredHashed(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	svc := NewService(kv)
	if _, err := svc.Register(ctx, "Ada", "ada@example.com", "hunter2"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if strings.Contains(kv.data[storage.UsersKey], "hunter2") {
		t.Fatalf("raw secret persisted: %s", kv.data[storage.UsersKey])
	}
}

func TestCorruptStateFailsClosed(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.data[storage.UsersKey] = `{not json`
	kv.data[storage.SessionKey] = `also not json`
	svc := NewService(kv)

	if _, ok := svc.Current(ctx); ok {
		t.Fatalf("corrupt session treated as active")
	}
	// Corrupt user list behaves as empty: registration succeeds fresh.
	if _, err := svc.Register(ctx, "Ada", "ada@example.com", "pw"); err != nil {
		t.Fatalf("register over corrupt list: %v", err)
	}
}

func TestDanglingSessionDropped(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.data[storage.SessionKey] = `{"id":"ghost","name":"Ghost","email":"g@x"}`
	svc := NewService(kv)
	if _, ok := svc.Current(ctx); ok {
		t.Fatalf("session without a backing user must not resolve")
	}
	if _, ok := kv.data[storage.SessionKey]; ok {
		t.Fatalf("dangling session not cleared")
	}
}
