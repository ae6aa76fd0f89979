// Package auth implements the credential store: registered users, the
// single active session, and the register/login/logout/current
// operations over the keyed string store.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"budget/internal/core"
	"budget/internal/storage"
)

// storedUser is the persisted shape under the "users" key. Secret holds
// a bcrypt hash, never the raw password.
type storedUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

type Service struct {
	store storage.KeyValue
	// Serializes read-modify-write of the users document. The store is
	// whole-document overwrite, so interleaved writers would lose data.
	mu sync.Mutex
}

func NewService(store storage.KeyValue) *Service {
	return &Service{store: store}
}

// Register creates a user, persists the updated user list, and
// establishes the new user as the active session. Fails with
// core.ErrDuplicateEmail when the email is already taken.
func (s *Service) Register(ctx context.Context, name, email, secret string) (core.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || secret == "" {
		return core.User{}, core.ErrMissingField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.loadUsers(ctx)
	for _, u := range users {
		if u.Email == email {
			return core.User{}, core.ErrDuplicateEmail
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash secret: %w", err)
	}

	su := storedUser{
		ID:     uuid.NewString(),
		Name:   name,
		Email:  email,
		Secret: string(hash),
	}
	users = append(users, su)
	if err := s.saveUsers(ctx, users); err != nil {
		return core.User{}, err
	}

	user := core.User{ID: su.ID, Name: su.Name, Email: su.Email}
	if err := s.saveSession(ctx, user); err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login matches email and secret against the stored user list and
// establishes the matched user as the active session. Fails with
// core.ErrInvalidCredentials on any mismatch; it never distinguishes
// unknown email from wrong secret.
func (s *Service) Login(ctx context.Context, email, secret string) (core.User, error) {
	email = strings.TrimSpace(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.loadUsers(ctx) {
		if u.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.Secret), []byte(secret)) != nil {
			return core.User{}, core.ErrInvalidCredentials
		}
		user := core.User{ID: u.ID, Name: u.Name, Email: u.Email}
		if err := s.saveSession(ctx, user); err != nil {
			return core.User{}, err
		}
		slog.InfoContext(ctx, "User logged in", "user_id", user.ID)
		return user, nil
	}
	return core.User{}, core.ErrInvalidCredentials
}

// Logout clears the active session. Idempotent: logging out with no
// session is a no-op.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, storage.SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current returns the active session's user. A persisted session that no
// longer resolves to a stored user is dropped rather than returned.
func (s *Service) Current(ctx context.Context) (core.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.store.Get(ctx, storage.SessionKey)
	if err != nil || !ok {
		return core.User{}, false
	}
	var user core.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		slog.WarnContext(ctx, "Discarding unparseable session", "error", err)
		_ = s.store.Delete(ctx, storage.SessionKey)
		return core.User{}, false
	}
	for _, u := range s.loadUsers(ctx) {
		if u.ID == user.ID {
			return user, true
		}
	}
	slog.WarnContext(ctx, "Dropping dangling session", "user_id", user.ID)
	_ = s.store.Delete(ctx, storage.SessionKey)
	return core.User{}, false
}

// loadUsers reads the full user list. Unparseable state is treated as
// empty (fail closed) instead of surfacing a parse fault.
func (s *Service) loadUsers(ctx context.Context) []storedUser {
	raw, ok, err := s.store.Get(ctx, storage.UsersKey)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read user list", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var users []storedUser
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		slog.WarnContext(ctx, "Treating unparseable user list as empty", "error", err)
		return nil
	}
	return users
}

func (s *Service) saveUsers(ctx context.Context, users []storedUser) error {
	b, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("marshal user list: %w", err)
	}
	if err := s.store.Set(ctx, storage.UsersKey, string(b)); err != nil {
		return fmt.Errorf("persist user list: %w", err)
	}
	return nil
}

func (s *Service) saveSession(ctx context.Context, user core.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.store.Set(ctx, storage.SessionKey, string(b)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
