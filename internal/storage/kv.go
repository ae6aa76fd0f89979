// Package storage provides the durable keyed string store backing the
// credential and transaction stores. Each logical table is one key whose
// value is a whole JSON document; every write replaces the value.
package storage

import "context"

// KeyValue is the store contract. Implementations must make Set durable
// before returning; Get returns ok=false for absent keys.
type KeyValue interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Well-known keys. Transaction collections use TransactionsKey.
const (
	UsersKey   = "users"
	SessionKey = "session"
)

// TransactionsKey returns the storage key for one user's transaction
// collection.
func TransactionsKey(userID string) string {
	return "transactions:" + userID
}
