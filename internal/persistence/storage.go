package persistence

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Storage.Get when the key has no value.
var ErrKeyNotFound = errors.New("key not found")

// Storage is the durable key/value contract the flow persists through.
// Implementations must be safe for concurrent use. Clear is idempotent.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context, key string) error
}
