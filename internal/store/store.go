package store

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when no record exists under the key
var ErrNotFound = errors.New("record not found")

// Store is a durable key-value medium holding JSON-serialized records.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Key joins a namespace and its parts with underscores, e.g. Key("aidoctor", "user", id).
func Key(namespace string, parts ...string) string {
	return strings.Join(append([]string{namespace}, parts...), "_")
}
