// Package kvstore is the persistent key-value layer behind the session and
// the per-identity collections. Values are opaque byte slices (JSON records).
package kvstore

import (
	"context"
)

// Repository is a flat key-value store.
//
// Get returns (nil, nil) when the key is absent. SetMany and DeleteMany are
// atomic: either every key is written/removed or none is.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
	Close() error
}
