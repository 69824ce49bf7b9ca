// Package kvstore is the key-value persistence port of the client.
//
// Every piece of client state (registered users, the session token, the
// per-user contact collections) is stored as an opaque value under a string
// key. Backends: an in-process map, SQLite, and PostgreSQL.
package kvstore

import "context"

// Store is a byte-oriented key-value store.
//
// Get returns (nil, nil) when the key is absent. Delete of an absent key is
// not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Batch runs fn against a view of the store whose writes become visible
	// together when fn returns nil and are discarded otherwise.
	Batch(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	Close() error
}
