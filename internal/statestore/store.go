// Package statestore persists opaque window-state blobs keyed by state
// key. The backing storage may be shared by several concurrently running
// windows; Connect is the sole serialization point, and an instance that
// fails to acquire exclusivity simply runs without persistence for the
// session.
package statestore

import (
	"context"
	"errors"
)

// ErrNotConnected is returned by Save when the store never acquired (or
// has released) exclusivity over the backing storage.
var ErrNotConnected = errors.New("state store is not connected")

// Store is a persistent key/value store with an exclusivity handshake.
type Store interface {
	// Connect attempts to acquire exclusive access to the backing
	// storage and reports whether it succeeded. Contention with another
	// running instance yields (false, nil): not an error, just no
	// persistence this session.
	Connect(ctx context.Context) (bool, error)

	// Save persists value under key, overwriting any prior value, and
	// returns once the write is durable.
	Save(ctx context.Context, key string, value []byte) error

	// Load returns the previously saved value for key. A key that was
	// never saved yields (nil, false, nil), never an error.
	Load(ctx context.Context, key string) ([]byte, bool, error)

	// Close releases exclusivity and any underlying resources.
	Close() error
}
