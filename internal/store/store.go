// Package store provides durable key-value persistence for wallet state.
//
// Values are JSON encoded. Every backend follows last-write-wins per key and
// enforces no other invariants; callers own the shape of what they store.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrStoreLocked indicates an encrypted store was opened without a passphrase
// or with the wrong one.
var ErrStoreLocked = errors.New("store is encrypted - passphrase required")

// Store is the persistence contract used by the registry and network resolver.
type Store interface {
	// Get reads key from the backing medium and decodes it into dest.
	// It reports false when the key is absent.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// GetSync decodes key from already-loaded state without touching the
	// backing medium where the backend allows it.
	GetSync(key string, dest any) (bool, error)

	// Set encodes value and stores it under key.
	Set(ctx context.Context, key string, value any) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// encode marshals a value for storage.
func encode(key string, value any) (json.RawMessage, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding %q: %w", key, err)
	}
	return raw, nil
}

// decode unmarshals stored bytes into dest.
func decode(key string, raw []byte, dest any) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decoding %q: %w", key, err)
	}
	return nil
}
