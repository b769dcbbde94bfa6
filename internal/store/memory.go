package store

import (
	"context"
	"encoding/json"
	"sync"
)

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps values in process memory. It is used for dry runs and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]json.RawMessage)}
}

// Get decodes key into dest.
func (s *MemoryStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.GetSync(key, dest)
}

// GetSync decodes key into dest.
func (s *MemoryStore) GetSync(key string, dest any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	return true, decode(key, raw, dest)
}

// Set stores value under key.
func (s *MemoryStore) Set(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := encode(key, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
	return nil
}

// Remove deletes key.
func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// SetRaw stores pre-encoded JSON under key, bypassing encoding.
// Tests use it to simulate out-of-band edits.
func (s *MemoryStore) SetRaw(key string, raw []byte) {
	s.mu.Lock()
	s.data[key] = append(json.RawMessage(nil), raw...)
	s.mu.Unlock()
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
