package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mrz1836/poktwallet/internal/fileutil"
)

// storeFilePermissions is the permission mode for the store file.
const storeFilePermissions = 0o600

// ErrCorruptStore indicates the store file is not a JSON object.
var ErrCorruptStore = errors.New("store file is corrupted")

// Compile-time interface check
var _ Store = (*FileStore)(nil)

// FileStore keeps all keys in a single JSON document on disk.
//
// Get re-reads the file so edits made by another process are visible;
// GetSync serves the snapshot from the last read or write. Writes reload,
// apply the change, and replace the file atomically.
type FileStore struct {
	path       string
	passphrase string

	mu   sync.RWMutex
	data map[string]json.RawMessage
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithPassphrase encrypts the store file at rest with age.
func WithPassphrase(passphrase string) FileOption {
	return func(s *FileStore) {
		s.passphrase = passphrase
	}
}

// OpenFileStore loads the store at path. A missing file is an empty store.
func OpenFileStore(path string, opts ...FileOption) (*FileStore, error) {
	s := &FileStore{
		path: path,
		data: make(map[string]json.RawMessage),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get re-reads the file and decodes key into dest.
func (s *FileStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	err := s.reload()
	raw, ok := s.data[key]
	s.mu.Unlock()

	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return true, decode(key, raw, dest)
}

// GetSync decodes key from the in-memory snapshot.
func (s *FileStore) GetSync(key string, dest any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	return true, decode(key, raw, dest)
}

// Set stores value under key and persists the document.
func (s *FileStore) Set(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := encode(key, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reload(); err != nil {
		return err
	}
	s.data[key] = raw
	return s.flush()
}

// Remove deletes key and persists the document.
func (s *FileStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reload(); err != nil {
		return err
	}
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flush()
}

// Close is a no-op; every write is already durable.
func (s *FileStore) Close() error {
	return nil
}

// reload replaces the snapshot with the file contents. Callers hold s.mu.
func (s *FileStore) reload() error {
	data, found, err := fileutil.ReadOptional(s.path)
	if err != nil {
		return err
	}
	if !found || len(data) == 0 {
		s.data = make(map[string]json.RawMessage)
		return nil
	}

	if isEncrypted(data) {
		if s.passphrase == "" {
			return ErrStoreLocked
		}
		if data, err = open(data, s.passphrase); err != nil {
			return err
		}
	}

	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptStore, err)
	}
	s.data = doc
	return nil
}

// flush writes the snapshot to disk. Callers hold s.mu.
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling store: %w", err)
	}

	if s.passphrase != "" {
		if data, err = seal(data, s.passphrase); err != nil {
			return err
		}
	}

	if err := fileutil.WriteAtomic(s.path, data, storeFilePermissions); err != nil {
		return fmt.Errorf("writing store file: %w", err)
	}
	return nil
}
