// Package fileutil provides filesystem helpers for the wallet data directory.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DirPermissions is the mode used when creating data directories.
const DirPermissions = 0o750

// ErrEmptyPath indicates an empty file path was provided.
var ErrEmptyPath = errors.New("path is empty")

// WriteAtomic writes data to path atomically with the provided permissions.
// The parent directory is created if missing. Data goes to a temp file in the
// same directory which is fsynced and then renamed over path.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmpFile.Name()
	closed := false
	defer func() {
		if !closed {
			_ = tmpFile.Close()
		}
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Chmod(perm); err != nil {
		return fmt.Errorf("setting temp file permissions: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	closed = true

	if err := os.Rename(tmpPath, path); err != nil { //nolint:gosec // G703: path comes from config, not user input
		return fmt.Errorf("renaming temp file: %w", err)
	}

	// Best effort directory sync for rename durability.
	if dirFile, err := os.Open(dir); err == nil { //nolint:gosec // G304: dir is derived from path
		_ = dirFile.Sync()
		_ = dirFile.Close()
	}

	return nil
}

// ReadOptional reads path, reporting found=false instead of an error when the
// file does not exist.
func ReadOptional(path string) (data []byte, found bool, err error) {
	if path == "" {
		return nil, false, ErrEmptyPath
	}

	data, err = os.ReadFile(path) //nolint:gosec // G304: path comes from config
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return data, true, nil
}
