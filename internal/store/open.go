package store

import (
	"context"
	"fmt"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	Path       string // file path or SQLite DSN; defaults under Home
	Home       string
	Passphrase string // file backend only
}

// Open constructs the configured backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendFile, "":
		path := opts.Path
		if path == "" {
			path = filepath.Join(opts.Home, "wallets.json")
		}
		var fileOpts []FileOption
		if opts.Passphrase != "" {
			fileOpts = append(fileOpts, WithPassphrase(opts.Passphrase))
		}
		return OpenFileStore(path, fileOpts...)
	case BackendSQLite:
		dsn := opts.Path
		if dsn == "" {
			dsn = filepath.Join(opts.Home, "wallets.db")
		}
		return OpenSQLStore(ctx, dsn)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
