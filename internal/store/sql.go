package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Compile-time interface check
var _ Store = (*SQLStore)(nil)

// kvEntry is one stored key.
type kvEntry struct {
	bun.BaseModel `bun:"table:kv_entries"`

	Name      string    `bun:"name,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// SQLStore persists keys in a SQLite table through Bun.
type SQLStore struct {
	db *bun.DB
}

// OpenSQLStore opens (or creates) the SQLite database at dsn and ensures the
// key-value table exists.
func OpenSQLStore(ctx context.Context, dsn string) (*SQLStore, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and
	// serializes writers the way the file store does.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if _, err := db.NewCreateTable().Model((*kvEntry)(nil)).IfNotExists().Exec(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating kv table: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// Get decodes key into dest.
func (s *SQLStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	var e kvEntry
	err := s.db.NewSelect().Model(&e).Where("name = ?", key).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %q: %w", key, err)
	}
	return true, decode(key, []byte(e.Value), dest)
}

// GetSync decodes key into dest using a background context.
func (s *SQLStore) GetSync(key string, dest any) (bool, error) {
	return s.Get(context.Background(), key, dest)
}

// Set upserts value under key.
func (s *SQLStore) Set(ctx context.Context, key string, value any) error {
	raw, err := encode(key, value)
	if err != nil {
		return err
	}

	e := &kvEntry{
		Name:      key,
		Value:     string(raw),
		UpdatedAt: time.Now().UTC(),
	}
	_, err = s.db.NewInsert().
		Model(e).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (s *SQLStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.NewDelete().Model((*kvEntry)(nil)).Where("name = ?", key).Exec(ctx); err != nil {
		return fmt.Errorf("removing %q: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
