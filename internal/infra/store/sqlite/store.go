// Package sqlite persists items to an embedded SQLite database, one JSON
// payload per row.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"productinventory/internal/item"
	"productinventory/internal/store/core"
)

// DefaultPath is used when no database path is configured.
const DefaultPath = "product-inventory.db"

// Store implements core.Store on a single SQLite table.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at path.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: sqlite permits a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS items (
		productid TEXT PRIMARY KEY,
		payload TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create items table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Driver returns the store driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverSQLite }

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func load(ctx context.Context, q queryer, id string) (item.Item, bool, error) {
	var payload []byte
	err := q.QueryRowContext(ctx, `SELECT payload FROM items WHERE productid = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", id, err)
	}
	var it item.Item
	if err := json.Unmarshal(payload, &it); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", id, err)
	}
	return it, true, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func save(ctx context.Context, e execer, id string, it item.Item) error {
	payload, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}
	if _, err := e.ExecContext(ctx, `INSERT INTO items(productid,payload) VALUES(?,?) ON CONFLICT(productid) DO UPDATE SET payload=excluded.payload`, id, string(payload)); err != nil {
		return fmt.Errorf("upsert %s: %w", id, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (item.Item, bool, error) {
	if err := core.CheckKey(id); err != nil {
		return nil, false, err
	}
	return load(ctx, s.db, id)
}

func (s *Store) Scan(ctx context.Context) ([]item.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM items ORDER BY productid`)
	if err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}
	defer func() { _ = rows.Close() }()
	items := make([]item.Item, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var it item.Item
		if err := json.Unmarshal(payload, &it); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) Put(ctx context.Context, it item.Item) error {
	id, _ := it.ID()
	if err := core.CheckKey(id); err != nil {
		return err
	}
	return save(ctx, s.db, id, it)
}

func (s *Store) Update(ctx context.Context, id, field string, value item.Value) (updated item.Item, retErr error) {
	if err := core.CheckKey(id); err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	it, ok, err := load(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		it = item.Item{item.KeyAttribute: id}
	}
	it[field] = value.Interface()
	if err := save(ctx, tx, id, it); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return item.Item{field: value.Interface()}, nil
}

func (s *Store) Delete(ctx context.Context, id string) (prev item.Item, retErr error) {
	if err := core.CheckKey(id); err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	prev, ok, err := load(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE productid = ?`, id); err != nil {
			return nil, fmt.Errorf("delete %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return prev, nil
}
