// Package postgres provides a PostgreSQL-backed item store keeping each item
// as a JSONB document keyed by productid.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"productinventory/internal/item"
	"productinventory/internal/store/core"
)

// Compile-time contract assertion ensuring the store satisfies the core interface.
var _ core.Store = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/product_inventory?sslmode=disable"
)

const (
	ddlItems   = `CREATE TABLE IF NOT EXISTS items (productid TEXT PRIMARY KEY, payload JSONB NOT NULL)`
	selectItem = `SELECT payload FROM items WHERE productid = $1`
	lockItem   = `SELECT payload FROM items WHERE productid = $1 FOR UPDATE`
	selectAll  = `SELECT payload FROM items ORDER BY productid`
	upsertItem = `INSERT INTO items (productid, payload) VALUES ($1, $2) ON CONFLICT (productid) DO UPDATE SET payload = EXCLUDED.payload`
	deleteItem = `DELETE FROM items WHERE productid = $1`
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store persists items to Postgres.
type Store struct {
	db *sql.DB
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back
// to defaultDSN) and ensures the items table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, ddlItems); err != nil {
		return nil, fmt.Errorf("ensure items table: %w", err)
	}
	return &Store{db: db}, nil
}

// Driver returns the store driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverPostgres }

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func load(ctx context.Context, q rowQueryer, query, id string) (item.Item, bool, error) {
	var payload []byte
	err := q.QueryRowContext(ctx, query, id).Scan(&payload)
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
	if _, err := e.ExecContext(ctx, upsertItem, id, string(payload)); err != nil {
		return fmt.Errorf("upsert %s: %w", id, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (item.Item, bool, error) {
	if err := core.CheckKey(id); err != nil {
		return nil, false, err
	}
	return load(ctx, s.db, selectItem, id)
}

func (s *Store) Scan(ctx context.Context) ([]item.Item, error) {
	rows, err := s.db.QueryContext(ctx, selectAll)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}
	return items, nil
}

func (s *Store) Put(ctx context.Context, it item.Item) error {
	id, _ := it.ID()
	if err := core.CheckKey(id); err != nil {
		return err
	}
	return save(ctx, s.db, id, it)
}

// Update locks the row (when present) for the read-modify-write.
func (s *Store) Update(ctx context.Context, id, field string, value item.Value) (item.Item, error) {
	if err := core.CheckKey(id); err != nil {
		return nil, err
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		it, ok, err := load(ctx, tx, lockItem, id)
		if err != nil {
			return err
		}
		if !ok {
			it = item.Item{item.KeyAttribute: id}
		}
		it[field] = value.Interface()
		return save(ctx, tx, id, it)
	})
	if err != nil {
		return nil, err
	}
	return item.Item{field: value.Interface()}, nil
}

func (s *Store) Delete(ctx context.Context, id string) (item.Item, error) {
	if err := core.CheckKey(id); err != nil {
		return nil, err
	}
	var prev item.Item
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		it, ok, err := load(ctx, tx, lockItem, id)
		if err != nil || !ok {
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteItem, id); err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
		prev = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prev, nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
