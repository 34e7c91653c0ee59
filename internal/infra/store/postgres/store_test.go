package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"productinventory/internal/infra/store/postgres/testutil"
	"productinventory/internal/item"
	"productinventory/internal/store/core"
)

func newStubStore(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	s, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s, conn
}

func TestNewStoreEnsuresTable(t *testing.T) {
	s, conn := newStubStore(t)
	if s.Driver() != core.DriverPostgres || s.DB() == nil {
		t.Fatalf("unexpected store %v", s)
	}
	if len(conn.Execs) == 0 || !strings.Contains(strings.ToUpper(conn.Execs[0]), "CREATE TABLE") {
		t.Fatalf("expected DDL on startup, got %v", conn.Execs)
	}
}

func TestNewStoreSurfacesOpenAndPingErrors(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, errors.New("dial fail") })
	_, err := NewStore(context.Background(), "postgres://x")
	restore()
	if err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("expected open error, got %v", err)
	}

	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore = OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(context.Background(), ""); err == nil || !strings.Contains(err.Error(), "ping postgres") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestPostgresStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s, conn := newStubStore(t)
	if err := s.Put(ctx, item.Item{"productid": "p1", "name": "Widget"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := s.Get(ctx, "p1")
	if err != nil || !ok || got["name"] != "Widget" {
		t.Fatalf("Get: %v %v %v", got, ok, err)
	}
	updated, err := s.Update(ctx, "p1", "price", item.Number(9.99))
	if err != nil || updated["price"] != 9.99 {
		t.Fatalf("Update: %v %v", updated, err)
	}
	got, _, _ = s.Get(ctx, "p1")
	if got["price"] != 9.99 || got["name"] != "Widget" {
		t.Fatalf("update not persisted: %v", got)
	}
	prev, err := s.Delete(ctx, "p1")
	if err != nil || prev["name"] != "Widget" {
		t.Fatalf("Delete: %v %v", prev, err)
	}
	if _, ok, _ := s.Get(ctx, "p1"); ok {
		t.Fatalf("expected item removed")
	}
	prev, err = s.Delete(ctx, "p1")
	if err != nil || prev != nil {
		t.Fatalf("second Delete: %v %v", prev, err)
	}
	if conn.Commits != 3 {
		t.Fatalf("expected 3 commits, got %d", conn.Commits)
	}
}

func TestPostgresStoreScan(t *testing.T) {
	ctx := context.Background()
	s, _ := newStubStore(t)
	_ = s.Put(ctx, item.Item{"productid": "b"})
	if _, err := s.Update(ctx, "a", "stock", item.Number(2)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	items, err := s.Scan(ctx)
	if err != nil || len(items) != 2 {
		t.Fatalf("Scan: %v %v", items, err)
	}
	if items[0]["productid"] != "a" || items[0]["stock"] != 2.0 {
		t.Fatalf("unexpected scan result %v", items)
	}
}

func TestPostgresStoreRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	s, conn := newStubStore(t)
	conn.FailExec = true
	if _, err := s.Update(ctx, "p1", "price", item.Number(1)); err == nil || !strings.Contains(err.Error(), "exec fail") {
		t.Fatalf("expected exec error, got %v", err)
	}
	if conn.Rollbacks != 1 {
		t.Fatalf("expected rollback, got %d", conn.Rollbacks)
	}
	conn.FailExec = false
	conn.FailCommit = true
	if _, err := s.Update(ctx, "p1", "price", item.Number(1)); err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit error, got %v", err)
	}
	conn.FailCommit = false
	conn.FailBegin = true
	if _, err := s.Delete(ctx, "p1"); err == nil || !strings.Contains(err.Error(), "begin") {
		t.Fatalf("expected begin error, got %v", err)
	}
	conn.FailBegin = false
	conn.FailQuery = true
	if _, _, err := s.Get(ctx, "p1"); err == nil {
		t.Fatalf("expected query error")
	}
	if _, err := s.Scan(ctx); err == nil {
		t.Fatalf("expected scan error")
	}
}

func TestPostgresStoreRejectsEmptyKey(t *testing.T) {
	s, conn := newStubStore(t)
	before := len(conn.Queries)
	if _, _, err := s.Get(context.Background(), ""); !errors.Is(err, core.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if len(conn.Queries) != before {
		t.Fatalf("expected no queries for invalid key")
	}
}
