package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"productinventory/internal/item"
	"productinventory/internal/store/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "nested", "items.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if s.Driver() != core.DriverSQLite {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
	if err := s.Put(ctx, item.Item{"productid": "p1", "name": "Widget", "dims": map[string]any{"w": 1.0}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := s.Get(ctx, "p1")
	if err != nil || !ok || got["name"] != "Widget" {
		t.Fatalf("Get: %v %v %v", got, ok, err)
	}
	if dims, _ := got["dims"].(map[string]any); dims["w"] != 1.0 {
		t.Fatalf("nested attribute lost: %v", got)
	}
	updated, err := s.Update(ctx, "p1", "price", item.Number(9.99))
	if err != nil || updated["price"] != 9.99 {
		t.Fatalf("Update: %v %v", updated, err)
	}
	prev, err := s.Delete(ctx, "p1")
	if err != nil || prev["price"] != 9.99 || prev["name"] != "Widget" {
		t.Fatalf("Delete: %v %v", prev, err)
	}
	if _, ok, _ := s.Get(ctx, "p1"); ok {
		t.Fatalf("expected deleted item to be gone")
	}
	prev, err = s.Delete(ctx, "p1")
	if err != nil || prev != nil {
		t.Fatalf("second Delete: %v %v", prev, err)
	}
}

func TestSQLiteStorePutOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_ = s.Put(ctx, item.Item{"productid": "p1", "name": "Widget", "color": "red"})
	_ = s.Put(ctx, item.Item{"productid": "p1", "name": "Gadget"})
	got, _, _ := s.Get(ctx, "p1")
	if got["name"] != "Gadget" {
		t.Fatalf("expected overwrite, got %v", got)
	}
	if _, present := got["color"]; present {
		t.Fatalf("overwrite must not merge: %v", got)
	}
}

func TestSQLiteStoreScanAndUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if _, err := s.Update(ctx, "b", "stock", item.Number(1)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	_ = s.Put(ctx, item.Item{"productid": "a"})
	items, err := s.Scan(ctx)
	if err != nil || len(items) != 2 {
		t.Fatalf("Scan: %v %v", items, err)
	}
	if items[0]["productid"] != "a" || items[1]["stock"] != 1.0 {
		t.Fatalf("unexpected scan result %v", items)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "items.db")
	s, err := NewStore(ctx, path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	_ = s.Put(ctx, item.Item{"productid": "p1"})
	_ = s.Close()
	reopened, err := NewStore(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if _, ok, _ := reopened.Get(ctx, "p1"); !ok {
		t.Fatalf("expected item after reopen")
	}
	if reopened.Path() != path {
		t.Fatalf("unexpected path %s", reopened.Path())
	}
}

func TestSQLiteStoreRejectsEmptyKey(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Delete(context.Background(), ""); !errors.Is(err, core.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
