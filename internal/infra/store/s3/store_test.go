package s3

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"productinventory/internal/item"
	"productinventory/internal/store/core"
)

func TestS3StoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests("products/", 0)
	if s.Driver() != core.DriverS3 {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
	if _, ok, err := s.Get(ctx, "p1"); err != nil || ok {
		t.Fatalf("expected missing item, got %v %v", ok, err)
	}
	if err := s.Put(ctx, item.Item{"productid": "p1", "name": "Widget"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := s.Get(ctx, "p1")
	if err != nil || !ok || got["name"] != "Widget" {
		t.Fatalf("Get: %v %v %v", got, ok, err)
	}
	updated, err := s.Update(ctx, "p1", "price", item.Number(9.99))
	if err != nil || updated["price"] != 9.99 || len(updated) != 1 {
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
	prev, err = s.Delete(ctx, "p1")
	if err != nil || prev != nil {
		t.Fatalf("second Delete: %v %v", prev, err)
	}
}

func TestS3StoreUpdateCreatesItem(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests("", 0)
	if _, err := s.Update(ctx, "p2", "stock", item.Number(4)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, ok, _ := s.Get(ctx, "p2")
	if !ok || got["productid"] != "p2" || got["stock"] != 4.0 {
		t.Fatalf("expected upserted item, got %v", got)
	}
}

func TestS3StoreScanPaginates(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests("products/", 2)
	for i := 0; i < 5; i++ {
		if err := s.Put(ctx, item.Item{"productid": fmt.Sprintf("p%d", i)}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	items, err := s.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected 5 items across pages, got %d", len(items))
	}
}

func TestS3StoreRejectsEmptyKey(t *testing.T) {
	s := NewMockForTests("", 0)
	if _, _, err := s.Get(context.Background(), ""); !errors.Is(err, core.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
}

func TestDecodeChunked(t *testing.T) {
	body := []byte("5;chunk-signature=abc\r\nhello\r\n0\r\nx-amz-checksum-crc32:AAAA\r\n\r\n")
	out, ok := decodeChunked(body)
	if !ok || string(out) != "hello" {
		t.Fatalf("decodeChunked = %q %v", out, ok)
	}
	if _, ok := decodeChunked([]byte("zz\r\n")); ok {
		t.Fatalf("expected failure for malformed framing")
	}
}
