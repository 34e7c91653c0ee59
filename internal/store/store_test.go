package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"

	"productinventory/internal/config"
	"productinventory/internal/infra/store/memory"
	"productinventory/internal/item"
	"productinventory/internal/logging"
)

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), config.StoreConfig{Driver: "memory"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Driver() != DriverMemory {
		t.Fatalf("expected memory driver, got %s", s.Driver())
	}
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.db")
	s, err := Open(context.Background(), config.StoreConfig{Driver: "sqlite", SQLitePath: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Driver() != DriverSQLite {
		t.Fatalf("expected sqlite driver, got %s", s.Driver())
	}
	if c, ok := s.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}

func TestOpenValidationErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := Open(ctx, config.StoreConfig{Driver: "cassandra"}); err == nil || !strings.Contains(err.Error(), "unknown store driver") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
	if _, err := Open(ctx, config.StoreConfig{Driver: "dynamodb"}); err == nil {
		t.Fatalf("expected dynamodb table error")
	}
	if _, err := Open(ctx, config.StoreConfig{Driver: "s3"}); err == nil {
		t.Fatalf("expected s3 bucket error")
	}
}

type observation struct {
	driver, op string
	success    bool
}

type captureObserver struct{ seen []observation }

func (c *captureObserver) ObserveStore(driver, op string, success bool, _ time.Duration) {
	c.seen = append(c.seen, observation{driver, op, success})
}

type failingStore struct{ Store }

func (failingStore) Scan(context.Context) ([]item.Item, error) {
	return nil, errors.New("throttled")
}

func TestInstrumentReportsEveryPrimitive(t *testing.T) {
	ctx := context.Background()
	obs := &captureObserver{}
	s := Instrument(memory.New(), obs, nil)

	if err := s.Put(ctx, item.Item{"productid": "p1"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, _, err := s.Get(ctx, "p1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := s.Update(ctx, "p1", "price", item.Number(3)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.Scan(ctx); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if _, err := s.Delete(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, _, _ = s.Get(ctx, "")

	want := []observation{
		{"memory", "put", true},
		{"memory", "get", true},
		{"memory", "update", true},
		{"memory", "scan", true},
		{"memory", "delete", true},
		{"memory", "get", false},
	}
	if len(obs.seen) != len(want) {
		t.Fatalf("expected %d observations, got %+v", len(want), obs.seen)
	}
	for i := range want {
		if obs.seen[i] != want[i] {
			t.Fatalf("observation %d: want %+v got %+v", i, want[i], obs.seen[i])
		}
	}
}

func TestInstrumentLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	s := Instrument(failingStore{memory.New()}, nil, logging.NewWriter(&buf, zapcore.DebugLevel))
	if _, err := s.Scan(context.Background()); err == nil {
		t.Fatalf("expected scan error")
	}
	out := buf.String()
	if !strings.Contains(out, "store_failure") || !strings.Contains(out, "throttled") || !strings.Contains(out, `"operation":"scan"`) ||
		!strings.Contains(out, `"level":"debug"`) {
		t.Fatalf("unexpected log output %q", out)
	}
}
