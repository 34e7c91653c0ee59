package store

import (
	"context"
	"log/slog"
	"time"

	"productinventory/internal/item"
)

// StoreObserver receives one observation per store primitive.
type StoreObserver interface {
	ObserveStore(driver, operation string, success bool, d time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveStore(string, string, bool, time.Duration) {}

type instrumented struct {
	next     Store
	observer StoreObserver
	logger   *slog.Logger
	now      func() time.Time
}

// Instrument wraps s so every primitive is timed, reported to obs and, on
// failure, logged at debug level. Callers own the error-level report. A nil obs or logger disables that side.
func Instrument(s Store, obs StoreObserver, logger *slog.Logger) Store {
	if obs == nil {
		obs = noopObserver{}
	}
	return &instrumented{next: s, observer: obs, logger: logger, now: time.Now}
}

func (s *instrumented) Driver() Driver { return s.next.Driver() }

func (s *instrumented) observe(ctx context.Context, op string, start time.Time, err error) {
	d := s.now().Sub(start)
	s.observer.ObserveStore(string(s.next.Driver()), op, err == nil, d)
	if err != nil && s.logger != nil {
		s.logger.DebugContext(ctx, "store_failure",
			"driver", string(s.next.Driver()),
			"operation", op,
			"duration", d,
			"error", err.Error())
	}
}

func (s *instrumented) Get(ctx context.Context, id string) (it item.Item, ok bool, err error) {
	defer func(start time.Time) { s.observe(ctx, "get", start, err) }(s.now())
	return s.next.Get(ctx, id)
}

func (s *instrumented) Scan(ctx context.Context) (items []item.Item, err error) {
	defer func(start time.Time) { s.observe(ctx, "scan", start, err) }(s.now())
	return s.next.Scan(ctx)
}

func (s *instrumented) Put(ctx context.Context, it item.Item) (err error) {
	defer func(start time.Time) { s.observe(ctx, "put", start, err) }(s.now())
	return s.next.Put(ctx, it)
}

func (s *instrumented) Update(ctx context.Context, id, field string, value item.Value) (attrs item.Item, err error) {
	defer func(start time.Time) { s.observe(ctx, "update", start, err) }(s.now())
	return s.next.Update(ctx, id, field, value)
}

func (s *instrumented) Delete(ctx context.Context, id string) (prev item.Item, err error) {
	defer func(start time.Time) { s.observe(ctx, "delete", start, err) }(s.now())
	return s.next.Delete(ctx, id)
}
