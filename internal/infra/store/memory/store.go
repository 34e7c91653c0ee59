// Package memory implements an in-memory item Store for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"productinventory/internal/item"
	"productinventory/internal/store/core"
)

// Store implements core.Store backed by process memory.
type Store struct {
	mu    sync.RWMutex
	items map[string]item.Item
}

// New returns an empty in-memory item store.
func New() *Store { return &Store{items: make(map[string]item.Item)} }

// Driver returns the store driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Get returns a copy of the stored item.
func (s *Store) Get(_ context.Context, id string) (item.Item, bool, error) {
	if err := core.CheckKey(id); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	it, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return it.Clone(), true, nil
}

// Scan returns all items ordered by key.
func (s *Store) Scan(_ context.Context) ([]item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]item.Item, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.items[k].Clone())
	}
	return out, nil
}

// Put replaces the item stored under its key.
func (s *Store) Put(_ context.Context, it item.Item) error {
	id, _ := it.ID()
	if err := core.CheckKey(id); err != nil {
		return err
	}
	s.mu.Lock()
	s.items[id] = it.Clone()
	s.mu.Unlock()
	return nil
}

// Update sets one field, creating the item when it does not exist yet.
func (s *Store) Update(_ context.Context, id, field string, value item.Value) (item.Item, error) {
	if err := core.CheckKey(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		it = item.Item{item.KeyAttribute: id}
		s.items[id] = it
	}
	it[field] = value.Interface()
	return item.Item{field: value.Interface()}, nil
}

// Delete removes the item returning its previous attributes.
func (s *Store) Delete(_ context.Context, id string) (item.Item, error) {
	if err := core.CheckKey(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	delete(s.items, id)
	return it, nil
}
