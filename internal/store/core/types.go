// Package core defines the item store abstraction shared by every backend.
package core

import (
	"context"
	"errors"

	"productinventory/internal/item"
)

// Driver identifies a concrete item store implementation.
type Driver string

const (
	// DriverMemory represents the in-process implementation (tests, local runs).
	DriverMemory Driver = "memory"
	// DriverDynamoDB represents the DynamoDB implementation (default).
	DriverDynamoDB Driver = "dynamodb"
	// DriverS3 represents an S3 / MinIO compatible implementation.
	DriverS3 Driver = "s3"
	// DriverSQLite represents the embedded sqlite implementation.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres represents the PostgreSQL implementation.
	DriverPostgres Driver = "postgres"
)

// Store exposes the five primitives the request handlers rely on. Each call
// is attempted exactly once; retries are left to the backend's client.
type Store interface {
	// Get returns the item stored under id; ok is false when none exists.
	Get(ctx context.Context, id string) (it item.Item, ok bool, err error)
	// Scan returns every stored item, following continuation tokens until exhausted.
	Scan(ctx context.Context) ([]item.Item, error)
	// Put stores it, replacing any existing item with the same key.
	Put(ctx context.Context, it item.Item) error
	// Update sets a single field, creating the item if absent, and returns
	// the updated attributes only.
	Update(ctx context.Context, id, field string, value item.Value) (item.Item, error)
	// Delete removes the item and returns its previous attributes (nil if none).
	Delete(ctx context.Context, id string) (item.Item, error)
	Driver() Driver
}

// ErrInvalidKey is returned when a primary key is empty.
var ErrInvalidKey = errors.New("itemstore: productid must be a non-empty string")

// CheckKey rejects keys the backends cannot address.
func CheckKey(id string) error {
	if id == "" {
		return ErrInvalidKey
	}
	return nil
}
