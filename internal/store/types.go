// Package store re-exports core item store abstractions and selects a
// backend from configuration.
package store

import (
	"productinventory/internal/store/core"
)

type (
	// Driver identifies an item store backend driver.
	Driver = core.Driver
	// Store is the interface for item store backends.
	Store = core.Store
)

const (
	DriverMemory   = core.DriverMemory
	DriverDynamoDB = core.DriverDynamoDB
	DriverS3       = core.DriverS3
	DriverSQLite   = core.DriverSQLite
	DriverPostgres = core.DriverPostgres
)

// ErrInvalidKey indicates an empty primary key.
var ErrInvalidKey = core.ErrInvalidKey
