// Package kv re-exports the key-value abstractions and selects a driver.
// Packages outside internal/kv depend on kv.Store, never on a driver package.
package kv

import "auditportal/internal/kv/core"

type (
	// Driver identifies a key-value backend driver.
	Driver = core.Driver
	// Store is the interface for key-value backends.
	Store = core.Store
)

const (
	// DriverMemory is the in-memory driver.
	DriverMemory = core.DriverMemory
	// DriverSQLite is the embedded sqlite driver.
	DriverSQLite = core.DriverSQLite
	// DriverPostgres is the PostgreSQL driver.
	DriverPostgres = core.DriverPostgres
	// DriverRedis is the Redis driver.
	DriverRedis = core.DriverRedis
)

// ErrClosed is returned by drivers used after Close.
var ErrClosed = core.ErrClosed
