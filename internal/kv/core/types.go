// Package core defines the persistent key-value abstraction every entity
// collection is stored in. One key holds one collection's serialized value.
package core

import (
	"context"
	"errors"
)

// Driver identifies a concrete key-value backend implementation.
type Driver string

const (
	// DriverMemory keeps values in process memory (tests, ephemeral runs).
	DriverMemory Driver = "memory"
	// DriverSQLite stores values in an embedded sqlite file (default).
	DriverSQLite Driver = "sqlite"
	// DriverPostgres stores values in a PostgreSQL table.
	DriverPostgres Driver = "postgres"
	// DriverRedis stores values as Redis strings under a key prefix.
	DriverRedis Driver = "redis"
)

// Store is the durable key-value surface entity stores persist through.
// Get reports ok=false for a key that was never written.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
	Driver() Driver
}

// ErrClosed is returned by drivers used after Close.
var ErrClosed = errors.New("kv: store closed")
