package kv

import (
	"context"
	"fmt"

	"auditportal/internal/infra/kv/memory"
	"auditportal/internal/infra/kv/postgres"
	"auditportal/internal/infra/kv/redis"
	"auditportal/internal/infra/kv/sqlite"
)

// Options selects and configures a key-value driver. Empty fields fall back
// to each driver's defaults.
type Options struct {
	Driver      Driver
	SQLitePath  string
	PostgresDSN string
	RedisURL    string
	RedisPrefix string
}

// Open constructs the key-value store named by opts.Driver (sqlite when unset).
func Open(ctx context.Context, opts Options) (Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	switch driver {
	case DriverMemory:
		return memory.New(), nil
	case DriverSQLite:
		return sqlite.New(ctx, opts.SQLitePath)
	case DriverPostgres:
		return postgres.New(ctx, opts.PostgresDSN)
	case DriverRedis:
		return redis.New(ctx, redis.Config{URL: opts.RedisURL, Prefix: opts.RedisPrefix})
	default:
		return nil, fmt.Errorf("unknown kv driver %s", driver)
	}
}

// NewMemory returns an in-memory store, mainly for tests.
func NewMemory() Store { return memory.New() }
