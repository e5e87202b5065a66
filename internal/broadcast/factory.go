package broadcast

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Driver identifies a change-bus transport.
type Driver string

const (
	// DriverLocal delivers changes within the process only.
	DriverLocal Driver = "local"
	// DriverRedis relays changes through Redis pub/sub.
	DriverRedis Driver = "redis"
	// DriverPostgres relays changes through Postgres LISTEN/NOTIFY.
	DriverPostgres Driver = "postgres"
)

// Options selects and configures a bus transport.
type Options struct {
	Driver          Driver
	RedisURL        string
	RedisPrefix     string
	PostgresDSN     string
	PostgresChannel string
}

// Open constructs the bus named by opts.Driver (local when unset).
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Bus, error) {
	switch opts.Driver {
	case "", DriverLocal:
		return NewLocalBus(), nil
	case DriverRedis:
		url := opts.RedisURL
		if url == "" {
			url = "redis://localhost:6379/0"
		}
		ro, err := goredis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := goredis.NewClient(ro)
		b, err := NewRedisBus(ctx, client, opts.RedisPrefix, logger)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		b.ownClient = true
		return b, nil
	case DriverPostgres:
		if opts.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres bus requires a DSN")
		}
		return NewPostgresBus(ctx, opts.PostgresDSN, opts.PostgresChannel, logger)
	default:
		return nil, fmt.Errorf("unknown broadcast driver %s", opts.Driver)
	}
}
