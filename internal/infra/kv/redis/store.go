// Package redis stores key-value pairs as Redis strings under a key prefix.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"auditportal/internal/kv/core"

	goredis "github.com/redis/go-redis/v9"
)

var _ core.Store = (*Store)(nil)

const (
	defaultURL    = "redis://localhost:6379/0"
	defaultPrefix = "auditportal:"
)

// Config configures the Redis connection.
type Config struct {
	// URL is the Redis connection string (e.g. "redis://localhost:6379/0").
	URL string
	// Prefix namespaces every stored key.
	Prefix string
	// ConnectTimeout bounds connection establishment and the startup ping.
	ConnectTimeout time.Duration
}

// Store implements core.Store on a go-redis client.
type Store struct {
	client *goredis.Client
	prefix string
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Prefix == "" {
		cfg.Prefix = defaultPrefix
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = cfg.ConnectTimeout
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Store{client: client, prefix: cfg.Prefix}, nil
}

// NewWithClient wraps an existing client; the store takes ownership of it.
func NewWithClient(client *goredis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Driver returns the key-value driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverRedis }

// Get returns the value stored for key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys scans for every key under the prefix and returns them unprefixed.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Client exposes the underlying client so a change bus can share the connection pool.
func (s *Store) Client() *goredis.Client { return s.client }

// Close closes the Redis client.
func (s *Store) Close() error { return s.client.Close() }
