// Package config reads portal settings from AUDITPORTAL_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"auditportal/internal/attachment"
	"auditportal/internal/broadcast"
	"auditportal/internal/kv"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every variable name.
const Prefix = "AUDITPORTAL_"

// Config is the process configuration.
type Config struct {
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"auditportal.db"`
	PostgresDSN   string `env:"POSTGRES_DSN"`
	RedisURL      string `env:"REDIS_URL"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"auditportal:"`

	BroadcastDriver  string `env:"BROADCAST_DRIVER" envDefault:"local"`
	BroadcastChannel string `env:"BROADCAST_CHANNEL"`

	BlobDriver    string        `env:"BLOB_DRIVER" envDefault:"fs"`
	BlobFSRoot    string        `env:"BLOB_FS_ROOT" envDefault:"./attachments"`
	S3Bucket      string        `env:"BLOB_S3_BUCKET"`
	S3Region      string        `env:"BLOB_S3_REGION" envDefault:"ap-south-1"`
	S3Endpoint    string        `env:"BLOB_S3_ENDPOINT"`
	S3PathStyle   bool          `env:"BLOB_S3_PATH_STYLE" envDefault:"false"`
	S3AccessKey   string        `env:"BLOB_S3_ACCESS_KEY_ID"`
	S3SecretKey   string        `env:"BLOB_S3_SECRET_ACCESS_KEY"`
	AttachmentTTL time.Duration `env:"BLOB_URL_TTL" envDefault:"15m"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`
	CatalogPath string `env:"CATALOG_PATH"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9464"`
	Timezone    string `env:"TIMEZONE" envDefault:"Asia/Kolkata"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// FromMap parses vars instead of the process environment. Keys carry the
// prefix.
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks driver names and the settings each driver needs.
func (c Config) Validate() error {
	switch kv.Driver(c.StorageDriver) {
	case kv.DriverMemory, kv.DriverSQLite:
	case kv.DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%sPOSTGRES_DSN required for postgres storage", Prefix)
		}
	case kv.DriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%sREDIS_URL required for redis storage", Prefix)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	switch broadcast.Driver(c.BroadcastDriver) {
	case broadcast.DriverLocal:
	case broadcast.DriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%sREDIS_URL required for redis broadcast", Prefix)
		}
	case broadcast.DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%sPOSTGRES_DSN required for postgres broadcast", Prefix)
		}
	default:
		return fmt.Errorf("unknown broadcast driver %q", c.BroadcastDriver)
	}
	switch attachment.Driver(c.BlobDriver) {
	case attachment.DriverFilesystem, attachment.DriverMemory:
	case attachment.DriverS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("%sBLOB_S3_BUCKET required for s3 attachments", Prefix)
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.BlobDriver)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// KVOptions returns the storage settings.
func (c Config) KVOptions() kv.Options {
	return kv.Options{
		Driver:      kv.Driver(c.StorageDriver),
		SQLitePath:  c.SQLitePath,
		PostgresDSN: c.PostgresDSN,
		RedisURL:    c.RedisURL,
		RedisPrefix: c.RedisPrefix,
	}
}

// BroadcastOptions returns the change-bus settings.
func (c Config) BroadcastOptions() broadcast.Options {
	return broadcast.Options{
		Driver:          broadcast.Driver(c.BroadcastDriver),
		RedisURL:        c.RedisURL,
		PostgresDSN:     c.PostgresDSN,
		PostgresChannel: c.BroadcastChannel,
		RedisPrefix:     c.BroadcastChannel,
	}
}

// AttachmentOptions returns the attachment backend settings.
func (c Config) AttachmentOptions() attachment.Options {
	return attachment.Options{
		Driver: attachment.Driver(c.BlobDriver),
		FSRoot: c.BlobFSRoot,
		S3: attachment.S3Config{
			Bucket:          c.S3Bucket,
			Region:          c.S3Region,
			Endpoint:        c.S3Endpoint,
			AccessKeyID:     c.S3AccessKey,
			SecretAccessKey: c.S3SecretKey,
			PathStyle:       c.S3PathStyle,
		},
	}
}

// Location returns the configured time zone used for week boundaries.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
