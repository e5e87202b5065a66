// Package core defines the attachment storage abstraction shared by the
// attachment service and the backend drivers.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies an attachment storage backend.
type Driver string

const (
	// DriverFilesystem stores attachments under a local directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 stores attachments in an S3 or MinIO bucket.
	DriverS3 Driver = "s3"
	// DriverMemory keeps attachments in process memory.
	DriverMemory Driver = "memory"
)

// Info describes stored bytes.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType,omitempty"`
	Checksum     string    `json:"checksum,omitempty"`
	LastModified time.Time `json:"lastModified"`
}

// Store is the minimal object-store surface attachments need. Put is
// create-only; Delete reports whether the key existed.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Open(ctx context.Context, key string) (io.ReadCloser, Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	// URL returns a link to key valid for at least expiry, or ErrUnsupported.
	URL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Driver() Driver
}

var (
	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("attachment: not found")
	// ErrExists is returned by Put when the key is already taken.
	ErrExists = errors.New("attachment: already exists")
	// ErrUnsupported is returned for capabilities a driver lacks.
	ErrUnsupported = errors.New("attachment: unsupported operation")
)
