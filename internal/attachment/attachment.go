// Package attachment stores the uploaded bytes referenced by gallery and
// library records. Records keep only a domain.Attachment pointing at a key
// of the form `<collection>/<uuid>`.
package attachment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"auditportal/internal/attachment/core"
	"auditportal/internal/infra/attachment/fs"
	"auditportal/internal/infra/attachment/memory"
	"auditportal/internal/infra/attachment/s3"
	"auditportal/internal/logging"
	"auditportal/pkg/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type (
	// Driver identifies an attachment backend.
	Driver = core.Driver
	// Info describes stored bytes.
	Info = core.Info
	// Store is the backend interface.
	Store = core.Store
	// S3Config configures the S3-compatible driver.
	S3Config = s3.Config
)

const (
	// DriverFilesystem is the local directory driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-process driver.
	DriverMemory = core.DriverMemory
)

var (
	// ErrNotFound reports a missing key.
	ErrNotFound = core.ErrNotFound
	// ErrUnsupported reports a capability the driver lacks.
	ErrUnsupported = core.ErrUnsupported
)

// Options selects and configures a backend.
type Options struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open constructs the backend named by opts.Driver (fs when unset).
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverFilesystem:
		return fs.New(opts.FSRoot)
	case DriverS3:
		return s3.New(ctx, opts.S3)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown attachment driver %s", opts.Driver)
	}
}

// NewMemory returns an in-memory backend.
func NewMemory() Store { return memory.New() }

// Service assigns keys and stores bytes for records.
type Service struct {
	store  Store
	logger *zap.Logger
	newID  func() string
}

// NewService wraps store.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logging.OrNop(logger), newID: uuid.NewString}
}

// Save stores data under a fresh key for collection.
func (s *Service) Save(ctx context.Context, collection domain.CollectionKey, data []byte, contentType string) (domain.Attachment, error) {
	key := string(collection) + "/" + s.newID()
	info, err := s.store.Put(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("store attachment: %w", err)
	}
	return domain.Attachment{Key: info.Key, ContentType: info.ContentType, Size: info.Size}, nil
}

// Open returns the bytes behind a.
func (s *Service) Open(ctx context.Context, a domain.Attachment) (io.ReadCloser, error) {
	rc, _, err := s.store.Open(ctx, a.Key)
	return rc, err
}

// URL returns a time-limited link to a.
func (s *Service) URL(ctx context.Context, a domain.Attachment, expiry time.Duration) (string, error) {
	return s.store.URL(ctx, a.Key, expiry)
}

// Discard deletes a's bytes. Failures are logged only; a record removal
// never fails because its attachment could not be cleaned up.
func (s *Service) Discard(ctx context.Context, a domain.Attachment) {
	if a.Key == "" {
		return
	}
	if _, err := s.store.Delete(ctx, a.Key); err != nil {
		s.logger.Warn("discard attachment", zap.String("key", a.Key), zap.Error(err))
	}
}

// Orphans lists stored keys under collection that no record references.
func (s *Service) Orphans(ctx context.Context, collection domain.CollectionKey, referenced []domain.Attachment) ([]Info, error) {
	infos, err := s.store.List(ctx, string(collection)+"/")
	if err != nil {
		return nil, err
	}
	used := make(map[string]struct{}, len(referenced))
	for _, a := range referenced {
		used[a.Key] = struct{}{}
	}
	var out []Info
	for _, info := range infos {
		if _, ok := used[info.Key]; !ok {
			out = append(out, info)
		}
	}
	return out, nil
}
