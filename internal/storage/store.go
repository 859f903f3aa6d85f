package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/staplewise/marketplace-backend/internal/config"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the minimal bucket/object API the marketplace needs.
type ObjectStore interface {
	Put(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, bucket, name string) error
	EnsureBucket(ctx context.Context, bucket string, public bool) error
}

// Open builds the object store selected by STORAGE_BACKEND. The returned
// close func releases client resources.
func Open(ctx context.Context, cfg config.StorageConfig) (ObjectStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case "minio":
		s, err := NewMinioStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case "gcs":
		s, err := NewGCSStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "memory":
		return NewMemoryStore(), noop, nil
	}
	return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
}
