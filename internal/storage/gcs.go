package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/staplewise/marketplace-backend/internal/config"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

type GCSStore struct {
	client    *gcs.Client
	projectID string
}

func NewGCSStore(ctx context.Context, cfg config.StorageConfig) (*GCSStore, error) {
	var opts []option.ClientOption
	if cfg.GCSCredentialsJSON != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.GCSCredentialsJSON), gcs.ScopeFullControl)
		if err != nil {
			return nil, fmt.Errorf("gcs credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}
	if cfg.GCSEndpoint != "" {
		// fake-gcs-server and other emulators
		opts = append(opts, option.WithEndpoint(cfg.GCSEndpoint), option.WithoutAuthentication())
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCSStore{client: client, projectID: cfg.GCSProjectID}, nil
}

func (s *GCSStore) Put(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) error {
	w := s.client.Bucket(bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (s *GCSStore) Remove(ctx context.Context, bucket, name string) error {
	err := s.client.Bucket(bucket).Object(name).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrObjectNotFound
	}
	return err
}

func (s *GCSStore) EnsureBucket(ctx context.Context, bucket string, public bool) error {
	b := s.client.Bucket(bucket)
	if _, err := b.Attrs(ctx); err != nil {
		if !errors.Is(err, gcs.ErrBucketNotExist) {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if err := b.Create(ctx, s.projectID, nil); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}
	if public {
		if err := b.DefaultObjectACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
			return fmt.Errorf("set acl on %s: %w", bucket, err)
		}
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
