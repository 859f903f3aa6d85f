package service

import (
	"context"
	"errors"
	"io"

	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/storage"
)

type Uploader interface {
	Upload(ctx context.Context, bucket, filename string, r io.Reader, size int64, contentType string) (*storage.Upload, error)
}

type UploadService interface {
	Upload(ctx context.Context, actor Actor, bucket, filename string, r io.Reader, size int64, contentType string) (*storage.Upload, error)
}

type uploadService struct {
	store Uploader
}

func NewUploadService(store Uploader) UploadService {
	return &uploadService{store: store}
}

func (s *uploadService) Upload(ctx context.Context, actor Actor, bucket, filename string, r io.Reader, size int64, contentType string) (*storage.Upload, error) {
	if !actor.Can(model.PermUploadFiles) {
		return nil, ErrForbidden
	}
	if filename == "" {
		return nil, invalid("file", "no file uploaded")
	}
	up, err := s.store.Upload(ctx, bucket, filename, r, size, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnknownBucket) {
			return nil, invalid("bucket", "is not an upload bucket")
		}
		return nil, err
	}
	return up, nil
}
