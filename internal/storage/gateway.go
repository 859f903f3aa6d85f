package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/staplewise/marketplace-backend/internal/config"
	"github.com/staplewise/marketplace-backend/internal/logging"
	"go.uber.org/zap"
)

var ErrUnknownBucket = errors.New("unknown bucket")

// CleanupReport lists the image URLs whose objects were scheduled for
// deletion and the subset that could not be removed.
type CleanupReport struct {
	Attempted []string `json:"attempted"`
	Failed    []string `json:"failed"`
}

func (r CleanupReport) OK() bool {
	return len(r.Failed) == 0
}

type Upload struct {
	Bucket string `json:"bucket"`
	Name   string `json:"fileName"`
	URL    string `json:"url"`
}

type Gateway struct {
	store      ObjectStore
	images     string
	documents  string
	publicBase string
	rewriter   *URLRewriter
	log        *zap.Logger
	now        func() time.Time
}

func NewGateway(store ObjectStore, cfg config.StorageConfig, log *zap.Logger) *Gateway {
	return &Gateway{
		store:      store,
		images:     cfg.ImagesBucket,
		documents:  cfg.DocumentsBucket,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
		rewriter:   NewURLRewriter(cfg.LegacyBaseURL, cfg.LegacyHost, cfg.PublicBaseURL),
		log:        log,
		now:        time.Now,
	}
}

// EnsureBuckets creates both buckets if needed; the image bucket is public.
func (g *Gateway) EnsureBuckets(ctx context.Context) error {
	if err := g.store.EnsureBucket(ctx, g.images, true); err != nil {
		return err
	}
	return g.store.EnsureBucket(ctx, g.documents, false)
}

func (g *Gateway) ResolveBucket(name string) (string, error) {
	switch name {
	case "", g.images:
		return g.images, nil
	case g.documents:
		return g.documents, nil
	}
	return "", ErrUnknownBucket
}

func (g *Gateway) Upload(ctx context.Context, bucket, filename string, r io.Reader, size int64, contentType string) (*Upload, error) {
	bucket, err := g.ResolveBucket(bucket)
	if err != nil {
		return nil, err
	}
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		base = "upload"
	}
	name := fmt.Sprintf("%d-%s", g.now().UnixMilli(), base)
	if err := g.store.Put(ctx, bucket, name, r, size, contentType); err != nil {
		return nil, fmt.Errorf("put %s/%s: %w", bucket, name, err)
	}
	return &Upload{Bucket: bucket, Name: name, URL: g.PublicURL(bucket, name)}, nil
}

func (g *Gateway) PublicURL(bucket, name string) string {
	return g.publicBase + "/" + bucket + "/" + url.PathEscape(name)
}

func (g *Gateway) RewriteURL(raw string) string {
	return g.rewriter.Rewrite(raw)
}

func (g *Gateway) RewriteURLs(urls []string) []string {
	return g.rewriter.RewriteAll(urls)
}

// DeleteImages removes the image object behind each URL. Failures are
// logged and reported; they never stop the remaining deletions.
func (g *Gateway) DeleteImages(ctx context.Context, urls []string) CleanupReport {
	log := logging.With(ctx, g.log)
	report := CleanupReport{Attempted: []string{}, Failed: []string{}}
	for _, u := range urls {
		report.Attempted = append(report.Attempted, u)
		name, err := ObjectName(u)
		if err == nil {
			err = g.store.Remove(ctx, g.images, name)
		}
		if err != nil {
			log.Warn("image cleanup failed", zap.String("url", u), zap.Error(err))
			report.Failed = append(report.Failed, u)
		}
	}
	return report
}
