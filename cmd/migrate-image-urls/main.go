package main

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"github.com/staplewise/marketplace-backend/internal/config"
	"github.com/staplewise/marketplace-backend/internal/db"
	"github.com/staplewise/marketplace-backend/internal/logging"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/repository"
	"github.com/staplewise/marketplace-backend/internal/storage"
	"go.uber.org/zap"
)

type options struct {
	DryRun         bool `env:"DRY_RUN" envDefault:"true"`
	TimeoutSeconds int  `env:"TIMEOUT_SECONDS" envDefault:"300"`
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("migrate image urls: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	var opts options
	if err := env.Parse(&opts); err != nil {
		return fmt.Errorf("parse options: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(opts.TimeoutSeconds)*time.Second)
	defer cancel()

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() { _ = db.Close(conn) }()

	rewriter := storage.NewURLRewriter(cfg.Storage.LegacyBaseURL, cfg.Storage.LegacyHost, cfg.Storage.PublicBaseURL)
	n, err := migrate(ctx, repository.NewProductRepository(conn), rewriter, opts.DryRun, logger)
	if err != nil {
		return err
	}
	logger.Info("image url migration finished", zap.Int("updated", n), zap.Bool("dry_run", opts.DryRun))
	return nil
}

// migrate rewrites legacy image URLs on every product and returns how many
// products changed. With dryRun nothing is written.
func migrate(ctx context.Context, products repository.ProductRepository, r *storage.URLRewriter, dryRun bool, log *zap.Logger) (int, error) {
	list, err := products.List(ctx, repository.ProductFilter{})
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}
	updated := 0
	for i := range list {
		p := &list[i]
		primary, additional, changed := rewriteImages(r, p)
		if !changed {
			continue
		}
		updated++
		log.Info("rewrite product images",
			zap.String("product_id", p.ID),
			zap.String("from", p.PrimaryImage),
			zap.String("to", primary),
			zap.Int("additional", len(additional)),
		)
		if dryRun {
			continue
		}
		if err := products.UpdateImages(ctx, p.ID, primary, additional); err != nil {
			return updated, fmt.Errorf("update product %s: %w", p.ID, err)
		}
	}
	return updated, nil
}

func rewriteImages(r *storage.URLRewriter, p *model.Product) (string, []string, bool) {
	primary := r.Rewrite(p.PrimaryImage)
	additional := r.RewriteAll(p.AdditionalImages)
	changed := primary != p.PrimaryImage || !slices.Equal(additional, []string(p.AdditionalImages))
	return primary, additional, changed
}
