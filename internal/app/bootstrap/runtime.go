package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-booking-webhook/internal/catalog"
	appconfig "github.com/wolfman30/clinic-booking-webhook/internal/config"
	"github.com/wolfman30/clinic-booking-webhook/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// LoadCatalog reads the directory once from the configured source.
func LoadCatalog(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (*catalog.Catalog, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	source, cleanup, err := BuildCatalogSource(ctx, cfg, awsCfg)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	c, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load catalog from %s: %w", cfg.CatalogSource, err)
	}
	logger.Info("catalog loaded",
		"source", cfg.CatalogSource,
		"doctors", c.Len(),
		"hospitals", len(c.Hospitals()),
	)
	return c, nil
}

// BuildCatalogSource selects the catalog backend named by CATALOG_SOURCE.
func BuildCatalogSource(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config) (catalog.Source, func(), error) {
	noop := func() {}
	switch cfg.CatalogSource {
	case "", "embedded":
		return catalog.EmbeddedSource{}, noop, nil
	case "file":
		if strings.TrimSpace(cfg.CatalogPath) == "" {
			return nil, noop, fmt.Errorf("bootstrap: CATALOG_PATH is required for file catalog")
		}
		return catalog.FileSource{Path: cfg.CatalogPath}, noop, nil
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, noop, fmt.Errorf("bootstrap: DATABASE_URL is required for postgres catalog")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		return catalog.NewPostgresSource(pool), pool.Close, nil
	case "s3":
		if strings.TrimSpace(cfg.CatalogS3Bucket) == "" {
			return nil, noop, fmt.Errorf("bootstrap: CATALOG_S3_BUCKET is required for s3 catalog")
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			// LocalStack serves buckets by path, not virtual host.
			o.UsePathStyle = cfg.AWSEndpointOverride != ""
		})
		return catalog.NewS3Source(client, cfg.CatalogS3Bucket, cfg.CatalogS3Key), noop, nil
	default:
		return nil, noop, fmt.Errorf("bootstrap: unknown catalog source %q", cfg.CatalogSource)
	}
}
