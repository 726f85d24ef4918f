package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultDedupeTTL    = 24 * time.Hour
	defaultDedupePrefix = "notify:sent:"
)

// Deduper suppresses repeat deliveries of the same notification.
type Deduper interface {
	// Claim returns true the first time key is seen within the TTL.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets key so a failed delivery can be retried.
	Release(ctx context.Context, key string) error
}

// RedisDedupe records delivered notifications in Redis with a TTL.
type RedisDedupe struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisDedupe stores claims under "notify:sent:<key>" for ttl.
func NewRedisDedupe(client *redis.Client, ttl time.Duration) *RedisDedupe {
	if client == nil {
		panic("notify: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultDedupeTTL
	}
	return &RedisDedupe{client: client, ttl: ttl, prefix: defaultDedupePrefix}
}

func (d *RedisDedupe) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+key, time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("notify: dedupe claim: %w", err)
	}
	return ok, nil
}

func (d *RedisDedupe) Release(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, d.prefix+key).Err(); err != nil {
		return fmt.Errorf("notify: dedupe release: %w", err)
	}
	return nil
}
