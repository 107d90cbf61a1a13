package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Deduper backed by Redis SET NX, for deployments with
// redundant subscribers sharing one retention horizon.
type Redis struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// NewRedis creates a Redis-backed deduper.
func NewRedis(client *redis.Client, ttl time.Duration, keyPrefix string) *Redis {
	if keyPrefix == "" {
		keyPrefix = "dedupe:"
	}
	return &Redis{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// Compile-time interface check.
var _ Deduper = (*Redis)(nil)

// Seen records id via SET NX and reports whether the key already existed.
// SET NX is atomic, so exactly one concurrent caller wins admission.
func (r *Redis) Seen(ctx context.Context, id string) (bool, error) {
	set, err := r.client.SetNX(ctx, r.keyPrefix+id, 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedupe setnx: %w", err)
	}
	return !set, nil
}
