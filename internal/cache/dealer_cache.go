// Package cache keeps hot lookups in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyDealerByHost = "dealer:host:%s"

// DealerCache maps a normalized hostname to the id of the dealer it resolved to.
// Only ids are cached; the dealer row is always re-read so flag changes take
// effect immediately.
type DealerCache interface {
	Get(ctx context.Context, host string) (uuid.UUID, bool, error)
	Set(ctx context.Context, host string, dealerID uuid.UUID) error
	Delete(ctx context.Context, host string) error
}

type redisDealerCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDealerCache creates a Redis-backed DealerCache whose entries live for ttl.
func NewDealerCache(client *redis.Client, ttl time.Duration) DealerCache {
	return &redisDealerCache{client: client, ttl: ttl}
}

func dealerKey(host string) string {
	return fmt.Sprintf(keyDealerByHost, host)
}

func (c *redisDealerCache) Get(ctx context.Context, host string) (uuid.UUID, bool, error) {
	val, err := c.client.Get(ctx, dealerKey(host)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to read dealer cache: %w", err)
	}

	id, err := uuid.Parse(val)
	if err != nil {
		// Unreadable entries are dropped and reported as a miss.
		if err := c.client.Del(ctx, dealerKey(host)).Err(); err != nil {
			return uuid.Nil, false, fmt.Errorf("failed to drop unreadable dealer cache entry: %w", err)
		}
		return uuid.Nil, false, nil
	}
	return id, true, nil
}

func (c *redisDealerCache) Set(ctx context.Context, host string, dealerID uuid.UUID) error {
	if err := c.client.Set(ctx, dealerKey(host), dealerID.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write dealer cache: %w", err)
	}
	return nil
}

func (c *redisDealerCache) Delete(ctx context.Context, host string) error {
	if err := c.client.Del(ctx, dealerKey(host)).Err(); err != nil {
		return fmt.Errorf("failed to delete dealer cache entry: %w", err)
	}
	return nil
}

// NoopDealerCache never stores anything. It is used when Redis is unavailable.
type NoopDealerCache struct{}

func (NoopDealerCache) Get(context.Context, string) (uuid.UUID, bool, error) {
	return uuid.Nil, false, nil
}

func (NoopDealerCache) Set(context.Context, string, uuid.UUID) error { return nil }

func (NoopDealerCache) Delete(context.Context, string) error { return nil }
