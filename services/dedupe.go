package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClickDeduper reports whether a click key was already seen inside its window.
// Forget releases a key claimed by Seen when the click could not be stored.
type ClickDeduper interface {
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type RedisDeduper struct {
	client *redis.Client
	window time.Duration
}

func NewRedisDeduper(client *redis.Client, window time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, window: window}
}

func (d *RedisDeduper) Seen(ctx context.Context, key string) (bool, error) {
	// SETNX succeeds only for the first click in the window
	wasSet, err := d.client.SetNX(ctx, "click:"+key, "1", d.window).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return !wasSet, nil
}

func (d *RedisDeduper) Forget(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, "click:"+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
