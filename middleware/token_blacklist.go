package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// TokenBlacklist remembers revoked token ids (jti) until the token would have expired.
// It uses Redis when a client is given, otherwise an in-process map.
type TokenBlacklist struct {
	rdb   *redis.Client
	local sync.Map // jti -> expiry time.Time
}

func NewTokenBlacklist(rdb *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rdb: rdb}
}

// Add revokes jti for ttl. A non-positive ttl is a no-op since the token is already dead.
func (b *TokenBlacklist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	if b.rdb != nil {
		return b.rdb.Set(ctx, "bl:"+jti, "1", ttl).Err()
	}
	b.local.Store(jti, time.Now().Add(ttl))
	return nil
}

// Contains reports whether jti was revoked. Redis errors fail open and are logged.
func (b *TokenBlacklist) Contains(ctx context.Context, jti string) bool {
	if jti == "" {
		return false
	}
	if b.rdb != nil {
		n, err := b.rdb.Exists(ctx, "bl:"+jti).Result()
		if err != nil {
			log.WithError(err).Warn("token blacklist lookup failed")
			return false
		}
		return n > 0
	}
	v, found := b.local.Load(jti)
	if !found {
		return false
	}
	if time.Now().After(v.(time.Time)) {
		b.local.Delete(jti)
		return false
	}
	return true
}
