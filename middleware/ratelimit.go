package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RateLimit allows limit requests per fixed window for each key, counted in Redis.
// A nil client or a non-positive limit disables it.
func RateLimit(rdb *redis.Client, prefix string, limit int, window time.Duration, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}
		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}
		rkey := fmt.Sprintf("rl:%s:%s", prefix, key)
		ctx := c.Request.Context()
		// SET NX EX and INCR run in one MULTI so a counter never exists without its TTL
		var incr *redis.IntCmd
		_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetNX(ctx, rkey, 0, window)
			incr = pipe.Incr(ctx, rkey)
			return nil
		})
		if err != nil {
			log.WithError(err).Warn("rate limit counter unavailable")
			c.Next()
			return
		}
		if cnt := incr.Val(); cnt > int64(limit) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}

// ByClientIP keys rate limits on the caller's address.
func ByClientIP(c *gin.Context) string { return c.ClientIP() }
