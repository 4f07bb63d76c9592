package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/guestbook/pkg/logger"
	"github.com/gogotex/guestbook/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimitMiddleware is a fixed-window limiter shared by every replica:
// INCR a per-window key and compare against floor(rps*windowSeconds)+burst.
// Requests pass when Redis cannot be reached; the guestbook stays writable
// without its limiter.
func RedisRateLimitMiddleware(client *redis.Client, rps float64, burst int, window time.Duration, key KeyFunc) gin.HandlerFunc {
	if client == nil {
		return RateLimitMiddleware(rps, burst, key)
	}
	if key == nil {
		key = ByClientIP
	}
	windowSeconds := int(window.Seconds())
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	allowedPerWindow := int(rps*float64(windowSeconds)) + burst
	return func(c *gin.Context) {
		bucket := time.Now().Unix() / int64(windowSeconds)
		redisKey := fmt.Sprintf("rl:%s:%d", key(c), bucket)

		cnt, err := client.Incr(c.Request.Context(), redisKey).Result()
		if err != nil {
			logger.Warnf("rate limit check skipped: %v", err)
			metrics.RateLimitAllowed.WithLabelValues("redis_unavailable").Inc()
			c.Next()
			return
		}
		if cnt == 1 {
			_ = client.Expire(c.Request.Context(), redisKey, time.Duration(windowSeconds+1)*time.Second).Err()
		}
		if int(cnt) > allowedPerWindow {
			c.Header("Retry-After", fmt.Sprintf("%d", windowSeconds))
			metrics.RateLimitRejected.WithLabelValues("redis").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}
