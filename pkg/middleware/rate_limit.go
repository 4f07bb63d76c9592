package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/guestbook/internal/guestbook"
	"github.com/gogotex/guestbook/pkg/metrics"
	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(c *gin.Context) string

// ByClientIP charges requests to the client address.
func ByClientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// ByGuestbook charges requests to the guestbook partition they write to, so a
// single guestbook stays near the write rate its partition can sustain.
func ByGuestbook(c *gin.Context) string {
	name := c.Query("guestbook_name")
	if name == "" {
		name = c.PostForm("guestbook_name")
	}
	return "gb:" + guestbook.Key(name)
}

// limiterStore is a per-key token-bucket store.
type limiterStore struct {
	m     sync.Map // map[string]*rate.Limiter
	rps   float64
	burst int
}

func (s *limiterStore) get(key string) *rate.Limiter {
	if v, ok := s.m.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := s.m.LoadOrStore(key, rate.NewLimiter(rate.Limit(s.rps), s.burst))
	return v.(*rate.Limiter)
}

// RateLimitMiddleware returns a Gin middleware enforcing an in-memory
// token bucket per key. rps = allowed events per second, burst = bucket size.
// A nil key func means ByClientIP.
func RateLimitMiddleware(rps float64, burst int, key KeyFunc) gin.HandlerFunc {
	if key == nil {
		key = ByClientIP
	}
	store := &limiterStore{rps: rps, burst: burst}
	return func(c *gin.Context) {
		if !store.get(key(c)).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
