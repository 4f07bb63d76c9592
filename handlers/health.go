package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

// RegisterHealth mounts /health (liveness) and /ready (readiness). Ready
// returns 200 only when every check passes.
func RegisterHealth(r gin.IRoutes, checks map[string]Check) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ready := true
		deps := map[string]bool{}
		for name, check := range checks {
			ok := check(ctx) == nil
			deps[name] = ok
			ready = ready && ok
		}

		uptime := time.Since(startTime).String()
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	})
}
