package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/guestbook/pkg/logger"
)

// RequestLogger logs one line per request through pkg/logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		line := "%s %s -> %d (%s)"
		args := []interface{}{c.Request.Method, c.Request.URL.Path, status, time.Since(start)}
		switch {
		case status >= 500:
			logger.Errorf(line+" %s", append(args, c.Errors.String())...)
		case status >= 400:
			logger.Warnf(line, args...)
		default:
			logger.Infof(line, args...)
		}
	}
}
