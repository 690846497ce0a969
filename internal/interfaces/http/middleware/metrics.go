package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver records one finished request. telemetry.Metrics implements it.
type HTTPObserver interface {
	ObserveHTTPRequest(method, route string, status int, took time.Duration)
}

// HTTPMetrics returns a Gin middleware that records request count and latency
// per route pattern. A nil observer yields a pass-through middleware.
func HTTPMetrics(observer HTTPObserver) gin.HandlerFunc {
	if observer == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		// FullPath is the matched pattern, not the raw path, to keep label cardinality bounded
		observer.ObserveHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
