package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver receives one observation per finished request
type HTTPObserver interface {
	TrackInFlight() func()
	ObserveHTTP(method, route string, status int, duration time.Duration)
}

// Metrics records request count, latency and in-flight requests. Requests are
// labelled with the route template so ids in paths do not explode cardinality.
func Metrics(observer HTTPObserver, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}
		done := observer.TrackInFlight()
		start := time.Now()

		c.Next()

		done()
		observer.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
