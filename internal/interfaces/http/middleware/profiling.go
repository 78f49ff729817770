package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/groupbuy/backend/internal/infrastructure/telemetry"
)

// Profiling tags CPU samples taken while a request is handled with its route
// and method, so Pyroscope can break a flame graph down per endpoint.
// Probes and the docs are left unlabelled.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" || strings.HasPrefix(path, "/swagger") {
			c.Next()
			return
		}

		labels := map[string]string{
			telemetry.ProfilingLabelMethod: c.Request.Method,
			telemetry.ProfilingLabelRoute:  c.FullPath(),
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
