// internal/middleware/metrics_middleware.go
package middleware

import (
	"strconv"
	"time"

	"contenthub-service/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request count and latency per route template. Unmatched
// paths share one label so scanners cannot blow up cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
