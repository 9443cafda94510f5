package middleware

import (
	"strconv"
	"time"

	"github.com/epeers/portfolio-optimizer/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency per route. Unmatched paths are
// grouped under "unmatched" to keep label cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		Logger(c).WithField("elapsed_ms", elapsed.Milliseconds()).
			Debugf("%s %s -> %d", c.Request.Method, route, c.Writer.Status())
	}
}
