package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/digibhoomi/record-translator/pkg/metrics"
)

// Metrics records request counts and latency per route. The route template
// is used as the path label to keep cardinality bounded.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
		).Observe(time.Since(started).Seconds())
	}
}
