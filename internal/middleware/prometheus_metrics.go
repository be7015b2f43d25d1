package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/commentsapp/backend/internal/metrics"
)

// MetricsMiddleware records request counts and latency for Prometheus.
// The route template (c.FullPath) labels the metric, so path
// parameters do not explode label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		// Numeric status string so Grafana can match status=~"5.."
		statusStr := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(time.Since(startTime).Seconds())
	}
}
