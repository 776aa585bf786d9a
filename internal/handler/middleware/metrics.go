package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carelink/carelink-api/pkg/metrics"
)

// Metrics records request count, latency, and in-flight gauge. The path
// label uses the route template, not the raw URL, to keep cardinality
// bounded.
func Metrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		collector.InFlightGauge.Inc()

		c.Next()

		collector.InFlightGauge.Dec()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		collector.RequestsTotal.WithLabelValues(method, path, status).Inc()
		collector.RequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
	}
}
