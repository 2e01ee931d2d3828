package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"ether-wallet.backend/pkg/metrics"
)

// MetricsMiddleware counts handled requests by route template and status.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
