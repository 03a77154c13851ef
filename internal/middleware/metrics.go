package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-crm/pkg/metrics"
)

// Metrics records request count, latency and errors per route. Unmatched
// paths are folded into one label to keep cardinality bounded.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		code := strconv.Itoa(status)

		m.RequestDuration.WithLabelValues(c.Request.Method, path, code).Observe(time.Since(start).Seconds())
		m.RequestTotal.WithLabelValues(c.Request.Method, path, code).Inc()

		switch {
		case status >= 500:
			m.ErrorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		case status >= 400:
			m.ErrorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
