package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// The path label is the registered gin route so parameterized URLs do not explode cardinality.
var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dailywhisker",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		},
		[]string{"service", "method", "path", "status"},
	)

	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dailywhisker",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	httpInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "dailywhisker",
			Name:      "http_requests_inflight",
			Help:      "HTTP requests currently being served.",
		},
		[]string{"service"},
	)

	httpResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dailywhisker",
			Name:      "http_response_size_bytes",
			Help:      "HTTP response body size in bytes.",
			// Proxied images are larger than API payloads.
			Buckets: prometheus.ExponentialBuckets(256, 4, 10),
		},
		[]string{"service", "method", "path"},
	)
)

func init() {
	prometheus.MustRegister(httpRequests, httpLatency, httpInflight, httpResponseSize)
}

// Metrics records request count, latency, in-flight gauge and response size for service.
// Expose the collectors with gin.WrapH(promhttp.Handler()).
func Metrics(service string) gin.HandlerFunc {
	inflight := httpInflight.WithLabelValues(service)
	return func(c *gin.Context) {
		start := time.Now()
		inflight.Inc()
		defer inflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		httpRequests.WithLabelValues(service, method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(service, method, path).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpResponseSize.WithLabelValues(service, method, path).Observe(float64(size))
		}
	}
}
