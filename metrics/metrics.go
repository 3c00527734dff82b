package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP requests by route, method and status."},
		[]string{"path", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request latency in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"path", "method"},
	)
	CouponClicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "coupon_clicks_total", Help: "Counted affiliate clicks by platform slug."},
		[]string{"platform"},
	)
	ClickEventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "click_events_published_total", Help: "Click events handed to Kafka by result."},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPLatency, CouponClicks, ClickEventsPublished)
}

// Handler records request count and latency per matched route.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPLatency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
		HTTPRequests.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Exposer serves the Prometheus scrape endpoint.
func Exposer() gin.HandlerFunc { return gin.WrapH(promhttp.Handler()) }
