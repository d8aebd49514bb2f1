package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messenger_http_requests_total",
			Help: "Total number of HTTP requests processed by the messenger service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messenger_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	cacheInvalidationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messenger_cache_invalidations_total",
			Help: "Total number of cache keys invalidated after ledger commits.",
		},
	)
	sideEffectErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messenger_side_effect_errors_total",
			Help: "Post-commit side effect failures, swallowed and logged.",
		},
		[]string{"kind"},
	)
	invitationsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messenger_invitations_swept_total",
			Help: "Total number of expired invitations removed by the sweeper.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		cacheInvalidationsTotal,
		sideEffectErrorsTotal,
		invitationsSweptTotal,
	)
}

// HTTPMetricsMiddleware records request counts and latencies per route.
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// AddCacheInvalidations counts invalidated cache keys.
func AddCacheInvalidations(n int) {
	cacheInvalidationsTotal.Add(float64(n))
}

// IncSideEffectError counts a swallowed post-commit failure by kind
// (cache, search, events).
func IncSideEffectError(kind string) {
	sideEffectErrorsTotal.WithLabelValues(kind).Inc()
}

// AddInvitationsSwept counts rows removed by the expiry sweeper.
func AddInvitationsSwept(n int64) {
	invitationsSweptTotal.Add(float64(n))
}
