package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Total HTTP requests partitioned by method, route, and status code
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// Request duration in seconds partitioned by method, route, and status code
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// In-flight HTTP requests
	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Recorded votes partitioned by direction and identifier source
	votesRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_recorded_total",
			Help: "Total number of votes accepted and persisted",
		},
		[]string{"direction", "source"},
	)

	// Guard rejections partitioned by outcome (throttle or block)
	guardRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vote_guard_rejections_total",
			Help: "Total number of votes rejected by the abuse guard",
		},
		[]string{"outcome"},
	)

	// Requests rejected by the in-process rate limiter
	rateLimitRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// RecordVote increments the accepted-vote counter
func RecordVote(direction, source string) {
	votesRecordedTotal.With(prometheus.Labels{"direction": direction, "source": source}).Inc()
}

// RecordGuardRejection increments the guard-rejection counter
func RecordGuardRejection(outcome string) {
	guardRejectionsTotal.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordRateLimitRejection increments the limiter-rejection counter
func RecordRateLimitRejection() {
	rateLimitRejectionsTotal.Inc()
}

// Metrics returns a Fiber v3 middleware that records basic Prometheus metrics.
// Labels are kept low-cardinality by using the matched route path when available.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		method := c.Method()
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path // Use route template to avoid high cardinality
		}

		labels := prometheus.Labels{
			"method": method,
			"route":  route,
			"status": strconv.Itoa(status),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}
