// This file contains Prometheus metrics middleware for observability.
package api

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// httpRequestsTotal counts the total number of HTTP requests processed.
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planline_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDurationSeconds tracks the duration of HTTP requests.
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planline_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// activeConnections tracks the number of currently active connections.
	activeConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "planline_active_connections",
			Help: "Number of currently active HTTP connections",
		},
	)

	// chatTurnsTotal counts chat turns by delivery mode and outcome.
	chatTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planline_chat_turns_total",
			Help: "Total number of chat turns processed",
		},
		[]string{"mode", "outcome"},
	)

	// eventMutationsTotal counts event collection mutations by operation.
	eventMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planline_event_mutations_total",
			Help: "Total number of event collection mutations",
		},
		[]string{"operation"},
	)

	// metricsRegistered ensures metrics are only registered once.
	metricsRegistered atomic.Bool
)

// RegisterMetrics registers all Prometheus metrics.
// It is safe to call multiple times; metrics will only be registered once.
func RegisterMetrics() {
	if !metricsRegistered.CompareAndSwap(false, true) {
		return
	}

	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		activeConnections,
		chatTurnsTotal,
		eventMutationsTotal,
	)
}

// prometheusMiddleware returns a Gin middleware that collects Prometheus
// metrics for HTTP requests including request count, duration, and active
// connections.
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		RegisterMetrics()

		// Skip metrics endpoint to avoid self-referential metrics
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		activeConnections.Inc()
		defer activeConnections.Dec()

		// Normalize path for metrics to avoid high cardinality
		path := normalizePath(c.Request.URL.Path)
		method := c.Request.Method

		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDurationSeconds.WithLabelValues(method, path).Observe(duration)
	}
}

// normalizePath collapses per-event routes onto their route template so the
// event id never becomes a label value.
func normalizePath(path string) string {
	if strings.HasPrefix(path, "/api/events/") && path != "/api/events/watch" {
		return "/api/events/:id"
	}
	return path
}

// metricsHandler exposes the Prometheus scrape endpoint.
func metricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
