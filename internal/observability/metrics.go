// Package observability holds Prometheus metrics and OpenTelemetry tracing
// setup for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsCreated counts posts created through the create handler.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogicum_posts_created_total",
		Help: "Total number of posts created",
	})

	// CommentsCreated counts comments created through the comment handler.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogicum_comments_created_total",
		Help: "Total number of comments created",
	})

	// PageRenders counts template renders by template name.
	PageRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogicum_page_renders_total",
		Help: "Total number of page renders by template",
	}, []string{"template"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogicum_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blogicum_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
