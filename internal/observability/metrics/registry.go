// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// News pipeline metrics track aggregation runs and their inputs
var (
	// NewsArticlesActive tracks the number of articles in the current batch
	NewsArticlesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "news_articles_active",
			Help: "Number of articles in the currently stored news batch",
		},
	)

	// NewsSourceFetchesTotal counts feed fetch attempts per source by result
	NewsSourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_source_fetches_total",
			Help: "Total number of feed fetch attempts",
		},
		[]string{"source", "status"},
	)

	// NewsArticlesAggregatedTotal counts normalized articles by source
	NewsArticlesAggregatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_articles_aggregated_total",
			Help: "Total number of articles accepted into a batch per source",
		},
		[]string{"source"},
	)

	// NewsItemsSkippedTotal counts feed items dropped during normalization
	NewsItemsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_items_skipped_total",
			Help: "Total number of feed items dropped during normalization",
		},
		[]string{"reason"},
	)

	// NewsRefreshRunsTotal counts refresh runs by outcome
	NewsRefreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_refresh_runs_total",
			Help: "Total number of news refresh runs",
		},
		[]string{"status"}, // status: success, empty, failure
	)

	// NewsRefreshDuration measures the duration of a full refresh run
	NewsRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "news_refresh_duration_seconds",
			Help:    "Time taken to run a full news refresh",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordOperationDuration records the duration of a named operation
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
