// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - News pipeline metrics (fetches, batches, skips, refresh runs)
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "medico-news/internal/observability/metrics"
//
//	func refreshNews() {
//	    start := time.Now()
//	    // ... aggregate and store articles ...
//
//	    metrics.RecordRefresh("success", time.Since(start))
//	    metrics.UpdateArticlesActive(20)
//	}
package metrics
