package metrics

import "time"

// RecordSourceFetch records the outcome of one feed fetch attempt.
func RecordSourceFetch(sourceName string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	NewsSourceFetchesTotal.WithLabelValues(sourceName, status).Inc()
}

// RecordArticlesAggregated records how many normalized articles a source
// contributed to a batch.
func RecordArticlesAggregated(sourceName string, count int) {
	NewsArticlesAggregatedTotal.WithLabelValues(sourceName).Add(float64(count))
}

// RecordItemSkipped records a feed item dropped during normalization.
// Reason identifies the missing field that caused the drop.
func RecordItemSkipped(reason string) {
	NewsItemsSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordRefresh records the outcome and duration of a full refresh run.
// Status should be "success", "empty", or "failure".
func RecordRefresh(status string, duration time.Duration) {
	NewsRefreshRunsTotal.WithLabelValues(status).Inc()
	NewsRefreshDuration.Observe(duration.Seconds())
}

// UpdateArticlesActive updates the gauge tracking the current batch size.
func UpdateArticlesActive(count int) {
	NewsArticlesActive.Set(float64(count))
}
